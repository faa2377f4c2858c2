package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

// Dates are TEXT in YYYY-MM-DD form; they compare correctly as strings.
var steps = []migrationStep{
	{
		Name: "create_table_doctors",
		SQL: `CREATE TABLE IF NOT EXISTS doctors (
  id         UUID        PRIMARY KEY,
  name       TEXT        NOT NULL,
  department TEXT        NOT NULL,
  room       TEXT        NOT NULL DEFAULT '',
  capacity   INTEGER     NOT NULL DEFAULT 0 CHECK (capacity >= 0),
  slots      JSONB       NOT NULL DEFAULT '[]',
  email      TEXT        NOT NULL DEFAULT '',
  status     TEXT        NOT NULL DEFAULT 'active',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_doctors_department",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_doctors_department ON doctors (department, status);`,
	},
	{
		Name: "create_table_tokens",
		SQL: `CREATE TABLE IF NOT EXISTS tokens (
  id            UUID        PRIMARY KEY,
  token_number  TEXT        NOT NULL,
  patient_name  TEXT        NOT NULL,
  patient_phone TEXT        NOT NULL,
  patient_email TEXT        NOT NULL DEFAULT '',
  doctor_id     UUID        NOT NULL,
  doctor_name   TEXT        NOT NULL,
  department    TEXT        NOT NULL,
  time_slot     TEXT        NOT NULL,
  date          TEXT        NOT NULL,
  symptoms      TEXT        NOT NULL DEFAULT '',
  status        TEXT        NOT NULL DEFAULT 'waiting',
  cancel_reason TEXT        NOT NULL DEFAULT '',
  booked_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_tokens_doctor_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tokens_doctor_date ON tokens (doctor_id, date, booked_at);`,
	},
	{
		Name: "create_index_tokens_phone",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tokens_phone ON tokens (patient_phone);`,
	},
	{
		Name: "create_unique_index_tokens_active_booking",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_tokens_active_booking
  ON tokens (patient_phone, doctor_id, date) WHERE status <> 'cancelled';`,
	},
	{
		Name: "create_unique_index_tokens_number",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_tokens_number ON tokens (date, token_number);`,
	},
	{
		Name: "create_table_token_counters",
		SQL: `CREATE TABLE IF NOT EXISTS token_counters (
  date        TEXT    PRIMARY KEY,
  last_number INTEGER NOT NULL
);`,
	},
	{
		Name: "create_table_leave_requests",
		SQL: `CREATE TABLE IF NOT EXISTS leave_requests (
  id          UUID        PRIMARY KEY,
  doctor_id   UUID        NOT NULL REFERENCES doctors (id) ON DELETE CASCADE,
  doctor_name TEXT        NOT NULL,
  date        TEXT        NOT NULL,
  type        TEXT        NOT NULL,
  session     TEXT        NOT NULL DEFAULT 'Full Day',
  reason      TEXT        NOT NULL DEFAULT '',
  status      TEXT        NOT NULL DEFAULT 'pending',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_settings",
		SQL: `CREATE TABLE IF NOT EXISTS settings (
  id               SMALLINT    PRIMARY KEY CHECK (id = 1),
  clinic_name      TEXT        NOT NULL,
  avg_consultation INTEGER     NOT NULL,
  auto_cancel      INTEGER     NOT NULL,
  default_capacity INTEGER     NOT NULL,
  updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_outbox_events",
		SQL: `CREATE TABLE IF NOT EXISTS outbox_events (
  id            UUID        PRIMARY KEY,
  event_type    TEXT        NOT NULL,
  payload       JSONB       NOT NULL,
  status        TEXT        NOT NULL DEFAULT 'PENDING',
  error_message TEXT,
  retry_count   INTEGER     NOT NULL DEFAULT 0,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  processed_at  TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_outbox_events_pending",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_outbox_events_pending ON outbox_events (created_at) WHERE status = 'PENDING';`,
	},
}

// Migrate applies every schema step. Steps are idempotent.
func Migrate(ctx context.Context, db *sqlx.DB, logger zerolog.Logger) error {
	for _, step := range steps {
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return fmt.Errorf("migration %s failed: %w", step.Name, err)
		}
		logger.Debug().Str("step", step.Name).Msg("migration applied")
	}
	logger.Info().Int("steps", len(steps)).Msg("database schema up to date")
	return nil
}
