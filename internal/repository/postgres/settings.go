package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
)

type settingsRepository struct {
	BaseRepository
}

func NewSettingsRepository(base BaseRepository) repository.SettingsRepository {
	return &settingsRepository{base}
}

// Get returns repository.ErrNotFound until settings are first saved.
func (r *settingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	var s model.Settings
	query := `
		SELECT clinic_name, avg_consultation, auto_cancel, default_capacity, updated_at
		FROM settings WHERE id = 1
	`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &s, query); err != nil {
		return nil, mapError(err, "failed to get settings")
	}
	return &s, nil
}

func (r *settingsRepository) Save(ctx context.Context, s *model.Settings) error {
	query := `
		INSERT INTO settings (id, clinic_name, avg_consultation, auto_cancel, default_capacity, updated_at)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			clinic_name = EXCLUDED.clinic_name,
			avg_consultation = EXCLUDED.avg_consultation,
			auto_cancel = EXCLUDED.auto_cancel,
			default_capacity = EXCLUDED.default_capacity,
			updated_at = EXCLUDED.updated_at
	`
	s.UpdatedAt = time.Now().UTC()
	_, err := r.conn(ctx).ExecContext(ctx, query,
		s.ClinicName, s.AvgConsultation, s.AutoCancel, s.DefaultCapacity, s.UpdatedAt)
	return mapError(err, "failed to save settings")
}
