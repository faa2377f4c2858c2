package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
)

const tokenColumns = `id, token_number, patient_name, patient_phone, patient_email, doctor_id, doctor_name,
	department, time_slot, date, symptoms, status, cancel_reason, booked_at, updated_at`

type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(base BaseRepository) repository.TokenRepository {
	return &tokenRepository{base}
}

func (r *tokenRepository) Create(ctx context.Context, token *model.Token) error {
	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		token.ID,
		token.TokenNumber,
		token.PatientName,
		token.PatientPhone,
		token.PatientEmail,
		token.DoctorID,
		token.DoctorName,
		token.Department,
		token.TimeSlot,
		token.Date,
		token.Symptoms,
		token.Status,
		token.CancelReason,
		token.BookedAt,
		token.UpdatedAt,
	)
	return mapError(err, "failed to create token")
}

func (r *tokenRepository) Get(ctx context.Context, id uuid.UUID) (*model.Token, error) {
	var token model.Token
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &token, query, id); err != nil {
		return nil, mapError(err, "failed to get token")
	}
	return &token, nil
}

func (r *tokenRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Token, error) {
	var token model.Token
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE id = $1 FOR UPDATE`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &token, query, id); err != nil {
		return nil, mapError(err, "failed to lock token")
	}
	return &token, nil
}

func (r *tokenRepository) List(ctx context.Context, filters *model.TokenFilters) ([]*model.Token, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters != nil {
		if filters.Date != "" {
			add("date = $%d", filters.Date)
		}
		if filters.DoctorID != uuid.Nil {
			add("doctor_id = $%d", filters.DoctorID)
		}
		if filters.Phone != "" {
			add("patient_phone = $%d", filters.Phone)
		}
		if filters.Status != "" {
			add("status = $%d", filters.Status)
		}
	}

	query := `SELECT ` + tokenColumns + ` FROM tokens`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY booked_at ASC, token_number ASC"

	tokens := []*model.Token{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &tokens, query, args...); err != nil {
		return nil, mapError(err, "failed to list tokens")
	}
	return tokens, nil
}

func (r *tokenRepository) ListActiveForUpdate(ctx context.Context, doctorID uuid.UUID, date string) ([]*model.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		WHERE doctor_id = $1 AND date = $2 AND status IN ('waiting', 'serving')
		ORDER BY booked_at ASC, token_number ASC
		FOR UPDATE
	`
	tokens := []*model.Token{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &tokens, query, doctorID, date); err != nil {
		return nil, mapError(err, "failed to lock queue")
	}
	return tokens, nil
}

func (r *tokenRepository) ListWaitingUpTo(ctx context.Context, date string) ([]*model.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM tokens
		WHERE status = 'waiting' AND date <= $1
		ORDER BY date ASC, booked_at ASC
	`
	tokens := []*model.Token{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &tokens, query, date); err != nil {
		return nil, mapError(err, "failed to list waiting tokens")
	}
	return tokens, nil
}

func (r *tokenRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TokenStatus, reason string) (*model.Token, error) {
	query := `
		UPDATE tokens
		SET status = $1, cancel_reason = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + tokenColumns
	var token model.Token
	if err := sqlx.GetContext(ctx, r.conn(ctx), &token, query, status, reason, time.Now().UTC(), id); err != nil {
		return nil, mapError(err, "failed to update token status")
	}
	return &token, nil
}

// NextNumber bumps the per-day counter. Concurrent callers serialise on the
// counter row, so each receives a distinct number.
func (r *tokenRepository) NextNumber(ctx context.Context, date string) (int, error) {
	query := `
		INSERT INTO token_counters (date, last_number) VALUES ($1, 1)
		ON CONFLICT (date) DO UPDATE SET last_number = token_counters.last_number + 1
		RETURNING last_number
	`
	var n int
	if err := sqlx.GetContext(ctx, r.conn(ctx), &n, query, date); err != nil {
		return 0, mapError(err, "failed to allocate token number")
	}
	return n, nil
}

func (r *tokenRepository) CountActive(ctx context.Context, doctorID uuid.UUID, date string) (int, error) {
	query := `SELECT COUNT(*) FROM tokens WHERE doctor_id = $1 AND date = $2 AND status <> 'cancelled'`
	var n int
	if err := sqlx.GetContext(ctx, r.conn(ctx), &n, query, doctorID, date); err != nil {
		return 0, mapError(err, "failed to count tokens")
	}
	return n, nil
}

func (r *tokenRepository) HasActiveBooking(ctx context.Context, phone string, doctorID uuid.UUID, date string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tokens
			WHERE patient_phone = $1 AND doctor_id = $2 AND date = $3 AND status <> 'cancelled'
		)
	`
	var exists bool
	if err := sqlx.GetContext(ctx, r.conn(ctx), &exists, query, phone, doctorID, date); err != nil {
		return false, mapError(err, "failed to check duplicate booking")
	}
	return exists, nil
}
