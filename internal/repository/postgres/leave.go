package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
)

const leaveColumns = `id, doctor_id, doctor_name, date, type, session, reason, status, created_at, updated_at`

type leaveRepository struct {
	BaseRepository
}

func NewLeaveRepository(base BaseRepository) repository.LeaveRepository {
	return &leaveRepository{base}
}

func (r *leaveRepository) Create(ctx context.Context, leave *model.LeaveRequest) error {
	query := `
		INSERT INTO leave_requests (` + leaveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	now := time.Now().UTC()
	leave.CreatedAt = now
	leave.UpdatedAt = now

	_, err := r.conn(ctx).ExecContext(ctx, query,
		leave.ID,
		leave.DoctorID,
		leave.DoctorName,
		leave.Date,
		leave.Type,
		leave.Session,
		leave.Reason,
		leave.Status,
		leave.CreatedAt,
		leave.UpdatedAt,
	)
	return mapError(err, "failed to create leave request")
}

func (r *leaveRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error) {
	var leave model.LeaveRequest
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1 FOR UPDATE`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &leave, query, id); err != nil {
		return nil, mapError(err, "failed to lock leave request")
	}
	return &leave, nil
}

func (r *leaveRepository) List(ctx context.Context, doctorID *uuid.UUID) ([]*model.LeaveRequest, error) {
	query := `SELECT ` + leaveColumns + ` FROM leave_requests`
	var args []interface{}
	if doctorID != nil {
		query += ` WHERE doctor_id = $1`
		args = append(args, *doctorID)
	}
	query += ` ORDER BY created_at DESC`

	leaves := []*model.LeaveRequest{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &leaves, query, args...); err != nil {
		return nil, mapError(err, "failed to list leave requests")
	}
	return leaves, nil
}

func (r *leaveRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LeaveStatus) error {
	query := `UPDATE leave_requests SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.conn(ctx).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return mapError(err, "failed to update leave request")
	}
	return requireAffected(res, "failed to update leave request")
}

func (r *leaveRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM leave_requests WHERE status = 'pending'`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &n, query); err != nil {
		return 0, mapError(err, "failed to count pending leave")
	}
	return n, nil
}
