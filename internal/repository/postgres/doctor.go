package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
)

const doctorColumns = `id, name, department, room, capacity, slots, email, status, created_at, updated_at`

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(base BaseRepository) repository.DoctorRepository {
	return &doctorRepository{base}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (` + doctorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	now := time.Now().UTC()
	doctor.CreatedAt = now
	doctor.UpdatedAt = now

	_, err := r.conn(ctx).ExecContext(ctx, query,
		doctor.ID,
		doctor.Name,
		doctor.Department,
		doctor.Room,
		doctor.Capacity,
		doctor.Slots,
		doctor.Email,
		doctor.Status,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	return mapError(err, "failed to create doctor")
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &doctor, query, id); err != nil {
		return nil, mapError(err, "failed to get doctor")
	}
	return &doctor, nil
}

func (r *doctorRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1 FOR UPDATE`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &doctor, query, id); err != nil {
		return nil, mapError(err, "failed to lock doctor")
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET name = $1, department = $2, room = $3, capacity = $4, slots = $5,
			email = $6, status = $7, updated_at = $8
		WHERE id = $9
	`
	doctor.UpdatedAt = time.Now().UTC()
	res, err := r.conn(ctx).ExecContext(ctx, query,
		doctor.Name,
		doctor.Department,
		doctor.Room,
		doctor.Capacity,
		doctor.Slots,
		doctor.Email,
		doctor.Status,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return mapError(err, "failed to update doctor")
	}
	return requireAffected(res, "failed to update doctor")
}

func (r *doctorRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DoctorStatus) error {
	query := `UPDATE doctors SET status = $1, updated_at = $2 WHERE id = $3`
	res, err := r.conn(ctx).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return mapError(err, "failed to update doctor status")
	}
	return requireAffected(res, "failed to update doctor status")
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "failed to delete doctor")
	}
	return requireAffected(res, "failed to delete doctor")
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	doctors := []*model.Doctor{}
	query := `SELECT ` + doctorColumns + ` FROM doctors ORDER BY created_at ASC`
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &doctors, query); err != nil {
		return nil, mapError(err, "failed to list doctors")
	}
	return doctors, nil
}

func (r *doctorRepository) ListByDepartment(ctx context.Context, department string, status model.DoctorStatus) ([]*model.Doctor, error) {
	doctors := []*model.Doctor{}
	query := `
		SELECT ` + doctorColumns + `
		FROM doctors
		WHERE department = $1 AND status = $2
		ORDER BY name ASC
	`
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &doctors, query, department, status); err != nil {
		return nil, mapError(err, "failed to list doctors by department")
	}
	return doctors, nil
}
