package doctor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
	"github.com/jwalitptl/mediqueue/internal/service/event"
	apperrors "github.com/jwalitptl/mediqueue/pkg/errors"
)

type DoctorServicer interface {
	AddDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error)
	UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	ListDoctors(ctx context.Context) ([]*model.Doctor, error)
	DoctorsByDepartment(ctx context.Context, department string) ([]*model.Doctor, error)
}

type Service struct {
	repo   repository.DoctorRepository
	tx     repository.TxManager
	events event.Emitter
}

func NewService(repo repository.DoctorRepository, tx repository.TxManager, events event.Emitter) *Service {
	return &Service{
		repo:   repo,
		tx:     tx,
		events: events,
	}
}

func (s *Service) AddDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(req.Name),
		Department: strings.TrimSpace(req.Department),
		Room:       strings.TrimSpace(req.Room),
		Capacity:   req.Capacity,
		Slots:      model.NormalizeSlots(req.Slots),
		Email:      strings.TrimSpace(req.Email),
		Status:     model.DoctorStatusActive,
	}
	if err := validateDoctor(doctor); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doctor); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventDoctorCreated, event.DoctorRef(doctor.ID), doctor)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	var doctor *model.Doctor
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		existing.Name = strings.TrimSpace(req.Name)
		existing.Department = strings.TrimSpace(req.Department)
		existing.Room = strings.TrimSpace(req.Room)
		existing.Capacity = req.Capacity
		existing.Slots = model.NormalizeSlots(req.Slots)
		existing.Email = strings.TrimSpace(req.Email)
		if req.Status != "" {
			existing.Status = req.Status
		}
		if err := validateDoctor(existing); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, existing); err != nil {
			return err
		}
		doctor = existing
		return s.events.Emit(ctx, model.EventDoctorUpdated, event.DoctorRef(id), existing)
	})
	if err != nil {
		return nil, wrapNotFound(err, "failed to update doctor")
	}
	return doctor, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, id); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventDoctorDeleted, event.DoctorRef(id), map[string]string{"id": id.String()})
	})
	return wrapNotFound(err, "failed to delete doctor")
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "failed to get doctor")
	}
	return doctor, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

// DoctorsByDepartment returns only doctors currently taking bookings.
func (s *Service) DoctorsByDepartment(ctx context.Context, department string) ([]*model.Doctor, error) {
	department = strings.TrimSpace(department)
	if department == "" {
		return nil, apperrors.BadRequest("department is required", nil)
	}
	doctors, err := s.repo.ListByDepartment(ctx, department, model.DoctorStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors by department: %w", err)
	}
	return doctors, nil
}

func validateDoctor(d *model.Doctor) error {
	if d.Name == "" {
		return apperrors.BadRequest("doctor name is required", nil)
	}
	if d.Department == "" {
		return apperrors.BadRequest("department is required", nil)
	}
	if d.Capacity < 0 {
		return apperrors.BadRequest("capacity cannot be negative", nil)
	}
	if !d.Status.Valid() {
		return apperrors.BadRequest(fmt.Sprintf("invalid doctor status %q", d.Status), nil)
	}
	return nil
}

func wrapNotFound(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("doctor", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
