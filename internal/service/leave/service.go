package leave

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
	"github.com/jwalitptl/mediqueue/internal/service/event"
	"github.com/jwalitptl/mediqueue/internal/service/token"
	apperrors "github.com/jwalitptl/mediqueue/pkg/errors"
)

const ReasonDoctorOnLeave = "doctor on leave"

var ErrAlreadyDecided = apperrors.Conflict("leave request has already been decided", nil)

type LeaveServicer interface {
	SubmitLeave(ctx context.Context, doctorID uuid.UUID, req *model.SubmitLeaveRequest) (*model.LeaveRequest, error)
	ListLeave(ctx context.Context) ([]*model.LeaveRequest, error)
	ListDoctorLeave(ctx context.Context, doctorID uuid.UUID) ([]*model.LeaveRequest, error)
	ApproveLeave(ctx context.Context, id uuid.UUID) (*model.LeaveDecision, error)
	RejectLeave(ctx context.Context, id uuid.UUID) (*model.LeaveDecision, error)
	PendingCount(ctx context.Context) (int, error)
}

type Service struct {
	tx          repository.TxManager
	leaves      repository.LeaveRepository
	doctors     repository.DoctorRepository
	tokens      repository.TokenRepository
	transitions token.Transitioner
	events      event.Emitter
}

func NewService(
	tx repository.TxManager,
	leaves repository.LeaveRepository,
	doctors repository.DoctorRepository,
	tokens repository.TokenRepository,
	transitions token.Transitioner,
	events event.Emitter,
) *Service {
	return &Service{
		tx:          tx,
		leaves:      leaves,
		doctors:     doctors,
		tokens:      tokens,
		transitions: transitions,
		events:      events,
	}
}

func (s *Service) SubmitLeave(ctx context.Context, doctorID uuid.UUID, req *model.SubmitLeaveRequest) (*model.LeaveRequest, error) {
	session := strings.TrimSpace(req.Session)
	if session == "" {
		session = model.SessionFullDay
	}

	var leave *model.LeaveRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doctor, err := s.doctors.Get(ctx, doctorID)
		if err != nil {
			return err
		}

		leave = &model.LeaveRequest{
			ID:         uuid.New(),
			DoctorID:   doctor.ID,
			DoctorName: doctor.Name,
			Date:       req.Date,
			Type:       req.Type,
			Session:    session,
			Reason:     strings.TrimSpace(req.Reason),
			Status:     model.LeaveStatusPending,
		}
		if err := s.leaves.Create(ctx, leave); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventLeaveSubmitted, event.DoctorRef(doctor.ID), leave)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("doctor", err)
		}
		return nil, fmt.Errorf("failed to submit leave: %w", err)
	}
	return leave, nil
}

func (s *Service) ListLeave(ctx context.Context) ([]*model.LeaveRequest, error) {
	leaves, err := s.leaves.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return leaves, nil
}

func (s *Service) ListDoctorLeave(ctx context.Context, doctorID uuid.UUID) ([]*model.LeaveRequest, error) {
	leaves, err := s.leaves.List(ctx, &doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return leaves, nil
}

// ApproveLeave marks the doctor on leave and cancels their waiting tokens for
// the leave date, all in one transaction.
func (s *Service) ApproveLeave(ctx context.Context, id uuid.UUID) (*model.LeaveDecision, error) {
	decision := &model.LeaveDecision{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		leave, err := s.pending(ctx, id)
		if err != nil {
			return err
		}

		if err := s.leaves.UpdateStatus(ctx, id, model.LeaveStatusApproved); err != nil {
			return err
		}
		leave.Status = model.LeaveStatusApproved

		if err := s.doctors.UpdateStatus(ctx, leave.DoctorID, model.DoctorStatusOnLeave); err != nil {
			return err
		}

		active, err := s.tokens.ListActiveForUpdate(ctx, leave.DoctorID, leave.Date)
		if err != nil {
			return err
		}
		for _, t := range active {
			if t.Status != model.TokenStatusWaiting {
				continue
			}
			cancelled, err := s.transitions.Transition(ctx, t, model.TokenStatusCancelled, ReasonDoctorOnLeave)
			if err != nil {
				return err
			}
			decision.CancelledTokens = append(decision.CancelledTokens, cancelled)
		}

		decision.Leave = leave
		return s.events.Emit(ctx, model.EventLeaveDecided, event.DoctorRef(leave.DoctorID), decision)
	})
	if err != nil {
		return nil, wrapErr(err, "failed to approve leave")
	}
	return decision, nil
}

func (s *Service) RejectLeave(ctx context.Context, id uuid.UUID) (*model.LeaveDecision, error) {
	decision := &model.LeaveDecision{}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		leave, err := s.pending(ctx, id)
		if err != nil {
			return err
		}
		if err := s.leaves.UpdateStatus(ctx, id, model.LeaveStatusRejected); err != nil {
			return err
		}
		leave.Status = model.LeaveStatusRejected
		decision.Leave = leave
		return s.events.Emit(ctx, model.EventLeaveDecided, event.DoctorRef(leave.DoctorID), decision)
	})
	if err != nil {
		return nil, wrapErr(err, "failed to reject leave")
	}
	return decision, nil
}

func (s *Service) PendingCount(ctx context.Context) (int, error) {
	n, err := s.leaves.CountPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending leave: %w", err)
	}
	return n, nil
}

func (s *Service) pending(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error) {
	leave, err := s.leaves.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if leave.Status != model.LeaveStatusPending {
		return nil, ErrAlreadyDecided
	}
	return leave, nil
}

func wrapErr(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("leave request", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
