package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
	"github.com/jwalitptl/mediqueue/internal/service/clock"
	"github.com/jwalitptl/mediqueue/internal/service/token"
	apperrors "github.com/jwalitptl/mediqueue/pkg/errors"
)

const ReasonSkipped = "skipped by doctor"

var (
	ErrQueueEmpty   = apperrors.Conflict("no patients waiting in queue", nil)
	ErrNoneServing  = apperrors.Conflict("no patient is being served", nil)
	ErrNotInQueue   = apperrors.BadRequest("token is not waiting in this doctor's queue", nil)
	errTokenMissing = errors.New("token not in queue")
)

type QueueServicer interface {
	Snapshot(ctx context.Context, doctorID uuid.UUID) (*model.QueueSnapshot, error)
	CallNext(ctx context.Context, doctorID uuid.UUID) (*model.Token, error)
	CompleteCurrent(ctx context.Context, doctorID uuid.UUID) (*model.Token, error)
	Skip(ctx context.Context, doctorID, tokenID uuid.UUID) (*model.Token, error)
}

type Service struct {
	tx          repository.TxManager
	tokens      repository.TokenRepository
	transitions token.Transitioner
	clock       clock.Clock
}

func NewService(tx repository.TxManager, tokens repository.TokenRepository, transitions token.Transitioner, clk clock.Clock) *Service {
	return &Service{
		tx:          tx,
		tokens:      tokens,
		transitions: transitions,
		clock:       clk,
	}
}

// Snapshot splits the doctor's tokens for today by status. Waiting tokens
// keep booking order, which is queue order.
func (s *Service) Snapshot(ctx context.Context, doctorID uuid.UUID) (*model.QueueSnapshot, error) {
	today := s.clock.Today()
	tokens, err := s.tokens.List(ctx, &model.TokenFilters{Date: today, DoctorID: doctorID})
	if err != nil {
		return nil, fmt.Errorf("failed to load queue: %w", err)
	}

	snap := &model.QueueSnapshot{
		DoctorID:  doctorID.String(),
		Date:      today,
		Waiting:   []*model.Token{},
		Completed: []*model.Token{},
		Cancelled: []*model.Token{},
	}
	for _, t := range tokens {
		switch t.Status {
		case model.TokenStatusServing:
			snap.Serving = t
			snap.Stats.NowServing = t.TokenNumber
		case model.TokenStatusWaiting:
			snap.Waiting = append(snap.Waiting, t)
		case model.TokenStatusCompleted:
			snap.Completed = append(snap.Completed, t)
		case model.TokenStatusCancelled:
			snap.Cancelled = append(snap.Cancelled, t)
		}
	}
	snap.Stats.Waiting = len(snap.Waiting)
	snap.Stats.Completed = len(snap.Completed)
	snap.Stats.Total = len(tokens)
	return snap, nil
}

// CallNext completes whoever is being served and calls the first waiting
// token. With nobody waiting nothing changes.
func (s *Service) CallNext(ctx context.Context, doctorID uuid.UUID) (*model.Token, error) {
	var next *model.Token
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		serving, waiting, err := s.lockQueue(ctx, doctorID)
		if err != nil {
			return err
		}
		if len(waiting) == 0 {
			return ErrQueueEmpty
		}

		if serving != nil {
			if _, err := s.transitions.Transition(ctx, serving, model.TokenStatusCompleted, ""); err != nil {
				return err
			}
		}

		next, err = s.transitions.Transition(ctx, waiting[0], model.TokenStatusServing, "")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call next token: %w", err)
	}
	return next, nil
}

func (s *Service) CompleteCurrent(ctx context.Context, doctorID uuid.UUID) (*model.Token, error) {
	var done *model.Token
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		serving, _, err := s.lockQueue(ctx, doctorID)
		if err != nil {
			return err
		}
		if serving == nil {
			return ErrNoneServing
		}
		done, err = s.transitions.Transition(ctx, serving, model.TokenStatusCompleted, "")
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to complete token: %w", err)
	}
	return done, nil
}

// Skip cancels a waiting token from the doctor's queue.
func (s *Service) Skip(ctx context.Context, doctorID, tokenID uuid.UUID) (*model.Token, error) {
	var skipped *model.Token
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, waiting, err := s.lockQueue(ctx, doctorID)
		if err != nil {
			return err
		}

		target, err := find(waiting, tokenID)
		if err != nil {
			return ErrNotInQueue
		}
		skipped, err = s.transitions.Transition(ctx, target, model.TokenStatusCancelled, ReasonSkipped)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to skip token: %w", err)
	}
	return skipped, nil
}

func (s *Service) lockQueue(ctx context.Context, doctorID uuid.UUID) (*model.Token, []*model.Token, error) {
	active, err := s.tokens.ListActiveForUpdate(ctx, doctorID, s.clock.Today())
	if err != nil {
		return nil, nil, err
	}

	var (
		serving *model.Token
		waiting []*model.Token
	)
	for _, t := range active {
		switch t.Status {
		case model.TokenStatusServing:
			serving = t
		case model.TokenStatusWaiting:
			waiting = append(waiting, t)
		}
	}
	return serving, waiting, nil
}

func find(tokens []*model.Token, id uuid.UUID) (*model.Token, error) {
	for _, t := range tokens {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, errTokenMissing
}
