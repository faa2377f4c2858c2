package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/mediqueue/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// All repository interfaces in one file
type (
	// TxManager runs fn in a transaction carried by the context it passes in.
	// Repository calls made with that context join the transaction.
	TxManager interface {
		WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		// GetForUpdate locks the doctor row until the surrounding transaction ends.
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.DoctorStatus) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Doctor, error)
		ListByDepartment(ctx context.Context, department string, status model.DoctorStatus) ([]*model.Doctor, error)
	}

	TokenRepository interface {
		Create(ctx context.Context, token *model.Token) error
		Get(ctx context.Context, id uuid.UUID) (*model.Token, error)
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Token, error)
		// List returns matching tokens in booking order.
		List(ctx context.Context, filters *model.TokenFilters) ([]*model.Token, error)
		// ListActiveForUpdate locks and returns a doctor's waiting and serving
		// tokens for a day in booking order.
		ListActiveForUpdate(ctx context.Context, doctorID uuid.UUID, date string) ([]*model.Token, error)
		// ListWaitingUpTo returns waiting tokens dated on or before date.
		ListWaitingUpTo(ctx context.Context, date string) ([]*model.Token, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.TokenStatus, reason string) (*model.Token, error)
		NextNumber(ctx context.Context, date string) (int, error)
		CountActive(ctx context.Context, doctorID uuid.UUID, date string) (int, error)
		HasActiveBooking(ctx context.Context, phone string, doctorID uuid.UUID, date string) (bool, error)
	}

	LeaveRepository interface {
		Create(ctx context.Context, leave *model.LeaveRequest) error
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error)
		// List returns newest first; a nil doctorID lists every request.
		List(ctx context.Context, doctorID *uuid.UUID) ([]*model.LeaveRequest, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.LeaveStatus) error
		CountPending(ctx context.Context) (int, error)
	}

	SettingsRepository interface {
		Get(ctx context.Context) (*model.Settings, error)
		Save(ctx context.Context, settings *model.Settings) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// GetPendingWithLock must run inside a transaction.
		GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, final bool) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
