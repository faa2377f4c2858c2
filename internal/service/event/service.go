package event

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
)

// Emitter records domain events. Callers inside a transaction get the event
// written atomically with their change.
type Emitter interface {
	Emit(ctx context.Context, eventType string, doctorID *uuid.UUID, data interface{}) error
}

type EventService struct {
	outboxRepo repository.OutboxRepository
}

func NewEventService(outboxRepo repository.OutboxRepository) *EventService {
	return &EventService{outboxRepo: outboxRepo}
}

func (s *EventService) Emit(ctx context.Context, eventType string, doctorID *uuid.UUID, data interface{}) error {
	evt, err := model.NewEvent(eventType, doctorID, data)
	if err != nil {
		return err
	}

	row, err := evt.Outbox()
	if err != nil {
		return err
	}

	if err := s.outboxRepo.Create(ctx, row); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// DoctorRef is a convenience for events scoped to one doctor.
func DoctorRef(id uuid.UUID) *uuid.UUID {
	return &id
}
