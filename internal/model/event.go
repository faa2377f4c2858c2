package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventsChannel is the pub/sub channel every domain event is published on.
const EventsChannel = "mediqueue.events"

const (
	EventDoctorCreated   = "doctor.created"
	EventDoctorUpdated   = "doctor.updated"
	EventDoctorDeleted   = "doctor.deleted"
	EventTokenBooked     = "token.booked"
	EventTokenStatus     = "token.status_changed"
	EventTokenCancelled  = "token.cancelled"
	EventLeaveSubmitted  = "leave.submitted"
	EventLeaveDecided    = "leave.decided"
	EventSettingsUpdated = "settings.updated"
)

// Event is the envelope published to subscribers.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	DoctorID   *uuid.UUID      `json:"doctor_id,omitempty"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewEvent marshals data into an event envelope.
func NewEvent(eventType string, doctorID *uuid.UUID, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		DoctorID:   doctorID,
		Data:       raw,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// Outbox converts the event into a pending outbox row.
func (e *Event) Outbox() (*OutboxEvent, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return &OutboxEvent{
		ID:        e.ID,
		EventType: e.Type,
		Payload:   payload,
		Status:    OutboxStatusPending,
		CreatedAt: e.OccurredAt,
	}, nil
}

// TokenCancelledData is the payload of token.cancelled events.
type TokenCancelledData struct {
	Token       *Token `json:"token"`
	Reason      string `json:"reason"`
	WhatsAppURL string `json:"whatsapp_url,omitempty"`
}
