package model

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

type TokenStatus string

const (
	TokenStatusWaiting   TokenStatus = "waiting"
	TokenStatusServing   TokenStatus = "serving"
	TokenStatusCompleted TokenStatus = "completed"
	TokenStatusCancelled TokenStatus = "cancelled"
)

var tokenTransitions = map[TokenStatus][]TokenStatus{
	TokenStatusWaiting: {TokenStatusServing, TokenStatusCancelled},
	TokenStatusServing: {TokenStatusCompleted, TokenStatusCancelled},
}

func (s TokenStatus) Valid() bool {
	switch s {
	case TokenStatusWaiting, TokenStatusServing, TokenStatusCompleted, TokenStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s TokenStatus) Terminal() bool {
	return s == TokenStatusCompleted || s == TokenStatusCancelled
}

// CanTransition reports whether a token may move from s to next.
func (s TokenStatus) CanTransition(next TokenStatus) bool {
	for _, allowed := range tokenTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FormatTokenNumber renders the n-th token of a day, e.g. T-007.
func FormatTokenNumber(n int) string {
	return fmt.Sprintf("T-%03d", n)
}

// NormalizePhone keeps only the digits of a phone number so that bookings
// entered with different punctuation compare equal.
func NormalizePhone(raw string) string {
	return strings.Map(func(r rune) rune {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, raw)
}

type Token struct {
	ID           uuid.UUID   `db:"id" json:"id"`
	TokenNumber  string      `db:"token_number" json:"token_number"`
	PatientName  string      `db:"patient_name" json:"patient_name"`
	PatientPhone string      `db:"patient_phone" json:"patient_phone"`
	PatientEmail string      `db:"patient_email" json:"patient_email,omitempty"`
	DoctorID     uuid.UUID   `db:"doctor_id" json:"doctor_id"`
	DoctorName   string      `db:"doctor_name" json:"doctor_name"`
	Department   string      `db:"department" json:"department"`
	TimeSlot     string      `db:"time_slot" json:"time_slot"`
	Date         string      `db:"date" json:"date"`
	Symptoms     string      `db:"symptoms" json:"symptoms,omitempty"`
	Status       TokenStatus `db:"status" json:"status"`
	CancelReason string      `db:"cancel_reason" json:"cancel_reason,omitempty"`
	BookedAt     time.Time   `db:"booked_at" json:"booked_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

type BookTokenRequest struct {
	PatientName  string    `json:"patient_name" binding:"required,max=120"`
	PatientPhone string    `json:"patient_phone" binding:"required,phone"`
	PatientEmail string    `json:"patient_email" binding:"omitempty,email"`
	DoctorID     uuid.UUID `json:"doctor_id" binding:"required"`
	TimeSlot     string    `json:"time_slot" binding:"required"`
	Symptoms     string    `json:"symptoms" binding:"max=1000"`
}

type BookingResult struct {
	Token       *Token `json:"token"`
	WhatsAppURL string `json:"whatsapp_url"`
}

type UpdateTokenStatusRequest struct {
	Status TokenStatus `json:"status" binding:"required,oneof=waiting serving completed cancelled"`
	Reason string      `json:"reason" binding:"max=255"`
}

type CancelTokenRequest struct {
	PatientPhone string `json:"patient_phone" binding:"required,phone"`
}

type TokenFilters struct {
	Date     string
	DoctorID uuid.UUID
	Phone    string
	Status   TokenStatus
}

type QueuePosition struct {
	TokenID          uuid.UUID   `json:"token_id"`
	TokenNumber      string      `json:"token_number"`
	Status           TokenStatus `json:"status"`
	Position         int         `json:"position"`
	Ahead            int         `json:"ahead"`
	NowServing       string      `json:"now_serving,omitempty"`
	EstimatedWaitMin int         `json:"estimated_wait_minutes"`
}
