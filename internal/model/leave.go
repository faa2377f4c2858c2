package model

import (
	"time"

	"github.com/google/uuid"
)

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

type LeaveType string

const (
	LeaveTypePlanned   LeaveType = "planned"
	LeaveTypeEmergency LeaveType = "emergency"
)

const (
	SessionFullDay   = "Full Day"
	SessionMorning   = "Morning"
	SessionAfternoon = "Afternoon"
)

type LeaveRequest struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	DoctorID   uuid.UUID   `db:"doctor_id" json:"doctor_id"`
	DoctorName string      `db:"doctor_name" json:"doctor_name"`
	Date       string      `db:"date" json:"date"`
	Type       LeaveType   `db:"type" json:"type"`
	Session    string      `db:"session" json:"session"`
	Reason     string      `db:"reason" json:"reason"`
	Status     LeaveStatus `db:"status" json:"status"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

type SubmitLeaveRequest struct {
	Date    string    `json:"date" binding:"required,datetime=2006-01-02"`
	Type    LeaveType `json:"type" binding:"required,oneof=planned emergency"`
	Session string    `json:"session" binding:"omitempty,oneof='Full Day' Morning Afternoon"`
	Reason  string    `json:"reason" binding:"max=500"`
}

// LeaveDecision is returned by approval so callers can see the side effects.
type LeaveDecision struct {
	Leave           *LeaveRequest `json:"leave"`
	CancelledTokens []*Token      `json:"cancelled_tokens,omitempty"`
}
