package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DoctorStatus string

const (
	DoctorStatusActive  DoctorStatus = "active"
	DoctorStatusOnLeave DoctorStatus = "on-leave"
)

func (s DoctorStatus) Valid() bool {
	return s == DoctorStatusActive || s == DoctorStatusOnLeave
}

type Doctor struct {
	ID         uuid.UUID    `db:"id" json:"id"`
	Name       string       `db:"name" json:"name"`
	Department string       `db:"department" json:"department"`
	Room       string       `db:"room" json:"room"`
	Capacity   int          `db:"capacity" json:"capacity"`
	Slots      Slots        `db:"slots" json:"slots"`
	Email      string       `db:"email" json:"email,omitempty"`
	Status     DoctorStatus `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// HasSlot reports whether slot is one of the doctor's configured slots.
func (d *Doctor) HasSlot(slot string) bool {
	slot = strings.TrimSpace(slot)
	for _, s := range d.Slots {
		if s == slot {
			return true
		}
	}
	return false
}

// EffectiveCapacity falls back to the clinic default when the doctor has none.
func (d *Doctor) EffectiveCapacity(defaultCapacity int) int {
	if d.Capacity > 0 {
		return d.Capacity
	}
	return defaultCapacity
}

// Slots is stored as a JSONB array.
type Slots []string

// NormalizeSlots trims every entry and drops empty ones.
func NormalizeSlots(raw []string) Slots {
	out := make(Slots, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s Slots) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

func (s *Slots) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = Slots{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported slots type %T", src)
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode slots: %w", err)
	}
	*s = out
	return nil
}

type CreateDoctorRequest struct {
	Name       string   `json:"name" binding:"required,max=120"`
	Department string   `json:"department" binding:"required,max=80"`
	Room       string   `json:"room" binding:"max=20"`
	Capacity   int      `json:"capacity" binding:"gte=0,lte=500"`
	Slots      []string `json:"slots"`
	Email      string   `json:"email" binding:"omitempty,email"`
}

type UpdateDoctorRequest struct {
	Name       string       `json:"name" binding:"required,max=120"`
	Department string       `json:"department" binding:"required,max=80"`
	Room       string       `json:"room" binding:"max=20"`
	Capacity   int          `json:"capacity" binding:"gte=0,lte=500"`
	Slots      []string     `json:"slots"`
	Email      string       `json:"email" binding:"omitempty,email"`
	Status     DoctorStatus `json:"status" binding:"omitempty,oneof=active on-leave"`
}
