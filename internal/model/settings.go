package model

import "time"

type Settings struct {
	ClinicName      string    `db:"clinic_name" json:"clinic_name" binding:"required,max=120"`
	AvgConsultation int       `db:"avg_consultation" json:"avg_consultation" binding:"required,gte=1,lte=240"`
	AutoCancel      int       `db:"auto_cancel" json:"auto_cancel" binding:"required,gte=1,lte=1440"`
	DefaultCapacity int       `db:"default_capacity" json:"default_capacity" binding:"required,gte=1,lte=500"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultSettings is served until an admin saves a record.
func DefaultSettings() Settings {
	return Settings{
		ClinicName:      "City Hospital OPD",
		AvgConsultation: 12,
		AutoCancel:      15,
		DefaultCapacity: 15,
	}
}
