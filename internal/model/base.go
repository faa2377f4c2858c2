package model

import (
	"time"
)

// DateLayout is the wire and storage format of booking and leave dates.
const DateLayout = "2006-01-02"

// DateOf formats t as a booking date in loc.
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}
