package clock

import (
	"time"

	"github.com/jwalitptl/mediqueue/internal/model"
)

// Clock decides what "now" and "today" mean for the clinic.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func New(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{loc: loc, now: time.Now}
}

// Fixed always reports t. Used by tests.
func Fixed(t time.Time) Clock {
	return Clock{loc: t.Location(), now: func() time.Time { return t }}
}

func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now().In(c.Location())
}

func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// Today is the clinic-local booking date.
func (c Clock) Today() string {
	return model.DateOf(c.Now(), c.Location())
}
