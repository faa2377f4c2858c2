package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
	"github.com/jwalitptl/mediqueue/internal/service/clock"
	"github.com/jwalitptl/mediqueue/internal/service/token"
	"github.com/jwalitptl/mediqueue/pkg/logger"
)

const (
	ReasonExpired = "expired"
	ReasonNoShow  = "no show"
)

var slotLayouts = []string{"15:04", "3:04 PM", "3:04PM"}

// SettingsLoader supplies the auto-cancel grace period.
type SettingsLoader interface {
	Load(ctx context.Context) (*model.Settings, error)
}

// AutoCanceller cancels waiting tokens that can no longer be served: any
// left over from previous days, and today's once the grace period has run
// out. The grace counts from the slot start, or from booking when the token
// was booked after its slot began.
type AutoCanceller struct {
	tx          repository.TxManager
	tokens      repository.TokenRepository
	transitions token.Transitioner
	settings    SettingsLoader
	clock       clock.Clock
	interval    time.Duration
	logger      *logger.Logger
}

func NewAutoCanceller(
	tx repository.TxManager,
	tokens repository.TokenRepository,
	transitions token.Transitioner,
	settings SettingsLoader,
	clk clock.Clock,
	interval time.Duration,
	logger *logger.Logger,
) *AutoCanceller {
	return &AutoCanceller{
		tx:          tx,
		tokens:      tokens,
		transitions: transitions,
		settings:    settings,
		clock:       clk,
		interval:    interval,
		logger:      logger,
	}
}

func (a *AutoCanceller) Start(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("Starting auto-cancel sweep", "interval", a.interval.String())

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Shutting down auto-cancel sweep")
			return
		case <-ticker.C:
			if _, err := a.Sweep(ctx); err != nil {
				a.logger.Error(err, "Auto-cancel sweep failed")
			}
		}
	}
}

// Sweep cancels overdue tokens and returns how many it cancelled.
func (a *AutoCanceller) Sweep(ctx context.Context) (int, error) {
	settings, err := a.settings.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load settings: %w", err)
	}
	grace := time.Duration(settings.AutoCancel) * time.Minute

	now := a.clock.Now()
	today := a.clock.Today()

	waiting, err := a.tokens.ListWaitingUpTo(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list waiting tokens: %w", err)
	}

	cancelled := 0
	for _, t := range waiting {
		reason, due := a.overdue(t, today, now, grace)
		if !due {
			continue
		}

		ok, err := a.cancel(ctx, t, reason)
		if err != nil {
			a.logger.Error(err, "Failed to auto-cancel token",
				"token_id", t.ID.String(),
				"token_number", t.TokenNumber)
			continue
		}
		if ok {
			cancelled++
		}
	}

	if cancelled > 0 {
		a.logger.Info("Auto-cancelled tokens", "count", cancelled)
	}
	return cancelled, nil
}

func (a *AutoCanceller) overdue(t *model.Token, today string, now time.Time, grace time.Duration) (string, bool) {
	if t.Date < today {
		return ReasonExpired, true
	}

	start, ok := SlotStart(t.TimeSlot, t.Date, a.clock.Location())
	if !ok {
		return "", false
	}
	// A walk-in booked after its slot started gets the full grace from booking.
	if t.BookedAt.After(start) {
		start = t.BookedAt
	}
	return ReasonNoShow, now.Sub(start) > grace
}

// cancel re-reads the token under lock so a token called meanwhile is left
// alone. It reports whether the token was cancelled.
func (a *AutoCanceller) cancel(ctx context.Context, t *model.Token, reason string) (bool, error) {
	done := false
	err := a.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := a.tokens.GetForUpdate(ctx, t.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		if current.Status != model.TokenStatusWaiting {
			return nil
		}

		if _, err := a.transitions.Transition(ctx, current, model.TokenStatusCancelled, reason); err != nil {
			return err
		}
		done = true
		return nil
	})
	return done, err
}

// SlotStart parses the start of a slot label such as "09:30", "9:30 AM",
// "09:30AM" or "09:00 AM - 09:30 AM" on date in loc.
func SlotStart(slot, date string, loc *time.Location) (time.Time, bool) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, false
	}

	label := slot
	if i := strings.IndexAny(label, "-–"); i >= 0 {
		label = label[:i]
	}
	label = strings.ToUpper(strings.TrimSpace(label))

	for _, layout := range slotLayouts {
		if t, err := time.Parse(layout, label); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
		}
	}
	return time.Time{}, false
}
