package token

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
	"github.com/jwalitptl/mediqueue/internal/service/clock"
	"github.com/jwalitptl/mediqueue/internal/service/event"
	"github.com/jwalitptl/mediqueue/internal/service/notification"
	apperrors "github.com/jwalitptl/mediqueue/pkg/errors"
	"github.com/jwalitptl/mediqueue/pkg/metrics"
)

const (
	ReasonPatient = "cancelled by patient"
	ReasonAdmin   = "cancelled by admin"
)

var (
	ErrDuplicateToken    = apperrors.Conflict("an active token already exists for this phone, doctor and date", nil)
	ErrDoctorUnavailable = apperrors.Conflict("doctor is not available for booking", nil)
	ErrDoctorFull        = apperrors.Conflict("doctor is fully booked for today", nil)
	ErrInvalidSlot       = apperrors.BadRequest("time slot is not offered by this doctor", nil)
	ErrNotCancellable    = apperrors.Conflict("only waiting tokens can be cancelled", nil)
	ErrAlreadyServing    = apperrors.Conflict("another token is already being served", nil)
	ErrPhoneMismatch     = &apperrors.AppError{Code: apperrors.ErrForbidden, Message: "phone number does not match this token"}
)

// SettingsLoader supplies clinic-wide booking defaults.
type SettingsLoader interface {
	Load(ctx context.Context) (*model.Settings, error)
}

type TokenServicer interface {
	BookToken(ctx context.Context, req *model.BookTokenRequest) (*model.BookingResult, error)
	CheckDuplicate(ctx context.Context, phone string, doctorID uuid.UUID, date string) (bool, error)
	NextTokenNumber(ctx context.Context, date string) (string, error)
	UpdateTokenStatus(ctx context.Context, id uuid.UUID, req *model.UpdateTokenStatusRequest) (*model.Token, error)
	CancelMyToken(ctx context.Context, id uuid.UUID, phone string) (*model.Token, error)
	GetToken(ctx context.Context, id uuid.UUID) (*model.Token, error)
	TodayTokens(ctx context.Context, status model.TokenStatus) ([]*model.Token, error)
	DoctorTokens(ctx context.Context, doctorID uuid.UUID) ([]*model.Token, error)
	PatientTokens(ctx context.Context, phone string) ([]*model.Token, error)
	QueuePosition(ctx context.Context, id uuid.UUID) (*model.QueuePosition, error)
}

// Transitioner applies a lifecycle move to a token that the caller already
// holds locked inside a transaction.
type Transitioner interface {
	Transition(ctx context.Context, token *model.Token, next model.TokenStatus, reason string) (*model.Token, error)
}

type Service struct {
	tx       repository.TxManager
	doctors  repository.DoctorRepository
	tokens   repository.TokenRepository
	events   event.Emitter
	settings SettingsLoader
	links    notification.LinkBuilder
	clock    clock.Clock
	metrics  *metrics.Metrics
}

func NewService(
	tx repository.TxManager,
	doctors repository.DoctorRepository,
	tokens repository.TokenRepository,
	events event.Emitter,
	settings SettingsLoader,
	links notification.LinkBuilder,
	clk clock.Clock,
	m *metrics.Metrics,
) *Service {
	return &Service{
		tx:       tx,
		doctors:  doctors,
		tokens:   tokens,
		events:   events,
		settings: settings,
		links:    links,
		clock:    clk,
		metrics:  m,
	}
}

func (s *Service) BookToken(ctx context.Context, req *model.BookTokenRequest) (*model.BookingResult, error) {
	phone := model.NormalizePhone(req.PatientPhone)
	if phone == "" {
		return nil, apperrors.BadRequest("a valid phone number is required", nil)
	}
	name := strings.TrimSpace(req.PatientName)
	if name == "" {
		return nil, apperrors.BadRequest("patient name is required", nil)
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	today := s.clock.Today()
	var token *model.Token

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// The doctor row lock serialises bookings per doctor, which keeps
		// the capacity and duplicate checks consistent.
		doctor, err := s.doctors.GetForUpdate(ctx, req.DoctorID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound("doctor", err)
			}
			return err
		}
		if doctor.Status != model.DoctorStatusActive {
			return ErrDoctorUnavailable
		}
		if !doctor.HasSlot(req.TimeSlot) {
			return ErrInvalidSlot
		}

		dup, err := s.tokens.HasActiveBooking(ctx, phone, doctor.ID, today)
		if err != nil {
			return err
		}
		if dup {
			return ErrDuplicateToken
		}

		booked, err := s.tokens.CountActive(ctx, doctor.ID, today)
		if err != nil {
			return err
		}
		if booked >= doctor.EffectiveCapacity(settings.DefaultCapacity) {
			return ErrDoctorFull
		}

		n, err := s.tokens.NextNumber(ctx, today)
		if err != nil {
			return err
		}

		now := s.clock.Now().UTC()
		token = &model.Token{
			ID:           uuid.New(),
			TokenNumber:  model.FormatTokenNumber(n),
			PatientName:  name,
			PatientPhone: phone,
			PatientEmail: strings.TrimSpace(req.PatientEmail),
			DoctorID:     doctor.ID,
			DoctorName:   doctor.Name,
			Department:   doctor.Department,
			TimeSlot:     strings.TrimSpace(req.TimeSlot),
			Date:         today,
			Symptoms:     strings.TrimSpace(req.Symptoms),
			Status:       model.TokenStatusWaiting,
			BookedAt:     now,
			UpdatedAt:    now,
		}
		if err := s.tokens.Create(ctx, token); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrDuplicateToken
			}
			return err
		}
		return s.events.Emit(ctx, model.EventTokenBooked, event.DoctorRef(doctor.ID), token)
	})
	if err != nil {
		s.rejected(err)
		return nil, fmt.Errorf("failed to book token: %w", err)
	}

	if s.metrics != nil {
		s.metrics.TokensBooked.WithLabelValues(token.Department).Inc()
	}

	return &model.BookingResult{
		Token:       token,
		WhatsAppURL: s.links.Confirmation(token, settings.ClinicName),
	}, nil
}

func (s *Service) rejected(err error) {
	if s.metrics == nil {
		return
	}
	reason := "error"
	switch {
	case errors.Is(err, ErrDuplicateToken):
		reason = "duplicate"
	case errors.Is(err, ErrDoctorFull):
		reason = "capacity"
	case errors.Is(err, ErrDoctorUnavailable):
		reason = "unavailable"
	case errors.Is(err, ErrInvalidSlot):
		reason = "slot"
	}
	s.metrics.BookingsRejected.WithLabelValues(reason).Inc()
}

func (s *Service) CheckDuplicate(ctx context.Context, phone string, doctorID uuid.UUID, date string) (bool, error) {
	if date == "" {
		date = s.clock.Today()
	}
	dup, err := s.tokens.HasActiveBooking(ctx, model.NormalizePhone(phone), doctorID, date)
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate: %w", err)
	}
	return dup, nil
}

// NextTokenNumber allocates the next number for date. Booking allocates
// numbers itself, inside its own transaction.
func (s *Service) NextTokenNumber(ctx context.Context, date string) (string, error) {
	n, err := s.tokens.NextNumber(ctx, date)
	if err != nil {
		return "", fmt.Errorf("failed to allocate token number: %w", err)
	}
	return model.FormatTokenNumber(n), nil
}

// Transition validates next against the lifecycle table, stores it and emits
// the matching event. Cancellation events carry the patient's WhatsApp link.
func (s *Service) Transition(ctx context.Context, token *model.Token, next model.TokenStatus, reason string) (*model.Token, error) {
	if !token.Status.CanTransition(next) {
		return nil, apperrors.BadRequest(fmt.Sprintf("cannot move token %s from %s to %s", token.TokenNumber, token.Status, next), nil)
	}
	if next != model.TokenStatusCancelled {
		reason = ""
	}

	updated, err := s.tokens.UpdateStatus(ctx, token.ID, next, reason)
	if err != nil {
		return nil, err
	}

	if next == model.TokenStatusCancelled {
		data := model.TokenCancelledData{Token: updated, Reason: reason}
		if st, err := s.settings.Load(ctx); err == nil {
			data.WhatsAppURL = s.links.Cancellation(updated, reason, st.ClinicName)
		}
		err = s.events.Emit(ctx, model.EventTokenCancelled, event.DoctorRef(updated.DoctorID), data)
	} else {
		err = s.events.Emit(ctx, model.EventTokenStatus, event.DoctorRef(updated.DoctorID), updated)
	}
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TokenTransitions.WithLabelValues(string(next)).Inc()
	}
	return updated, nil
}

func (s *Service) UpdateTokenStatus(ctx context.Context, id uuid.UUID, req *model.UpdateTokenStatusRequest) (*model.Token, error) {
	if !req.Status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid token status %q", req.Status), nil)
	}

	var updated *model.Token
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var (
			token *model.Token
			err   error
		)
		if req.Status == model.TokenStatusServing {
			token, err = s.lockForServing(ctx, id)
		} else {
			token, err = s.tokens.GetForUpdate(ctx, id)
		}
		if err != nil {
			return err
		}

		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			reason = ReasonAdmin
		}
		updated, err = s.Transition(ctx, token, req.Status, reason)
		return err
	})
	if err != nil {
		return nil, wrapNotFound(err, "failed to update token status")
	}
	return updated, nil
}

// lockForServing locks the doctor's whole queue before the target row, the
// same order the queue operations use, so the two never wait on each other.
func (s *Service) lockForServing(ctx context.Context, id uuid.UUID) (*model.Token, error) {
	peek, err := s.tokens.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	active, err := s.tokens.ListActiveForUpdate(ctx, peek.DoctorID, peek.Date)
	if err != nil {
		return nil, err
	}

	var target *model.Token
	for _, t := range active {
		if t.ID == id {
			target = t
			continue
		}
		if t.Status == model.TokenStatusServing {
			return nil, ErrAlreadyServing
		}
	}
	if target != nil {
		return target, nil
	}

	// Not waiting or serving; the transition check rejects it.
	return s.tokens.GetForUpdate(ctx, id)
}

// CancelMyToken lets a patient drop a waiting token booked with their phone.
func (s *Service) CancelMyToken(ctx context.Context, id uuid.UUID, phone string) (*model.Token, error) {
	phone = model.NormalizePhone(phone)

	var updated *model.Token
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		token, err := s.tokens.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if phone == "" || token.PatientPhone != phone {
			return ErrPhoneMismatch
		}
		if token.Status != model.TokenStatusWaiting {
			return ErrNotCancellable
		}
		updated, err = s.Transition(ctx, token, model.TokenStatusCancelled, ReasonPatient)
		return err
	})
	if err != nil {
		return nil, wrapNotFound(err, "failed to cancel token")
	}
	return updated, nil
}

func (s *Service) GetToken(ctx context.Context, id uuid.UUID) (*model.Token, error) {
	token, err := s.tokens.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "failed to get token")
	}
	return token, nil
}

// TodayTokens lists today's tokens, newest booking first.
func (s *Service) TodayTokens(ctx context.Context, status model.TokenStatus) ([]*model.Token, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid token status %q", status), nil)
	}
	tokens, err := s.tokens.List(ctx, &model.TokenFilters{Date: s.clock.Today(), Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	return newestFirst(tokens), nil
}

// DoctorTokens lists a doctor's tokens for today in queue order.
func (s *Service) DoctorTokens(ctx context.Context, doctorID uuid.UUID) ([]*model.Token, error) {
	tokens, err := s.tokens.List(ctx, &model.TokenFilters{Date: s.clock.Today(), DoctorID: doctorID})
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor tokens: %w", err)
	}
	return tokens, nil
}

// PatientTokens lists every token booked with phone, newest first.
func (s *Service) PatientTokens(ctx context.Context, phone string) ([]*model.Token, error) {
	phone = model.NormalizePhone(phone)
	if phone == "" {
		return nil, apperrors.BadRequest("phone is required", nil)
	}
	tokens, err := s.tokens.List(ctx, &model.TokenFilters{Phone: phone})
	if err != nil {
		return nil, fmt.Errorf("failed to list patient tokens: %w", err)
	}
	return newestFirst(tokens), nil
}

func (s *Service) QueuePosition(ctx context.Context, id uuid.UUID) (*model.QueuePosition, error) {
	token, err := s.tokens.Get(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "failed to get token")
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	queue, err := s.tokens.List(ctx, &model.TokenFilters{Date: token.Date, DoctorID: token.DoctorID})
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	pos := &model.QueuePosition{
		TokenID:     token.ID,
		TokenNumber: token.TokenNumber,
		Status:      token.Status,
	}

	ahead := 0
	for _, t := range queue {
		switch t.Status {
		case model.TokenStatusServing:
			pos.NowServing = t.TokenNumber
		case model.TokenStatusWaiting:
			if t.ID == token.ID {
				pos.Position = ahead + 1
				pos.Ahead = ahead
			}
			ahead++
		}
	}

	if token.Status == model.TokenStatusWaiting {
		pos.EstimatedWaitMin = pos.Ahead * settings.AvgConsultation
	}
	return pos, nil
}

func newestFirst(tokens []*model.Token) []*model.Token {
	out := make([]*model.Token, len(tokens))
	for i, t := range tokens {
		out[len(tokens)-1-i] = t
	}
	return out
}

func wrapNotFound(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("token", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
