package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/mediqueue/internal/email"
	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/pkg/metrics"
)

// SettingsLoader supplies the clinic name used in message signatures.
type SettingsLoader interface {
	Load(ctx context.Context) (*model.Settings, error)
}

type Service interface {
	// HandleEvent delivers the notifications a domain event calls for.
	// Events without patient-facing notifications are ignored.
	HandleEvent(ctx context.Context, evt *model.Event) error
	EmailConfirmation(ctx context.Context, token *model.Token, clinicName string) error
}

type service struct {
	emailSvc email.Service
	links    LinkBuilder
	settings SettingsLoader
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(emailSvc email.Service, links LinkBuilder, settings SettingsLoader, m *metrics.Metrics, logger zerolog.Logger) Service {
	return &service{
		emailSvc: emailSvc,
		links:    links,
		settings: settings,
		metrics:  m,
		logger:   logger.With().Str("component", "notification").Logger(),
	}
}

func (s *service) HandleEvent(ctx context.Context, evt *model.Event) error {
	switch evt.Type {
	case model.EventTokenBooked:
		var token model.Token
		if err := json.Unmarshal(evt.Data, &token); err != nil {
			return fmt.Errorf("failed to decode booked token: %w", err)
		}
		return s.onBooked(ctx, &token)
	case model.EventTokenCancelled:
		var data model.TokenCancelledData
		if err := json.Unmarshal(evt.Data, &data); err != nil {
			return fmt.Errorf("failed to decode cancelled token: %w", err)
		}
		if data.Token == nil {
			return nil
		}
		return s.onCancelled(ctx, data.Token, data.Reason)
	}
	return nil
}

func (s *service) onBooked(ctx context.Context, token *model.Token) error {
	clinic := s.clinicName(ctx)

	s.logger.Info().
		Str("token", token.TokenNumber).
		Str("whatsapp_url", s.links.Confirmation(token, clinic)).
		Msg("booking confirmation link ready")
	s.count(model.ChannelWhatsApp, nil)

	return s.EmailConfirmation(ctx, token, clinic)
}

func (s *service) onCancelled(ctx context.Context, token *model.Token, reason string) error {
	clinic := s.clinicName(ctx)

	s.logger.Info().
		Str("token", token.TokenNumber).
		Str("reason", reason).
		Str("whatsapp_url", s.links.Cancellation(token, reason, clinic)).
		Msg("cancellation link ready")
	s.count(model.ChannelWhatsApp, nil)

	if token.PatientEmail == "" || !s.emailSvc.Enabled() {
		return nil
	}
	subject := fmt.Sprintf("Token %s cancelled", token.TokenNumber)
	err := s.emailSvc.SendCustom(ctx, token.PatientEmail, token.PatientName, subject, CancellationText(token, reason, clinic))
	s.count(model.ChannelEmail, err)
	return err
}

// EmailConfirmation sends the booking email when the patient left an address
// and SMTP is configured.
func (s *service) EmailConfirmation(ctx context.Context, token *model.Token, clinicName string) error {
	if token.PatientEmail == "" {
		return nil
	}
	if !s.emailSvc.Enabled() {
		s.logger.Debug().Str("token", token.TokenNumber).Msg("email disabled, confirmation skipped")
		return nil
	}

	n := ConfirmationEmail(token, clinicName)
	err := s.emailSvc.SendCustom(ctx, n.Recipient, n.Name, n.Subject, n.Body)
	s.count(model.ChannelEmail, err)
	if err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

// ConfirmationEmail builds the booking confirmation message.
func ConfirmationEmail(token *model.Token, clinicName string) *model.Notification {
	return &model.Notification{
		Channel:   model.ChannelEmail,
		Recipient: token.PatientEmail,
		Name:      token.PatientName,
		Subject:   fmt.Sprintf("%s: token %s confirmed", clinicName, token.TokenNumber),
		Body: fmt.Sprintf(
			"Dear %s,\n\nYour token %s is confirmed with %s (%s) at %s on %s. Please arrive 10 minutes early.\n\n%s",
			token.PatientName, token.TokenNumber, token.DoctorName, token.Department, token.TimeSlot, token.Date, clinicName,
		),
	}
}

func (s *service) clinicName(ctx context.Context) string {
	if s.settings != nil {
		if st, err := s.settings.Load(ctx); err == nil {
			return st.ClinicName
		}
	}
	return model.DefaultSettings().ClinicName
}

func (s *service) count(channel model.NotificationChannel, err error) {
	if s.metrics == nil {
		return
	}
	if err != nil {
		s.metrics.NotificationsFailed.WithLabelValues(string(channel)).Inc()
		return
	}
	s.metrics.NotificationsSent.WithLabelValues(string(channel)).Inc()
}
