package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/mediqueue/internal/config"
	"github.com/jwalitptl/mediqueue/pkg/circuitbreaker"
)

type Service interface {
	SendCustom(ctx context.Context, to, name, subject, content string) error
	Enabled() bool
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	from    string
	dialer  dialer
	breaker *circuitbreaker.CircuitBreaker
}

// NewService returns an SMTP sender, or a no-op sender when no host is configured.
func NewService(cfg config.SMTPConfig, logger zerolog.Logger) Service {
	if cfg.Host == "" {
		return &noopService{logger: logger}
	}
	return &smtpService{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "smtp",
			MaxFailures: cfg.BreakerMaxFailures,
			Timeout:     cfg.BreakerTimeout,
		}, logger),
	}
}

func (s *smtpService) SendCustom(ctx context.Context, to, name, subject, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetAddressHeader("To", to, name)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.breaker.Execute(func() error { return s.dialer.DialAndSend(m) }); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

func (s *smtpService) Enabled() bool { return true }

type noopService struct {
	logger zerolog.Logger
}

func (s *noopService) SendCustom(_ context.Context, to, _, subject, _ string) error {
	s.logger.Info().Str("to", to).Str("subject", subject).Msg("smtp not configured, email skipped")
	return nil
}

func (s *noopService) Enabled() bool { return false }
