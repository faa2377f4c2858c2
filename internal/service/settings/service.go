package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
	"github.com/jwalitptl/mediqueue/internal/service/event"
	apperrors "github.com/jwalitptl/mediqueue/pkg/errors"
)

const cacheKey = "settings"

type SettingsServicer interface {
	Load(ctx context.Context) (*model.Settings, error)
	Save(ctx context.Context, in *model.Settings) (*model.Settings, error)
}

type Service struct {
	repo   repository.SettingsRepository
	tx     repository.TxManager
	events event.Emitter
	cache  *cache.Cache
}

func NewService(repo repository.SettingsRepository, tx repository.TxManager, events event.Emitter, ttl time.Duration) *Service {
	return &Service{
		repo:   repo,
		tx:     tx,
		events: events,
		cache:  cache.New(ttl, 2*ttl),
	}
}

// Load returns the saved settings, or the defaults when none were saved.
func (s *Service) Load(ctx context.Context) (*model.Settings, error) {
	if v, ok := s.cache.Get(cacheKey); ok {
		cached := v.(model.Settings)
		return &cached, nil
	}

	stored, err := s.repo.Get(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		defaults := model.DefaultSettings()
		stored = &defaults
	case err != nil:
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	s.cache.SetDefault(cacheKey, *stored)
	return stored, nil
}

func (s *Service) Save(ctx context.Context, in *model.Settings) (*model.Settings, error) {
	in.ClinicName = strings.TrimSpace(in.ClinicName)
	if in.ClinicName == "" {
		return nil, apperrors.BadRequest("clinic name is required", nil)
	}
	if in.AvgConsultation <= 0 || in.AutoCancel <= 0 || in.DefaultCapacity <= 0 {
		return nil, apperrors.BadRequest("settings values must be positive", nil)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Save(ctx, in); err != nil {
			return err
		}
		return s.events.Emit(ctx, model.EventSettingsUpdated, nil, in)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.Invalidate()
	return in, nil
}

// Invalidate drops the cached settings so the next Load reads the database.
// Other processes call it when they see a settings.updated event.
func (s *Service) Invalidate() {
	s.cache.Delete(cacheKey)
}
