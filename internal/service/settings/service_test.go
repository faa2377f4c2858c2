package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
	"github.com/jwalitptl/mediqueue/internal/repository/mocks"
	"github.com/jwalitptl/mediqueue/internal/service/event"
	apperrors "github.com/jwalitptl/mediqueue/pkg/errors"
)

func newService() (*Service, *mocks.MockSettingsRepository, *mocks.MockOutboxRepository) {
	repo := new(mocks.MockSettingsRepository)
	outbox := new(mocks.MockOutboxRepository)
	svc := NewService(repo, &mocks.TxManager{}, event.NewEventService(outbox), time.Minute)
	return svc, repo, outbox
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	svc, repo, _ := newService()
	repo.On("Get", mock.Anything).Return(nil, repository.ErrNotFound).Once()

	s, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "City Hospital OPD", s.ClinicName)
	assert.Equal(t, 12, s.AvgConsultation)
	assert.Equal(t, 15, s.AutoCancel)
	assert.Equal(t, 15, s.DefaultCapacity)

	// second call is served from cache
	_, err = svc.Load(context.Background())
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestSave_InvalidatesCache(t *testing.T) {
	svc, repo, outbox := newService()
	repo.On("Get", mock.Anything).Return(&model.Settings{ClinicName: "Old", AvgConsultation: 10, AutoCancel: 10, DefaultCapacity: 10}, nil).Once()
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	outbox.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Load(context.Background())
	require.NoError(t, err)

	updated := &model.Settings{ClinicName: " Sunrise Clinic ", AvgConsultation: 8, AutoCancel: 20, DefaultCapacity: 30}
	saved, err := svc.Save(context.Background(), updated)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Clinic", saved.ClinicName)

	repo.On("Get", mock.Anything).Return(saved, nil).Once()
	s, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, s.AvgConsultation)
	repo.AssertNumberOfCalls(t, "Get", 2)
	outbox.AssertNumberOfCalls(t, "Create", 1)
}

func TestInvalidate_ReloadsFromRepository(t *testing.T) {
	svc, repo, _ := newService()
	repo.On("Get", mock.Anything).Return(&model.Settings{ClinicName: "Old", AvgConsultation: 10, AutoCancel: 10, DefaultCapacity: 10}, nil).Once()
	repo.On("Get", mock.Anything).Return(&model.Settings{ClinicName: "New", AvgConsultation: 10, AutoCancel: 25, DefaultCapacity: 10}, nil).Once()

	s, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, s.AutoCancel)

	svc.Invalidate()

	s, err = svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "New", s.ClinicName)
	assert.Equal(t, 25, s.AutoCancel)
	repo.AssertNumberOfCalls(t, "Get", 2)
}

func TestSave_RejectsNonPositive(t *testing.T) {
	svc, _, _ := newService()

	_, err := svc.Save(context.Background(), &model.Settings{ClinicName: "X", AvgConsultation: 0, AutoCancel: 5, DefaultCapacity: 5})

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}
