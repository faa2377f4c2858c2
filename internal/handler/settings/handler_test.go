package settings

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/mediqueue/internal/handler/handlertest"
	"github.com/jwalitptl/mediqueue/internal/model"
)

type mockSettingsService struct {
	mock.Mock
}

func (m *mockSettingsService) Load(ctx context.Context) (*model.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(*model.Settings), args.Error(1)
}

func (m *mockSettingsService) Save(ctx context.Context, in *model.Settings) (*model.Settings, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(*model.Settings), args.Error(1)
}

func TestGetSettings(t *testing.T) {
	svc := new(mockSettingsService)
	engine := handlertest.NewEngine(t, NewHandler(svc))

	defaults := model.DefaultSettings()
	svc.On("Load", mock.Anything).Return(&defaults, nil)

	w := handlertest.Do(engine, http.MethodGet, "/api/v1/settings", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got model.Settings
	handlertest.Decode(t, w, &got)
	assert.Equal(t, "City Hospital OPD", got.ClinicName)
	assert.Equal(t, 12, got.AvgConsultation)
}

func TestSaveSettings(t *testing.T) {
	svc := new(mockSettingsService)
	engine := handlertest.NewEngine(t, NewHandler(svc))

	saved := &model.Settings{ClinicName: "Sunrise Clinic", AvgConsultation: 10, AutoCancel: 20, DefaultCapacity: 30}
	svc.On("Save", mock.Anything, mock.MatchedBy(func(s *model.Settings) bool {
		return s.ClinicName == "Sunrise Clinic" && s.DefaultCapacity == 30
	})).Return(saved, nil)

	w := handlertest.Do(engine, http.MethodPut, "/api/v1/settings", map[string]interface{}{
		"clinic_name": "Sunrise Clinic", "avg_consultation": 10, "auto_cancel": 20, "default_capacity": 30,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = handlertest.Do(engine, http.MethodPut, "/api/v1/settings", map[string]interface{}{
		"clinic_name": "Sunrise Clinic", "avg_consultation": 0, "auto_cancel": 20, "default_capacity": 30,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNumberOfCalls(t, "Save", 1)
}
