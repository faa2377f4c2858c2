package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/mediqueue/internal/handler/handlertest"
	"github.com/jwalitptl/mediqueue/internal/model"
)

type mockDashboardService struct {
	mock.Mock
}

func (m *mockDashboardService) Overview(ctx context.Context) (*model.Overview, error) {
	args := m.Called(ctx)
	if o := args.Get(0); o != nil {
		return o.(*model.Overview), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDashboardService) Departments(ctx context.Context) ([]*model.DepartmentSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.DepartmentSummary), args.Error(1)
}

func TestOverview(t *testing.T) {
	svc := new(mockDashboardService)
	engine := handlertest.NewEngine(t, NewHandler(svc))

	svc.On("Overview", mock.Anything).Return(&model.Overview{TotalTokens: 9, Waiting: 4, PendingLeave: 1}, nil).Once()

	w := handlertest.Do(engine, http.MethodGet, "/api/v1/dashboard/overview", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got model.Overview
	handlertest.Decode(t, w, &got)
	assert.Equal(t, 9, got.TotalTokens)

	svc.On("Overview", mock.Anything).Return(nil, errors.New("db down")).Once()
	w = handlertest.Do(engine, http.MethodGet, "/api/v1/dashboard/overview", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := handlertest.Decode(t, w, nil)
	assert.Equal(t, "internal server error", env.Message)
}

func TestDepartments(t *testing.T) {
	svc := new(mockDashboardService)
	engine := handlertest.NewEngine(t, NewHandler(svc))

	svc.On("Departments", mock.Anything).Return([]*model.DepartmentSummary{
		{Department: "Cardiology", Doctors: 3, Active: 2, AvailablePct: 67},
	}, nil)

	w := handlertest.Do(engine, http.MethodGet, "/api/v1/dashboard/departments", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got []*model.DepartmentSummary
	handlertest.Decode(t, w, &got)
	assert.Equal(t, 67, got[0].AvailablePct)
}
