package doctor

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/mediqueue/internal/handler/handlertest"
	"github.com/jwalitptl/mediqueue/internal/model"
	apperrors "github.com/jwalitptl/mediqueue/pkg/errors"
)

type mockDoctorService struct {
	mock.Mock
}

func (m *mockDoctorService) AddDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	args := m.Called(ctx, req)
	if d := args.Get(0); d != nil {
		return d.(*model.Doctor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDoctorService) UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	args := m.Called(ctx, id, req)
	if d := args.Get(0); d != nil {
		return d.(*model.Doctor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDoctorService) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockDoctorService) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*model.Doctor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDoctorService) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.Doctor), args.Error(1)
}

func (m *mockDoctorService) DoctorsByDepartment(ctx context.Context, department string) ([]*model.Doctor, error) {
	args := m.Called(ctx, department)
	return args.Get(0).([]*model.Doctor), args.Error(1)
}

func TestAddDoctor(t *testing.T) {
	svc := new(mockDoctorService)
	engine := handlertest.NewEngine(t, NewHandler(svc))

	created := &model.Doctor{ID: uuid.New(), Name: "Dr. Mehta", Department: "Cardiology", Status: model.DoctorStatusActive}
	svc.On("AddDoctor", mock.Anything, mock.MatchedBy(func(r *model.CreateDoctorRequest) bool {
		return r.Name == "Dr. Mehta" && len(r.Slots) == 2
	})).Return(created, nil)

	w := handlertest.Do(engine, http.MethodPost, "/api/v1/doctors", map[string]interface{}{
		"name":       "Dr. Mehta",
		"department": "Cardiology",
		"slots":      []string{"09:00 AM", "10:00 AM"},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	var got model.Doctor
	handlertest.Decode(t, w, &got)
	assert.Equal(t, created.ID, got.ID)
	svc.AssertExpectations(t)
}

func TestAddDoctor_ValidationError(t *testing.T) {
	svc := new(mockDoctorService)
	engine := handlertest.NewEngine(t, NewHandler(svc))

	w := handlertest.Do(engine, http.MethodPost, "/api/v1/doctors", map[string]interface{}{
		"department": "Cardiology",
		"email":      "not-an-email",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"name"`)
	assert.Contains(t, w.Body.String(), `"field":"email"`)
	svc.AssertNotCalled(t, "AddDoctor", mock.Anything, mock.Anything)
}

func TestGetDoctor(t *testing.T) {
	svc := new(mockDoctorService)
	engine := handlertest.NewEngine(t, NewHandler(svc))
	id := uuid.New()

	svc.On("GetDoctor", mock.Anything, id).Return(nil, apperrors.NotFound("doctor", nil))

	w := handlertest.Do(engine, http.MethodGet, "/api/v1/doctors/"+id.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = handlertest.Do(engine, http.MethodGet, "/api/v1/doctors/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteDoctor(t *testing.T) {
	svc := new(mockDoctorService)
	engine := handlertest.NewEngine(t, NewHandler(svc))
	id := uuid.New()

	svc.On("DeleteDoctor", mock.Anything, id).Return(nil)

	w := handlertest.Do(engine, http.MethodDelete, "/api/v1/doctors/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestDoctorsByDepartment(t *testing.T) {
	svc := new(mockDoctorService)
	engine := handlertest.NewEngine(t, NewHandler(svc))

	svc.On("DoctorsByDepartment", mock.Anything, "Cardiology").Return([]*model.Doctor{{Name: "Dr. Mehta"}}, nil)

	w := handlertest.Do(engine, http.MethodGet, "/api/v1/departments/Cardiology/doctors", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got []*model.Doctor
	handlertest.Decode(t, w, &got)
	assert.Len(t, got, 1)
}
