package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
	"github.com/jwalitptl/mediqueue/internal/repository/mocks"
	"github.com/jwalitptl/mediqueue/internal/service/event"
	apperrors "github.com/jwalitptl/mediqueue/pkg/errors"
)

func newService() (*Service, *mocks.MockDoctorRepository, *mocks.MockOutboxRepository) {
	repo := new(mocks.MockDoctorRepository)
	outbox := new(mocks.MockOutboxRepository)
	outbox.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewService(repo, &mocks.TxManager{}, event.NewEventService(outbox)), repo, outbox
}

func TestAddDoctor(t *testing.T) {
	svc, repo, outbox := newService()
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Doctor")).Return(nil)

	doctor, err := svc.AddDoctor(context.Background(), &model.CreateDoctorRequest{
		Name:       " Dr. Rao ",
		Department: "Cardiology",
		Capacity:   20,
		Slots:      []string{" 09:00 AM", "", "10:00 AM "},
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, doctor.ID)
	assert.Equal(t, "Dr. Rao", doctor.Name)
	assert.Equal(t, model.DoctorStatusActive, doctor.Status)
	assert.Equal(t, model.Slots{"09:00 AM", "10:00 AM"}, doctor.Slots)
	outbox.AssertNumberOfCalls(t, "Create", 1)
}

func TestUpdateDoctor(t *testing.T) {
	t.Run("replaces fields", func(t *testing.T) {
		svc, repo, _ := newService()
		id := uuid.New()
		repo.On("GetForUpdate", mock.Anything, id).Return(&model.Doctor{ID: id, Name: "Old", Department: "ENT", Status: model.DoctorStatusActive}, nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)

		doctor, err := svc.UpdateDoctor(context.Background(), id, &model.UpdateDoctorRequest{
			Name:       "Dr. Iyer",
			Department: "Neurology",
			Slots:      []string{"2:00 PM"},
			Status:     model.DoctorStatusOnLeave,
		})

		require.NoError(t, err)
		assert.Equal(t, "Neurology", doctor.Department)
		assert.Equal(t, model.DoctorStatusOnLeave, doctor.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		svc, repo, _ := newService()
		id := uuid.New()
		repo.On("GetForUpdate", mock.Anything, id).Return(&model.Doctor{ID: id, Name: "A", Department: "B", Status: model.DoctorStatusActive}, nil)

		_, err := svc.UpdateDoctor(context.Background(), id, &model.UpdateDoctorRequest{Name: "A", Department: "B", Status: "retired"})

		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		svc, repo, _ := newService()
		id := uuid.New()
		repo.On("GetForUpdate", mock.Anything, id).Return(nil, repository.ErrNotFound)

		_, err := svc.UpdateDoctor(context.Background(), id, &model.UpdateDoctorRequest{Name: "A", Department: "B"})

		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
	})
}

func TestDoctorsByDepartment_OnlyActive(t *testing.T) {
	svc, repo, _ := newService()
	active := []*model.Doctor{{Name: "Dr. Rao", Status: model.DoctorStatusActive}}
	repo.On("ListByDepartment", mock.Anything, "Cardiology", model.DoctorStatusActive).Return(active, nil)

	doctors, err := svc.DoctorsByDepartment(context.Background(), "Cardiology")
	require.NoError(t, err)
	assert.Len(t, doctors, 1)

	_, err = svc.DoctorsByDepartment(context.Background(), " ")
	assert.Error(t, err)
}

func TestDeleteDoctor_NotFound(t *testing.T) {
	svc, repo, _ := newService()
	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(repository.ErrNotFound)

	err := svc.DeleteDoctor(context.Background(), id)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}
