package leave

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

type mockTransitioner struct {
	mock.Mock
}

func (m *mockTransitioner) Transition(ctx context.Context, t *model.Token, next model.TokenStatus, reason string) (*model.Token, error) {
	args := m.Called(ctx, t, next, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Token), args.Error(1)
}

type fixture struct {
	svc     *Service
	leaves  *mocks.MockLeaveRepository
	doctors *mocks.MockDoctorRepository
	tokens  *mocks.MockTokenRepository
	tr      *mockTransitioner
	outbox  *mocks.MockOutboxRepository
}

func newFixture() *fixture {
	f := &fixture{
		leaves:  new(mocks.MockLeaveRepository),
		doctors: new(mocks.MockDoctorRepository),
		tokens:  new(mocks.MockTokenRepository),
		tr:      new(mockTransitioner),
		outbox:  new(mocks.MockOutboxRepository),
	}
	f.outbox.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.svc = NewService(&mocks.TxManager{}, f.leaves, f.doctors, f.tokens, f.tr, event.NewEventService(f.outbox))
	return f
}

func TestSubmitLeave_DefaultsSession(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	f.doctors.On("Get", mock.Anything, doctorID).Return(&model.Doctor{ID: doctorID, Name: "Dr. Rao"}, nil)
	f.leaves.On("Create", mock.Anything, mock.AnythingOfType("*model.LeaveRequest")).Return(nil)

	leave, err := f.svc.SubmitLeave(context.Background(), doctorID, &model.SubmitLeaveRequest{
		Date: "2025-03-04",
		Type: model.LeaveTypePlanned,
	})

	require.NoError(t, err)
	assert.Equal(t, model.LeaveStatusPending, leave.Status)
	assert.Equal(t, model.SessionFullDay, leave.Session)
	assert.Equal(t, "Dr. Rao", leave.DoctorName)
	f.outbox.AssertNumberOfCalls(t, "Create", 1)
}

func TestSubmitLeave_UnknownDoctor(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	f.doctors.On("Get", mock.Anything, doctorID).Return(nil, repository.ErrNotFound)

	_, err := f.svc.SubmitLeave(context.Background(), doctorID, &model.SubmitLeaveRequest{Date: "2025-03-04", Type: model.LeaveTypeEmergency})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestApproveLeave_CancelsWaitingTokens(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	leave := &model.LeaveRequest{ID: uuid.New(), DoctorID: doctorID, Date: "2025-03-04", Status: model.LeaveStatusPending}
	serving := &model.Token{ID: uuid.New(), DoctorID: doctorID, Status: model.TokenStatusServing}
	waiting := &model.Token{ID: uuid.New(), DoctorID: doctorID, Status: model.TokenStatusWaiting}
	cancelled := *waiting
	cancelled.Status = model.TokenStatusCancelled

	f.leaves.On("GetForUpdate", mock.Anything, leave.ID).Return(leave, nil)
	f.leaves.On("UpdateStatus", mock.Anything, leave.ID, model.LeaveStatusApproved).Return(nil)
	f.doctors.On("UpdateStatus", mock.Anything, doctorID, model.DoctorStatusOnLeave).Return(nil)
	f.tokens.On("ListActiveForUpdate", mock.Anything, doctorID, "2025-03-04").Return([]*model.Token{serving, waiting}, nil)
	f.tr.On("Transition", mock.Anything, waiting, model.TokenStatusCancelled, ReasonDoctorOnLeave).Return(&cancelled, nil)

	decision, err := f.svc.ApproveLeave(context.Background(), leave.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LeaveStatusApproved, decision.Leave.Status)
	require.Len(t, decision.CancelledTokens, 1)
	assert.Equal(t, waiting.ID, decision.CancelledTokens[0].ID)
	f.tr.AssertNumberOfCalls(t, "Transition", 1)
	f.doctors.AssertExpectations(t)
}

func TestDecideLeave_OnlyPending(t *testing.T) {
	f := newFixture()
	leave := &model.LeaveRequest{ID: uuid.New(), Status: model.LeaveStatusRejected}
	f.leaves.On("GetForUpdate", mock.Anything, leave.ID).Return(leave, nil)

	_, err := f.svc.ApproveLeave(context.Background(), leave.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	_, err = f.svc.RejectLeave(context.Background(), leave.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	f.leaves.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRejectLeave(t *testing.T) {
	f := newFixture()
	leave := &model.LeaveRequest{ID: uuid.New(), DoctorID: uuid.New(), Status: model.LeaveStatusPending}
	f.leaves.On("GetForUpdate", mock.Anything, leave.ID).Return(leave, nil)
	f.leaves.On("UpdateStatus", mock.Anything, leave.ID, model.LeaveStatusRejected).Return(nil)

	decision, err := f.svc.RejectLeave(context.Background(), leave.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LeaveStatusRejected, decision.Leave.Status)
	f.doctors.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveLeave_NotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.leaves.On("GetForUpdate", mock.Anything, id).Return(nil, repository.ErrNotFound)

	_, err := f.svc.ApproveLeave(context.Background(), id)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}
