package leave

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/mediqueue/internal/handler/handlertest"
	"github.com/jwalitptl/mediqueue/internal/model"
	leaveService "github.com/jwalitptl/mediqueue/internal/service/leave"
)

type mockLeaveService struct {
	mock.Mock
}

func (m *mockLeaveService) SubmitLeave(ctx context.Context, doctorID uuid.UUID, req *model.SubmitLeaveRequest) (*model.LeaveRequest, error) {
	args := m.Called(ctx, doctorID, req)
	if l := args.Get(0); l != nil {
		return l.(*model.LeaveRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLeaveService) ListLeave(ctx context.Context) ([]*model.LeaveRequest, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.LeaveRequest), args.Error(1)
}

func (m *mockLeaveService) ListDoctorLeave(ctx context.Context, doctorID uuid.UUID) ([]*model.LeaveRequest, error) {
	args := m.Called(ctx, doctorID)
	return args.Get(0).([]*model.LeaveRequest), args.Error(1)
}

func (m *mockLeaveService) decision(args mock.Arguments) (*model.LeaveDecision, error) {
	if d := args.Get(0); d != nil {
		return d.(*model.LeaveDecision), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLeaveService) ApproveLeave(ctx context.Context, id uuid.UUID) (*model.LeaveDecision, error) {
	return m.decision(m.Called(ctx, id))
}

func (m *mockLeaveService) RejectLeave(ctx context.Context, id uuid.UUID) (*model.LeaveDecision, error) {
	return m.decision(m.Called(ctx, id))
}

func (m *mockLeaveService) PendingCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

var _ leaveService.LeaveServicer = (*mockLeaveService)(nil)

func TestSubmitLeave(t *testing.T) {
	svc := new(mockLeaveService)
	engine := handlertest.NewEngine(t, NewHandler(svc))
	doctorID := uuid.New()

	svc.On("SubmitLeave", mock.Anything, doctorID, mock.MatchedBy(func(r *model.SubmitLeaveRequest) bool {
		return r.Date == "2026-10-20" && r.Type == model.LeaveTypePlanned
	})).Return(&model.LeaveRequest{ID: uuid.New(), Status: model.LeaveStatusPending, Session: model.SessionFullDay}, nil)

	w := handlertest.Do(engine, http.MethodPost, "/api/v1/doctors/"+doctorID.String()+"/leave", map[string]string{
		"date": "2026-10-20", "type": "planned", "reason": "conference",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = handlertest.Do(engine, http.MethodPost, "/api/v1/doctors/"+doctorID.String()+"/leave", map[string]string{
		"date": "20/10/2026", "type": "vacation",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"date"`)
	assert.Contains(t, w.Body.String(), `"field":"type"`)
	svc.AssertNumberOfCalls(t, "SubmitLeave", 1)
}

func TestApproveLeave(t *testing.T) {
	svc := new(mockLeaveService)
	engine := handlertest.NewEngine(t, NewHandler(svc))
	id := uuid.New()

	svc.On("ApproveLeave", mock.Anything, id).Return(&model.LeaveDecision{
		Leave:           &model.LeaveRequest{ID: id, Status: model.LeaveStatusApproved},
		CancelledTokens: []*model.Token{{TokenNumber: "T-007"}},
	}, nil).Once()

	w := handlertest.Do(engine, http.MethodPost, "/api/v1/leave/"+id.String()+"/approve", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got model.LeaveDecision
	handlertest.Decode(t, w, &got)
	assert.Equal(t, model.LeaveStatusApproved, got.Leave.Status)
	assert.Len(t, got.CancelledTokens, 1)

	svc.On("ApproveLeave", mock.Anything, id).Return(nil, leaveService.ErrAlreadyDecided).Once()
	w = handlertest.Do(engine, http.MethodPost, "/api/v1/leave/"+id.String()+"/approve", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPendingCount(t *testing.T) {
	svc := new(mockLeaveService)
	engine := handlertest.NewEngine(t, NewHandler(svc))

	svc.On("PendingCount", mock.Anything).Return(3, nil)

	w := handlertest.Do(engine, http.MethodGet, "/api/v1/leave/pending/count", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","data":{"pending":3}}`, w.Body.String())
}
