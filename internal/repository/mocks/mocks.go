package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/mediqueue/internal/model"
	"github.com/jwalitptl/mediqueue/internal/repository"
)

var (
	_ repository.TxManager          = (*TxManager)(nil)
	_ repository.DoctorRepository   = (*MockDoctorRepository)(nil)
	_ repository.TokenRepository    = (*MockTokenRepository)(nil)
	_ repository.LeaveRepository    = (*MockLeaveRepository)(nil)
	_ repository.SettingsRepository = (*MockSettingsRepository)(nil)
	_ repository.OutboxRepository   = (*MockOutboxRepository)(nil)
)

// TxManager runs fn inline and counts how many transactions were opened.
type TxManager struct {
	Calls int
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	return fn(ctx)
}

type MockDoctorRepository struct {
	mock.Mock
}

func (m *MockDoctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *MockDoctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *MockDoctorRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DoctorStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockDoctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDoctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Doctor), args.Error(1)
}

func (m *MockDoctorRepository) ListByDepartment(ctx context.Context, department string, status model.DoctorStatus) ([]*model.Doctor, error) {
	args := m.Called(ctx, department, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Doctor), args.Error(1)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *model.Token) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockTokenRepository) Get(ctx context.Context, id uuid.UUID) (*model.Token, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Token), args.Error(1)
}

func (m *MockTokenRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Token, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Token), args.Error(1)
}

func (m *MockTokenRepository) List(ctx context.Context, filters *model.TokenFilters) ([]*model.Token, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Token), args.Error(1)
}

func (m *MockTokenRepository) ListActiveForUpdate(ctx context.Context, doctorID uuid.UUID, date string) ([]*model.Token, error) {
	args := m.Called(ctx, doctorID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Token), args.Error(1)
}

func (m *MockTokenRepository) ListWaitingUpTo(ctx context.Context, date string) ([]*model.Token, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Token), args.Error(1)
}

func (m *MockTokenRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TokenStatus, reason string) (*model.Token, error) {
	args := m.Called(ctx, id, status, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Token), args.Error(1)
}

func (m *MockTokenRepository) NextNumber(ctx context.Context, date string) (int, error) {
	args := m.Called(ctx, date)
	return args.Int(0), args.Error(1)
}

func (m *MockTokenRepository) CountActive(ctx context.Context, doctorID uuid.UUID, date string) (int, error) {
	args := m.Called(ctx, doctorID, date)
	return args.Int(0), args.Error(1)
}

func (m *MockTokenRepository) HasActiveBooking(ctx context.Context, phone string, doctorID uuid.UUID, date string) (bool, error) {
	args := m.Called(ctx, phone, doctorID, date)
	return args.Bool(0), args.Error(1)
}

type MockLeaveRepository struct {
	mock.Mock
}

func (m *MockLeaveRepository) Create(ctx context.Context, leave *model.LeaveRequest) error {
	return m.Called(ctx, leave).Error(0)
}

func (m *MockLeaveRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.LeaveRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LeaveRequest), args.Error(1)
}

func (m *MockLeaveRepository) List(ctx context.Context, doctorID *uuid.UUID) ([]*model.LeaveRequest, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.LeaveRequest), args.Error(1)
}

func (m *MockLeaveRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LeaveStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockLeaveRepository) CountPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*model.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Settings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, settings *model.Settings) error {
	return m.Called(ctx, settings).Error(0)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockOutboxRepository) GetPendingWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string, final bool) error {
	return m.Called(ctx, id, errMsg, final).Error(0)
}

func (m *MockOutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
