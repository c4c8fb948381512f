package mocks

import (
	"context"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/domain/entity"
	"github.com/capstonehub/capstone-hub/internal/domain/session"
	"github.com/stretchr/testify/mock"
)

// RecordRepository is a mock for entity.Repository.
type RecordRepository struct {
	mock.Mock
}

func (m *RecordRepository) List(ctx context.Context, d *entity.Descriptor) ([]entity.Record, error) {
	args := m.Called(ctx, d)
	if list, ok := args.Get(0).([]entity.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordRepository) Get(ctx context.Context, d *entity.Descriptor, id string) (*entity.Record, error) {
	args := m.Called(ctx, d, id)
	if rec, ok := args.Get(0).(*entity.Record); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordRepository) Create(ctx context.Context, d *entity.Descriptor, rec *entity.Record) error {
	args := m.Called(ctx, d, rec)
	return args.Error(0)
}

func (m *RecordRepository) Update(ctx context.Context, d *entity.Descriptor, rec *entity.Record) error {
	args := m.Called(ctx, d, rec)
	return args.Error(0)
}

func (m *RecordRepository) Delete(ctx context.Context, d *entity.Descriptor, id string) error {
	args := m.Called(ctx, d, id)
	return args.Error(0)
}

// SessionRepository is a mock for session.Repository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*session.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Save(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SessionRepository) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
