package activity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := activity.WithActor(context.Background(), "admin")

	repo := &mocks.ActivityRepository{}
	entry := &activity.ActivityEntry{
		ActivityType: activity.TypeRecordCreated,
		EntityType:   "deliverable",
		Summary:      "created",
	}

	repo.On("Log", ctx, entry).Return(nil)
	repo.On("List", ctx, activity.ListActivityOptions{EntityType: "deliverable", Limit: activity.DefaultListLimit}).
		Return([]activity.ActivityEntry{*entry}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.LogActivity(ctx, entry))
	require.Equal(t, "admin", entry.Actor)
	require.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.GetRecentActivity(ctx, activity.ListActivityOptions{EntityType: "deliverable"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	repo.AssertExpectations(t)
}

func TestActivityService_NilEntry(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	require.ErrorIs(t, svc.LogActivity(context.Background(), nil), activity.ErrInvalidInput)
}

func TestActivityService_RecordSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := activity.NewService(repo, nil)
	svc.Record(ctx, &activity.ActivityEntry{ActivityType: activity.TypeLogout, Summary: "logout"})
	repo.AssertNumberOfCalls(t, "Log", 1)
}
