package entity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/activity"
	"github.com/capstonehub/capstone-hub/internal/domain/entity"
	"github.com/capstonehub/capstone-hub/internal/repository"
	"github.com/capstonehub/capstone-hub/internal/repository/mocks"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newService(records *mocks.RecordRepository, act *mocks.ActivityRepository) *entity.Service {
	return entity.NewService(records, activity.NewService(act, nil), nil).
		WithClock(func() time.Time { return fixedNow })
}

func TestEntityService_CreateAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	records := &mocks.RecordRepository{}
	act := &mocks.ActivityRepository{}

	records.On("Create", ctx, entity.SoftwareTool, mock.Anything).Return(nil)
	act.On("Log", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeRecordCreated && e.EntityType == "software_tool"
	})).Return(nil)

	svc := newService(records, act)
	rec, err := svc.Create(ctx, entity.SoftwareTool, map[string]any{
		"name":     "Notion",
		"category": "Document Management",
	})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, fixedNow, rec.CreatedAt)
	require.Equal(t, fixedNow, rec.UpdatedAt)
	require.Equal(t, true, rec.Fields["cloud_based"])
	require.Equal(t, false, rec.Fields["mobile_support"])
	require.Equal(t, "Not Evaluated", rec.Fields["evaluation_status"])
	require.Nil(t, rec.Fields["vendor"])
	records.AssertExpectations(t)
	act.AssertExpectations(t)
}

func TestEntityService_CreateInvalidDoesNotTouchStore(t *testing.T) {
	records := &mocks.RecordRepository{}
	svc := newService(records, &mocks.ActivityRepository{})

	_, err := svc.Create(context.Background(), entity.AITechnology, map[string]any{"name": "GPT"})
	require.ErrorIs(t, err, entity.ErrInvalidInput)
	records.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestEntityService_UpdateKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	records := &mocks.RecordRepository{}
	act := &mocks.ActivityRepository{}

	created := fixedNow.Add(-48 * time.Hour)
	existing := &entity.Record{
		ID: "d1",
		Fields: map[string]any{
			"title":  "Proposal",
			"phase":  "Foundation & Planning",
			"status": "Not Started",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	records.On("Get", ctx, entity.Deliverable, "d1").Return(existing, nil)
	records.On("Update", ctx, entity.Deliverable, mock.Anything).Return(nil)
	act.On("Log", ctx, mock.Anything).Return(nil)

	svc := newService(records, act)
	rec, err := svc.Update(ctx, entity.Deliverable, "d1", map[string]any{
		"status":     "Completed",
		"created_at": "1999-01-01T00:00:00Z",
	})
	require.NoError(t, err)
	require.Equal(t, created, rec.CreatedAt)
	require.Equal(t, fixedNow, rec.UpdatedAt)

	want := map[string]any{
		"title":  "Proposal",
		"phase":  "Foundation & Planning",
		"status": "Completed",
	}
	if diff := cmp.Diff(want, rec.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestEntityService_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	records := &mocks.RecordRepository{}
	records.On("Get", ctx, entity.Integration, "nope").Return(nil, repository.ErrNotFound)

	svc := newService(records, &mocks.ActivityRepository{})
	_, err := svc.Update(ctx, entity.Integration, "nope", map[string]any{"name": "x"})
	require.ErrorIs(t, err, entity.ErrNotFound)
	records.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestEntityService_Delete(t *testing.T) {
	ctx := context.Background()
	records := &mocks.RecordRepository{}
	act := &mocks.ActivityRepository{}
	records.On("Delete", ctx, entity.ResearchItem, "r1").Return(nil)
	records.On("Delete", ctx, entity.ResearchItem, "missing").Return(repository.ErrNotFound)
	act.On("Log", ctx, mock.Anything).Return(nil)

	svc := newService(records, act)
	require.NoError(t, svc.Delete(ctx, entity.ResearchItem, "r1"))
	require.ErrorIs(t, svc.Delete(ctx, entity.ResearchItem, "missing"), entity.ErrNotFound)
	act.AssertNumberOfCalls(t, "Log", 1)
}

func TestEntityService_StoreFailureIsWrapped(t *testing.T) {
	ctx := context.Background()
	records := &mocks.RecordRepository{}
	storeErr := errors.New("disk I/O error")
	records.On("Create", ctx, entity.Integration, mock.Anything).Return(storeErr)

	svc := newService(records, &mocks.ActivityRepository{})
	_, err := svc.Create(ctx, entity.Integration, map[string]any{"name": "Notion", "platform": "Notion"})
	require.ErrorIs(t, err, storeErr)
	require.NotErrorIs(t, err, entity.ErrInvalidInput)
}

func TestEntityService_ActivityFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	records := &mocks.RecordRepository{}
	act := &mocks.ActivityRepository{}
	records.On("Delete", ctx, entity.Deliverable, "d1").Return(nil)
	act.On("Log", ctx, mock.Anything).Return(errors.New("locked"))

	svc := newService(records, act)
	require.NoError(t, svc.Delete(ctx, entity.Deliverable, "d1"))
}

func TestEntityService_SearchAndDashboard(t *testing.T) {
	ctx := context.Background()
	records := &mocks.RecordRepository{}

	deliverables := []entity.Record{
		{ID: "1", Fields: map[string]any{"title": "Literature review", "phase": "Research & Analysis", "status": "Completed", "completion_percentage": int64(100)}},
		{ID: "2", Fields: map[string]any{"title": "Prototype", "phase": "Implementation", "status": "In Progress", "due_date": "2025-02-01", "completion_percentage": int64(50)}},
	}
	integrations := []entity.Record{
		{ID: "3", Fields: map[string]any{"name": "Notion sync", "platform": "Notion", "setup_status": "Active"}},
	}
	for _, d := range entity.Catalog() {
		switch d {
		case entity.Deliverable:
			records.On("List", ctx, d).Return(deliverables, nil)
		case entity.Integration:
			records.On("List", ctx, d).Return(integrations, nil)
		default:
			records.On("List", ctx, d).Return([]entity.Record{}, nil)
		}
	}

	svc := newService(records, &mocks.ActivityRepository{})

	results, err := svc.Search(ctx, "REVIEW", "")
	require.NoError(t, err)
	require.Equal(t, 1, results.TotalResults)
	require.Len(t, results.ResultsByType["deliverables"], 1)
	require.Empty(t, results.ResultsByType["integrations"])

	results, err = svc.Search(ctx, "notion", "integrations")
	require.NoError(t, err)
	require.Equal(t, 1, results.TotalResults)
	require.Len(t, results.ResultsByType, 1)

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, dash.Overview.Totals["deliverables"])
	require.Equal(t, 1, dash.Overview.CompletedDeliverables)
	require.Equal(t, 1, dash.Overview.OverdueDeliverables)
	require.InDelta(t, 75.0, dash.Overview.ProjectCompletion, 0.001)
	require.Equal(t, 1, dash.Overview.ActiveIntegrations)
	require.Equal(t, map[string]int{"Research & Analysis": 1, "Implementation": 1}, dash.Distributions["deliverables_by_phase"])
	require.Equal(t, map[string]int{"Active": 1}, dash.Statuses["integrations"])

	snap, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, snap.Count())
	require.Len(t, snap.Data, 6)

	snap, err = svc.Snapshot(ctx, "integrations")
	require.NoError(t, err)
	require.Len(t, snap.Data, 1)
}
