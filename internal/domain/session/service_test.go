package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/capstonehub/capstone-hub/internal/domain/auth"
	"github.com/capstonehub/capstone-hub/internal/domain/session"
	"github.com/capstonehub/capstone-hub/internal/repository"
	"github.com/capstonehub/capstone-hub/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time          { return c.now }
func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newService(repo *mocks.SessionRepository) (*session.Service, *clock) {
	c := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := session.NewService(repo, session.Config{IdleTimeout: 30 * time.Minute, Clock: c.Now}, nil)
	return svc, c
}

func TestSessionService_LoadUnknownReturnsAnonymous(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	repo.On("Get", ctx, "gone").Return(nil, repository.ErrNotFound)
	svc, _ := newService(repo)

	sess, err := svc.Load(ctx, "gone")
	require.NoError(t, err)
	require.False(t, sess.Authenticated)
	require.False(t, sess.Persisted())

	sess, err = svc.Load(ctx, "")
	require.NoError(t, err)
	require.Empty(t, sess.ID)
	repo.AssertNumberOfCalls(t, "Get", 1)
}

func TestSessionService_LoadError(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	repo.On("Get", ctx, "s1").Return(nil, errors.New("db down"))
	svc, _ := newService(repo)

	_, err := svc.Load(ctx, "s1")
	require.Error(t, err)
}

func TestSessionService_LoginRotatesID(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	stored := &session.Session{ID: "old", CSRFToken: "tok"}
	repo.On("Get", ctx, "old").Return(stored, nil)
	repo.On("Delete", ctx, "old").Return(nil)
	repo.On("Save", ctx, mock.Anything).Return(nil)
	svc, c := newService(repo)

	sess, err := svc.Load(ctx, "old")
	require.NoError(t, err)
	require.NoError(t, svc.Login(sess, auth.RoleAdmin))
	require.NotEqual(t, "old", sess.ID)
	require.Equal(t, "tok", sess.CSRFToken)
	require.Equal(t, c.Now(), sess.LastSeen)
	require.NotNil(t, sess.LoginAt)

	result, err := svc.Commit(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, session.CommitSaved, result)
	require.True(t, sess.Persisted())
	repo.AssertCalled(t, "Delete", ctx, "old")
}

func TestSessionService_LoginRejectsInvalidRole(t *testing.T) {
	svc, _ := newService(&mocks.SessionRepository{})
	sess := svc.New()
	require.ErrorIs(t, svc.Login(sess, auth.RoleNone), session.ErrInvalidRole)
	require.False(t, sess.Authenticated)
}

func TestSessionService_CheckIdle(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	svc, c := newService(repo)

	stored := &session.Session{ID: "s1", Authenticated: true, Role: auth.RoleAdmin, CSRFToken: "tok", LastSeen: c.Now()}
	repo.On("Get", ctx, "s1").Return(stored, nil)

	sess, err := svc.Load(ctx, "s1")
	require.NoError(t, err)

	c.Advance(30 * time.Minute)
	require.False(t, svc.CheckIdle(sess), "exactly at the threshold survives")
	require.True(t, sess.Authenticated)

	c.Advance(time.Second)
	require.True(t, svc.CheckIdle(sess))
	require.False(t, sess.Authenticated)
	require.Equal(t, auth.RoleNone, sess.Role)
	require.Empty(t, sess.CSRFToken)
}

func TestSessionService_CheckIdleIgnoresNewSessions(t *testing.T) {
	svc, c := newService(&mocks.SessionRepository{})
	sess := svc.New()
	sess.LastSeen = c.Now().Add(-time.Hour)
	require.False(t, svc.CheckIdle(sess))
}

func TestSessionService_CommitDeletesClearedSession(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	stored := &session.Session{ID: "s1", Authenticated: true, Role: auth.RoleViewer}
	repo.On("Get", ctx, "s1").Return(stored, nil)
	repo.On("Delete", ctx, "s1").Return(nil)
	svc, _ := newService(repo)

	sess, err := svc.Load(ctx, "s1")
	require.NoError(t, err)
	svc.Logout(sess)

	result, err := svc.Commit(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, session.CommitDeleted, result)
	require.False(t, sess.Persisted())
}

func TestSessionService_CommitSkipsEmptyAnonymous(t *testing.T) {
	repo := &mocks.SessionRepository{}
	svc, _ := newService(repo)

	sess := svc.New()
	svc.Touch(sess)
	result, err := svc.Commit(context.Background(), sess)
	require.NoError(t, err)
	require.Equal(t, session.CommitNone, result)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSessionService_CSRF(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil)
	svc, _ := newService(repo)

	sess := svc.New()
	require.ErrorIs(t, svc.ValidateCSRF(sess, "anything"), session.ErrCSRFTokenMissing)

	token := svc.CSRFToken(sess)
	require.NotEmpty(t, token)
	require.Equal(t, token, svc.CSRFToken(sess), "token is stable within a session")

	require.NoError(t, svc.ValidateCSRF(sess, token))
	require.ErrorIs(t, svc.ValidateCSRF(sess, ""), session.ErrCSRFTokenMissing)
	require.ErrorIs(t, svc.ValidateCSRF(sess, token+"x"), session.ErrCSRFTokenInvalid)

	result, err := svc.Commit(ctx, sess)
	require.NoError(t, err)
	require.Equal(t, session.CommitSaved, result)
	require.NotEmpty(t, sess.ID, "storing a token assigns an id")
}

func TestSessionService_PurgeIdle(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	svc, c := newService(repo)
	repo.On("DeleteIdleBefore", ctx, c.Now().Add(-30*time.Minute)).Return(int64(2), nil)

	n, err := svc.PurgeIdle(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)
}
