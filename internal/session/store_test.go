package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/session"
)

func setupStore(t *testing.T) *session.Store {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return session.NewStore(client, time.Second)
}

func TestActiveSession(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	sess, err := store.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	started := time.Date(2025, time.December, 5, 7, 30, 0, 0, time.UTC)
	require.NoError(t, store.SetActive(ctx, &domain.DutySession{TeamID: 1, TeamName: "1조", UserID: 10, Username: "kim", StartedAt: started}))

	sess, err = store.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "1조", sess.TeamName)
	assert.True(t, started.Equal(sess.StartedAt))
}

func TestCompleteHandover(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	_, err := store.CompleteHandover(ctx)
	assert.ErrorIs(t, err, session.ErrNoPendingHandover)

	require.NoError(t, store.SetActive(ctx, &domain.DutySession{TeamID: 1, TeamName: "1조", UserID: 10}))
	require.NoError(t, store.SetPending(ctx, &domain.DutySession{TeamID: 4, TeamName: "4조", UserID: 40}))

	sess, err := store.CompleteHandover(ctx)
	require.NoError(t, err)
	assert.Equal(t, "4조", sess.TeamName)

	active, err := store.Active(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), active.TeamID)

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestClear(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetActive(ctx, &domain.DutySession{TeamID: 1, UserID: 10}))
	require.NoError(t, store.SetPending(ctx, &domain.DutySession{TeamID: 4, UserID: 40}))

	// 其他用户登出不影响会话
	require.NoError(t, store.Clear(ctx, 99))
	active, err := store.Active(ctx)
	require.NoError(t, err)
	assert.NotNil(t, active)

	require.NoError(t, store.Clear(ctx, 40))
	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	assert.Nil(t, pending)

	active, err = store.Active(ctx)
	require.NoError(t, err)
	assert.NotNil(t, active)
}

func TestClearAfterHandoverKeepsNewActiveSession(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetActive(ctx, &domain.DutySession{TeamID: 1, TeamName: "1조", UserID: 10}))
	require.NoError(t, store.SetPending(ctx, &domain.DutySession{TeamID: 4, TeamName: "4조", UserID: 40}))
	_, err := store.CompleteHandover(ctx)
	require.NoError(t, err)

	// 交班的人之后才登出，不能删掉接班人的会话
	require.NoError(t, store.Clear(ctx, 10))
	active, err := store.Active(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, int64(40), active.UserID)

	require.NoError(t, store.Clear(ctx, 40))
	active, err = store.Active(ctx)
	require.NoError(t, err)
	assert.Nil(t, active)
}
