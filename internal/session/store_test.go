package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore creates an in-memory SQLite store for testing
func createTestStore(t *testing.T, maxAge time.Duration) *Store {
	t.Helper()

	store, err := NewStore(":memory:", maxAge)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func TestNewStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := NewStore(path, time.Hour)
	require.NoError(t, err)
	sess, err := store.Create(context.Background())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStore(path, time.Hour)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.State, got.State)
}

func TestStore_CreateAndGet(t *testing.T) {
	store := createTestStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.NotEmpty(t, sess.State)
	assert.NotEqual(t, sess.ID, sess.State)
	assert.False(t, sess.LoggedIn())

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.State, got.State)
	assert.Empty(t, got.City)
}

func TestStore_Updates(t *testing.T) {
	store := createTestStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.SetAccessToken(ctx, sess.ID, "BQD-token"))
	require.NoError(t, store.SetCity(ctx, sess.ID, "Nashville"))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.LoggedIn())
	assert.Equal(t, "BQD-token", got.AccessToken)
	assert.Equal(t, "Nashville", got.City)
}

func TestStore_UnknownSession(t *testing.T) {
	store := createTestStore(t, time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, "6f1c3c1e-8a9b-4c55-9a3e-0d2f5b7e1a11")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.SetCity(ctx, "6f1c3c1e-8a9b-4c55-9a3e-0d2f5b7e1a11", "Nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := createTestStore(t, time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, sess.ID))
	require.NoError(t, store.Delete(ctx, sess.ID))

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ExpiryAndCleanup(t *testing.T) {
	store := createTestStore(t, time.Hour)
	ctx := context.Background()

	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	stale, err := store.Create(ctx)
	require.NoError(t, err)

	now = now.Add(45 * time.Minute)
	fresh, err := store.Create(ctx)
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)

	_, err = store.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, fresh.ID)
	assert.NoError(t, err)

	deleted, err := store.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_UpdateRefreshesIdleTimer(t *testing.T) {
	store := createTestStore(t, time.Hour)
	ctx := context.Background()

	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	sess, err := store.Create(ctx)
	require.NoError(t, err)

	now = now.Add(50 * time.Minute)
	require.NoError(t, store.SetCity(ctx, sess.ID, "Denver"))

	now = now.Add(50 * time.Minute)
	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "Denver", got.City)
}
