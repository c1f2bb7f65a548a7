package store

import (
	"context"
	"testing"
	"time"

	"github.com/guildhallapp/guildhall-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSession builds a valid session expiring ttl from now.
func newTestSession(id, userID, tokenHash string, ttl time.Duration) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        now.Add(ttl),
		CreatedAt:        now,
		LastSeenAt:       now,
		DeviceType:       "mobile",
		Platform:         "iOS",
		ClientName:       "Guildhall Mobile",
		ClientVersion:    "1.0.0",
	}
}

func TestCreateSession(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := newTestSession("sess-1", "user-1", "hash-1", 24*time.Hour)
	require.NoError(t, store.CreateSession(ctx, session))

	got, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, got.UserID)
	assert.Equal(t, session.RefreshTokenHash, got.RefreshTokenHash)
	assert.Equal(t, "mobile", got.DeviceType)
}

func TestCreateSession_DuplicateID(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, newTestSession("sess-1", "user-1", "hash-1", 24*time.Hour)))

	err := store.CreateSession(ctx, newTestSession("sess-1", "user-1", "hash-2", 24*time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestGetSession_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetSession(context.Background(), "sess-missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetSession_Expired(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	expired := newTestSession("sess-old", "user-1", "hash-old", -time.Hour)
	require.NoError(t, store.CreateSession(ctx, expired))

	_, err := store.GetSession(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestGetSessionByRefreshToken(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := newTestSession("sess-1", "user-1", "unique-hash", 24*time.Hour)
	require.NoError(t, store.CreateSession(ctx, session))

	got, err := store.GetSessionByRefreshToken(ctx, "unique-hash")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	_, err = store.GetSessionByRefreshToken(ctx, "wrong-hash")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdateSession(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := newTestSession("sess-1", "user-1", "hash-1", 24*time.Hour)
	session.IPAddress = "192.168.1.1"
	require.NoError(t, store.CreateSession(ctx, session))

	time.Sleep(10 * time.Millisecond)

	session.IPAddress = "192.168.1.2"
	session.Touch()
	require.NoError(t, store.UpdateSession(ctx, session))

	got, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.2", got.IPAddress)
	assert.True(t, got.LastSeenAt.After(got.CreatedAt))
}

func TestUpdateSession_TokenRotation(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := newTestSession("sess-1", "user-1", "old-hash", 24*time.Hour)
	require.NoError(t, store.CreateSession(ctx, session))

	session.RefreshTokenHash = "new-hash"
	require.NoError(t, store.UpdateSession(ctx, session))

	// The old hash must stop resolving once rotated.
	_, err := store.GetSessionByRefreshToken(ctx, "old-hash")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	got, err := store.GetSessionByRefreshToken(ctx, "new-hash")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
}

func TestDeleteSession(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	session := newTestSession("sess-1", "user-1", "hash-1", 24*time.Hour)
	require.NoError(t, store.CreateSession(ctx, session))
	require.NoError(t, store.DeleteSession(ctx, session.ID))

	_, err := store.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Token index is cleaned up with the session.
	_, err = store.GetSessionByRefreshToken(ctx, session.RefreshTokenHash)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting again is not an error.
	assert.NoError(t, store.DeleteSession(ctx, session.ID))
}

func TestListUserSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for i, hash := range []string{"hash-a", "hash-b", "hash-c"} {
		s := newTestSession(
			"sess-"+hash,
			"user-multi",
			hash,
			24*time.Hour,
		)
		if i == 1 {
			s.DeviceType = "desktop"
			s.Platform = "macOS"
		}
		require.NoError(t, store.CreateSession(ctx, s))
	}
	// A different user's session must not leak into the listing.
	require.NoError(t, store.CreateSession(ctx, newTestSession("sess-other", "user-other", "hash-other", 24*time.Hour)))

	got, err := store.ListUserSessions(ctx, "user-multi")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, s := range got {
		assert.Equal(t, "user-multi", s.UserID)
	}
}

func TestListUserSessions_SkipsExpired(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, newTestSession("sess-live", "user-1", "hash-live", 24*time.Hour)))
	require.NoError(t, store.CreateSession(ctx, newTestSession("sess-dead", "user-1", "hash-dead", -time.Hour)))

	got, err := store.ListUserSessions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sess-live", got[0].ID)
}

func TestListUserSessions_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.ListUserSessions(context.Background(), "user-none")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteAllUserSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, newTestSession("sess-1", "user-1", "hash-1", 24*time.Hour)))
	require.NoError(t, store.CreateSession(ctx, newTestSession("sess-2", "user-1", "hash-2", 24*time.Hour)))
	require.NoError(t, store.CreateSession(ctx, newTestSession("sess-3", "user-2", "hash-3", 24*time.Hour)))

	require.NoError(t, store.DeleteAllUserSessions(ctx, "user-1"))

	got, err := store.ListUserSessions(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)

	// Other users are untouched.
	got, err = store.ListUserSessions(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDeleteExpiredSessions(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	live := []*domain.Session{
		newTestSession("sess-live-1", "user-1", "hash-l1", 24*time.Hour),
		newTestSession("sess-live-2", "user-2", "hash-l2", 24*time.Hour),
	}
	dead := []*domain.Session{
		newTestSession("sess-dead-1", "user-1", "hash-d1", -time.Hour),
		newTestSession("sess-dead-2", "user-2", "hash-d2", -2*time.Hour),
	}

	for _, s := range append(live, dead...) {
		require.NoError(t, store.CreateSession(ctx, s))
	}

	count, err := store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, s := range live {
		_, err := store.GetSession(ctx, s.ID)
		assert.NoError(t, err)
	}
	for _, s := range dead {
		_, err := store.GetSession(ctx, s.ID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	}
}
