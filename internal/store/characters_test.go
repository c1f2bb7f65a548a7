package store

import (
	"context"
	"testing"

	"github.com/guildhallapp/guildhall-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCharacter(id, userID, name, gameID string) *domain.Character {
	c := &domain.Character{
		Syncable: domain.Syncable{
			ID: id,
		},
		UserID: userID,
		Name:   name,
		GameID: gameID,
	}
	c.InitTimestamps()
	return c
}

func TestGetCharacter_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	_, err := store.GetCharacter(ctx, "char_nonexistent")
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestReplaceUserCharacters_CreatesRoster(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	roster := []*domain.Character{
		makeCharacter("char_1", "user_1", "Thrall", "world-of-warcraft"),
		makeCharacter("char_2", "user_1", "Jaina", "world-of-warcraft"),
	}

	err := store.ReplaceUserCharacters(ctx, "user_1", roster)
	require.NoError(t, err)

	// Each character is retrievable by ID
	retrieved, err := store.GetCharacter(ctx, "char_1")
	require.NoError(t, err)
	assert.Equal(t, "Thrall", retrieved.Name)
	assert.Equal(t, "world-of-warcraft", retrieved.GameID)

	// Listing returns the full roster
	listed, err := store.ListUserCharacters(ctx, "user_1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestReplaceUserCharacters_ReplacesExisting(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// Initial roster
	err := store.ReplaceUserCharacters(ctx, "user_1", []*domain.Character{
		makeCharacter("char_1", "user_1", "Thrall", "world-of-warcraft"),
		makeCharacter("char_2", "user_1", "Jaina", "world-of-warcraft"),
	})
	require.NoError(t, err)

	// Replace with a different roster
	err = store.ReplaceUserCharacters(ctx, "user_1", []*domain.Character{
		makeCharacter("char_3", "user_1", "Kael", "final-fantasy-xiv"),
	})
	require.NoError(t, err)

	// Old characters are gone
	_, err = store.GetCharacter(ctx, "char_1")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
	_, err = store.GetCharacter(ctx, "char_2")
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	// New roster is in place
	listed, err := store.ListUserCharacters(ctx, "user_1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "Kael", listed[0].Name)
}

func TestReplaceUserCharacters_ScopedToUser(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	err := store.ReplaceUserCharacters(ctx, "user_1", []*domain.Character{
		makeCharacter("char_1", "user_1", "Thrall", "world-of-warcraft"),
	})
	require.NoError(t, err)

	err = store.ReplaceUserCharacters(ctx, "user_2", []*domain.Character{
		makeCharacter("char_2", "user_2", "Jaina", "world-of-warcraft"),
	})
	require.NoError(t, err)

	// Replacing user_1's roster must not touch user_2's
	err = store.ReplaceUserCharacters(ctx, "user_1", nil)
	require.NoError(t, err)

	listed, err := store.ListUserCharacters(ctx, "user_2")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "char_2", listed[0].ID)
}

func TestListUserCharacters_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	listed, err := store.ListUserCharacters(ctx, "user_noroster")
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestDeleteUserCharacters(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	err := store.ReplaceUserCharacters(ctx, "user_1", []*domain.Character{
		makeCharacter("char_1", "user_1", "Thrall", "world-of-warcraft"),
	})
	require.NoError(t, err)

	err = store.DeleteUserCharacters(ctx, "user_1")
	require.NoError(t, err)

	listed, err := store.ListUserCharacters(ctx, "user_1")
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = store.GetCharacter(ctx, "char_1")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}
