package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/guildhallapp/guildhall-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestIndex creates a temporary member index for testing.
func setupTestIndex(t *testing.T) (*MemberIndex, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewMemberIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func makeUser(id, displayName string) *domain.User {
	u := &domain.User{
		Syncable: domain.Syncable{
			ID: id,
		},
		Email:       id + "@example.com",
		DisplayName: displayName,
		Role:        domain.RoleMember,
		Status:      domain.UserStatusActive,
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()
	return u
}

func makeRosterCharacter(name, realm, gameID string) *domain.Character {
	return &domain.Character{
		Syncable: domain.Syncable{
			ID: "char_" + name,
		},
		Name:   name,
		Realm:  realm,
		GameID: gameID,
	}
}

func TestNewMemberIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestMemberIndex_IndexMember(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	user := makeUser("user_1", "Alice")
	roster := []*domain.Character{
		makeRosterCharacter("Thrall", "mal-ganis", "world-of-warcraft"),
	}

	err := index.IndexMember(ctx, user, roster)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestMemberIndex_IndexMembers_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*MemberDocument{
		MemberToDocument(makeUser("user_1", "Alice"), nil),
		MemberToDocument(makeUser("user_2", "Bob"), nil),
		MemberToDocument(makeUser("user_3", "Carol"), nil),
	}

	err := index.IndexMembers(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestMemberIndex_DeleteMember(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexMember(ctx, makeUser("user_1", "Alice"), nil))
	require.NoError(t, index.DeleteMember(ctx, "user_1"))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_ByDisplayName(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexMember(ctx, makeUser("user_1", "Alice"), nil))
	require.NoError(t, index.IndexMember(ctx, makeUser("user_2", "Bob"), nil))

	params := DefaultSearchParams()
	params.Query = "Alice"

	result, err := index.Search(ctx, params)
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "user_1", result.Hits[0].ID)
	assert.Equal(t, "Alice", result.Hits[0].Name)
}

func TestSearch_ByCharacterName(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	roster := []*domain.Character{
		makeRosterCharacter("Thrall", "mal-ganis", "world-of-warcraft"),
	}
	require.NoError(t, index.IndexMember(ctx, makeUser("user_1", "Alice"), roster))
	require.NoError(t, index.IndexMember(ctx, makeUser("user_2", "Bob"), nil))

	params := DefaultSearchParams()
	params.Query = "Thrall"

	result, err := index.Search(ctx, params)
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "user_1", result.Hits[0].ID)
	assert.Contains(t, result.Hits[0].Characters, "Thrall")
}

func TestSearch_GameFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexMember(ctx, makeUser("user_1", "Alice"), []*domain.Character{
		makeRosterCharacter("Thrall", "mal-ganis", "world-of-warcraft"),
	}))
	require.NoError(t, index.IndexMember(ctx, makeUser("user_2", "Bob"), []*domain.Character{
		makeRosterCharacter("Cloud", "", "final-fantasy-xiv"),
	}))

	params := DefaultSearchParams()
	params.Games = []string{"final-fantasy-xiv"}

	result, err := index.Search(ctx, params)
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "user_2", result.Hits[0].ID)
}

func TestSearch_HidesPendingMembers(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	pending := makeUser("user_1", "Alice")
	pending.Status = domain.UserStatusPending
	require.NoError(t, index.IndexMember(ctx, pending, nil))
	require.NoError(t, index.IndexMember(ctx, makeUser("user_2", "Bob"), nil))

	params := DefaultSearchParams()

	result, err := index.Search(ctx, params)
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "user_2", result.Hits[0].ID)
}

func TestSearch_EmptyStatusTreatedAsActive(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	legacy := makeUser("user_1", "Alice")
	legacy.Status = ""
	require.NoError(t, index.IndexMember(ctx, legacy, nil))

	params := DefaultSearchParams()

	result, err := index.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestSearch_ReindexReplacesRoster(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	user := makeUser("user_1", "Alice")
	require.NoError(t, index.IndexMember(ctx, user, []*domain.Character{
		makeRosterCharacter("Thrall", "mal-ganis", "world-of-warcraft"),
	}))

	// Reindex with a different roster; old character should stop matching
	require.NoError(t, index.IndexMember(ctx, user, []*domain.Character{
		makeRosterCharacter("Jaina", "mal-ganis", "world-of-warcraft"),
	}))

	params := DefaultSearchParams()
	params.Query = "Thrall"
	result, err := index.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), result.Total)

	params.Query = "Jaina"
	result, err = index.Search(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestSearch_Facets(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexMember(ctx, makeUser("user_1", "Alice"), []*domain.Character{
		makeRosterCharacter("Thrall", "mal-ganis", "world-of-warcraft"),
	}))
	require.NoError(t, index.IndexMember(ctx, makeUser("user_2", "Bob"), []*domain.Character{
		makeRosterCharacter("Jaina", "area-52", "world-of-warcraft"),
	}))

	params := DefaultSearchParams()

	result, err := index.Search(ctx, params)
	require.NoError(t, err)
	require.NotEmpty(t, result.Facets.Games)
	assert.Equal(t, "world-of-warcraft", result.Facets.Games[0].Value)
	assert.Equal(t, 2, result.Facets.Games[0].Count)
}

func TestMemberIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, index.IndexMember(ctx, makeUser("user_1", "Alice"), nil))

	err := index.Rebuild()
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}
