package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhallapp/guildhall-server/internal/avatar"
	"github.com/guildhallapp/guildhall-server/internal/domain"
	"github.com/guildhallapp/guildhall-server/internal/media/images"
	"github.com/guildhallapp/guildhall-server/internal/search"
	"github.com/guildhallapp/guildhall-server/internal/sse"
	"github.com/guildhallapp/guildhall-server/internal/store"
)

func setupMemberTest(t *testing.T) (*MemberService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "guildhall-member-test-*")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	index, err := search.NewMemberIndex(search.Options{
		DataPath: tmpDir,
		Logger:   logger,
	})
	require.NoError(t, err)
	s.SetSearchIndexer(index)

	storage, err := images.NewStorage(tmpDir)
	require.NoError(t, err)
	overlay := avatar.NewOverlayStore()
	avatars := NewAvatarService(
		s,
		storage,
		images.NewProcessor(5*1024*1024, logger),
		avatar.NewResolver("http://localhost:3000"),
		avatar.NewNormalizer(overlay),
		overlay,
		sse.NewManager(logger),
		logger,
	)

	service := NewMemberService(s, index, avatars, logger)

	cleanup := func() {
		_ = index.Close()
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return service, s, cleanup
}

func createMember(t *testing.T, s *store.Store, userID, displayName string, status domain.UserStatus) *domain.User {
	t.Helper()

	user := &domain.User{
		Syncable:    domain.Syncable{ID: userID},
		Email:       userID + "@example.com",
		DisplayName: displayName,
		Role:        domain.RoleMember,
		Status:      status,
	}
	user.InitTimestamps()
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestMemberService_ListMembers(t *testing.T) {
	service, s, cleanup := setupMemberTest(t)
	defer cleanup()

	ctx := context.Background()
	createMember(t, s, "user_1", "Alice Cooper", domain.UserStatusActive)
	createMember(t, s, "user_2", "Bob Dylan", domain.UserStatusActive)

	members, err := service.ListMembers(ctx, "")
	require.NoError(t, err)
	require.Len(t, members, 2)

	byID := make(map[string]MemberSummary, len(members))
	for _, m := range members {
		byID[m.UserID] = m
	}

	alice := byID["user_1"]
	assert.Equal(t, "Alice Cooper", alice.DisplayName)
	assert.Equal(t, "AC", alice.Initials)
	assert.NotEmpty(t, alice.AvatarColor)
	assert.Equal(t, domain.AvatarSourceInitials, alice.Avatar.Source)
}

func TestMemberService_ListMembers_SkipsPending(t *testing.T) {
	service, s, cleanup := setupMemberTest(t)
	defer cleanup()

	ctx := context.Background()
	createMember(t, s, "user_1", "Alice Cooper", domain.UserStatusActive)
	createMember(t, s, "user_2", "Bob Dylan", domain.UserStatusPending)

	members, err := service.ListMembers(ctx, "")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "user_1", members[0].UserID)
}

func TestMemberService_ListMembers_GameContextPortraits(t *testing.T) {
	service, s, cleanup := setupMemberTest(t)
	defer cleanup()

	ctx := context.Background()
	createMember(t, s, "user_1", "Alice Cooper", domain.UserStatusActive)

	char := &domain.Character{
		Syncable:    domain.Syncable{ID: "char_1"},
		UserID:      "user_1",
		GameID:      "world-of-warcraft",
		Name:        "Thrall",
		PortraitURL: "https://render.example.com/thrall.png",
	}
	char.InitTimestamps()
	require.NoError(t, s.ReplaceUserCharacters(ctx, "user_1", []*domain.Character{char}))

	members, err := service.ListMembers(ctx, "world-of-warcraft")
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, domain.AvatarSourceCharacter, members[0].Avatar.Source)
	assert.Equal(t, "https://render.example.com/thrall.png", members[0].Avatar.URL)
	require.Len(t, members[0].Characters, 1)
	assert.Equal(t, "Thrall", members[0].Characters[0].Name)
}

func TestMemberService_GetMember(t *testing.T) {
	service, s, cleanup := setupMemberTest(t)
	defer cleanup()

	ctx := context.Background()
	createMember(t, s, "user_1", "Alice Cooper", domain.UserStatusActive)

	member, err := service.GetMember(ctx, "user_1", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", member.DisplayName)
}

func TestMemberService_GetMember_NotFound(t *testing.T) {
	service, _, cleanup := setupMemberTest(t)
	defer cleanup()

	_, err := service.GetMember(context.Background(), "user_missing", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "member not found")
}

func TestMemberService_SearchMembers(t *testing.T) {
	service, s, cleanup := setupMemberTest(t)
	defer cleanup()

	ctx := context.Background()
	createMember(t, s, "user_1", "Alice Cooper", domain.UserStatusActive)
	createMember(t, s, "user_2", "Bob Dylan", domain.UserStatusActive)

	params := search.DefaultSearchParams()
	params.Query = "alice"

	result, err := service.SearchMembers(ctx, params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "user_1", result.Hits[0].ID)
}

func TestMemberService_SearchMembers_ClampsLimit(t *testing.T) {
	service, s, cleanup := setupMemberTest(t)
	defer cleanup()

	ctx := context.Background()
	createMember(t, s, "user_1", "Alice Cooper", domain.UserStatusActive)

	params := search.DefaultSearchParams()
	params.Limit = 100000

	// Oversized limits are clamped rather than rejected.
	_, err := service.SearchMembers(ctx, params)
	require.NoError(t, err)
}

func TestMemberService_BackfillSearchIndex(t *testing.T) {
	service, s, cleanup := setupMemberTest(t)
	defer cleanup()

	ctx := context.Background()
	createMember(t, s, "user_1", "Alice Cooper", domain.UserStatusActive)
	createMember(t, s, "user_2", "Bob Dylan", domain.UserStatusActive)

	require.NoError(t, service.memberIndex.Rebuild())

	require.NoError(t, service.BackfillSearchIndex(ctx))

	params := search.DefaultSearchParams()
	params.Query = "dylan"

	result, err := service.SearchMembers(ctx, params)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "user_2", result.Hits[0].ID)
}
