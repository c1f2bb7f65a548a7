package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guildhallapp/guildhall-server/internal/color"
	"github.com/guildhallapp/guildhall-server/internal/domain"
	domainerrors "github.com/guildhallapp/guildhall-server/internal/errors"
	"github.com/guildhallapp/guildhall-server/internal/search"
	"github.com/guildhallapp/guildhall-server/internal/store"
)

// MemberService provides the guild member directory: listings, profiles,
// and full-text search, all with resolved avatars attached.
type MemberService struct {
	store       *store.Store
	memberIndex *search.MemberIndex
	avatars     *AvatarService
	logger      *slog.Logger
}

// NewMemberService creates a new member service.
func NewMemberService(
	store *store.Store,
	memberIndex *search.MemberIndex,
	avatars *AvatarService,
	logger *slog.Logger,
) *MemberService {
	return &MemberService{
		store:       store,
		memberIndex: memberIndex,
		avatars:     avatars,
		logger:      logger,
	}
}

// MemberSummary is a directory entry for one guild member.
type MemberSummary struct {
	UserID      string                    `json:"user_id"`
	DisplayName string                    `json:"display_name"`
	Role        domain.Role               `json:"role"`
	Avatar      domain.ResolvedAvatar     `json:"avatar"`
	Initials    string                    `json:"initials"`
	AvatarColor string                    `json:"avatar_color"`
	Characters  []domain.CharacterPortrait `json:"characters,omitempty"`
}

// ListMembers returns all active members with avatars resolved for the given
// game context. Initials and a deterministic color always accompany the
// avatar so clients can render the placeholder without extra requests.
func (s *MemberService) ListMembers(ctx context.Context, gameID string) ([]MemberSummary, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	members := make([]MemberSummary, 0, len(users))
	for _, user := range users {
		if user.IsPending() {
			continue
		}

		summary, err := s.buildSummary(ctx, user, gameID)
		if err != nil {
			s.logger.Warn("failed to build member summary", "user_id", user.ID, "error", err)
			continue
		}
		members = append(members, summary)
	}

	return members, nil
}

// GetMember returns one member's directory entry.
func (s *MemberService) GetMember(ctx context.Context, userID, gameID string) (*MemberSummary, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("member not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	summary, err := s.buildSummary(ctx, user, gameID)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// SearchMembers runs a full-text search over the member directory.
func (s *MemberService) SearchMembers(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}

	result, err := s.memberIndex.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search members: %w", err)
	}
	return result, nil
}

// BackfillSearchIndex rebuilds the member index from the store.
// Run at startup so the index survives being deleted or version-bumped.
func (s *MemberService) BackfillSearchIndex(ctx context.Context) error {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	docs := make([]*search.MemberDocument, 0, len(users))
	for _, user := range users {
		characters, err := s.store.ListUserCharacters(ctx, user.ID)
		if err != nil {
			s.logger.Warn("failed to load characters for backfill", "user_id", user.ID, "error", err)
			characters = nil
		}
		docs = append(docs, search.MemberToDocument(user, characters))
	}

	if err := s.memberIndex.IndexMembers(docs); err != nil {
		return fmt.Errorf("index members: %w", err)
	}

	s.logger.Info("member search index backfilled", "count", len(docs))
	return nil
}

// buildSummary assembles a member's directory entry with a resolved avatar.
func (s *MemberService) buildSummary(ctx context.Context, user *domain.User, gameID string) (MemberSummary, error) {
	resolved, err := s.avatars.Resolve(ctx, user, gameID)
	if err != nil {
		return MemberSummary{}, err
	}

	characters, err := s.store.ListUserCharacters(ctx, user.ID)
	if err != nil {
		return MemberSummary{}, fmt.Errorf("list characters: %w", err)
	}

	return MemberSummary{
		UserID:      user.ID,
		DisplayName: user.Name(),
		Role:        user.Role,
		Avatar:      resolved,
		Initials:    color.Initials(user.Name()),
		AvatarColor: color.ForUser(user.ID),
		Characters:  domain.Portraits(characters),
	}, nil
}
