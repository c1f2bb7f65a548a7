package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/guildhallapp/guildhall-server/internal/avatar"
	"github.com/guildhallapp/guildhall-server/internal/domain"
	domainerrors "github.com/guildhallapp/guildhall-server/internal/errors"
	"github.com/guildhallapp/guildhall-server/internal/id"
	"github.com/guildhallapp/guildhall-server/internal/sse"
	"github.com/guildhallapp/guildhall-server/internal/store"
	"github.com/guildhallapp/guildhall-server/internal/util"
)

// MaxRosterSize caps how many characters one member can sync.
const MaxRosterSize = 100

// RosterService manages members' in-game character rosters.
// Clients sync the full roster from the game's character source; the server
// replaces rather than merges.
type RosterService struct {
	store      *store.Store
	overlay    *avatar.OverlayStore
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewRosterService creates a new roster service.
func NewRosterService(store *store.Store, overlay *avatar.OverlayStore, sseManager *sse.Manager, logger *slog.Logger) *RosterService {
	return &RosterService{
		store:      store,
		overlay:    overlay,
		sseManager: sseManager,
		logger:     logger,
	}
}

// CharacterInput is one character in a roster sync payload.
type CharacterInput struct {
	Game        string `json:"game" validate:"required,max=100"`
	Name        string `json:"name" validate:"required,max=100"`
	Realm       string `json:"realm,omitempty" validate:"omitempty,max=100"`
	Class       string `json:"class,omitempty" validate:"omitempty,max=50"`
	Level       int    `json:"level,omitempty" validate:"omitempty,min=0,max=1000"`
	PortraitURL string `json:"portrait_url,omitempty" validate:"omitempty,url,max=2048"`
}

// ListRoster returns a member's characters.
func (s *RosterService) ListRoster(ctx context.Context, userID string) ([]*domain.Character, error) {
	characters, err := s.store.ListUserCharacters(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return characters, nil
}

// ReplaceRoster atomically replaces a member's entire character roster.
// Game and realm names are normalized to slugs for stable identifiers.
func (s *RosterService) ReplaceRoster(ctx context.Context, userID string, inputs []CharacterInput) ([]*domain.Character, error) {
	if len(inputs) > MaxRosterSize {
		return nil, domainerrors.Validationf("roster exceeds maximum of %d characters", MaxRosterSize)
	}

	characters := make([]*domain.Character, 0, len(inputs))
	for i, input := range inputs {
		if err := validate.Struct(input); err != nil {
			return nil, formatValidationError(err)
		}

		gameID := util.Slugify(input.Game)
		if gameID == "" {
			return nil, domainerrors.Validationf("character %d has an invalid game name", i)
		}

		characterID, err := id.Generate("char")
		if err != nil {
			return nil, fmt.Errorf("generate character ID: %w", err)
		}

		character := &domain.Character{
			Syncable: domain.Syncable{
				ID: characterID,
			},
			UserID:      userID,
			GameID:      gameID,
			Name:        input.Name,
			Realm:       util.Slugify(input.Realm),
			Class:       input.Class,
			Level:       input.Level,
			PortraitURL: input.PortraitURL,
		}
		character.InitTimestamps()
		characters = append(characters, character)
	}

	if err := s.store.ReplaceUserCharacters(ctx, userID, characters); err != nil {
		return nil, fmt.Errorf("replace roster: %w", err)
	}

	s.logger.Info("roster replaced",
		"user_id", userID,
		"character_count", len(characters),
	)

	// Portraits feed avatar resolution, so a pinned overlay must follow.
	refreshViewerOverlay(ctx, s.store, s.overlay, s.logger, userID)
	s.broadcastMemberUpdate(ctx, userID)

	return characters, nil
}

// broadcastMemberUpdate emits a member.updated SSE event after roster changes.
func (s *RosterService) broadcastMemberUpdate(ctx context.Context, userID string) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to get user for SSE event", "user_id", userID, "error", err)
		return
	}

	s.sseManager.Emit(sse.NewMemberUpdatedEvent(user.ID, user.DisplayName))
}
