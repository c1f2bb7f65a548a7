package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/guildhallapp/guildhall-server/internal/avatar"
	"github.com/guildhallapp/guildhall-server/internal/domain"
	domainerrors "github.com/guildhallapp/guildhall-server/internal/errors"
	"github.com/guildhallapp/guildhall-server/internal/media/images"
	"github.com/guildhallapp/guildhall-server/internal/sse"
	"github.com/guildhallapp/guildhall-server/internal/store"
)

// AvatarService manages persisted avatar state: explicit source preferences,
// uploaded custom images, and resolution of the final avatar for display.
type AvatarService struct {
	store      *store.Store
	storage    *images.Storage
	processor  *images.Processor
	resolver   *avatar.Resolver
	normalizer *avatar.Normalizer
	overlay    *avatar.OverlayStore
	sseManager *sse.Manager
	logger     *slog.Logger
}

// NewAvatarService creates a new avatar service.
func NewAvatarService(
	store *store.Store,
	storage *images.Storage,
	processor *images.Processor,
	resolver *avatar.Resolver,
	normalizer *avatar.Normalizer,
	overlay *avatar.OverlayStore,
	sseManager *sse.Manager,
	logger *slog.Logger,
) *AvatarService {
	return &AvatarService{
		store:      store,
		storage:    storage,
		processor:  processor,
		resolver:   resolver,
		normalizer: normalizer,
		overlay:    overlay,
		sseManager: sseManager,
		logger:     logger,
	}
}

// GetSettings returns a user's avatar settings, defaulting when none exist.
func (s *AvatarService) GetSettings(ctx context.Context, userID string) (*domain.AvatarSettings, error) {
	settings, err := s.store.GetAvatarSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NewAvatarSettings(userID), nil
		}
		return nil, fmt.Errorf("get avatar settings: %w", err)
	}
	return settings, nil
}

// SetPreferenceRequest describes an explicit avatar source choice.
type SetPreferenceRequest struct {
	Kind          domain.PreferenceKind `json:"kind" validate:"required,oneof=custom discord character"`
	CharacterName string                `json:"character_name,omitempty" validate:"omitempty,max=100"`
}

// SetPreference saves an explicit avatar source preference.
// Character preferences snapshot the character's current portrait URL so the
// preference keeps working when later payloads omit the character list.
func (s *AvatarService) SetPreference(ctx context.Context, userID string, req SetPreferenceRequest) (*domain.AvatarSettings, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	pref := domain.AvatarPreference{Kind: req.Kind}

	if req.Kind == domain.PreferenceCharacter {
		if req.CharacterName == "" {
			return nil, domainerrors.Validation("character_name is required for character preferences")
		}
		pref.CharacterName = req.CharacterName

		// Snapshot the portrait URL from the live roster. Name matching is
		// exact and case-sensitive, same as resolution.
		characters, err := s.store.ListUserCharacters(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list characters: %w", err)
		}
		for _, c := range characters {
			if c.Name == req.CharacterName && c.PortraitURL != "" {
				pref.CachedAvatarURL = c.PortraitURL
				break
			}
		}
	}

	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings.Preference = &pref
	settings.Touch()

	if err := s.store.SaveAvatarSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("save avatar settings: %w", err)
	}

	s.logger.Info("avatar preference set",
		"user_id", userID,
		"kind", pref.Kind,
	)

	refreshViewerOverlay(ctx, s.store, s.overlay, s.logger, userID)
	s.broadcastAvatarUpdate(ctx, userID, settings)

	return settings, nil
}

// ClearPreference removes an explicit preference, returning the user to the
// default source priority.
func (s *AvatarService) ClearPreference(ctx context.Context, userID string) (*domain.AvatarSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings.Preference = nil
	settings.Touch()

	if err := s.store.SaveAvatarSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("save avatar settings: %w", err)
	}

	s.logger.Info("avatar preference cleared", "user_id", userID)

	refreshViewerOverlay(ctx, s.store, s.overlay, s.logger, userID)
	s.broadcastAvatarUpdate(ctx, userID, settings)

	return settings, nil
}

// UploadAvatar validates, processes, and stores a custom avatar image.
func (s *AvatarService) UploadAvatar(ctx context.Context, userID string, imageData []byte) (*domain.AvatarSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	processed, err := s.processor.Process(imageData)
	if err != nil {
		return nil, err
	}

	if err := s.storage.Save(userID, processed.Data); err != nil {
		return nil, fmt.Errorf("save avatar image: %w", err)
	}

	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings.CustomAvatarPath = fmt.Sprintf("/avatars/%s.jpg", userID)
	settings.CustomAvatarBlurHash = processed.BlurHash
	settings.Touch()

	if err := s.store.SaveAvatarSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("save avatar settings: %w", err)
	}

	s.logger.Info("avatar uploaded",
		"user_id", userID,
		"width", processed.Width,
		"height", processed.Height,
	)

	refreshViewerOverlay(ctx, s.store, s.overlay, s.logger, userID)
	s.broadcastAvatarUpdate(ctx, userID, settings)

	return settings, nil
}

// DeleteAvatar removes the custom avatar image.
// A custom preference is left in place; resolution degrades past it until
// the user uploads a new image or changes the preference.
func (s *AvatarService) DeleteAvatar(ctx context.Context, userID string) (*domain.AvatarSettings, error) {
	if err := s.storage.Delete(userID); err != nil {
		s.logger.Warn("failed to delete avatar image", "user_id", userID, "error", err)
	}

	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	settings.CustomAvatarPath = ""
	settings.CustomAvatarBlurHash = ""
	settings.Touch()

	if err := s.store.SaveAvatarSettings(ctx, settings); err != nil {
		return nil, fmt.Errorf("save avatar settings: %w", err)
	}

	s.logger.Info("avatar deleted", "user_id", userID)

	refreshViewerOverlay(ctx, s.store, s.overlay, s.logger, userID)
	s.broadcastAvatarUpdate(ctx, userID, settings)

	return settings, nil
}

// Resolve returns the avatar to display for a user in the given game context.
// Always succeeds: when no source is usable the result is the initials
// placeholder.
func (s *AvatarService) Resolve(ctx context.Context, user *domain.User, gameID string) (domain.ResolvedAvatar, error) {
	src, err := s.buildSourceSet(ctx, user)
	if err != nil {
		return domain.ResolvedAvatar{}, err
	}
	return s.resolver.Resolve(src, gameID), nil
}

// ResolveByID is Resolve for callers that only hold a user ID.
func (s *AvatarService) ResolveByID(ctx context.Context, userID, gameID string) (domain.ResolvedAvatar, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return domain.ResolvedAvatar{}, fmt.Errorf("get user: %w", err)
	}
	return s.Resolve(ctx, user, gameID)
}

// buildSourceSet assembles a user's avatar sources from persisted state and
// runs them through the normalizer, so the viewer overlay reconciles the
// payload the same way it does for every other call site.
func (s *AvatarService) buildSourceSet(ctx context.Context, user *domain.User) (*avatar.SourceSet, error) {
	dto := avatar.DTO{
		ID:         user.ID,
		DiscordID:  user.DiscordID,
		AvatarHash: user.DiscordAvatar,
	}

	settings, err := s.store.GetAvatarSettings(ctx, user.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get avatar settings: %w", err)
	}
	if err == nil {
		if settings.CustomAvatarPath != "" {
			dto.CustomAvatarPath = avatar.Value(settings.CustomAvatarPath)
		}
		if settings.Preference != nil {
			dto.Preference = avatar.Value(*settings.Preference)
		}
	}

	characters, err := s.store.ListUserCharacters(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	if len(characters) > 0 {
		dto.Portraits = avatar.Value(domain.Portraits(characters))
	}

	return s.normalizer.ToSourceSet(dto), nil
}

// broadcastAvatarUpdate emits an SSE event with the user's new avatar state
// and its resolved result so clients can update without a refetch.
func (s *AvatarService) broadcastAvatarUpdate(ctx context.Context, userID string, settings *domain.AvatarSettings) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to get user for SSE event", "user_id", userID, "error", err)
		return
	}

	resolved, err := s.Resolve(ctx, user, "")
	if err != nil {
		s.logger.Warn("failed to resolve avatar for SSE event", "user_id", userID, "error", err)
		return
	}

	characters, err := s.store.ListUserCharacters(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to list characters for SSE event", "user_id", userID, "error", err)
		characters = nil
	}

	data := sse.AvatarUpdatedEventData{
		UserID:     userID,
		BlurHash:   settings.CustomAvatarBlurHash,
		Preference: settings.Preference,
		Resolved:   resolved,
		Portraits:  domain.Portraits(characters),
	}
	if settings.CustomAvatarPath != "" {
		path := settings.CustomAvatarPath
		data.CustomAvatarPath = &path
	}

	s.sseManager.Emit(sse.NewAvatarUpdatedEvent(data))
}
