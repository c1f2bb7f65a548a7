package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/guildhallapp/guildhall-server/internal/avatar"
	"github.com/guildhallapp/guildhall-server/internal/domain"
	"github.com/guildhallapp/guildhall-server/internal/store"
)

// loadOverlay builds a user's overlay from persisted avatar state. Every
// field comes back defined (null when cleared), so stale values from cached
// client payloads are always overridden.
func loadOverlay(ctx context.Context, st *store.Store, userID string) (*avatar.Overlay, error) {
	ov := avatar.Overlay{UserID: userID}

	settings, err := st.GetAvatarSettings(ctx, userID)
	switch {
	case err == nil:
		if settings.Preference != nil {
			ov.Preference = avatar.Value(*settings.Preference)
		} else {
			ov.Preference = avatar.Null[domain.AvatarPreference]()
		}
		if settings.CustomAvatarPath != "" {
			ov.CustomAvatarPath = avatar.Value(settings.CustomAvatarPath)
		} else {
			ov.CustomAvatarPath = avatar.Null[string]()
		}
	case errors.Is(err, store.ErrNotFound):
		ov.Preference = avatar.Null[domain.AvatarPreference]()
		ov.CustomAvatarPath = avatar.Null[string]()
	default:
		return nil, err
	}

	characters, err := st.ListUserCharacters(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(characters) > 0 {
		ov.Portraits = avatar.Value(domain.Portraits(characters))
	} else {
		ov.Portraits = avatar.Null[[]domain.CharacterPortrait]()
	}

	return &ov, nil
}

// refreshViewerOverlay re-pins the overlay from stored state after a
// mutation, so the overlay never reports values older than what was just
// saved. Only acts when the slot already belongs to the mutated user.
func refreshViewerOverlay(ctx context.Context, st *store.Store, overlay *avatar.OverlayStore, logger *slog.Logger, userID string) {
	current := overlay.Get()
	if current == nil || current.UserID != userID {
		return
	}

	fresh, err := loadOverlay(ctx, st, userID)
	if err != nil {
		if logger != nil {
			logger.Warn("Failed to refresh avatar overlay",
				"user_id", userID,
				"error", err,
			)
		}
		return
	}

	overlay.Set(fresh)
}
