package store

import (
	"context"
	"errors"
	"net/http"

	"github.com/guildhallapp/guildhall-server/internal/domain"
)

// ErrAvatarSettingsNotFound is returned when a member has no avatar settings
// record. Unwraps to ErrNotFound so callers can match either sentinel.
var ErrAvatarSettingsNotFound = &Error{
	Code:    http.StatusNotFound,
	Message: "avatar settings not found",
	Err:     ErrNotFound,
}

// GetAvatarSettings retrieves a member's avatar settings.
// Returns ErrAvatarSettingsNotFound if no record exists.
func (s *Store) GetAvatarSettings(ctx context.Context, userID string) (*domain.AvatarSettings, error) {
	settings, err := s.AvatarSettings.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAvatarSettingsNotFound
		}
		return nil, err
	}
	return settings, nil
}

// SaveAvatarSettings creates or updates a member's avatar settings.
func (s *Store) SaveAvatarSettings(ctx context.Context, settings *domain.AvatarSettings) error {
	err := s.AvatarSettings.Update(ctx, settings.UserID, settings)
	if errors.Is(err, ErrNotFound) {
		return s.AvatarSettings.Create(ctx, settings.UserID, settings)
	}
	return err
}

// DeleteAvatarSettings removes a member's avatar settings.
func (s *Store) DeleteAvatarSettings(ctx context.Context, userID string) error {
	return s.AvatarSettings.Delete(ctx, userID)
}
