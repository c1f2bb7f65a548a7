package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/guildhallapp/guildhall-server/internal/color"
	"github.com/guildhallapp/guildhall-server/internal/domain"
	"github.com/guildhallapp/guildhall-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMyProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile",
		Summary:     "Get my profile",
		Description: "Returns the authenticated member's profile with the resolved avatar",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "setAvatarPreference",
		Method:      http.MethodPut,
		Path:        "/api/v1/profile/avatar-preference",
		Summary:     "Set avatar preference",
		Description: "Pins the avatar to a specific source: the uploaded image, the linked Discord avatar, or a named character's portrait",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetAvatarPreference)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearAvatarPreference",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profile/avatar-preference",
		Summary:     "Clear avatar preference",
		Description: "Removes the explicit avatar preference, returning to the default source priority",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleClearAvatarPreference)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadAvatar",
		Method:      http.MethodPost,
		Path:        "/api/v1/profile/avatar",
		Summary:     "Upload avatar image",
		Description: "Uploads a new custom avatar image for the authenticated member",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadAvatar)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteAvatar",
		Method:      http.MethodDelete,
		Path:        "/api/v1/profile/avatar",
		Summary:     "Delete avatar image",
		Description: "Removes the custom avatar image",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteAvatar)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyCharacters",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile/characters",
		Summary:     "Get my character roster",
		Description: "Returns the authenticated member's synced characters",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMyCharacters)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceMyCharacters",
		Method:      http.MethodPut,
		Path:        "/api/v1/profile/characters",
		Summary:     "Replace my character roster",
		Description: "Atomically replaces the authenticated member's entire character roster",
		Tags:        []string{"Profile"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceMyCharacters)

	// Avatar image serving (chi direct, not huma).
	s.router.Get("/avatars/{id}", s.handleServeAvatar)
}

// === Request/Response Types ===

// AvatarPreferenceResponse describes a persisted avatar source choice.
type AvatarPreferenceResponse struct {
	Kind          string `json:"kind" doc:"Preferred source: custom, discord, or character"`
	CharacterName string `json:"character_name,omitempty" doc:"Character name for character preferences"`
}

// ResolvedAvatarResponse is the avatar to display for a member.
type ResolvedAvatarResponse struct {
	URL    string `json:"url,omitempty" doc:"Avatar image URL, empty when source is initials"`
	Source string `json:"type" doc:"Winning source: custom, character, discord, or initials"`
}

// AvatarSettingsResponse contains the member's persisted avatar state.
type AvatarSettingsResponse struct {
	CustomAvatarPath     string                    `json:"custom_avatar_path,omitempty" doc:"Server-relative path of the uploaded image"`
	CustomAvatarBlurHash string                    `json:"custom_avatar_blurhash,omitempty" doc:"BlurHash placeholder for the uploaded image"`
	Preference           *AvatarPreferenceResponse `json:"preference,omitempty" doc:"Explicit source preference, if any"`
}

// ProfileResponse contains the member's own profile.
type ProfileResponse struct {
	User           UserResponse           `json:"user" doc:"Account information"`
	Avatar         ResolvedAvatarResponse `json:"avatar" doc:"Resolved avatar for display"`
	Initials       string                 `json:"initials" doc:"Initials for the placeholder avatar"`
	AvatarColor    string                 `json:"avatar_color" doc:"Deterministic placeholder color"`
	AvatarSettings AvatarSettingsResponse `json:"avatar_settings" doc:"Persisted avatar state"`
}

// ProfileOutput wraps the profile response for Huma.
type ProfileOutput struct {
	Body ProfileResponse
}

// GetProfileInput carries the optional game context for avatar resolution.
type GetProfileInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Game          string `query:"game" doc:"Game slug for contextual character portraits"`
}

// SetAvatarPreferenceInput contains the preference request.
type SetAvatarPreferenceInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          struct {
		Kind          string `json:"kind" enum:"custom,discord,character" doc:"Preferred avatar source"`
		CharacterName string `json:"character_name,omitempty" maxLength:"100" doc:"Character name (required for character preferences)"`
	}
}

// AvatarSettingsOutput wraps the avatar settings response for Huma.
type AvatarSettingsOutput struct {
	Body AvatarSettingsResponse
}

// UploadAvatarInput contains the avatar upload request.
type UploadAvatarInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ContentType   string `header:"Content-Type" doc:"Image content type"`
	RawBody       []byte
}

// CharacterResponse contains one roster character.
type CharacterResponse struct {
	ID          string `json:"id" doc:"Character ID"`
	GameID      string `json:"game_id" doc:"Game slug"`
	Name        string `json:"name" doc:"Character name"`
	Realm       string `json:"realm,omitempty" doc:"Realm or server slug"`
	Class       string `json:"class,omitempty" doc:"Character class"`
	Level       int    `json:"level,omitempty" doc:"Character level"`
	PortraitURL string `json:"portrait_url,omitempty" doc:"Portrait image URL"`
}

// RosterResponse contains a member's character roster.
type RosterResponse struct {
	Characters []CharacterResponse `json:"characters" doc:"Synced characters"`
}

// RosterOutput wraps the roster response for Huma.
type RosterOutput struct {
	Body RosterResponse
}

// ReplaceRosterInput contains the roster sync request.
type ReplaceRosterInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          struct {
		Characters []service.CharacterInput `json:"characters" doc:"Full replacement roster"`
	}
}

// === Handlers ===

func (s *Server) handleGetMyProfile(ctx context.Context, input *GetProfileInput) (*ProfileOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	return s.buildProfileResponse(ctx, user, input.Game)
}

func (s *Server) handleSetAvatarPreference(ctx context.Context, input *SetAvatarPreferenceInput) (*AvatarSettingsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.services.Avatar.SetPreference(ctx, userID, service.SetPreferenceRequest{
		Kind:          domain.PreferenceKind(input.Body.Kind),
		CharacterName: input.Body.CharacterName,
	})
	if err != nil {
		return nil, err
	}

	return &AvatarSettingsOutput{Body: mapAvatarSettings(settings)}, nil
}

func (s *Server) handleClearAvatarPreference(ctx context.Context, _ *AuthenticatedInput) (*AvatarSettingsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.services.Avatar.ClearPreference(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &AvatarSettingsOutput{Body: mapAvatarSettings(settings)}, nil
}

func (s *Server) handleUploadAvatar(ctx context.Context, input *UploadAvatarInput) (*AvatarSettingsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if len(input.RawBody) > MaxUploadSize {
		return nil, huma.NewError(http.StatusRequestEntityTooLarge, "avatar image exceeds upload limit")
	}

	if !isValidImageType(input.ContentType) {
		return nil, huma.Error400BadRequest(
			fmt.Sprintf("invalid image type '%s', must be image/jpeg, image/png, or image/webp", input.ContentType),
		)
	}

	settings, err := s.services.Avatar.UploadAvatar(ctx, userID, input.RawBody)
	if err != nil {
		return nil, err
	}

	return &AvatarSettingsOutput{Body: mapAvatarSettings(settings)}, nil
}

func (s *Server) handleDeleteAvatar(ctx context.Context, _ *AuthenticatedInput) (*AvatarSettingsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.services.Avatar.DeleteAvatar(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &AvatarSettingsOutput{Body: mapAvatarSettings(settings)}, nil
}

func (s *Server) handleGetMyCharacters(ctx context.Context, _ *AuthenticatedInput) (*RosterOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	characters, err := s.services.Roster.ListRoster(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &RosterOutput{Body: mapRoster(characters)}, nil
}

func (s *Server) handleReplaceMyCharacters(ctx context.Context, input *ReplaceRosterInput) (*RosterOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	characters, err := s.services.Roster.ReplaceRoster(ctx, userID, input.Body.Characters)
	if err != nil {
		return nil, err
	}

	return &RosterOutput{Body: mapRoster(characters)}, nil
}

func (s *Server) handleServeAvatar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	// Remove .jpg extension if present.
	id = strings.TrimSuffix(id, ".jpg")

	data, err := s.avatarStorage.Get(id)
	if err != nil {
		http.Error(w, "avatar not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", CacheOneDay)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// === Helpers ===

func (s *Server) buildProfileResponse(ctx context.Context, user *domain.User, gameID string) (*ProfileOutput, error) {
	settings, err := s.services.Avatar.GetSettings(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	resolved, err := s.services.Avatar.Resolve(ctx, user, gameID)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{
		Body: ProfileResponse{
			User:           mapUserResponse(user),
			Avatar:         mapResolvedAvatar(resolved),
			Initials:       color.Initials(user.Name()),
			AvatarColor:    color.ForUser(user.ID),
			AvatarSettings: mapAvatarSettings(settings),
		},
	}, nil
}

func mapAvatarSettings(settings *domain.AvatarSettings) AvatarSettingsResponse {
	resp := AvatarSettingsResponse{
		CustomAvatarPath:     settings.CustomAvatarPath,
		CustomAvatarBlurHash: settings.CustomAvatarBlurHash,
	}
	if settings.Preference != nil {
		resp.Preference = &AvatarPreferenceResponse{
			Kind:          string(settings.Preference.Kind),
			CharacterName: settings.Preference.CharacterName,
		}
	}
	return resp
}

func mapResolvedAvatar(resolved domain.ResolvedAvatar) ResolvedAvatarResponse {
	return ResolvedAvatarResponse{
		URL:    resolved.URL,
		Source: string(resolved.Source),
	}
}

func mapRoster(characters []*domain.Character) RosterResponse {
	resp := RosterResponse{
		Characters: make([]CharacterResponse, 0, len(characters)),
	}
	for _, c := range characters {
		resp.Characters = append(resp.Characters, CharacterResponse{
			ID:          c.ID,
			GameID:      c.GameID,
			Name:        c.Name,
			Realm:       c.Realm,
			Class:       c.Class,
			Level:       c.Level,
			PortraitURL: c.PortraitURL,
		})
	}
	return resp
}

// isValidImageType checks if the content type is a valid image type.
// Handles content types with parameters (e.g., "image/jpeg; charset=utf-8").
func isValidImageType(contentType string) bool {
	mediaType := contentType
	if before, _, ok := strings.Cut(contentType, ";"); ok {
		mediaType = strings.TrimSpace(before)
	}

	switch mediaType {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}
