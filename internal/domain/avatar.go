package domain

import "time"

// AvatarSource identifies which source a resolved avatar came from.
type AvatarSource string

const (
	// AvatarSourceCustom is an image the user uploaded directly.
	AvatarSourceCustom AvatarSource = "custom"
	// AvatarSourceCharacter is a per-game character portrait.
	AvatarSourceCharacter AvatarSource = "character"
	// AvatarSourceDiscord is the linked Discord account's avatar.
	AvatarSourceDiscord AvatarSource = "discord"
	// AvatarSourceInitials means no image is available; render initials.
	AvatarSourceInitials AvatarSource = "initials"
)

// PreferenceKind tags an explicit avatar source choice.
type PreferenceKind string

const (
	// PreferenceCustom prefers the uploaded custom image.
	PreferenceCustom PreferenceKind = "custom"
	// PreferenceDiscord prefers the linked Discord avatar.
	PreferenceDiscord PreferenceKind = "discord"
	// PreferenceCharacter prefers a named character's portrait.
	PreferenceCharacter PreferenceKind = "character"
)

// AvatarPreference is a persisted choice of which avatar source to prefer.
// The referenced source may have become unavailable since the preference was
// saved (deleted character, unlinked Discord account); consumers degrade to
// the next source rather than erroring.
type AvatarPreference struct {
	Kind PreferenceKind `json:"kind"`

	// Character preferences only.
	CharacterName string `json:"character_name,omitempty"`
	// CachedAvatarURL is a denormalized copy of the portrait URL taken at
	// preference-save time, used when a payload omits the live character list.
	CachedAvatarURL string `json:"cached_avatar_url,omitempty"`
}

// IsUsable reports whether the preference is well-formed enough to honor.
// Unknown kinds and character preferences without a name are unusable;
// they are skipped, never rejected.
func (p AvatarPreference) IsUsable() bool {
	switch p.Kind {
	case PreferenceCustom, PreferenceDiscord:
		return true
	case PreferenceCharacter:
		return p.CharacterName != ""
	}
	return false
}

// CharacterPortrait is the avatar-relevant slice of a character: which game
// it belongs to, its name, and its portrait image URL.
type CharacterPortrait struct {
	GameID    string `json:"game_id"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ResolvedAvatar is the single answer to "which image represents this user".
// URL is empty exactly when Source is initials.
type ResolvedAvatar struct {
	URL    string       `json:"url,omitempty"`
	Source AvatarSource `json:"type"`
}

// AvatarSettings holds a user's persisted avatar state.
// Stored separately from User to keep auth concerns separate from presentation.
type AvatarSettings struct {
	UserID string `json:"user_id"`
	// CustomAvatarPath is the server-relative path of the uploaded image
	// (e.g. "/avatars/user-42.jpg"), empty when none is uploaded.
	CustomAvatarPath string `json:"custom_avatar_path,omitempty"`
	// CustomAvatarBlurHash is a BlurHash placeholder for the uploaded image.
	CustomAvatarBlurHash string            `json:"custom_avatar_blurhash,omitempty"`
	Preference           *AvatarPreference `json:"preference,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// Touch updates the modification timestamp.
func (s *AvatarSettings) Touch() {
	s.UpdatedAt = time.Now()
}

// NewAvatarSettings creates default avatar settings for a user.
func NewAvatarSettings(userID string) *AvatarSettings {
	now := time.Now()
	return &AvatarSettings{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
