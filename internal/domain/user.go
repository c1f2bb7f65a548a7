package domain

import "time"

// Role represents the user's permission level in the guild.
type Role string

const (
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
	// RoleMember grants standard member access.
	RoleMember Role = "member"
)

// UserStatus represents the user's account status.
type UserStatus string

const (
	// UserStatusActive indicates the user can log in and use the system.
	UserStatusActive UserStatus = "active"
	// UserStatusPending indicates the user is awaiting admin approval.
	UserStatusPending UserStatus = "pending"
)

// User represents an authenticated guild member account.
type User struct {
	Syncable
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	IsRoot       bool       `json:"is_root"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status,omitempty"` // empty = active for backward compat
	DisplayName  string     `json:"display_name"`
	LastLoginAt  time.Time  `json:"last_login_at"`

	// Discord link. DiscordAvatar is the opaque avatar hash from the
	// Discord API; some upstream payloads pre-resolve it to a full URL.
	DiscordID     string `json:"discord_id,omitempty"`
	DiscordAvatar string `json:"discord_avatar,omitempty"`
}

// IsAdmin returns true if the user has administrative privileges.
// Root users are automatically admins, regardless of their role field.
func (u *User) IsAdmin() bool {
	return u.IsRoot || u.Role == RoleAdmin
}

// IsActive returns true if the user can log in and use the system.
// Empty status is treated as active for backward compatibility.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}

// IsPending returns true if the user is awaiting admin approval.
func (u *User) IsPending() bool {
	return u.Status == UserStatusPending
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// HasDiscordLink returns true if the user has linked a Discord account.
func (u *User) HasDiscordLink() bool {
	return u.DiscordID != ""
}

// Session represents an authenticated device session.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`

	// Device information - structured data from client
	DeviceType    string `json:"device_type"` // mobile, desktop, web
	Platform      string `json:"platform"`    // iOS, Android, Windows, macOS, Linux, Web
	ClientName    string `json:"client_name"`
	ClientVersion string `json:"client_version"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
