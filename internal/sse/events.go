// Package sse implements Server-Sent Events for real-time guild updates and event broadcasting.
package sse

import (
	"time"

	"github.com/guildhallapp/guildhall-server/internal/domain"
)

// In Guildhall we primarily use SSE for server-to-client communication,
// since most interactions follow a request/response pattern.
// Full bidirectional communication may be implemented with WebSockets in the
// future if needed.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventAvatarUpdated fires when a member's avatar sources change:
	// custom upload, upload deletion, or preference change. Clients
	// re-resolve the member's avatar from the payload.
	EventAvatarUpdated EventType = "avatar.updated"

	// EventMemberUpdated fires when a member's profile changes
	// (display name, roster characters, discord link).
	EventMemberUpdated EventType = "member.updated"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"

	// EventUserPending represents a new member registration awaiting approval.
	// Only sent to admin users.
	EventUserPending EventType = "user.pending"
	// EventUserApproved represents a pending member being approved.
	// Only sent to admin users.
	EventUserApproved EventType = "user.approved"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// Filtering field for multi-user support.
	// When set, the event is only delivered to clients matching this user.
	// Empty string means "broadcast to all".
	UserID string `json:"-"` // Filter to specific user (not sent to client)
}

// AvatarUpdatedEventData is the data payload for avatar events. It carries
// everything a client needs to re-resolve the member's avatar without a
// follow-up request.
type AvatarUpdatedEventData struct {
	UserID           string                    `json:"user_id"`
	CustomAvatarPath *string                   `json:"custom_avatar_path"`
	BlurHash         string                    `json:"blur_hash,omitempty"`
	Preference       *domain.AvatarPreference  `json:"avatar_preference"`
	Resolved         domain.ResolvedAvatar     `json:"resolved"`
	Portraits        []domain.CharacterPortrait `json:"portraits,omitempty"`
}

// MemberUpdatedEventData is the data payload for member profile events.
type MemberUpdatedEventData struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// UserPendingEventData is the data payload for user pending events.
type UserPendingEventData struct {
	User *domain.User `json:"user"`
}

// UserApprovedEventData is the data payload for user approved events.
type UserApprovedEventData struct {
	User *domain.User `json:"user"`
}

// NewAvatarUpdatedEvent creates an avatar.updated event.
func NewAvatarUpdatedEvent(data AvatarUpdatedEventData) Event {
	return Event{
		Type:      EventAvatarUpdated,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewMemberUpdatedEvent creates a member.updated event.
func NewMemberUpdatedEvent(userID, displayName string) Event {
	return Event{
		Type: EventMemberUpdated,
		Data: MemberUpdatedEventData{
			UserID:      userID,
			DisplayName: displayName,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewUserPendingEvent creates a user.pending event for admin users.
func NewUserPendingEvent(user *domain.User) Event {
	return Event{
		Type:      EventUserPending,
		Data:      UserPendingEventData{User: user},
		Timestamp: time.Now(),
	}
}

// NewUserApprovedEvent creates a user.approved event for admin users.
func NewUserApprovedEvent(user *domain.User) Event {
	return Event{
		Type:      EventUserApproved,
		Data:      UserApprovedEventData{User: user},
		Timestamp: time.Now(),
	}
}
