// Package store defines the persistence interface for the Guildhall server.
package store

import (
	"context"

	"github.com/guildhallapp/guildhall-server/internal/domain"
)

// Reader describes the read side of the persistence layer. Handlers and
// services that only inspect state should depend on this rather than the
// concrete Store.
type Reader interface {
	// Users
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListPendingUsers(ctx context.Context) ([]*domain.User, error)

	// Auth sessions
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error)

	// Characters
	ListUserCharacters(ctx context.Context, userID string) ([]*domain.Character, error)

	// Avatar settings
	GetAvatarSettings(ctx context.Context, userID string) (*domain.AvatarSettings, error)

	// Instance
	GetInstance(ctx context.Context) (*domain.Instance, error)
}

// Writer describes the write side of the persistence layer.
type Writer interface {
	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, user *domain.User) error

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteAllUserSessions(ctx context.Context, userID string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Characters
	ReplaceUserCharacters(ctx context.Context, userID string, characters []*domain.Character) error

	// Avatar settings
	SaveAvatarSettings(ctx context.Context, settings *domain.AvatarSettings) error
	DeleteAvatarSettings(ctx context.Context, userID string) error

	// Instance
	InitializeInstance(ctx context.Context) (*domain.Instance, error)
	UpdateInstance(ctx context.Context, instance *domain.Instance) error
}

// ReadWriter combines both sides for callers that need full access.
type ReadWriter interface {
	Reader
	Writer
}
