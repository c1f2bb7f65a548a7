package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/guildhallapp/guildhall-server/internal/domain"
)

// EventEmitter is the interface for emitting SSE events.
// Store uses this to broadcast changes without depending on SSE implementation details.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// SearchIndexer is the interface for updating the member search index.
// Store uses this to keep search in sync without depending on search implementation.
type SearchIndexer interface {
	IndexMember(ctx context.Context, user *domain.User, characters []*domain.Character) error
	DeleteMember(ctx context.Context, userID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexMember is a no-op.
func (NoopSearchIndexer) IndexMember(context.Context, *domain.User, []*domain.Character) error {
	return nil
}

// DeleteMember is a no-op.
func (NoopSearchIndexer) DeleteMember(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	// SSE event emitter for broadcasting changes.
	eventEmitter EventEmitter

	// Search indexer for keeping member search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// Generic entities
	AvatarSettings *Entity[domain.AvatarSettings]
}

// New creates a new Store instance with the given database path and event emitter.
// The emitter is required and used to broadcast store changes via SSE.
func New(path string, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:           db,
		logger:       logger,
		eventEmitter: emitter,
	}

	// Initialize generic entities
	store.initAvatarSettings()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// indexMember pushes a user's current state into the member search index.
// Index failures are logged, never propagated; search lags rather than
// blocking writes.
func (s *Store) indexMember(ctx context.Context, user *domain.User) {
	if s.searchIndexer == nil {
		return
	}

	characters, err := s.ListUserCharacters(ctx, user.ID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to load characters for search index", "user_id", user.ID, "error", err)
		}
		characters = nil
	}

	if err := s.searchIndexer.IndexMember(ctx, user, characters); err != nil && s.logger != nil {
		s.logger.Warn("failed to index member", "user_id", user.ID, "error", err)
	}
}

// indexMemberByID is indexMember for callers that only hold a user ID.
func (s *Store) indexMemberByID(ctx context.Context, userID string) {
	if s.searchIndexer == nil {
		return
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to load user for search index", "user_id", userID, "error", err)
		}
		return
	}

	s.indexMember(ctx, user)
}

// initAvatarSettings initializes the AvatarSettings entity on the store.
// Settings are keyed by user ID, one record per member.
func (s *Store) initAvatarSettings() {
	s.AvatarSettings = NewEntity[domain.AvatarSettings](s, "avatar:")
}
