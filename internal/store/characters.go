package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/guildhallapp/guildhall-server/internal/domain"
)

const (
	characterPrefix       = "character:"
	characterByUserPrefix = "idx:characters:user:" // For listing a member's roster
)

// ErrCharacterNotFound is returned when a character cannot be found by ID.
var ErrCharacterNotFound = errors.New("character not found")

// GetCharacter retrieves a character by ID.
func (s *Store) GetCharacter(_ context.Context, id string) (*domain.Character, error) {
	key := buildKey(characterPrefix, id)
	defer releaseKey(key)

	var character domain.Character
	if err := s.get(key, &character); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("get character: %w", err)
	}

	if character.IsDeleted() {
		return nil, ErrCharacterNotFound
	}

	return &character, nil
}

// ListUserCharacters returns a member's roster characters.
func (s *Store) ListUserCharacters(ctx context.Context, userID string) ([]*domain.Character, error) {
	prefix := []byte(characterByUserPrefix + userID + ":")
	var characters []*domain.Character

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Extract character ID from key
			// Key format: idx:characters:user:userID:characterID
			key := string(it.Item().Key())
			parts := strings.Split(key, ":")
			if len(parts) < 5 {
				continue
			}
			characterID := parts[4]

			character, err := s.GetCharacter(ctx, characterID)
			if err != nil {
				if errors.Is(err, ErrCharacterNotFound) {
					continue // Skip stale index entries
				}
				return err
			}

			characters = append(characters, character)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list user characters: %w", err)
	}

	return characters, nil
}

// ReplaceUserCharacters atomically replaces a member's entire roster.
// The game sync flow always submits the full character list, so replacement
// is simpler and safer than diffing.
func (s *Store) ReplaceUserCharacters(ctx context.Context, userID string, characters []*domain.Character) error {
	existing, err := s.ListUserCharacters(ctx, userID)
	if err != nil {
		return err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		// Remove the old roster and its index entries.
		for _, old := range existing {
			key := []byte(characterPrefix + old.ID)
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("delete character %s: %w", old.ID, err)
			}

			indexKey := []byte(characterByUserPrefix + userID + ":" + old.ID)
			if err := txn.Delete(indexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		// Write the new roster.
		for _, character := range characters {
			data, err := json.Marshal(character)
			if err != nil {
				return fmt.Errorf("marshal character: %w", err)
			}

			key := []byte(characterPrefix + character.ID)
			if err := txn.Set(key, data); err != nil {
				return err
			}

			indexKey := []byte(characterByUserPrefix + userID + ":" + character.ID)
			if err := txn.Set(indexKey, []byte{}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	// Roster changes affect member search (character names are indexed).
	s.indexMemberByID(ctx, userID)
	return nil
}

// DeleteUserCharacters removes a member's entire roster.
// Used when a member account is deleted.
func (s *Store) DeleteUserCharacters(ctx context.Context, userID string) error {
	return s.ReplaceUserCharacters(ctx, userID, nil)
}
