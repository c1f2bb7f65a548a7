// Package search provides full-text member search using Bleve.
// Guild members are indexed with their display names and character rosters,
// so a search for a character name finds the member who plays it.
package search

import (
	"github.com/guildhallapp/guildhall-server/internal/domain"
)

// MemberDocument is the document structure for the Bleve index.
// Character names, realms, and game slugs are denormalized into the member
// document so one query covers both "who is Thrall" and "who plays on
// Mal'Ganis" without joining against the store at query time.
type MemberDocument struct {
	// Identity
	ID string `json:"id"` // User ID (user_xxx)

	// Primary searchable text
	Name string `json:"name"` // Display name

	// Denormalized roster fields
	Characters []string `json:"characters,omitempty"` // Character names
	Realms     []string `json:"realms,omitempty"`     // Realm slugs
	Games      []string `json:"games,omitempty"`      // Game slugs

	// Keyword fields for filtering
	Role   string `json:"role"`
	Status string `json:"status"`

	// Timestamps for sorting
	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *MemberDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"name":       d.Name,
		"role":       d.Role,
		"status":     d.Status,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if len(d.Characters) > 0 {
		m["characters"] = d.Characters
	}
	if len(d.Realms) > 0 {
		m["realms"] = d.Realms
	}
	if len(d.Games) > 0 {
		m["games"] = d.Games
	}

	return m
}

// MemberToDocument converts a user and their character roster to a
// MemberDocument. The roster is provided by the caller, as the search
// package shouldn't depend on store.
func MemberToDocument(user *domain.User, characters []*domain.Character) *MemberDocument {
	// Empty status means active for backward compat; normalize so the
	// status filter works with a single term.
	status := string(user.Status)
	if status == "" {
		status = string(domain.UserStatusActive)
	}

	doc := &MemberDocument{
		ID:        user.ID,
		Name:      user.DisplayName,
		Role:      string(user.Role),
		Status:    status,
		CreatedAt: user.CreatedAt.UnixMilli(),
		UpdatedAt: user.UpdatedAt.UnixMilli(),
	}

	seenRealms := make(map[string]bool)
	seenGames := make(map[string]bool)
	for _, c := range characters {
		doc.Characters = append(doc.Characters, c.Name)
		if c.Realm != "" && !seenRealms[c.Realm] {
			seenRealms[c.Realm] = true
			doc.Realms = append(doc.Realms, c.Realm)
		}
		if c.GameID != "" && !seenGames[c.GameID] {
			seenGames[c.GameID] = true
			doc.Games = append(doc.Games, c.GameID)
		}
	}

	return doc
}
