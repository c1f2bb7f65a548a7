package avatar

import (
	"slices"
	"sync"

	"github.com/guildhallapp/guildhall-server/internal/domain"
)

// Overlay is the authoritative, freshest avatar state for the currently
// signed-in viewer. Lightweight payloads (signup previews, notification
// actors) often omit the fields needed to resolve the viewer's own avatar;
// the overlay reconciles those payloads so the viewer's identity resolves
// consistently on every screen.
//
// Only Defined fields participate in reconciliation: a Null field means
// "the viewer cleared this", an absent one means "no fresher data".
type Overlay struct {
	UserID           string
	Preference       Optional[domain.AvatarPreference]
	Portraits        Optional[[]domain.CharacterPortrait]
	CustomAvatarPath Optional[string]
}

// OverlayStore holds at most one Overlay for the active viewer.
//
// Single-writer lifecycle: the auth/session flow writes on login and on
// every successful identity refresh, and clears on logout. Everything else
// only reads. Last writer wins; writes are serialized by the auth flow.
type OverlayStore struct {
	mu      sync.RWMutex
	current *Overlay
}

// NewOverlayStore creates an empty overlay store.
func NewOverlayStore() *OverlayStore {
	return &OverlayStore{}
}

// Set replaces the current overlay. The record is copied so later mutation
// by the caller cannot leak into readers.
func (s *OverlayStore) Set(o *Overlay) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o == nil {
		s.current = nil
		return
	}
	s.current = copyOverlay(o)
}

// Get returns a copy of the current overlay, or nil when none is set.
func (s *OverlayStore) Get() *Overlay {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	return copyOverlay(s.current)
}

// Clear removes the current overlay. Called on logout.
func (s *OverlayStore) Clear() {
	s.Set(nil)
}

func copyOverlay(o *Overlay) *Overlay {
	cp := *o
	if ports, ok := o.Portraits.Get(); ok {
		cp.Portraits = Value(slices.Clone(ports))
	}
	return &cp
}
