package avatar

import (
	"strings"

	"github.com/guildhallapp/guildhall-server/internal/domain"
)

// Resolver turns a SourceSet into exactly one ResolvedAvatar by walking a
// deterministic priority chain. It is pure and total: every input, including
// a nil SourceSet, yields a defined result, and nothing is ever mutated.
//
// Malformed or stale preference data is never an error here; every branch
// that cannot produce a usable URL falls through to the next rule, and the
// terminal fallback is always initials.
type Resolver struct {
	// origin is the public API origin used to absolutize server-relative
	// custom avatar paths (e.g. "http://localhost:3000").
	origin string
}

// NewResolver creates a resolver that prefixes custom avatar paths with the
// given API origin.
func NewResolver(origin string) *Resolver {
	return &Resolver{origin: strings.TrimRight(origin, "/")}
}

// Resolve picks the avatar for src. gameID optionally names the game context
// being viewed, used to pick a contextual character portrait when no
// preference applies; pass "" when no game context exists.
//
// Priority: an explicit, usable preference wins if its backing source is
// still available; otherwise custom > contextual character > discord >
// initials.
func (r *Resolver) Resolve(src *SourceSet, gameID string) domain.ResolvedAvatar {
	if src == nil {
		return initials()
	}

	if pref, ok := src.Preference.Get(); ok && pref.IsUsable() {
		if resolved, ok := r.resolvePreference(src, pref); ok {
			return resolved
		}
	}

	if path, ok := src.CustomAvatarPath.Get(); ok && path != "" {
		return domain.ResolvedAvatar{URL: r.absolutize(path), Source: domain.AvatarSourceCustom}
	}

	if gameID != "" {
		if ports, ok := src.Portraits.Get(); ok {
			for _, p := range ports {
				if p.GameID == gameID && p.AvatarURL != "" {
					return domain.ResolvedAvatar{URL: p.AvatarURL, Source: domain.AvatarSourceCharacter}
				}
			}
		}
	}

	if src.DiscordAvatarURL != "" {
		return domain.ResolvedAvatar{URL: src.DiscordAvatarURL, Source: domain.AvatarSourceDiscord}
	}

	return initials()
}

// resolvePreference honors an explicit preference when its backing source is
// still available. The second return is false when the preference cannot be
// satisfied, letting the caller fall through to the default priority.
func (r *Resolver) resolvePreference(src *SourceSet, pref domain.AvatarPreference) (domain.ResolvedAvatar, bool) {
	switch pref.Kind {
	case domain.PreferenceCustom:
		if path, ok := src.CustomAvatarPath.Get(); ok && path != "" {
			return domain.ResolvedAvatar{URL: r.absolutize(path), Source: domain.AvatarSourceCustom}, true
		}

	case domain.PreferenceDiscord:
		if src.DiscordAvatarURL != "" {
			return domain.ResolvedAvatar{URL: src.DiscordAvatarURL, Source: domain.AvatarSourceDiscord}, true
		}

	case domain.PreferenceCharacter:
		// Exact, case-sensitive name match against the live list.
		if ports, ok := src.Portraits.Get(); ok {
			for _, p := range ports {
				if p.Name == pref.CharacterName && p.AvatarURL != "" {
					return domain.ResolvedAvatar{URL: p.AvatarURL, Source: domain.AvatarSourceCharacter}, true
				}
			}
		}
		// No live list or no usable match: the cached copy taken at
		// preference-save time keeps the choice alive for payloads
		// that omit the character list entirely.
		if pref.CachedAvatarURL != "" {
			return domain.ResolvedAvatar{URL: pref.CachedAvatarURL, Source: domain.AvatarSourceCharacter}, true
		}
	}

	return domain.ResolvedAvatar{}, false
}

// absolutize prefixes a server-relative custom avatar path with the API
// origin. Already-absolute URLs pass through unchanged.
func (r *Resolver) absolutize(path string) string {
	if isHTTPURL(path) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return r.origin + path
}

func initials() domain.ResolvedAvatar {
	return domain.ResolvedAvatar{Source: domain.AvatarSourceInitials}
}
