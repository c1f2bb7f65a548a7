package avatar

import "github.com/guildhallapp/guildhall-server/internal/domain"

// DTO is the loosely-shaped avatar data as it arrives from any endpoint.
// Different endpoints carry different subsets; absent fields stay absent,
// explicitly-cleared ones are Null.
type DTO struct {
	// ID identifies the subject. Empty means the payload carries no
	// identifier, in which case the overlay is never applied.
	ID string
	// DiscordID and AvatarHash together address the Discord CDN avatar.
	// AvatarHash may also be a pre-resolved full URL.
	DiscordID  string
	AvatarHash string

	CustomAvatarPath Optional[string]
	Portraits        Optional[[]domain.CharacterPortrait]
	Preference       Optional[domain.AvatarPreference]
}

// SourceSet is the canonical, resolver-ready view of one person's avatar
// sources. Built by Normalizer.ToSourceSet; consumed by Resolver.Resolve.
type SourceSet struct {
	// DiscordAvatarURL is the fully resolved Discord avatar URL,
	// "" when unavailable or unlinked.
	DiscordAvatarURL string

	CustomAvatarPath Optional[string]
	Portraits        Optional[[]domain.CharacterPortrait]
	Preference       Optional[domain.AvatarPreference]
}

// Normalizer converts heterogeneous payload shapes into SourceSets and
// reconciles them against the viewer overlay.
type Normalizer struct {
	overlay *OverlayStore
}

// NewNormalizer creates a normalizer backed by the given overlay store.
func NewNormalizer(overlay *OverlayStore) *Normalizer {
	return &Normalizer{overlay: overlay}
}

// ToSourceSet normalizes a payload into the canonical representation.
//
// The overlay merge runs last so the overlay always has final say: when the
// subject is the active viewer, every field the overlay defines (even as
// null) replaces whatever the payload supplied. The overlay is never applied
// to a different person, nor to payloads without an identifier.
func (n *Normalizer) ToSourceSet(d DTO) *SourceSet {
	src := &SourceSet{
		DiscordAvatarURL: BuildThirdPartyAvatarURL(d.DiscordID, d.AvatarHash),
		CustomAvatarPath: d.CustomAvatarPath,
		Portraits:        d.Portraits,
		Preference:       d.Preference,
	}

	// Some payloads carry a pre-resolved URL without the Discord ID
	// needed for CDN construction.
	if src.DiscordAvatarURL == "" && isHTTPURL(d.AvatarHash) {
		src.DiscordAvatarURL = d.AvatarHash
	}

	if d.ID == "" || n.overlay == nil {
		return src
	}

	o := n.overlay.Get()
	if o == nil || o.UserID != d.ID {
		return src
	}

	if o.Preference.Defined() {
		src.Preference = o.Preference
	}
	if o.Portraits.Defined() {
		src.Portraits = o.Portraits
	}
	if o.CustomAvatarPath.Defined() {
		src.CustomAvatarPath = o.CustomAvatarPath
	}

	return src
}
