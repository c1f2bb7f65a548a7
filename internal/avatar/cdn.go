// Package avatar implements the avatar resolution engine: deciding, for any
// member shown anywhere in the app, which single image URL (or "use initials"
// fallback) represents them, given several independent, possibly-stale,
// possibly-missing avatar sources.
package avatar

import (
	"fmt"
	"strings"
)

// DiscordCDNBase is the base URL of Discord's avatar CDN.
const DiscordCDNBase = "https://cdn.discordapp.com"

// BuildThirdPartyAvatarURL constructs the CDN URL for a linked Discord
// account's avatar from the account ID and the opaque avatar hash.
//
// Returns "" when either input is empty. Some upstream payloads pre-resolve
// the hash to a full URL; those are returned unchanged.
func BuildThirdPartyAvatarURL(discordID, avatarHash string) string {
	if discordID == "" || avatarHash == "" {
		return ""
	}
	if isHTTPURL(avatarHash) {
		return avatarHash
	}
	return fmt.Sprintf("%s/avatars/%s/%s.png", DiscordCDNBase, discordID, avatarHash)
}

// isHTTPURL reports whether s already carries an HTTP scheme.
func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
