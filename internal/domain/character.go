package domain

// Character represents one of a user's in-game characters.
// Characters are pushed by clients from the per-game character data source;
// the server stores them and uses their portraits for avatar resolution.
type Character struct {
	Syncable
	UserID string `json:"user_id"`
	// GameID identifies which game/context the character belongs to
	// (a normalized slug, e.g. "wow-classic").
	GameID string `json:"game_id"`
	Name   string `json:"name"`
	Realm  string `json:"realm,omitempty"`
	Class  string `json:"class,omitempty"`
	Level  int    `json:"level,omitempty"`
	// PortraitURL is the render-service URL of the character portrait,
	// empty when the game's render service has none.
	PortraitURL string `json:"portrait_url,omitempty"`
}

// Portrait returns the avatar-relevant view of the character.
func (c *Character) Portrait() CharacterPortrait {
	return CharacterPortrait{
		GameID:    c.GameID,
		Name:      c.Name,
		AvatarURL: c.PortraitURL,
	}
}

// Portraits converts a character list to its portrait views, preserving order.
func Portraits(chars []*Character) []CharacterPortrait {
	if chars == nil {
		return nil
	}
	out := make([]CharacterPortrait, 0, len(chars))
	for _, c := range chars {
		out = append(out, c.Portrait())
	}
	return out
}
