package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForUserIsDeterministic(t *testing.T) {
	a := ForUser("user-42")
	b := ForUser("user-42")
	assert.Equal(t, a, b)

	assert.Regexp(t, `^#[0-9A-F]{6}$`, a)
	assert.NotEqual(t, a, ForUser("user-43"))
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two words", "Thrall Hellscream", "TH"},
		{"single word", "thrall", "T"},
		{"three words caps at two", "Jaina Proudmoore Admiral", "JP"},
		{"digit-led word", "2cool ranger", "2R"},
		{"punctuation-led word", "'quoted name", "QN"},
		{"empty", "", ""},
		{"symbols only", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Initials(tt.in))
		})
	}
}
