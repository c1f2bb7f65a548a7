package avatar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildhallapp/guildhall-server/internal/domain"
)

func TestOverlayStoreLifecycle(t *testing.T) {
	s := NewOverlayStore()

	assert.Nil(t, s.Get())

	s.Set(&Overlay{
		UserID:     "user-42",
		Preference: Value(domain.AvatarPreference{Kind: domain.PreferenceDiscord}),
	})

	got := s.Get()
	require.NotNil(t, got)
	assert.Equal(t, "user-42", got.UserID)

	// Last write wins.
	s.Set(&Overlay{UserID: "user-43"})
	got = s.Get()
	require.NotNil(t, got)
	assert.Equal(t, "user-43", got.UserID)

	s.Clear()
	assert.Nil(t, s.Get())
}

func TestOverlayStoreCopiesOnWriteAndRead(t *testing.T) {
	s := NewOverlayStore()

	ports := []domain.CharacterPortrait{
		{GameID: "wow", Name: "Thrall", AvatarURL: "https://render.example/thrall.png"},
	}
	o := &Overlay{UserID: "user-42", Portraits: Value(ports)}
	s.Set(o)

	// Caller mutation after Set must not reach readers.
	ports[0].Name = "mutated"
	o.UserID = "mutated"

	got := s.Get()
	require.NotNil(t, got)
	assert.Equal(t, "user-42", got.UserID)
	gotPorts, ok := got.Portraits.Get()
	require.True(t, ok)
	require.Len(t, gotPorts, 1)
	assert.Equal(t, "Thrall", gotPorts[0].Name)

	// Reader mutation must not reach later readers.
	gotPorts[0].Name = "mutated"
	again, _ := s.Get().Portraits.Get()
	assert.Equal(t, "Thrall", again[0].Name)
}

func TestOverlayStoreNullFieldsStayDefined(t *testing.T) {
	s := NewOverlayStore()

	s.Set(&Overlay{
		UserID:           "user-42",
		CustomAvatarPath: Null[string](),
	})

	got := s.Get()
	require.NotNil(t, got)
	assert.True(t, got.CustomAvatarPath.Defined())
	assert.True(t, got.CustomAvatarPath.IsNull())
	assert.False(t, got.Preference.Defined())
}
