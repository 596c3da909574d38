package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "inklings-backend/pkg/errors"
)

func TestNewPrivacySetting(t *testing.T) {
	for _, raw := range []string{"private", "friends", "friends_of_friends"} {
		s, err := NewPrivacySetting(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, s.String())
	}

	s, err := NewPrivacySetting("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPrivacySetting, s)

	_, err = NewPrivacySetting("public")
	assert.Error(t, err)
}

func TestParsePrivacyLevel_UnknownLevel(t *testing.T) {
	_, err := ParsePrivacyLevel("everyone")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnknownPrivacyLevel(err))
}

func TestPrivacyLevel_Ordering(t *testing.T) {
	assert.True(t, LevelFriends.Includes(LevelOwn))
	assert.True(t, LevelFriendsOfFriends.Includes(LevelFriends))
	assert.True(t, LevelFriendsOfFriends.Includes(LevelOwn))
	assert.False(t, LevelOwn.Includes(LevelFriends))
	assert.False(t, LevelFriends.Includes(LevelFriendsOfFriends))
}

func TestParseNodeReference(t *testing.T) {
	id := NewNodeID()
	ref, err := ParseNodeReference("memo#" + id.String())
	require.NoError(t, err)
	assert.Equal(t, KindMemo, ref.Kind())
	assert.True(t, ref.ID().Equals(id))

	_, err = ParseNodeReference("memo")
	assert.Error(t, err)
	_, err = ParseNodeReference("widget#" + id.String())
	assert.Error(t, err)
}
