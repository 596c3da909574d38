package valueobjects

import (
	pkgerrors "inklings-backend/pkg/errors"
)

// PrivacySetting is the per-node sharing tier chosen by the owner
type PrivacySetting string

const (
	PrivacyPrivate          PrivacySetting = "private"
	PrivacyFriends          PrivacySetting = "friends"
	PrivacyFriendsOfFriends PrivacySetting = "friends_of_friends"
)

// DefaultPrivacySetting is applied when the owner does not choose a tier
const DefaultPrivacySetting = PrivacyPrivate

// NewPrivacySetting validates a raw privacy setting tag
func NewPrivacySetting(raw string) (PrivacySetting, error) {
	switch PrivacySetting(raw) {
	case PrivacyPrivate, PrivacyFriends, PrivacyFriendsOfFriends:
		return PrivacySetting(raw), nil
	case "":
		return DefaultPrivacySetting, nil
	default:
		return "", pkgerrors.NewValidationError("invalid privacy setting: " + raw)
	}
}

// String returns the wire representation of the setting
func (s PrivacySetting) String() string {
	return string(s)
}

// PrivacyLevel is the access tier a viewer is evaluated against.
// Levels nest: Own ⊂ Friends ⊂ FriendsOfFriends.
type PrivacyLevel string

const (
	LevelOwn              PrivacyLevel = "own"
	LevelFriends          PrivacyLevel = "friends"
	LevelFriendsOfFriends PrivacyLevel = "fof"
)

// ParsePrivacyLevel validates a raw level tag
func ParsePrivacyLevel(raw string) (PrivacyLevel, error) {
	switch PrivacyLevel(raw) {
	case LevelOwn, LevelFriends, LevelFriendsOfFriends:
		return PrivacyLevel(raw), nil
	default:
		return "", pkgerrors.NewUnknownPrivacyLevelError(raw)
	}
}

// String returns the wire representation of the level
func (l PrivacyLevel) String() string {
	return string(l)
}

// Includes reports whether this level grants at least the access of other.
// Used by tests to assert the monotonic level ordering.
func (l PrivacyLevel) Includes(other PrivacyLevel) bool {
	return l.rank() >= other.rank()
}

func (l PrivacyLevel) rank() int {
	switch l {
	case LevelOwn:
		return 0
	case LevelFriends:
		return 1
	case LevelFriendsOfFriends:
		return 2
	default:
		return -1
	}
}
