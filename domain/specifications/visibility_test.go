package specifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inklings-backend/domain/core/valueobjects"
)

func user(t *testing.T, id string) valueobjects.UserID {
	t.Helper()
	u, err := valueobjects.NewUserID(id)
	require.NoError(t, err)
	return u
}

func subject(t *testing.T, owner string, privacy valueobjects.PrivacySetting) Subject {
	t.Helper()
	return Subject{OwnerID: user(t, owner), Privacy: privacy}
}

func TestVisibility_OwnLevelSelectsExactlyOwnNodes(t *testing.T) {
	viewer := user(t, "alice")
	spec := Visibility(viewer, valueobjects.LevelOwn, nil, nil)

	assert.True(t, spec.IsSatisfiedBy(subject(t, "alice", valueobjects.PrivacyPrivate)))
	assert.False(t, spec.IsSatisfiedBy(subject(t, "bob", valueobjects.PrivacyFriends)))
	assert.False(t, spec.IsSatisfiedBy(subject(t, "bob", valueobjects.PrivacyFriendsOfFriends)))
}

func TestVisibility_FriendsLevel(t *testing.T) {
	viewer := user(t, "alice")
	friends := NewUserSet(user(t, "bob"))
	spec := Visibility(viewer, valueobjects.LevelFriends, friends, NewUserSet())

	// Own nodes are always visible, whatever their privacy setting.
	assert.True(t, spec.IsSatisfiedBy(subject(t, "alice", valueobjects.PrivacyPrivate)))

	// A friend's node shared at the friends tier is visible.
	assert.True(t, spec.IsSatisfiedBy(subject(t, "bob", valueobjects.PrivacyFriends)))

	// A friend's private node is not.
	assert.False(t, spec.IsSatisfiedBy(subject(t, "bob", valueobjects.PrivacyPrivate)))

	// A stranger's node at the friends tier is not.
	assert.False(t, spec.IsSatisfiedBy(subject(t, "carol", valueobjects.PrivacyFriends)))
}

func TestVisibility_FriendOfFriendLevel(t *testing.T) {
	viewer := user(t, "alice")
	friends := NewUserSet(user(t, "bob"))
	fof := NewUserSet(user(t, "carol"))
	spec := Visibility(viewer, valueobjects.LevelFriendsOfFriends, friends, fof)

	// A friend-of-friend's node at the fof tier is visible.
	assert.True(t, spec.IsSatisfiedBy(subject(t, "carol", valueobjects.PrivacyFriendsOfFriends)))

	// The fof tier does not open a friend-of-friend's friends-tier node.
	assert.False(t, spec.IsSatisfiedBy(subject(t, "carol", valueobjects.PrivacyFriends)))

	// The friends clause still applies at the wider level.
	assert.True(t, spec.IsSatisfiedBy(subject(t, "bob", valueobjects.PrivacyFriends)))

	// Strangers stay invisible regardless of tier.
	assert.False(t, spec.IsSatisfiedBy(subject(t, "dave", valueobjects.PrivacyFriendsOfFriends)))
}

func TestVisibility_FofClauseExcludesDirectFriends(t *testing.T) {
	viewer := user(t, "alice")
	bob := user(t, "bob")
	// bob is both a direct friend and reachable through a mutual friend.
	friends := NewUserSet(bob)
	fof := NewUserSet(bob)
	spec := Visibility(viewer, valueobjects.LevelFriendsOfFriends, friends, fof)

	// The direct friendship governs: bob's fof-tier node is matched by
	// neither the friends clause nor the fof clause.
	assert.False(t, spec.IsSatisfiedBy(subject(t, "bob", valueobjects.PrivacyFriendsOfFriends)))
	assert.True(t, spec.IsSatisfiedBy(subject(t, "bob", valueobjects.PrivacyFriends)))
}

func TestVisibility_LevelsAreMonotonic(t *testing.T) {
	viewer := user(t, "alice")
	friends := NewUserSet(user(t, "bob"))
	fof := NewUserSet(user(t, "carol"))

	own := Visibility(viewer, valueobjects.LevelOwn, friends, fof)
	friendsSpec := Visibility(viewer, valueobjects.LevelFriends, friends, fof)
	fofSpec := Visibility(viewer, valueobjects.LevelFriendsOfFriends, friends, fof)

	subjects := []Subject{
		subject(t, "alice", valueobjects.PrivacyPrivate),
		subject(t, "alice", valueobjects.PrivacyFriends),
		subject(t, "bob", valueobjects.PrivacyPrivate),
		subject(t, "bob", valueobjects.PrivacyFriends),
		subject(t, "bob", valueobjects.PrivacyFriendsOfFriends),
		subject(t, "carol", valueobjects.PrivacyFriends),
		subject(t, "carol", valueobjects.PrivacyFriendsOfFriends),
		subject(t, "dave", valueobjects.PrivacyFriendsOfFriends),
	}
	for _, s := range subjects {
		if own.IsSatisfiedBy(s) {
			assert.True(t, friendsSpec.IsSatisfiedBy(s), "friends must include own for %v", s)
		}
		if friendsSpec.IsSatisfiedBy(s) {
			assert.True(t, fofSpec.IsSatisfiedBy(s), "fof must include friends for %v", s)
		}
	}
}

func TestSpecificationCombinators(t *testing.T) {
	yes := New(func(int) bool { return true })
	no := Nothing[int]()

	assert.True(t, And(yes, yes).IsSatisfiedBy(0))
	assert.False(t, And(yes, no).IsSatisfiedBy(0))
	assert.True(t, Or(no, yes).IsSatisfiedBy(0))
	assert.False(t, Or(no, no).IsSatisfiedBy(0))
	assert.True(t, Not(no).IsSatisfiedBy(0))
}
