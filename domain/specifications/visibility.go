package specifications

import (
	"inklings-backend/domain/core/valueobjects"
)

// Subject is the (owner, privacy setting) pair a visibility predicate
// evaluates. Filtering a collection of nodes needs nothing else once the
// viewer's friend sets have been materialized.
type Subject struct {
	OwnerID valueobjects.UserID
	Privacy valueobjects.PrivacySetting
}

// UserSet is a materialized set of user IDs
type UserSet map[string]struct{}

// NewUserSet builds a set from user IDs
func NewUserSet(users ...valueobjects.UserID) UserSet {
	set := make(UserSet, len(users))
	for _, u := range users {
		set[u.String()] = struct{}{}
	}
	return set
}

// Add inserts a user into the set
func (s UserSet) Add(user valueobjects.UserID) {
	s[user.String()] = struct{}{}
}

// Remove deletes a user from the set
func (s UserSet) Remove(user valueobjects.UserID) {
	delete(s, user.String())
}

// Contains reports membership
func (s UserSet) Contains(user valueobjects.UserID) bool {
	_, ok := s[user.String()]
	return ok
}

// Primitive visibility predicates

// OwnedBy is satisfied when the subject belongs to the viewer
func OwnedBy(viewer valueobjects.UserID) Specification[Subject] {
	return New(func(s Subject) bool {
		return s.OwnerID.Equals(viewer)
	})
}

// PrivacyIs is satisfied when the subject carries the given sharing tier
func PrivacyIs(setting valueobjects.PrivacySetting) Specification[Subject] {
	return New(func(s Subject) bool {
		return s.Privacy == setting
	})
}

// OwnerIn is satisfied when the subject's owner is a member of the set
func OwnerIn(set UserSet) Specification[Subject] {
	return New(func(s Subject) bool {
		return set.Contains(s.OwnerID)
	})
}

// Visibility composes the level predicates from the primitives above.
// friends is the viewer's friend set; friendsOfFriends is every user who
// shares at least one mutual friend with the viewer, excluding the viewer.
//
// The levels nest by construction:
//
//	own:     owner == viewer
//	friends: own ∨ (privacy == friends ∧ owner ∈ friends)
//	fof:     friends ∨ (privacy == friends_of_friends ∧ owner ∈ fof ∧ owner ∉ friends)
//
// The final exclusion keeps owners already covered by the friends term from
// being double counted.
func Visibility(
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
	friends UserSet,
	friendsOfFriends UserSet,
) Specification[Subject] {
	own := OwnedBy(viewer)
	if level == valueobjects.LevelOwn {
		return own
	}

	friendsSpec := Or(own, And(
		PrivacyIs(valueobjects.PrivacyFriends),
		OwnerIn(friends),
	))
	if level == valueobjects.LevelFriends {
		return friendsSpec
	}

	if level == valueobjects.LevelFriendsOfFriends {
		return Or(friendsSpec, And(
			PrivacyIs(valueobjects.PrivacyFriendsOfFriends),
			OwnerIn(friendsOfFriends),
			Not(OwnerIn(friends)),
		))
	}

	return Nothing[Subject]()
}
