package friendship

import (
	"inklings-backend/domain/core/valueobjects"
)

// Profile is the friendship read model for one user: their mutual friends
// and pending requests in both directions. It is assembled by the repository
// from canonical edges and requests; there is no mutable state of its own,
// and no attribute is ever injected onto the external identity type.
type Profile struct {
	userID   valueobjects.UserID
	friends  map[string]valueobjects.UserID
	outgoing map[string]Request
	incoming map[string]Request
}

// NewProfile assembles a profile from the user's edges and pending requests
func NewProfile(userID valueobjects.UserID, edges []Edge, requests []Request) Profile {
	p := Profile{
		userID:   userID,
		friends:  make(map[string]valueobjects.UserID),
		outgoing: make(map[string]Request),
		incoming: make(map[string]Request),
	}
	for _, edge := range edges {
		if other, ok := edge.Other(userID); ok {
			p.friends[other.String()] = other
		}
	}
	for _, req := range requests {
		switch {
		case req.Sender().Equals(userID):
			p.outgoing[req.Receiver().String()] = req
		case req.Receiver().Equals(userID):
			p.incoming[req.Sender().String()] = req
		}
	}
	return p
}

// UserID returns the profile owner's ID
func (p Profile) UserID() valueobjects.UserID {
	return p.userID
}

// IsFriendsWith reports whether the given user is a mutual friend
func (p Profile) IsFriendsWith(other valueobjects.UserID) bool {
	_, ok := p.friends[other.String()]
	return ok
}

// HasSentRequestTo reports whether a pending request to the user exists
func (p Profile) HasSentRequestTo(other valueobjects.UserID) bool {
	_, ok := p.outgoing[other.String()]
	return ok
}

// HasReceivedRequestFrom reports whether a pending request from the user exists
func (p Profile) HasReceivedRequestFrom(other valueobjects.UserID) bool {
	_, ok := p.incoming[other.String()]
	return ok
}

// FriendIDs returns the user's mutual friends
func (p Profile) FriendIDs() []valueobjects.UserID {
	out := make([]valueobjects.UserID, 0, len(p.friends))
	for _, id := range p.friends {
		out = append(out, id)
	}
	return out
}

// FriendCount returns the number of mutual friends
func (p Profile) FriendCount() int {
	return len(p.friends)
}

// SharesFriendWith reports whether the two profiles have at least one
// mutual friend in common. This is the friend-of-friend test.
func (p Profile) SharesFriendWith(other Profile) bool {
	small, large := p.friends, other.friends
	if len(large) < len(small) {
		small, large = large, small
	}
	for key := range small {
		if _, ok := large[key]; ok {
			return true
		}
	}
	return false
}
