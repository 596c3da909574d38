package events

import (
	"inklings-backend/domain/core/valueobjects"
)

// FriendRequestSent is raised when a pending friend request is created
type FriendRequestSent struct {
	BaseEvent
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
}

// NewFriendRequestSent creates a FriendRequestSent event
func NewFriendRequestSent(sender, receiver valueobjects.UserID) FriendRequestSent {
	return FriendRequestSent{
		BaseEvent:  newBaseEvent(sender.String(), "friendship.request_sent"),
		SenderID:   sender.String(),
		ReceiverID: receiver.String(),
	}
}

// FriendRequestRejected is raised when a pending request is rejected
type FriendRequestRejected struct {
	BaseEvent
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
}

// NewFriendRequestRejected creates a FriendRequestRejected event
func NewFriendRequestRejected(sender, receiver valueobjects.UserID) FriendRequestRejected {
	return FriendRequestRejected{
		BaseEvent:  newBaseEvent(receiver.String(), "friendship.request_rejected"),
		SenderID:   sender.String(),
		ReceiverID: receiver.String(),
	}
}

// FriendshipAccepted is raised when a request is accepted and the
// symmetric friendship edge is created
type FriendshipAccepted struct {
	BaseEvent
	UserA string `json:"user_a"`
	UserB string `json:"user_b"`
}

// NewFriendshipAccepted creates a FriendshipAccepted event
func NewFriendshipAccepted(a, b valueobjects.UserID) FriendshipAccepted {
	return FriendshipAccepted{
		BaseEvent: newBaseEvent(a.String(), "friendship.accepted"),
		UserA:     a.String(),
		UserB:     b.String(),
	}
}

// FriendshipRemoved is raised when a friendship edge is removed
type FriendshipRemoved struct {
	BaseEvent
	UserA string `json:"user_a"`
	UserB string `json:"user_b"`
}

// NewFriendshipRemoved creates a FriendshipRemoved event
func NewFriendshipRemoved(a, b valueobjects.UserID) FriendshipRemoved {
	return FriendshipRemoved{
		BaseEvent: newBaseEvent(a.String(), "friendship.removed"),
		UserA:     a.String(),
		UserB:     b.String(),
	}
}
