package friendship

import (
	"time"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// Request is a pending, directed friend request. It is consumed (deleted)
// the moment it is accepted or rejected.
type Request struct {
	sender    valueobjects.UserID
	receiver  valueobjects.UserID
	createdAt time.Time
}

// NewRequest creates a pending request from sender to receiver
func NewRequest(sender, receiver valueobjects.UserID) (Request, error) {
	if sender.IsZero() || receiver.IsZero() {
		return Request{}, pkgerrors.NewValidationError("friend request requires a sender and a receiver")
	}
	if sender.Equals(receiver) {
		return Request{}, pkgerrors.NewInvalidRequestError("a user cannot send a friend request to themselves")
	}
	return Request{sender: sender, receiver: receiver, createdAt: time.Now()}, nil
}

// ReconstructRequest rebuilds a request from repository data
func ReconstructRequest(sender, receiver valueobjects.UserID, createdAt time.Time) (Request, error) {
	req, err := NewRequest(sender, receiver)
	if err != nil {
		return Request{}, err
	}
	req.createdAt = createdAt
	return req, nil
}

// Sender returns the requesting user
func (r Request) Sender() valueobjects.UserID {
	return r.sender
}

// Receiver returns the requested user
func (r Request) Receiver() valueobjects.UserID {
	return r.receiver
}

// CreatedAt returns when the request was sent
func (r Request) CreatedAt() time.Time {
	return r.createdAt
}
