package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inklings-backend/application/ports"
	"inklings-backend/domain/core/valueobjects"
	"inklings-backend/domain/events"
	"inklings-backend/domain/friendship"
	pkgerrors "inklings-backend/pkg/errors"
	"inklings-backend/pkg/observability"
)

// FriendshipService drives the request/accept/reject/remove lifecycle of the
// mutual friendship graph. Every state transition runs inside a unit of work
// so the edge and the consumed request always move together.
type FriendshipService struct {
	uow       ports.UnitOfWork
	repos     ports.Repositories
	publisher ports.EventPublisher
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewFriendshipService creates the friendship service
func NewFriendshipService(
	uow ports.UnitOfWork,
	repos ports.Repositories,
	publisher ports.EventPublisher,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *FriendshipService {
	return &FriendshipService{
		uow:       uow,
		repos:     repos,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// SendRequest creates a pending request from sender to receiver.
// Already friends or already requested: silent no-op. A pending request in
// the opposite direction counts as mutual consent: it is consumed and the
// friendship is formed immediately.
func (s *FriendshipService) SendRequest(ctx context.Context, sender, receiver valueobjects.UserID) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("friendship.send_request", start, err) }()

	request, err := friendship.NewRequest(sender, receiver)
	if err != nil {
		return err
	}

	var accepted bool
	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		already, err := tx.Friendships().EdgeExists(ctx, sender, receiver)
		if err != nil {
			return err
		}
		if already {
			return nil
		}

		pending, err := tx.Friendships().RequestExists(ctx, sender, receiver)
		if err != nil {
			return err
		}
		if pending {
			return nil
		}

		reciprocal, err := tx.Friendships().RequestExists(ctx, receiver, sender)
		if err != nil {
			return err
		}
		if reciprocal {
			accepted = true
			return s.formFriendship(ctx, tx, receiver, sender)
		}

		return tx.Friendships().PutRequest(ctx, request)
	})
	if err != nil {
		return err
	}

	if accepted {
		s.logger.Info("mutual friend requests resolved into friendship",
			zap.String("sender", sender.String()),
			zap.String("receiver", receiver.String()),
		)
		s.publish(ctx, events.NewFriendshipAccepted(sender, receiver))
		return nil
	}
	s.publish(ctx, events.NewFriendRequestSent(sender, receiver))
	return nil
}

// AcceptRequest consumes the pending request from sender to receiver and
// creates the symmetric friendship. Accepting a request that does not exist
// is an error.
func (s *FriendshipService) AcceptRequest(ctx context.Context, receiver, sender valueobjects.UserID) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("friendship.accept_request", start, err) }()

	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		pending, err := tx.Friendships().RequestExists(ctx, sender, receiver)
		if err != nil {
			return err
		}
		if !pending {
			return pkgerrors.NewNoSuchRequestError(sender.String(), receiver.String())
		}
		return s.formFriendship(ctx, tx, sender, receiver)
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.NewFriendshipAccepted(sender, receiver))
	return nil
}

// RejectRequest consumes the pending request from sender to receiver without
// creating a friendship. Rejecting an absent request is a no-op.
func (s *FriendshipService) RejectRequest(ctx context.Context, receiver, sender valueobjects.UserID) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("friendship.reject_request", start, err) }()

	var existed bool
	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		pending, err := tx.Friendships().RequestExists(ctx, sender, receiver)
		if err != nil {
			return err
		}
		existed = pending
		if !pending {
			return nil
		}
		return tx.Friendships().DeleteRequest(ctx, sender, receiver)
	})
	if err != nil {
		return err
	}

	if existed {
		s.publish(ctx, events.NewFriendRequestRejected(sender, receiver))
	}
	return nil
}

// RemoveFriend deletes the friendship between the pair. The canonical edge
// makes removal atomic for both directions: neither side can observe a
// half-removed friendship. Removing a non-existent friendship is a no-op.
func (s *FriendshipService) RemoveFriend(ctx context.Context, a, b valueobjects.UserID) (err error) {
	start := time.Now()
	defer func() { s.metrics.Observe("friendship.remove_friend", start, err) }()

	if a.Equals(b) {
		return pkgerrors.NewInvalidRequestError("a user cannot unfriend themselves")
	}

	var existed bool
	err = s.uow.Execute(ctx, func(ctx context.Context, tx ports.Repositories) error {
		has, err := tx.Friendships().EdgeExists(ctx, a, b)
		if err != nil {
			return err
		}
		existed = has
		if !has {
			return nil
		}
		return tx.Friendships().RemoveEdge(ctx, a, b)
	})
	if err != nil {
		return err
	}

	if existed {
		s.publish(ctx, events.NewFriendshipRemoved(a, b))
	}
	return nil
}

// IsFriendsWith reports whether the pair are mutual friends
func (s *FriendshipService) IsFriendsWith(ctx context.Context, a, b valueobjects.UserID) (bool, error) {
	return s.repos.Friendships().EdgeExists(ctx, a, b)
}

// HasPendingRequest reports whether a pending request sender→receiver exists
func (s *FriendshipService) HasPendingRequest(ctx context.Context, sender, receiver valueobjects.UserID) (bool, error) {
	return s.repos.Friendships().RequestExists(ctx, sender, receiver)
}

// ProfileOf returns the friendship read model for a user
func (s *FriendshipService) ProfileOf(ctx context.Context, user valueobjects.UserID) (friendship.Profile, error) {
	return s.repos.Friendships().ProfileOf(ctx, user)
}

// formFriendship consumes any pending requests between the pair and stores
// the canonical edge, all within the caller's transaction
func (s *FriendshipService) formFriendship(ctx context.Context, tx ports.Repositories, sender, receiver valueobjects.UserID) error {
	edge, err := friendship.NewEdge(sender, receiver)
	if err != nil {
		return err
	}
	if err := tx.Friendships().DeleteRequest(ctx, sender, receiver); err != nil {
		return err
	}
	if err := tx.Friendships().DeleteRequest(ctx, receiver, sender); err != nil {
		return err
	}
	return tx.Friendships().AddEdge(ctx, edge)
}

func (s *FriendshipService) publish(ctx context.Context, event events.DomainEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.EventFailures.Inc()
		s.logger.Warn("failed to publish friendship event",
			zap.String("event", event.GetEventType()),
			zap.Error(err),
		)
		return
	}
	s.metrics.EventsPublished.Inc()
}
