package services_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inklings-backend/application/services"
	"inklings-backend/infrastructure/persistence/memory"
	pkgerrors "inklings-backend/pkg/errors"
	"inklings-backend/pkg/observability"
)

func TestSendAndAcceptRequest(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice, bob := userID(t, "alice"), userID(t, "bob")

	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))

	pending, err := f.friendships.HasPendingRequest(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, pending)

	require.NoError(t, f.friendships.AcceptRequest(ctx, bob, alice))

	// The friendship is symmetric and the request is consumed.
	friends, err := f.friendships.IsFriendsWith(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, friends)
	friends, err = f.friendships.IsFriendsWith(ctx, bob, alice)
	require.NoError(t, err)
	assert.True(t, friends)
	pending, err = f.friendships.HasPendingRequest(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, pending)

	assert.Contains(t, f.publisher.typesSeen(), "friendship.accepted")
}

func TestAcceptRequest_MissingRequestFails(t *testing.T) {
	f := newAppFixture(t)
	err := f.friendships.AcceptRequest(context.Background(), userID(t, "bob"), userID(t, "alice"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNoSuchRequest(err))
}

func TestSendRequest_MutualRequestsFormFriendship(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice, bob := userID(t, "alice"), userID(t, "bob")

	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))
	require.NoError(t, f.friendships.SendRequest(ctx, bob, alice))

	friends, err := f.friendships.IsFriendsWith(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, friends, "crossing requests count as mutual consent")

	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		pending, err := f.friendships.HasPendingRequest(ctx, userID(t, pair[0]), userID(t, pair[1]))
		require.NoError(t, err)
		assert.False(t, pending, "no request survives the handshake")
	}
}

func TestSendRequest_IsIdempotent(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice, bob := userID(t, "alice"), userID(t, "bob")

	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))
	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))

	// Sending to an existing friend is also a no-op.
	require.NoError(t, f.friendships.AcceptRequest(ctx, bob, alice))
	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))

	pending, err := f.friendships.HasPendingRequest(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestSendRequest_ToSelfFails(t *testing.T) {
	f := newAppFixture(t)
	alice := userID(t, "alice")
	err := f.friendships.SendRequest(context.Background(), alice, alice)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidRequest(err))
}

func TestRejectRequest(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice, bob := userID(t, "alice"), userID(t, "bob")

	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))
	require.NoError(t, f.friendships.RejectRequest(ctx, bob, alice))

	pending, err := f.friendships.HasPendingRequest(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, pending)
	friends, err := f.friendships.IsFriendsWith(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, friends)

	// Rejecting again is a silent no-op.
	require.NoError(t, f.friendships.RejectRequest(ctx, bob, alice))
}

func TestRemoveFriend_SeversBothDirections(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice, bob := userID(t, "alice"), userID(t, "bob")

	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))
	require.NoError(t, f.friendships.AcceptRequest(ctx, bob, alice))
	require.NoError(t, f.friendships.RemoveFriend(ctx, bob, alice))

	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		friends, err := f.friendships.IsFriendsWith(ctx, userID(t, pair[0]), userID(t, pair[1]))
		require.NoError(t, err)
		assert.False(t, friends)
	}

	// Removing an absent friendship is a no-op.
	require.NoError(t, f.friendships.RemoveFriend(ctx, alice, bob))
}

func TestOperationMetrics_RecordFailureStatus(t *testing.T) {
	store := memory.NewStore()
	repos := memory.NewRepositories(store)
	logger := zap.NewNop()
	uow := memory.NewUnitOfWork(store, logger)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := services.NewFriendshipService(uow, repos, &capturingPublisher{}, metrics, logger)
	ctx := context.Background()
	alice, bob := userID(t, "alice"), userID(t, "bob")

	require.NoError(t, svc.SendRequest(ctx, alice, bob))
	require.Error(t, svc.AcceptRequest(ctx, bob, userID(t, "carol")))

	sendOK := metrics.OperationsTotal.WithLabelValues("friendship.send_request", "ok")
	assert.Equal(t, 1.0, testutil.ToFloat64(sendOK))

	// The failed accept lands in the error series, not the ok one.
	acceptErr := metrics.OperationsTotal.WithLabelValues("friendship.accept_request", "error")
	assert.Equal(t, 1.0, testutil.ToFloat64(acceptErr))
	acceptOK := metrics.OperationsTotal.WithLabelValues("friendship.accept_request", "ok")
	assert.Equal(t, 0.0, testutil.ToFloat64(acceptOK))
}

func TestProfileOf(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice, bob, carol := userID(t, "alice"), userID(t, "bob"), userID(t, "carol")

	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))
	require.NoError(t, f.friendships.AcceptRequest(ctx, bob, alice))
	require.NoError(t, f.friendships.SendRequest(ctx, carol, alice))

	profile, err := f.friendships.ProfileOf(ctx, alice)
	require.NoError(t, err)
	assert.True(t, profile.IsFriendsWith(bob))
	assert.True(t, profile.HasReceivedRequestFrom(carol))
	assert.Equal(t, 1, profile.FriendCount())
}
