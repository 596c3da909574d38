package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inklings-backend/domain/core/valueobjects"
	"inklings-backend/domain/services"
)

func TestAllLinks_ReturnsBothDirections(t *testing.T) {
	f := newFixture(t)
	alice := mustUser(t, "alice")
	ctx := context.Background()

	center := f.addMemo(t, alice, "center", valueobjects.PrivacyPrivate)
	left := f.addMemo(t, alice, "left", valueobjects.PrivacyPrivate)
	right := f.addMemo(t, alice, "right", valueobjects.PrivacyPrivate)
	other := f.addMemo(t, alice, "unrelated", valueobjects.PrivacyPrivate)
	related := f.addLinkType(t, alice, "relates to", "")

	outgoing := f.addLink(t, alice, center.Ref(), right.Ref(), related, valueobjects.PrivacyPrivate)
	incoming := f.addLink(t, alice, left.Ref(), center.Ref(), related, valueobjects.PrivacyPrivate)
	f.addLink(t, alice, left.Ref(), other.Ref(), related, valueobjects.PrivacyPrivate)

	links, err := f.graph.AllLinks(ctx, center)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.True(t, links[0].ID().Equals(outgoing.ID()), "insertion order is preserved")
	assert.True(t, links[1].ID().Equals(incoming.ID()))
}

func TestAllLinkedNodes_ResolvesOppositeEndpoints(t *testing.T) {
	f := newFixture(t)
	alice := mustUser(t, "alice")
	ctx := context.Background()

	center := f.addMemo(t, alice, "center", valueobjects.PrivacyPrivate)
	left := f.addMemo(t, alice, "left", valueobjects.PrivacyPrivate)
	right := f.addMemo(t, alice, "right", valueobjects.PrivacyPrivate)
	related := f.addLinkType(t, alice, "relates to", "")

	f.addLink(t, alice, center.Ref(), right.Ref(), related, valueobjects.PrivacyPrivate)
	f.addLink(t, alice, left.Ref(), center.Ref(), related, valueobjects.PrivacyPrivate)

	neighbors, err := f.graph.AllLinkedNodes(ctx, center)
	require.NoError(t, err)
	require.Len(t, neighbors, 2)
	assert.True(t, neighbors[0].ID().Equals(right.ID()))
	assert.True(t, neighbors[1].ID().Equals(left.ID()))
}

func TestLinkGroups_GroupsByTypeAndDirection(t *testing.T) {
	f := newFixture(t)
	alice := mustUser(t, "alice")
	ctx := context.Background()

	center := f.addMemo(t, alice, "center", valueobjects.PrivacyPrivate)
	a := f.addMemo(t, alice, "a", valueobjects.PrivacyPrivate)
	b := f.addMemo(t, alice, "b", valueobjects.PrivacyPrivate)
	c := f.addMemo(t, alice, "c", valueobjects.PrivacyPrivate)
	supports := f.addLinkType(t, alice, "supports", "is supported by")
	cites := f.addLinkType(t, alice, "cites", "")

	f.addLink(t, alice, center.Ref(), a.Ref(), supports, valueobjects.PrivacyPrivate)
	f.addLink(t, alice, b.Ref(), center.Ref(), supports, valueobjects.PrivacyPrivate)
	f.addLink(t, alice, center.Ref(), c.Ref(), supports, valueobjects.PrivacyPrivate)
	f.addLink(t, alice, center.Ref(), b.Ref(), cites, valueobjects.PrivacyPrivate)

	groups, err := f.graph.LinkGroups(ctx, center)
	require.NoError(t, err)
	require.Len(t, groups, 3)

	// Groups appear in first-encounter order.
	assert.Equal(t, "supports", groups[0].Label)
	assert.Equal(t, services.DirectionOutgoing, groups[0].Direction)
	require.Len(t, groups[0].Nodes, 2)
	assert.True(t, groups[0].Nodes[0].ID().Equals(a.ID()))
	assert.True(t, groups[0].Nodes[1].ID().Equals(c.ID()))

	// Incoming groups take the reverse name when one is defined.
	assert.Equal(t, "is supported by", groups[1].Label)
	assert.Equal(t, services.DirectionIncoming, groups[1].Direction)
	require.Len(t, groups[1].Nodes, 1)
	assert.True(t, groups[1].Nodes[0].ID().Equals(b.ID()))

	assert.Equal(t, "cites", groups[2].Label)
	assert.Equal(t, services.DirectionOutgoing, groups[2].Direction)
}

func TestRelatedNodesExclusion(t *testing.T) {
	f := newFixture(t)
	alice := mustUser(t, "alice")
	ctx := context.Background()

	center := f.addMemo(t, alice, "center", valueobjects.PrivacyPrivate)
	linked := f.addMemo(t, alice, "linked", valueobjects.PrivacyPrivate)
	unrelated := f.addMemo(t, alice, "unrelated", valueobjects.PrivacyPrivate)
	related := f.addLinkType(t, alice, "relates to", "")
	f.addLink(t, alice, center.Ref(), linked.Ref(), related, valueobjects.PrivacyPrivate)

	spec, err := f.graph.RelatedNodesExclusion(ctx, center, valueobjects.KindMemo)
	require.NoError(t, err)

	assert.True(t, spec.IsSatisfiedBy(linked), "an already linked node is excluded")
	assert.True(t, spec.IsSatisfiedBy(center), "the node itself is excluded")
	assert.False(t, spec.IsSatisfiedBy(unrelated), "an unrelated node stays suggestible")
}

func TestRelatedNodesExclusion_LinkCandidates(t *testing.T) {
	f := newFixture(t)
	alice := mustUser(t, "alice")
	ctx := context.Background()

	center := f.addMemo(t, alice, "center", valueobjects.PrivacyPrivate)
	other := f.addMemo(t, alice, "other", valueobjects.PrivacyPrivate)
	third := f.addMemo(t, alice, "third", valueobjects.PrivacyPrivate)
	related := f.addLinkType(t, alice, "relates to", "")

	touching := f.addLink(t, alice, center.Ref(), other.Ref(), related, valueobjects.PrivacyPrivate)
	elsewhere := f.addLink(t, alice, other.Ref(), third.Ref(), related, valueobjects.PrivacyPrivate)

	spec, err := f.graph.RelatedNodesExclusion(ctx, center, valueobjects.KindLink)
	require.NoError(t, err)

	assert.True(t, spec.IsSatisfiedBy(touching), "a link touching the node is excluded")
	assert.False(t, spec.IsSatisfiedBy(elsewhere), "a link elsewhere in the graph is not")
}
