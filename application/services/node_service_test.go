package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inklings-backend/application/services"
	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

func TestCreateMemo_WithTags(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	f.embedder.vectors["Morning pages\nStray thoughts."] = vectorAt(t, 1)

	memo, err := f.nodes.CreateMemo(ctx, services.CreateMemoCommand{
		OwnerID: "alice",
		Title:   "Morning pages",
		Body:    "Stray thoughts.",
		Privacy: "friends",
		Tags:    []string{" GoLang", "golang ", "Journal"},
	})
	require.NoError(t, err)

	// Raw names collapsing to the same normalized form share one tag.
	assert.Len(t, memo.TagIDs(), 2)
	assert.False(t, memo.Embedding().IsZero())
	assert.Equal(t, valueobjects.PrivacyFriends, memo.Privacy())

	tags, err := f.nodes.ListTags(ctx, userID(t, "alice"))
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "golang", tags[0].Name())
	assert.Equal(t, "journal", tags[1].Name())

	assert.Contains(t, f.publisher.typesSeen(), "node.created")
}

func TestCreateMemo_SurvivesEmbeddingOutage(t *testing.T) {
	f := newAppFixture(t)

	// No stub vector registered: the provider fails, the memo is still stored.
	memo, err := f.nodes.CreateMemo(context.Background(), services.CreateMemoCommand{
		OwnerID: "alice",
		Title:   "Unembedded",
	})
	require.NoError(t, err)
	assert.True(t, memo.Embedding().IsZero())
}

func TestCreateMemo_ValidatesCommand(t *testing.T) {
	f := newAppFixture(t)

	_, err := f.nodes.CreateMemo(context.Background(), services.CreateMemoCommand{
		OwnerID: "alice",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestCreateReference_CarriesProvenance(t *testing.T) {
	f := newAppFixture(t)

	ref, err := f.nodes.CreateReference(context.Background(), services.CreateReferenceCommand{
		OwnerID:    "alice",
		Title:      "The Mythical Man-Month",
		URL:        "https://example.org/mmm",
		SourceName: "Addison-Wesley",
		Authors:    "Frederick P. Brooks Jr.",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/mmm", ref.Source().URL)
	assert.Equal(t, valueobjects.KindReference, ref.Kind())
}

func TestCreateTag_DuplicateNormalizedNameConflicts(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice := userID(t, "alice")

	_, err := f.nodes.CreateTag(ctx, alice, "Reading List")
	require.NoError(t, err)

	_, err = f.nodes.CreateTag(ctx, alice, "  reading list ")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDuplicateTag(err))

	// Different owners can hold the same name.
	_, err = f.nodes.CreateTag(ctx, userID(t, "bob"), "reading list")
	require.NoError(t, err)
}

func TestGetNode_HiddenNodesReadAsNotFound(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	memo, err := f.nodes.CreateMemo(ctx, services.CreateMemoCommand{
		OwnerID: "alice",
		Title:   "Private",
		Privacy: "private",
	})
	require.NoError(t, err)

	got, err := f.nodes.GetNode(ctx, userID(t, "alice"), valueobjects.LevelOwn, memo.Ref())
	require.NoError(t, err)
	assert.True(t, got.ID().Equals(memo.ID()))

	_, err = f.nodes.GetNode(ctx, userID(t, "bob"), valueobjects.LevelFriendsOfFriends, memo.Ref())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSetPrivacy_OwnerOnly(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	memo, err := f.nodes.CreateMemo(ctx, services.CreateMemoCommand{
		OwnerID: "alice",
		Title:   "Shifting tiers",
	})
	require.NoError(t, err)

	err = f.nodes.SetPrivacy(ctx, userID(t, "bob"), memo.Ref(), "friends")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeForbidden))

	require.NoError(t, f.nodes.SetPrivacy(ctx, userID(t, "alice"), memo.Ref(), "friends"))
}

func TestDeleteNode_RemovesTouchingLinks(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice := userID(t, "alice")

	memoA, err := f.nodes.CreateMemo(ctx, services.CreateMemoCommand{OwnerID: "alice", Title: "A"})
	require.NoError(t, err)
	memoB, err := f.nodes.CreateMemo(ctx, services.CreateMemoCommand{OwnerID: "alice", Title: "B"})
	require.NoError(t, err)

	linkType, err := f.links.CreateLinkType(ctx, services.CreateLinkTypeCommand{
		OwnerID: "alice",
		Name:    "relates to",
	})
	require.NoError(t, err)
	link, err := f.links.CreateLink(ctx, services.CreateLinkCommand{
		OwnerID:    "alice",
		SourceRef:  memoA.Ref().String(),
		TargetRef:  memoB.Ref().String(),
		LinkTypeID: linkType.ID().String(),
	})
	require.NoError(t, err)

	require.NoError(t, f.nodes.DeleteNode(ctx, alice, memoA.Ref()))

	_, err = f.repos.Links().Get(ctx, link.ID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestDeleteNode_CascadeFollowsLinkChains(t *testing.T) {
	f := newLinkFixture(t)
	ctx := context.Background()
	alice := userID(t, "alice")

	memoC, err := f.nodes.CreateMemo(ctx, services.CreateMemoCommand{OwnerID: "alice", Title: "C"})
	require.NoError(t, err)

	// A link on a link: deleting memoA must take down first, and with it
	// second, whose source just vanished.
	first := f.connect(t, f.memoA.Ref(), f.memoB.Ref())
	second := f.connect(t, first.Ref(), memoC.Ref())

	require.NoError(t, f.nodes.DeleteNode(ctx, alice, f.memoA.Ref()))

	for _, link := range []*entities.Link{first, second} {
		_, err := f.repos.Links().Get(ctx, link.ID())
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))
	}
}

func TestListVisibleNodes(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice, bob := userID(t, "alice"), userID(t, "bob")

	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))
	require.NoError(t, f.friendships.AcceptRequest(ctx, bob, alice))

	mine, err := f.nodes.CreateMemo(ctx, services.CreateMemoCommand{OwnerID: "alice", Title: "Mine", Privacy: "private"})
	require.NoError(t, err)
	shared, err := f.nodes.CreateMemo(ctx, services.CreateMemoCommand{OwnerID: "bob", Title: "Shared", Privacy: "friends"})
	require.NoError(t, err)
	_, err = f.nodes.CreateMemo(ctx, services.CreateMemoCommand{OwnerID: "bob", Title: "Hidden", Privacy: "private"})
	require.NoError(t, err)

	own, err := f.nodes.ListVisibleNodes(ctx, alice, valueobjects.LevelOwn, valueobjects.KindMemo)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.True(t, own[0].ID().Equals(mine.ID()), "own level selects exactly the viewer's nodes")

	atFriends, err := f.nodes.ListVisibleNodes(ctx, alice, valueobjects.LevelFriends, valueobjects.KindMemo)
	require.NoError(t, err)
	ids := make([]string, 0, len(atFriends))
	for _, node := range atFriends {
		ids = append(ids, node.ID().String())
	}
	assert.Contains(t, ids, mine.ID().String())
	assert.Contains(t, ids, shared.ID().String())
	assert.Len(t, ids, 2)
}

func TestTagNode_GetOrCreate(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice := userID(t, "alice")

	memo, err := f.nodes.CreateMemo(ctx, services.CreateMemoCommand{OwnerID: "alice", Title: "Taggable"})
	require.NoError(t, err)

	require.NoError(t, f.nodes.TagNode(ctx, alice, memo.Ref(), "Research"))
	require.NoError(t, f.nodes.TagNode(ctx, alice, memo.Ref(), "research"))

	stored, err := f.repos.Nodes().Get(ctx, memo.Ref())
	require.NoError(t, err)
	taggable, ok := stored.(entities.Taggable)
	require.True(t, ok)
	assert.Len(t, taggable.TagIDs(), 1, "re-tagging with the same normalized name is a no-op")
}
