package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inklings-backend/application/services"
	domaincfg "inklings-backend/domain/config"
	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// addEmbeddedMemo stores a memo whose cosine distance to vectorAt(1) is
// exactly 1-cos
func addEmbeddedMemo(t *testing.T, f *appFixture, owner, title string, privacy string, cos float64) *entities.Memo {
	t.Helper()
	f.embedder.vectors[title] = vectorAt(t, cos)
	memo, err := f.nodes.CreateMemo(context.Background(), services.CreateMemoCommand{
		OwnerID: owner,
		Title:   title,
		Privacy: privacy,
	})
	require.NoError(t, err)
	return memo
}

func resultIDs(results []services.SimilarityResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Node.ID().String())
	}
	return out
}

func TestQuerySimilar_SortsNearestFirst(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	near := addEmbeddedMemo(t, f, "alice", "near", "private", 0.9)
	mid := addEmbeddedMemo(t, f, "alice", "mid", "private", 0.7)
	edge := addEmbeddedMemo(t, f, "alice", "edge", "private", 0.4)
	addEmbeddedMemo(t, f, "alice", "far", "private", -0.5)

	results, err := f.search.QuerySimilar(ctx, services.SimilarityQuery{
		Viewer: userID(t, "alice"),
		Level:  valueobjects.LevelOwn,
		Target: vectorAt(t, 1),
	})
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, []string{near.ID().String(), mid.ID().String(), edge.ID().String()}, resultIDs(results))
	assert.InDelta(t, 0.1, results[0].Distance, 1e-9)
	assert.InDelta(t, 0.3, results[1].Distance, 1e-9)
	assert.InDelta(t, 0.6, results[2].Distance, 1e-9)
}

func TestQuerySimilar_ThresholdIsStrict(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	memo := addEmbeddedMemo(t, f, "alice", "on the line", "private", 0.5)
	distance, err := vectorAt(t, 1).CosineDistance(memo.Embedding())
	require.NoError(t, err)

	// With the threshold set to the candidate's exact distance, the
	// candidate is excluded: matches must be strictly closer.
	cfg := *domaincfg.DefaultDomainConfig()
	cfg.SimilarityThreshold = distance
	f.retune(services.StaticTuning{Config: cfg})

	results, err := f.search.QuerySimilar(ctx, services.SimilarityQuery{
		Viewer: userID(t, "alice"),
		Level:  valueobjects.LevelOwn,
		Target: vectorAt(t, 1),
	})
	require.NoError(t, err)
	assert.Empty(t, results)

	// Any slack at all lets it back in.
	cfg.SimilarityThreshold = distance + 1e-9
	f.retune(services.StaticTuning{Config: cfg})

	results, err = f.search.QuerySimilar(ctx, services.SimilarityQuery{
		Viewer: userID(t, "alice"),
		Level:  valueobjects.LevelOwn,
		Target: vectorAt(t, 1),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, memo.ID().String(), results[0].Node.ID().String())
}

func TestQuerySimilar_TiesBreakByID(t *testing.T) {
	f := newAppFixture(t)

	a := addEmbeddedMemo(t, f, "alice", "twin a", "private", 0.8)
	b := addEmbeddedMemo(t, f, "alice", "twin b", "private", 0.8)
	low, high := a.ID().String(), b.ID().String()
	if high < low {
		low, high = high, low
	}

	results, err := f.search.QuerySimilar(context.Background(), services.SimilarityQuery{
		Viewer: userID(t, "alice"),
		Level:  valueobjects.LevelOwn,
		Target: vectorAt(t, 1),
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []string{low, high}, resultIDs(results))
}

func TestQuerySimilar_LimitTruncatesNearestFirst(t *testing.T) {
	f := newAppFixture(t)

	nearest := addEmbeddedMemo(t, f, "alice", "nearest", "private", 0.95)
	addEmbeddedMemo(t, f, "alice", "second", "private", 0.9)
	addEmbeddedMemo(t, f, "alice", "third", "private", 0.85)

	results, err := f.search.QuerySimilar(context.Background(), services.SimilarityQuery{
		Viewer: userID(t, "alice"),
		Level:  valueobjects.LevelOwn,
		Target: vectorAt(t, 1),
		Limit:  1,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, nearest.ID().String(), results[0].Node.ID().String())
}

func TestQuerySimilar_RespectsVisibility(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice, bob := userID(t, "alice"), userID(t, "bob")

	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))
	require.NoError(t, f.friendships.AcceptRequest(ctx, bob, alice))

	shared := addEmbeddedMemo(t, f, "bob", "shared with friends", "friends", 0.9)
	addEmbeddedMemo(t, f, "bob", "kept private", "private", 0.95)

	results, err := f.search.QuerySimilar(ctx, services.SimilarityQuery{
		Viewer: alice,
		Level:  valueobjects.LevelFriends,
		Target: vectorAt(t, 1),
	})
	require.NoError(t, err)
	require.Len(t, results, 1, "a hidden candidate never appears, however close")
	assert.Equal(t, shared.ID().String(), results[0].Node.ID().String())
}

func TestQuerySimilar_TagsAreOwnerOnly(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice, bob := userID(t, "alice"), userID(t, "bob")

	require.NoError(t, f.friendships.SendRequest(ctx, alice, bob))
	require.NoError(t, f.friendships.AcceptRequest(ctx, bob, alice))

	f.embedder.vectors["mine"] = vectorAt(t, 0.9)
	mine, err := f.nodes.CreateTag(ctx, alice, "mine")
	require.NoError(t, err)
	f.embedder.vectors["theirs"] = vectorAt(t, 0.95)
	_, err = f.nodes.CreateTag(ctx, bob, "theirs")
	require.NoError(t, err)

	results, err := f.search.QuerySimilar(ctx, services.SimilarityQuery{
		Viewer: alice,
		Level:  valueobjects.LevelFriendsOfFriends,
		Target: vectorAt(t, 1),
		Kinds:  []valueobjects.NodeKind{valueobjects.KindTag},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, mine.ID().String(), results[0].Node.ID().String())
}

func TestQuerySimilar_SkipsNodesWithoutEmbeddings(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	// No stub vector, so this memo is stored without one.
	_, err := f.nodes.CreateMemo(ctx, services.CreateMemoCommand{OwnerID: "alice", Title: "unembedded"})
	require.NoError(t, err)

	results, err := f.search.QuerySimilar(ctx, services.SimilarityQuery{
		Viewer: userID(t, "alice"),
		Level:  valueobjects.LevelOwn,
		Target: vectorAt(t, 1),
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestQuerySimilar_RequiresTargetAndKnownLevel(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	_, err := f.search.QuerySimilar(ctx, services.SimilarityQuery{
		Viewer: userID(t, "alice"),
		Level:  valueobjects.LevelOwn,
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = f.search.QuerySimilar(ctx, services.SimilarityQuery{
		Viewer: userID(t, "alice"),
		Level:  valueobjects.PrivacyLevel("everyone"),
		Target: vectorAt(t, 1),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnknownPrivacyLevel(err))
}

func TestQuerySimilarToNode_ExcludesSelfAndRelated(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()
	alice := userID(t, "alice")

	anchor := addEmbeddedMemo(t, f, "alice", "anchor", "private", 1)
	linked := addEmbeddedMemo(t, f, "alice", "linked", "private", 0.95)
	suggested := addEmbeddedMemo(t, f, "alice", "suggested", "private", 0.9)

	related, err := f.links.CreateLinkType(ctx, services.CreateLinkTypeCommand{OwnerID: "alice", Name: "relates to"})
	require.NoError(t, err)
	_, err = f.links.CreateLink(ctx, services.CreateLinkCommand{
		OwnerID:    "alice",
		SourceRef:  anchor.Ref().String(),
		TargetRef:  linked.Ref().String(),
		LinkTypeID: related.ID().String(),
	})
	require.NoError(t, err)

	results, err := f.search.QuerySimilarToNode(ctx, alice, valueobjects.LevelOwn, anchor.Ref(),
		[]valueobjects.NodeKind{valueobjects.KindMemo}, 0)
	require.NoError(t, err)
	require.Len(t, results, 1, "the anchor and its neighbors are not suggestible")
	assert.Equal(t, suggested.ID().String(), results[0].Node.ID().String())
}

func TestQuerySimilarToText(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	hit := addEmbeddedMemo(t, f, "alice", "close", "private", 0.9)
	f.embedder.vectors["what is close to this"] = vectorAt(t, 1)

	results, err := f.search.QuerySimilarToText(ctx, userID(t, "alice"), valueobjects.LevelOwn,
		"what is close to this", nil, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, hit.ID().String(), results[0].Node.ID().String())

	_, err = f.search.QuerySimilarToText(ctx, userID(t, "alice"), valueobjects.LevelOwn, "", nil, 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestQuerySimilar_HotTuning(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	addEmbeddedMemo(t, f, "alice", "moderately close", "private", 0.5)

	results, err := f.search.QuerySimilar(ctx, services.SimilarityQuery{
		Viewer: userID(t, "alice"),
		Level:  valueobjects.LevelOwn,
		Target: vectorAt(t, 1),
	})
	require.NoError(t, err)
	assert.Len(t, results, 1, "distance 0.5 passes the default 0.7 threshold")

	// A tightened threshold takes effect on the next query.
	tight := *domaincfg.DefaultDomainConfig()
	tight.SimilarityThreshold = 0.4
	f.retune(services.StaticTuning{Config: tight})

	results, err = f.search.QuerySimilar(ctx, services.SimilarityQuery{
		Viewer: userID(t, "alice"),
		Level:  valueobjects.LevelOwn,
		Target: vectorAt(t, 1),
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}
