package services

import (
	"context"

	"go.uber.org/zap"

	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	"inklings-backend/domain/specifications"
	pkgerrors "inklings-backend/pkg/errors"
)

// NodeSubject is the minimal projection of a node the policy engine needs
// for bulk filtering: identity, ownership and sharing tier.
type NodeSubject struct {
	ID      valueobjects.NodeID
	OwnerID valueobjects.UserID
	Privacy valueobjects.PrivacySetting
}

// Subject converts the projection to the predicate input
func (n NodeSubject) Subject() specifications.Subject {
	return specifications.Subject{OwnerID: n.OwnerID, Privacy: n.Privacy}
}

// FriendshipReader supplies materialized friend sets
type FriendshipReader interface {
	FriendsOf(ctx context.Context, user valueobjects.UserID) ([]valueobjects.UserID, error)
}

// SubjectSource lists the (id, owner, privacy) projections of a kind
type SubjectSource interface {
	ListNodeSubjects(ctx context.Context, kind valueobjects.NodeKind) ([]NodeSubject, error)
}

// LinkSource lists every link in the graph
type LinkSource interface {
	ListLinks(ctx context.Context) ([]*entities.Link, error)
}

// NodeResolver resolves a reference to its concrete node. It is the single
// dispatch point across the heterogeneous kinds.
type NodeResolver interface {
	Resolve(ctx context.Context, ref valueobjects.NodeReference) (entities.Node, error)
}

// VisibilityService is the policy engine: it turns an
// (owner, privacy setting, viewer, level) quadruple into a decision or a
// reusable filter predicate, backed by the friendship graph.
type VisibilityService struct {
	friendships FriendshipReader
	subjects    SubjectSource
	links       LinkSource
	resolver    NodeResolver
	logger      *zap.Logger
}

// NewVisibilityService creates the policy engine
func NewVisibilityService(
	friendships FriendshipReader,
	subjects SubjectSource,
	links LinkSource,
	resolver NodeResolver,
	logger *zap.Logger,
) *VisibilityService {
	return &VisibilityService{
		friendships: friendships,
		subjects:    subjects,
		links:       links,
		resolver:    resolver,
		logger:      logger,
	}
}

// FilterFor returns the bulk visibility predicate for a viewer at a level.
// The viewer's friend set and friend-of-friend set are materialized once,
// so evaluating the predicate over a collection needs no further graph walks.
func (s *VisibilityService) FilterFor(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
) (specifications.Specification[specifications.Subject], error) {
	if _, err := valueobjects.ParsePrivacyLevel(level.String()); err != nil {
		return nil, err
	}
	if level == valueobjects.LevelOwn {
		return specifications.Visibility(viewer, level, nil, nil), nil
	}

	friends, friendsOfFriends, err := s.friendSets(ctx, viewer)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("materialized friend sets for visibility filter",
		zap.String("viewer", viewer.String()),
		zap.String("level", level.String()),
		zap.Int("friends", len(friends)),
		zap.Int("friendsOfFriends", len(friendsOfFriends)),
	)

	return specifications.Visibility(viewer, level, friends, friendsOfFriends), nil
}

// IsViewableBy decides visibility of a single node. It agrees with the bulk
// predicate for the same inputs: an owner always sees their own nodes, links
// require both endpoints to be independently viewable, and kinds without
// privacy tiers fall back to owner-only access.
func (s *VisibilityService) IsViewableBy(
	ctx context.Context,
	node entities.Node,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
) (bool, error) {
	if _, err := valueobjects.ParsePrivacyLevel(level.String()); err != nil {
		return false, err
	}
	if node.OwnerID().Equals(viewer) {
		return true, nil
	}

	switch n := node.(type) {
	case *entities.Link:
		return s.isLinkViewableBy(ctx, n, viewer, level)
	case entities.PrivacyGated:
		filter, err := s.FilterFor(ctx, viewer, level)
		if err != nil {
			return false, err
		}
		subject := specifications.Subject{OwnerID: n.OwnerID(), Privacy: n.Privacy()}
		return filter.IsSatisfiedBy(subject), nil
	default:
		// Kinds without privacy tiers (tags) are owner-only, and the
		// owner case was handled above.
		return false, nil
	}
}

// isLinkViewableBy applies the conjunction rule: a link is viewable only
// when both endpoints are, independently, at the same level. Endpoints may
// themselves be links, so this recurses through link-to-link chains.
func (s *VisibilityService) isLinkViewableBy(
	ctx context.Context,
	link *entities.Link,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
) (bool, error) {
	for _, ref := range []valueobjects.NodeReference{link.Source(), link.Target()} {
		endpoint, err := s.resolver.Resolve(ctx, ref)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				return false, nil
			}
			return false, err
		}
		viewable, err := s.IsViewableBy(ctx, endpoint, viewer, level)
		if err != nil {
			return false, err
		}
		if !viewable {
			return false, nil
		}
	}
	return true, nil
}

// LinkFilterFor returns the bulk visibility predicate for links. It resolves
// every concrete kind's own predicate into a membership set of viewable
// endpoints and admits a link only when both its endpoints are members.
// Links referencing other links are resolved iteratively until a fixpoint,
// so chains of link-to-link references are handled.
func (s *VisibilityService) LinkFilterFor(
	ctx context.Context,
	viewer valueobjects.UserID,
	level valueobjects.PrivacyLevel,
) (specifications.Specification[*entities.Link], error) {
	nodeFilter, err := s.FilterFor(ctx, viewer, level)
	if err != nil {
		return nil, err
	}

	viewable := make(map[string]struct{})

	for _, kind := range valueobjects.ContentKinds {
		nodeSubjects, err := s.subjects.ListNodeSubjects(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, subj := range nodeSubjects {
			if nodeFilter.IsSatisfiedBy(subj.Subject()) {
				ref, _ := valueobjects.NewNodeReference(kind, subj.ID)
				viewable[ref.String()] = struct{}{}
			}
		}
	}

	// Tags carry no privacy tiers; only the owner's tags are viewable.
	tagSubjects, err := s.subjects.ListNodeSubjects(ctx, valueobjects.KindTag)
	if err != nil {
		return nil, err
	}
	for _, subj := range tagSubjects {
		if subj.OwnerID.Equals(viewer) {
			ref, _ := valueobjects.NewNodeReference(valueobjects.KindTag, subj.ID)
			viewable[ref.String()] = struct{}{}
		}
	}

	allLinks, err := s.links.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	for changed := true; changed; {
		changed = false
		for _, link := range allLinks {
			key := link.Ref().String()
			if _, done := viewable[key]; done {
				continue
			}
			if _, ok := viewable[link.Source().String()]; !ok {
				continue
			}
			if _, ok := viewable[link.Target().String()]; !ok {
				continue
			}
			viewable[key] = struct{}{}
			changed = true
		}
	}

	return specifications.New(func(link *entities.Link) bool {
		if link.OwnerID().Equals(viewer) {
			// Owners see their own links unconditionally, matching the
			// single-object rule for every other kind.
			return true
		}
		_, srcOK := viewable[link.Source().String()]
		_, tgtOK := viewable[link.Target().String()]
		return srcOK && tgtOK
	}), nil
}

// friendSets materializes the viewer's direct friends and the users who
// share at least one mutual friend with the viewer. The viewer is excluded
// from both sets; direct friends are excluded from the second by the
// predicate itself.
func (s *VisibilityService) friendSets(
	ctx context.Context,
	viewer valueobjects.UserID,
) (friends specifications.UserSet, friendsOfFriends specifications.UserSet, err error) {
	direct, err := s.friendships.FriendsOf(ctx, viewer)
	if err != nil {
		return nil, nil, err
	}

	friends = specifications.NewUserSet(direct...)
	friendsOfFriends = specifications.NewUserSet()

	for _, friend := range direct {
		theirFriends, err := s.friendships.FriendsOf(ctx, friend)
		if err != nil {
			return nil, nil, err
		}
		for _, candidate := range theirFriends {
			if candidate.Equals(viewer) {
				continue
			}
			friendsOfFriends.Add(candidate)
		}
	}

	return friends, friendsOfFriends, nil
}
