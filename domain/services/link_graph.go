package services

import (
	"context"

	"go.uber.org/zap"

	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	"inklings-backend/domain/specifications"
)

// Direction classifies a link relative to a node of interest
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// LinkNeighborLister lists links touching a reference, in insertion order
type LinkNeighborLister interface {
	ListLinksTouching(ctx context.Context, ref valueobjects.NodeReference) ([]*entities.Link, error)
}

// LinkTypeReader resolves link type ids
type LinkTypeReader interface {
	GetLinkType(ctx context.Context, id valueobjects.NodeID) (*entities.LinkType, error)
}

// LinkGroup is a set of neighbors reached through the same relation kind in
// the same direction. Label carries the reverse name for incoming groups.
type LinkGroup struct {
	Type      *entities.LinkType
	Direction Direction
	Label     string
	Nodes     []entities.Node
}

// LinkGraphService is the graph-browsing surface: traversal of the typed
// link graph and the exclusion predicate for connection suggestions.
type LinkGraphService struct {
	links    LinkNeighborLister
	types    LinkTypeReader
	resolver NodeResolver
	logger   *zap.Logger
}

// NewLinkGraphService creates the link graph service
func NewLinkGraphService(
	links LinkNeighborLister,
	types LinkTypeReader,
	resolver NodeResolver,
	logger *zap.Logger,
) *LinkGraphService {
	return &LinkGraphService{
		links:    links,
		types:    types,
		resolver: resolver,
		logger:   logger,
	}
}

// AllLinks returns every link that has the node as source or target,
// regardless of direction, in insertion order
func (s *LinkGraphService) AllLinks(ctx context.Context, node entities.Node) ([]*entities.Link, error) {
	return s.links.ListLinksTouching(ctx, node.Ref())
}

// AllLinkedNodes resolves, for each link touching the node, the endpoint
// on the opposite side
func (s *LinkGraphService) AllLinkedNodes(ctx context.Context, node entities.Node) ([]entities.Node, error) {
	touching, err := s.AllLinks(ctx, node)
	if err != nil {
		return nil, err
	}

	neighbors := make([]entities.Node, 0, len(touching))
	for _, link := range touching {
		oppositeRef, ok := link.Opposite(node.Ref())
		if !ok {
			continue
		}
		neighbor, err := s.resolver.Resolve(ctx, oppositeRef)
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, neighbor)
	}
	return neighbors, nil
}

// LinkGroups groups linked neighbors by (link type, direction). Groups are
// ordered by first encounter and members keep the insertion order of the
// underlying links.
func (s *LinkGraphService) LinkGroups(ctx context.Context, node entities.Node) ([]LinkGroup, error) {
	touching, err := s.AllLinks(ctx, node)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		typeID    string
		direction Direction
	}
	index := make(map[groupKey]int)
	groups := make([]LinkGroup, 0)

	for _, link := range touching {
		direction := DirectionIncoming
		if link.Source().Equals(node.Ref()) {
			direction = DirectionOutgoing
		}
		oppositeRef, ok := link.Opposite(node.Ref())
		if !ok {
			continue
		}
		neighbor, err := s.resolver.Resolve(ctx, oppositeRef)
		if err != nil {
			return nil, err
		}

		key := groupKey{typeID: link.LinkTypeID().String(), direction: direction}
		pos, ok := index[key]
		if !ok {
			linkType, err := s.types.GetLinkType(ctx, link.LinkTypeID())
			if err != nil {
				return nil, err
			}
			label := linkType.Name()
			if direction == DirectionIncoming && linkType.ReverseName() != "" {
				label = linkType.ReverseName()
			}
			groups = append(groups, LinkGroup{Type: linkType, Direction: direction, Label: label})
			pos = len(groups) - 1
			index[key] = pos
		}
		groups[pos].Nodes = append(groups[pos].Nodes, neighbor)
	}

	return groups, nil
}

// RelatedNodesExclusion builds the predicate selecting candidates of the
// given kind that are already related to the node and must be excluded from
// "connect to" suggestions. A satisfied candidate is an excluded candidate.
// The predicate is a set test plus a constant-time endpoint check, so it
// composes with pagination without materializing the candidate set twice.
func (s *LinkGraphService) RelatedNodesExclusion(
	ctx context.Context,
	node entities.Node,
	candidateKind valueobjects.NodeKind,
) (specifications.Specification[entities.Node], error) {
	touching, err := s.AllLinks(ctx, node)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{})

	// Endpoints of links already touching the node, matched by kind.
	for _, link := range touching {
		for _, ref := range []valueobjects.NodeReference{link.Source(), link.Target()} {
			if ref.Kind() == candidateKind {
				excluded[ref.ID().String()] = struct{}{}
			}
		}
		if candidateKind == valueobjects.KindLink {
			excluded[link.ID().String()] = struct{}{}
		}
	}

	// A link cannot be connected to its own endpoints in that role.
	if asLink, ok := node.(*entities.Link); ok {
		for _, ref := range []valueobjects.NodeReference{asLink.Source(), asLink.Target()} {
			if ref.Kind() == candidateKind {
				excluded[ref.ID().String()] = struct{}{}
			}
		}
	}

	// No self-link by identity.
	if candidateKind == node.Kind() {
		excluded[node.ID().String()] = struct{}{}
	}

	nodeRef := node.Ref()
	return specifications.New(func(candidate entities.Node) bool {
		if candidate.Kind() != candidateKind {
			return false
		}
		if _, ok := excluded[candidate.ID().String()]; ok {
			return true
		}
		if candidateKind == valueobjects.KindLink {
			if candidateLink, ok := candidate.(*entities.Link); ok && candidateLink.Touches(nodeRef) {
				return true
			}
		}
		return false
	}), nil
}
