package memory

import (
	"sync"

	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/friendship"
)

// Store is the in-memory backing state shared by the repositories.
// Entities are keyed by their wire identity; insertion order is kept in
// parallel slices so listings are deterministic.
//
// Locking discipline: public repository methods take the store lock for one
// call; the unit of work holds the write lock across a whole transaction and
// routes through unlocked repository variants.
type Store struct {
	mu sync.RWMutex

	nodes     map[string]entities.Node // keyed by ref "kind#id"
	nodeOrder []string

	links     map[string]*entities.Link // keyed by id
	linkOrder []string

	tags     map[string]*entities.Tag // keyed by id
	tagOrder []string

	linkTypes map[string]*entities.LinkType // keyed by id
	typeOrder []string

	edges    map[string]friendship.Edge    // keyed by "low|high"
	requests map[string]friendship.Request // keyed by "sender|receiver"
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		nodes:     make(map[string]entities.Node),
		links:     make(map[string]*entities.Link),
		tags:      make(map[string]*entities.Tag),
		linkTypes: make(map[string]*entities.LinkType),
		edges:     make(map[string]friendship.Edge),
		requests:  make(map[string]friendship.Request),
	}
}

// snapshot captures the store's maps and order slices, with every entity
// deep-copied. Restoring a snapshot undoes inserts, deletes, replacements
// and in-place mutations made after it was taken, which is what transaction
// rollback needs.
type snapshot struct {
	nodes     map[string]entities.Node
	nodeOrder []string
	links     map[string]*entities.Link
	linkOrder []string
	tags      map[string]*entities.Tag
	tagOrder  []string
	linkTypes map[string]*entities.LinkType
	typeOrder []string
	edges     map[string]friendship.Edge
	requests  map[string]friendship.Request
}

// takeSnapshot copies the map and slice structure and clones the stored
// entities. Edges and requests are immutable values, so a shallow map copy
// is enough for them. Callers must hold the write lock.
func (s *Store) takeSnapshot() snapshot {
	nodes := make(map[string]entities.Node, len(s.nodes))
	for key, node := range s.nodes {
		nodes[key] = cloneNode(node)
	}
	links := make(map[string]*entities.Link, len(s.links))
	for key, link := range s.links {
		links[key] = cloneLink(link)
	}
	tags := make(map[string]*entities.Tag, len(s.tags))
	for key, tag := range s.tags {
		tags[key] = cloneTag(tag)
	}
	linkTypes := make(map[string]*entities.LinkType, len(s.linkTypes))
	for key, linkType := range s.linkTypes {
		linkTypes[key] = cloneLinkType(linkType)
	}
	return snapshot{
		nodes:     nodes,
		nodeOrder: copySlice(s.nodeOrder),
		links:     links,
		linkOrder: copySlice(s.linkOrder),
		tags:      tags,
		tagOrder:  copySlice(s.tagOrder),
		linkTypes: linkTypes,
		typeOrder: copySlice(s.typeOrder),
		edges:     copyMap(s.edges),
		requests:  copyMap(s.requests),
	}
}

// restore rewinds the store to a snapshot. Callers must hold the write lock.
func (s *Store) restore(snap snapshot) {
	s.nodes = snap.nodes
	s.nodeOrder = snap.nodeOrder
	s.links = snap.links
	s.linkOrder = snap.linkOrder
	s.tags = snap.tags
	s.tagOrder = snap.tagOrder
	s.linkTypes = snap.linkTypes
	s.typeOrder = snap.typeOrder
	s.edges = snap.edges
	s.requests = snap.requests
}

func cloneNode(node entities.Node) entities.Node {
	switch n := node.(type) {
	case *entities.Memo:
		return entities.ReconstructMemo(n.ID(), n.OwnerID(), n.Content(), n.Summary(),
			n.Privacy(), n.Embedding(), n.TagIDs(), n.CreatedAt(), n.UpdatedAt())
	case *entities.Reference:
		return entities.ReconstructReference(n.ID(), n.OwnerID(), n.Content(), n.Summary(),
			n.Source(), n.Privacy(), n.Embedding(), n.TagIDs(), n.CreatedAt(), n.UpdatedAt())
	case *entities.Inkling:
		return entities.ReconstructInkling(n.ID(), n.OwnerID(), n.Content(),
			n.Privacy(), n.Embedding(), n.TagIDs(), n.CreatedAt(), n.UpdatedAt())
	case *entities.Link:
		return cloneLink(n)
	default:
		return node
	}
}

func cloneLink(link *entities.Link) *entities.Link {
	return entities.ReconstructLink(link.ID(), link.OwnerID(), link.Source(), link.Target(),
		link.LinkTypeID(), link.Privacy(), link.Embedding(), link.TagIDs(),
		link.CreatedAt(), link.UpdatedAt())
}

func cloneTag(tag *entities.Tag) *entities.Tag {
	return entities.ReconstructTag(tag.ID(), tag.OwnerID(), tag.Name(), tag.Embedding(),
		tag.CreatedAt(), tag.UpdatedAt())
}

func cloneLinkType(linkType *entities.LinkType) *entities.LinkType {
	return entities.ReconstructLinkType(linkType.ID(), linkType.OwnerID(), linkType.Name(),
		linkType.ReverseName(), linkType.CreatedAt(), linkType.UpdatedAt())
}

func copyMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copySlice(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func removeKey(order []string, key string) []string {
	for i, k := range order {
		if k == key {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

func edgeKey(low, high string) string {
	return low + "|" + high
}

func requestKey(sender, receiver string) string {
	return sender + "|" + receiver
}
