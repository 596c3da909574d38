package ports

import (
	"context"

	"inklings-backend/domain/core/entities"
	"inklings-backend/domain/core/valueobjects"
	"inklings-backend/domain/events"
	"inklings-backend/domain/friendship"
	"inklings-backend/domain/services"
)

// NodeRepository persists the heterogeneous content nodes (memos,
// references, inklings, tags). Links have their own repository because the
// graph queries differ.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation.
type NodeRepository interface {
	// Save persists a node (create or update)
	Save(ctx context.Context, node entities.Node) error

	// Get retrieves a node by reference
	Get(ctx context.Context, ref valueobjects.NodeReference) (entities.Node, error)

	// ListByKind retrieves every node of a kind, in insertion order
	ListByKind(ctx context.Context, kind valueobjects.NodeKind) ([]entities.Node, error)

	// ListByOwner retrieves every node of a kind owned by a user
	ListByOwner(ctx context.Context, kind valueobjects.NodeKind, owner valueobjects.UserID) ([]entities.Node, error)

	// ListNodeSubjects retrieves the (id, owner, privacy) projections the
	// visibility engine filters on
	ListNodeSubjects(ctx context.Context, kind valueobjects.NodeKind) ([]services.NodeSubject, error)

	// Delete removes a node
	Delete(ctx context.Context, ref valueobjects.NodeReference) error
}

// LinkRepository persists typed directed edges
type LinkRepository interface {
	// Save persists a link (create or update)
	Save(ctx context.Context, link *entities.Link) error

	// Get retrieves a link by id
	Get(ctx context.Context, id valueobjects.NodeID) (*entities.Link, error)

	// ListLinks retrieves every link, in insertion order
	ListLinks(ctx context.Context) ([]*entities.Link, error)

	// ListLinksTouching retrieves links having the reference as either
	// endpoint, in insertion order
	ListLinksTouching(ctx context.Context, ref valueobjects.NodeReference) ([]*entities.Link, error)

	// FindRelation looks up a link by its (source, target, type) triple
	FindRelation(ctx context.Context, source, target valueobjects.NodeReference, linkTypeID valueobjects.NodeID) (*entities.Link, error)

	// Delete removes a link
	Delete(ctx context.Context, id valueobjects.NodeID) error
}

// TagRepository persists owner-scoped tags
type TagRepository interface {
	// Save persists a tag (create or update)
	Save(ctx context.Context, tag *entities.Tag) error

	// Get retrieves a tag by id
	Get(ctx context.Context, id valueobjects.NodeID) (*entities.Tag, error)

	// GetByName retrieves a tag by its normalized name for one owner
	GetByName(ctx context.Context, owner valueobjects.UserID, name string) (*entities.Tag, error)

	// ListByOwner retrieves a user's tags
	ListByOwner(ctx context.Context, owner valueobjects.UserID) ([]*entities.Tag, error)

	// Delete removes a tag
	Delete(ctx context.Context, id valueobjects.NodeID) error
}

// LinkTypeRepository persists owner-scoped relation kinds
type LinkTypeRepository interface {
	// Save persists a link type (create or update)
	Save(ctx context.Context, linkType *entities.LinkType) error

	// GetLinkType retrieves a link type by id
	GetLinkType(ctx context.Context, id valueobjects.NodeID) (*entities.LinkType, error)

	// GetByName retrieves a link type by name for one owner
	GetByName(ctx context.Context, owner valueobjects.UserID, name string) (*entities.LinkType, error)

	// ListByOwner retrieves a user's link types
	ListByOwner(ctx context.Context, owner valueobjects.UserID) ([]*entities.LinkType, error)

	// Delete removes a link type
	Delete(ctx context.Context, id valueobjects.NodeID) error
}

// FriendshipRepository persists the friendship graph: canonical undirected
// edges plus directed pending requests
type FriendshipRepository interface {
	// AddEdge stores the canonical undirected friendship edge
	AddEdge(ctx context.Context, edge friendship.Edge) error

	// RemoveEdge deletes the edge joining the pair, in either order.
	// Removal is atomic for both directions by construction: there is
	// only one edge to delete.
	RemoveEdge(ctx context.Context, a, b valueobjects.UserID) error

	// EdgeExists reports whether the pair are friends
	EdgeExists(ctx context.Context, a, b valueobjects.UserID) (bool, error)

	// FriendsOf lists a user's mutual friends
	FriendsOf(ctx context.Context, user valueobjects.UserID) ([]valueobjects.UserID, error)

	// PutRequest stores a pending directed request
	PutRequest(ctx context.Context, request friendship.Request) error

	// DeleteRequest removes a pending request if present; deleting an
	// absent request is not an error
	DeleteRequest(ctx context.Context, sender, receiver valueobjects.UserID) error

	// RequestExists reports whether a pending request sender→receiver exists
	RequestExists(ctx context.Context, sender, receiver valueobjects.UserID) (bool, error)

	// ProfileOf assembles a user's friendship profile
	ProfileOf(ctx context.Context, user valueobjects.UserID) (friendship.Profile, error)
}

// Repositories bundles every repository behind one accessor surface,
// used both for direct reads and inside transactions
type Repositories interface {
	Nodes() NodeRepository
	Links() LinkRepository
	Tags() TagRepository
	LinkTypes() LinkTypeRepository
	Friendships() FriendshipRepository
}

// UnitOfWork defines the transaction boundary for multi-step mutations.
// Execute runs fn against transaction-scoped repositories; either every
// write lands or none does.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
}

// EventPublisher publishes domain events to the outside world
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EmbeddingProvider is the external component that turns text into vectors.
// The core only consumes embeddings; it never computes them.
type EmbeddingProvider interface {
	// EmbedText returns the embedding for a text payload
	EmbedText(ctx context.Context, text string) (valueobjects.Embedding, error)
}
