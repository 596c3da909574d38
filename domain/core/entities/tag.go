package entities

import (
	"strings"
	"time"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// Tag is an owner-scoped label with its own embedding. Tags carry no
// privacy tiers: they are visible only to their owner.
type Tag struct {
	id        valueobjects.NodeID
	ownerID   valueobjects.UserID
	name      string
	embedding valueobjects.Embedding
	createdAt time.Time
	updatedAt time.Time
}

// NormalizeTagName lower-cases and trims a raw tag name. Two raw names that
// collapse to the same normalized form identify the same tag for one owner.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewTag creates a tag owned by the given user
func NewTag(ownerID valueobjects.UserID, name string) (*Tag, error) {
	if ownerID.IsZero() {
		return nil, pkgerrors.NewValidationError("owner cannot be empty")
	}
	normalized := NormalizeTagName(name)
	if normalized == "" {
		return nil, pkgerrors.NewValidationError("tag name cannot be empty")
	}
	now := time.Now()
	return &Tag{
		id:        valueobjects.NewNodeID(),
		ownerID:   ownerID,
		name:      normalized,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructTag rebuilds a tag from repository data
func ReconstructTag(
	id valueobjects.NodeID,
	ownerID valueobjects.UserID,
	name string,
	embedding valueobjects.Embedding,
	createdAt, updatedAt time.Time,
) *Tag {
	return &Tag{
		id:        id,
		ownerID:   ownerID,
		name:      NormalizeTagName(name),
		embedding: embedding,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the tag's unique identifier
func (t *Tag) ID() valueobjects.NodeID {
	return t.id
}

// Kind returns the tag kind tag
func (t *Tag) Kind() valueobjects.NodeKind {
	return valueobjects.KindTag
}

// Ref returns the tag's node reference
func (t *Tag) Ref() valueobjects.NodeReference {
	ref, _ := valueobjects.NewNodeReference(valueobjects.KindTag, t.id)
	return ref
}

// OwnerID returns the owning user's ID
func (t *Tag) OwnerID() valueobjects.UserID {
	return t.ownerID
}

// Name returns the normalized tag name
func (t *Tag) Name() string {
	return t.name
}

// Embedding returns the tag's similarity vector
func (t *Tag) Embedding() valueobjects.Embedding {
	return t.embedding
}

// SetEmbedding assigns the vector supplied by the embedding provider
func (t *Tag) SetEmbedding(embedding valueobjects.Embedding) {
	t.embedding = embedding
	t.updatedAt = time.Now()
}

// CreatedAt returns when the tag was created
func (t *Tag) CreatedAt() time.Time {
	return t.createdAt
}

// UpdatedAt returns when the tag was last updated
func (t *Tag) UpdatedAt() time.Time {
	return t.updatedAt
}
