package entities

import (
	"time"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// Node is the capability every graph participant shares: a stable reference
// plus ownership. Content kinds, tags and links all satisfy it, which lets
// the link graph address them uniformly through NodeReference.
type Node interface {
	Ref() valueobjects.NodeReference
	ID() valueobjects.NodeID
	Kind() valueobjects.NodeKind
	OwnerID() valueobjects.UserID
}

// PrivacyGated is implemented by kinds that carry a sharing tier.
// Tags deliberately do not implement it; the policy engine branches on
// this capability instead of assuming every kind has tiers.
type PrivacyGated interface {
	Node
	Privacy() valueobjects.PrivacySetting
}

// Embeddable is implemented by kinds that carry a similarity vector
type Embeddable interface {
	Node
	Embedding() valueobjects.Embedding
}

// Taggable is implemented by kinds that can be labelled with owner tags
type Taggable interface {
	Node
	TagIDs() []valueobjects.NodeID
}

// Timestamped exposes creation and update times
type Timestamped interface {
	CreatedAt() time.Time
	UpdatedAt() time.Time
}

// baseNode carries the state shared by every privacy-gated content kind:
// identity, ownership, sharing tier, embedding, tag associations and
// timestamps. Concrete kinds embed it and add their payloads.
type baseNode struct {
	id        valueobjects.NodeID
	ownerID   valueobjects.UserID
	privacy   valueobjects.PrivacySetting
	embedding valueobjects.Embedding
	tagIDs    []valueobjects.NodeID
	createdAt time.Time
	updatedAt time.Time
}

func newBaseNode(ownerID valueobjects.UserID, privacy valueobjects.PrivacySetting) (baseNode, error) {
	if ownerID.IsZero() {
		return baseNode{}, pkgerrors.NewValidationError("owner cannot be empty")
	}
	if privacy == "" {
		privacy = valueobjects.DefaultPrivacySetting
	}
	now := time.Now()
	return baseNode{
		id:        valueobjects.NewNodeID(),
		ownerID:   ownerID,
		privacy:   privacy,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func reconstructBaseNode(
	id valueobjects.NodeID,
	ownerID valueobjects.UserID,
	privacy valueobjects.PrivacySetting,
	embedding valueobjects.Embedding,
	tagIDs []valueobjects.NodeID,
	createdAt, updatedAt time.Time,
) baseNode {
	return baseNode{
		id:        id,
		ownerID:   ownerID,
		privacy:   privacy,
		embedding: embedding,
		tagIDs:    tagIDs,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the node's unique identifier
func (n *baseNode) ID() valueobjects.NodeID {
	return n.id
}

// OwnerID returns the owning user's ID
func (n *baseNode) OwnerID() valueobjects.UserID {
	return n.ownerID
}

// Privacy returns the node's sharing tier
func (n *baseNode) Privacy() valueobjects.PrivacySetting {
	return n.privacy
}

// SetPrivacy changes the node's sharing tier
func (n *baseNode) SetPrivacy(privacy valueobjects.PrivacySetting) error {
	if _, err := valueobjects.NewPrivacySetting(privacy.String()); err != nil {
		return err
	}
	n.privacy = privacy
	n.touch()
	return nil
}

// Embedding returns the node's similarity vector
func (n *baseNode) Embedding() valueobjects.Embedding {
	return n.embedding
}

// SetEmbedding assigns the vector supplied by the embedding provider
func (n *baseNode) SetEmbedding(embedding valueobjects.Embedding) {
	n.embedding = embedding
	n.touch()
}

// TagIDs returns the ids of associated tags
func (n *baseNode) TagIDs() []valueobjects.NodeID {
	out := make([]valueobjects.NodeID, len(n.tagIDs))
	copy(out, n.tagIDs)
	return out
}

// AddTagID associates a tag; duplicate associations are no-ops
func (n *baseNode) AddTagID(tagID valueobjects.NodeID) {
	for _, existing := range n.tagIDs {
		if existing.Equals(tagID) {
			return
		}
	}
	n.tagIDs = append(n.tagIDs, tagID)
	n.touch()
}

// RemoveTagID drops a tag association
func (n *baseNode) RemoveTagID(tagID valueobjects.NodeID) error {
	kept := n.tagIDs[:0]
	found := false
	for _, existing := range n.tagIDs {
		if existing.Equals(tagID) {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return pkgerrors.NewNotFoundError("tag association")
	}
	n.tagIDs = kept
	n.touch()
	return nil
}

// CreatedAt returns when the node was created
func (n *baseNode) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *baseNode) UpdatedAt() time.Time {
	return n.updatedAt
}

func (n *baseNode) touch() {
	n.updatedAt = time.Now()
}
