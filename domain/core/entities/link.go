package entities

import (
	"time"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// Link is a typed, directed edge between two node references. A link is
// itself a node: it carries its own privacy setting, embedding and tags,
// and can appear as the endpoint of other links.
type Link struct {
	baseNode
	source     valueobjects.NodeReference
	target     valueobjects.NodeReference
	linkTypeID valueobjects.NodeID
}

// NewLink creates a link owned by the given user. Endpoint existence and
// the (source, target, type) uniqueness invariant are enforced by the
// creating service against the store.
func NewLink(
	ownerID valueobjects.UserID,
	source, target valueobjects.NodeReference,
	linkTypeID valueobjects.NodeID,
	privacy valueobjects.PrivacySetting,
) (*Link, error) {
	if source.IsZero() || target.IsZero() {
		return nil, pkgerrors.NewValidationError("link requires both a source and a target reference")
	}
	if linkTypeID.IsZero() {
		return nil, pkgerrors.NewValidationError("link requires a link type")
	}
	base, err := newBaseNode(ownerID, privacy)
	if err != nil {
		return nil, err
	}
	return &Link{
		baseNode:   base,
		source:     source,
		target:     target,
		linkTypeID: linkTypeID,
	}, nil
}

// ReconstructLink rebuilds a link from repository data
func ReconstructLink(
	id valueobjects.NodeID,
	ownerID valueobjects.UserID,
	source, target valueobjects.NodeReference,
	linkTypeID valueobjects.NodeID,
	privacy valueobjects.PrivacySetting,
	embedding valueobjects.Embedding,
	tagIDs []valueobjects.NodeID,
	createdAt, updatedAt time.Time,
) *Link {
	return &Link{
		baseNode:   reconstructBaseNode(id, ownerID, privacy, embedding, tagIDs, createdAt, updatedAt),
		source:     source,
		target:     target,
		linkTypeID: linkTypeID,
	}
}

// Kind returns the link kind tag
func (l *Link) Kind() valueobjects.NodeKind {
	return valueobjects.KindLink
}

// Ref returns the link's own node reference
func (l *Link) Ref() valueobjects.NodeReference {
	ref, _ := valueobjects.NewNodeReference(valueobjects.KindLink, l.id)
	return ref
}

// Source returns the source endpoint reference
func (l *Link) Source() valueobjects.NodeReference {
	return l.source
}

// Target returns the target endpoint reference
func (l *Link) Target() valueobjects.NodeReference {
	return l.target
}

// LinkTypeID returns the relation kind's ID
func (l *Link) LinkTypeID() valueobjects.NodeID {
	return l.linkTypeID
}

// Touches reports whether ref is one of the link's endpoints
func (l *Link) Touches(ref valueobjects.NodeReference) bool {
	return l.source.Equals(ref) || l.target.Equals(ref)
}

// Opposite returns the endpoint on the other side of ref. The second return
// is false when ref is not an endpoint of this link.
func (l *Link) Opposite(ref valueobjects.NodeReference) (valueobjects.NodeReference, bool) {
	switch {
	case l.source.Equals(ref):
		return l.target, true
	case l.target.Equals(ref):
		return l.source, true
	default:
		return valueobjects.NodeReference{}, false
	}
}

// SameRelation reports whether another link duplicates this link's
// (source, target, type) triple. Direction matters: the reverse relation
// is a distinct link.
func (l *Link) SameRelation(other *Link) bool {
	return l.source.Equals(other.source) &&
		l.target.Equals(other.target) &&
		l.linkTypeID.Equals(other.linkTypeID)
}
