package entities

import (
	"time"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// Inkling is a fleeting thought: lightweight content without a summary
type Inkling struct {
	baseNode
	content valueobjects.NodeContent
}

// NewInkling creates an inkling owned by the given user
func NewInkling(
	ownerID valueobjects.UserID,
	content valueobjects.NodeContent,
	privacy valueobjects.PrivacySetting,
) (*Inkling, error) {
	if content.IsEmpty() {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	base, err := newBaseNode(ownerID, privacy)
	if err != nil {
		return nil, err
	}
	return &Inkling{baseNode: base, content: content}, nil
}

// ReconstructInkling rebuilds an inkling from repository data
func ReconstructInkling(
	id valueobjects.NodeID,
	ownerID valueobjects.UserID,
	content valueobjects.NodeContent,
	privacy valueobjects.PrivacySetting,
	embedding valueobjects.Embedding,
	tagIDs []valueobjects.NodeID,
	createdAt, updatedAt time.Time,
) *Inkling {
	return &Inkling{
		baseNode: reconstructBaseNode(id, ownerID, privacy, embedding, tagIDs, createdAt, updatedAt),
		content:  content,
	}
}

// Kind returns the inkling kind tag
func (i *Inkling) Kind() valueobjects.NodeKind {
	return valueobjects.KindInkling
}

// Ref returns the inkling's node reference
func (i *Inkling) Ref() valueobjects.NodeReference {
	ref, _ := valueobjects.NewNodeReference(valueobjects.KindInkling, i.id)
	return ref
}

// Content returns the inkling's content
func (i *Inkling) Content() valueobjects.NodeContent {
	return i.content
}

// UpdateContent replaces the inkling's content
func (i *Inkling) UpdateContent(content valueobjects.NodeContent) error {
	if content.IsEmpty() {
		return pkgerrors.NewValidationError("content cannot be empty")
	}
	if content.Equals(i.content) {
		return nil
	}
	i.content = content
	i.touch()
	return nil
}
