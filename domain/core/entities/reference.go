package entities

import (
	"time"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// SourceInfo is the provenance metadata a reference may carry
type SourceInfo struct {
	URL             string
	SourceName      string
	Authors         string
	PublicationDate *time.Time
}

// Reference is an annotated external source: content plus provenance
type Reference struct {
	baseNode
	content valueobjects.NodeContent
	summary valueobjects.Summary
	source  SourceInfo
}

// NewReference creates a reference owned by the given user
func NewReference(
	ownerID valueobjects.UserID,
	content valueobjects.NodeContent,
	summary valueobjects.Summary,
	source SourceInfo,
	privacy valueobjects.PrivacySetting,
) (*Reference, error) {
	if content.IsEmpty() {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	base, err := newBaseNode(ownerID, privacy)
	if err != nil {
		return nil, err
	}
	return &Reference{baseNode: base, content: content, summary: summary, source: source}, nil
}

// ReconstructReference rebuilds a reference from repository data
func ReconstructReference(
	id valueobjects.NodeID,
	ownerID valueobjects.UserID,
	content valueobjects.NodeContent,
	summary valueobjects.Summary,
	source SourceInfo,
	privacy valueobjects.PrivacySetting,
	embedding valueobjects.Embedding,
	tagIDs []valueobjects.NodeID,
	createdAt, updatedAt time.Time,
) *Reference {
	return &Reference{
		baseNode: reconstructBaseNode(id, ownerID, privacy, embedding, tagIDs, createdAt, updatedAt),
		content:  content,
		summary:  summary,
		source:   source,
	}
}

// Kind returns the reference kind tag
func (r *Reference) Kind() valueobjects.NodeKind {
	return valueobjects.KindReference
}

// Ref returns the reference's node reference
func (r *Reference) Ref() valueobjects.NodeReference {
	ref, _ := valueobjects.NewNodeReference(valueobjects.KindReference, r.id)
	return ref
}

// Content returns the reference's content
func (r *Reference) Content() valueobjects.NodeContent {
	return r.content
}

// Summary returns the reference's summary
func (r *Reference) Summary() valueobjects.Summary {
	return r.summary
}

// Source returns the provenance metadata
func (r *Reference) Source() SourceInfo {
	return r.source
}

// UpdateContent replaces the reference's content
func (r *Reference) UpdateContent(content valueobjects.NodeContent) error {
	if content.IsEmpty() {
		return pkgerrors.NewValidationError("content cannot be empty")
	}
	if content.Equals(r.content) {
		return nil
	}
	r.content = content
	r.touch()
	return nil
}

// UpdateSource replaces the provenance metadata
func (r *Reference) UpdateSource(source SourceInfo) {
	r.source = source
	r.touch()
}
