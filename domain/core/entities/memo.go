package entities

import (
	"time"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// Memo is a standalone note: title+body content with a short summary
type Memo struct {
	baseNode
	content valueobjects.NodeContent
	summary valueobjects.Summary
}

// NewMemo creates a memo owned by the given user
func NewMemo(
	ownerID valueobjects.UserID,
	content valueobjects.NodeContent,
	summary valueobjects.Summary,
	privacy valueobjects.PrivacySetting,
) (*Memo, error) {
	if content.IsEmpty() {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}
	base, err := newBaseNode(ownerID, privacy)
	if err != nil {
		return nil, err
	}
	return &Memo{baseNode: base, content: content, summary: summary}, nil
}

// ReconstructMemo rebuilds a memo from repository data with preserved timestamps
func ReconstructMemo(
	id valueobjects.NodeID,
	ownerID valueobjects.UserID,
	content valueobjects.NodeContent,
	summary valueobjects.Summary,
	privacy valueobjects.PrivacySetting,
	embedding valueobjects.Embedding,
	tagIDs []valueobjects.NodeID,
	createdAt, updatedAt time.Time,
) *Memo {
	return &Memo{
		baseNode: reconstructBaseNode(id, ownerID, privacy, embedding, tagIDs, createdAt, updatedAt),
		content:  content,
		summary:  summary,
	}
}

// Kind returns the memo kind tag
func (m *Memo) Kind() valueobjects.NodeKind {
	return valueobjects.KindMemo
}

// Ref returns the memo's node reference
func (m *Memo) Ref() valueobjects.NodeReference {
	ref, _ := valueobjects.NewNodeReference(valueobjects.KindMemo, m.id)
	return ref
}

// Content returns the memo's content
func (m *Memo) Content() valueobjects.NodeContent {
	return m.content
}

// Summary returns the memo's summary
func (m *Memo) Summary() valueobjects.Summary {
	return m.summary
}

// UpdateContent replaces the memo's content
func (m *Memo) UpdateContent(content valueobjects.NodeContent) error {
	if content.IsEmpty() {
		return pkgerrors.NewValidationError("content cannot be empty")
	}
	if content.Equals(m.content) {
		return nil
	}
	m.content = content
	m.touch()
	return nil
}

// UpdateSummary replaces the memo's summary
func (m *Memo) UpdateSummary(summary valueobjects.Summary) {
	m.summary = summary
	m.touch()
}
