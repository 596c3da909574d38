package valueobjects

import (
	"errors"
	"fmt"
	"strings"
)

// NodeKind tags the concrete type of a node in the heterogeneous graph
type NodeKind string

const (
	KindMemo      NodeKind = "memo"
	KindReference NodeKind = "reference"
	KindInkling   NodeKind = "inkling"
	KindLink      NodeKind = "link"
	KindTag       NodeKind = "tag"
)

// ContentKinds lists the privacy-gated content kinds that can appear as
// link endpoints alongside links themselves
var ContentKinds = []NodeKind{KindMemo, KindReference, KindInkling}

// NewNodeKind validates a raw kind tag
func NewNodeKind(raw string) (NodeKind, error) {
	switch NodeKind(raw) {
	case KindMemo, KindReference, KindInkling, KindLink, KindTag:
		return NodeKind(raw), nil
	default:
		return "", fmt.Errorf("unknown node kind %q", raw)
	}
}

// String returns the wire representation of the kind
func (k NodeKind) String() string {
	return string(k)
}

// IsPrivacyGated reports whether nodes of this kind carry a privacy setting.
// Tags are visible only to their owner and carry no tiers.
func (k NodeKind) IsPrivacyGated() bool {
	return k != KindTag
}

// NodeReference addresses any node uniformly across kinds.
// It is the tagged union (kind, id) used as a polymorphic foreign key
// by links and by the exclusion filters.
type NodeReference struct {
	kind NodeKind
	id   NodeID
}

// NewNodeReference creates a reference from a kind and id
func NewNodeReference(kind NodeKind, id NodeID) (NodeReference, error) {
	if id.IsZero() {
		return NodeReference{}, errors.New("node reference requires a node ID")
	}
	if _, err := NewNodeKind(kind.String()); err != nil {
		return NodeReference{}, err
	}
	return NodeReference{kind: kind, id: id}, nil
}

// ParseNodeReference parses the "kind#id" wire form used by the storage layer
func ParseNodeReference(raw string) (NodeReference, error) {
	kind, idStr, ok := strings.Cut(raw, "#")
	if !ok {
		return NodeReference{}, fmt.Errorf("malformed node reference %q", raw)
	}
	k, err := NewNodeKind(kind)
	if err != nil {
		return NodeReference{}, err
	}
	id, err := NewNodeIDFromString(idStr)
	if err != nil {
		return NodeReference{}, err
	}
	return NodeReference{kind: k, id: id}, nil
}

// Kind returns the kind tag
func (r NodeReference) Kind() NodeKind {
	return r.kind
}

// ID returns the node id
func (r NodeReference) ID() NodeID {
	return r.id
}

// Equals checks reference identity across kinds
func (r NodeReference) Equals(other NodeReference) bool {
	return r.kind == other.kind && r.id.Equals(other.id)
}

// IsZero checks if the reference is the zero value
func (r NodeReference) IsZero() bool {
	return r.kind == "" && r.id.IsZero()
}

// String returns the "kind#id" wire form
func (r NodeReference) String() string {
	return r.kind.String() + "#" + r.id.String()
}
