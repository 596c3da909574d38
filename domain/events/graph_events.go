package events

import (
	"inklings-backend/domain/core/valueobjects"
)

// NodeCreated is raised when a new content node is created
type NodeCreated struct {
	BaseEvent
	Ref     string   `json:"ref"`
	Kind    string   `json:"kind"`
	OwnerID string   `json:"owner_id"`
	Tags    []string `json:"tags,omitempty"`
}

// NewNodeCreated creates a NodeCreated event
func NewNodeCreated(ref valueobjects.NodeReference, ownerID valueobjects.UserID, tags []string) NodeCreated {
	return NodeCreated{
		BaseEvent: newBaseEvent(ref.ID().String(), "node.created"),
		Ref:       ref.String(),
		Kind:      ref.Kind().String(),
		OwnerID:   ownerID.String(),
		Tags:      tags,
	}
}

// NodeUpdated is raised when a node's content or privacy setting changes
type NodeUpdated struct {
	BaseEvent
	Ref     string `json:"ref"`
	OwnerID string `json:"owner_id"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(ref valueobjects.NodeReference, ownerID valueobjects.UserID) NodeUpdated {
	return NodeUpdated{
		BaseEvent: newBaseEvent(ref.ID().String(), "node.updated"),
		Ref:       ref.String(),
		OwnerID:   ownerID.String(),
	}
}

// NodeDeleted is raised when a node is removed, together with its links
type NodeDeleted struct {
	BaseEvent
	Ref     string `json:"ref"`
	OwnerID string `json:"owner_id"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(ref valueobjects.NodeReference, ownerID valueobjects.UserID) NodeDeleted {
	return NodeDeleted{
		BaseEvent: newBaseEvent(ref.ID().String(), "node.deleted"),
		Ref:       ref.String(),
		OwnerID:   ownerID.String(),
	}
}

// LinkCreated is raised when two nodes are connected
type LinkCreated struct {
	BaseEvent
	LinkID     string `json:"link_id"`
	SourceRef  string `json:"source_ref"`
	TargetRef  string `json:"target_ref"`
	LinkTypeID string `json:"link_type_id"`
	OwnerID    string `json:"owner_id"`
}

// NewLinkCreated creates a LinkCreated event
func NewLinkCreated(
	linkID valueobjects.NodeID,
	source, target valueobjects.NodeReference,
	linkTypeID valueobjects.NodeID,
	ownerID valueobjects.UserID,
) LinkCreated {
	return LinkCreated{
		BaseEvent:  newBaseEvent(linkID.String(), "link.created"),
		LinkID:     linkID.String(),
		SourceRef:  source.String(),
		TargetRef:  target.String(),
		LinkTypeID: linkTypeID.String(),
		OwnerID:    ownerID.String(),
	}
}

// LinkDeleted is raised when a link is removed
type LinkDeleted struct {
	BaseEvent
	LinkID  string `json:"link_id"`
	OwnerID string `json:"owner_id"`
}

// NewLinkDeleted creates a LinkDeleted event
func NewLinkDeleted(linkID valueobjects.NodeID, ownerID valueobjects.UserID) LinkDeleted {
	return LinkDeleted{
		BaseEvent: newBaseEvent(linkID.String(), "link.deleted"),
		LinkID:    linkID.String(),
		OwnerID:   ownerID.String(),
	}
}
