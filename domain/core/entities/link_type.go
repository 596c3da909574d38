package entities

import (
	"strings"
	"time"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// LinkType is an owner-scoped relation kind with a forward and reverse name,
// e.g. "supports" / "is supported by". Unique per (owner, name).
type LinkType struct {
	id          valueobjects.NodeID
	ownerID     valueobjects.UserID
	name        string
	reverseName string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewLinkType creates a link type owned by the given user
func NewLinkType(ownerID valueobjects.UserID, name, reverseName string) (*LinkType, error) {
	if ownerID.IsZero() {
		return nil, pkgerrors.NewValidationError("owner cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.NewValidationError("link type name cannot be empty")
	}
	now := time.Now()
	return &LinkType{
		id:          valueobjects.NewNodeID(),
		ownerID:     ownerID,
		name:        name,
		reverseName: strings.TrimSpace(reverseName),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructLinkType rebuilds a link type from repository data
func ReconstructLinkType(
	id valueobjects.NodeID,
	ownerID valueobjects.UserID,
	name, reverseName string,
	createdAt, updatedAt time.Time,
) *LinkType {
	return &LinkType{
		id:          id,
		ownerID:     ownerID,
		name:        name,
		reverseName: reverseName,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the link type's unique identifier
func (lt *LinkType) ID() valueobjects.NodeID {
	return lt.id
}

// OwnerID returns the owning user's ID
func (lt *LinkType) OwnerID() valueobjects.UserID {
	return lt.ownerID
}

// Name returns the forward relation name
func (lt *LinkType) Name() string {
	return lt.name
}

// ReverseName returns the reverse relation name
func (lt *LinkType) ReverseName() string {
	return lt.reverseName
}

// Rename updates the forward and reverse names
func (lt *LinkType) Rename(name, reverseName string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.NewValidationError("link type name cannot be empty")
	}
	lt.name = name
	lt.reverseName = strings.TrimSpace(reverseName)
	lt.updatedAt = time.Now()
	return nil
}

// CreatedAt returns when the link type was created
func (lt *LinkType) CreatedAt() time.Time {
	return lt.createdAt
}

// UpdatedAt returns when the link type was last updated
func (lt *LinkType) UpdatedAt() time.Time {
	return lt.updatedAt
}
