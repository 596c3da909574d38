package friendship

import (
	"time"

	"inklings-backend/domain/core/valueobjects"
	pkgerrors "inklings-backend/pkg/errors"
)

// Edge is a single undirected friendship between two users, stored as a
// normalized unordered pair. Symmetry is structural: there is exactly one
// edge per friendship, never two directed facts that can diverge.
type Edge struct {
	low       valueobjects.UserID
	high      valueobjects.UserID
	createdAt time.Time
}

// NewEdge creates the canonical edge for a pair of users.
// The pair is ordered lexicographically so (a,b) and (b,a) produce the
// same edge.
func NewEdge(a, b valueobjects.UserID) (Edge, error) {
	if a.IsZero() || b.IsZero() {
		return Edge{}, pkgerrors.NewValidationError("friendship requires two users")
	}
	if a.Equals(b) {
		return Edge{}, pkgerrors.NewInvalidRequestError("a user cannot befriend themselves")
	}
	low, high := a, b
	if high.String() < low.String() {
		low, high = high, low
	}
	return Edge{low: low, high: high, createdAt: time.Now()}, nil
}

// ReconstructEdge rebuilds an edge from repository data
func ReconstructEdge(a, b valueobjects.UserID, createdAt time.Time) (Edge, error) {
	edge, err := NewEdge(a, b)
	if err != nil {
		return Edge{}, err
	}
	edge.createdAt = createdAt
	return edge, nil
}

// Low returns the lexicographically smaller user of the pair
func (e Edge) Low() valueobjects.UserID {
	return e.low
}

// High returns the lexicographically larger user of the pair
func (e Edge) High() valueobjects.UserID {
	return e.high
}

// Connects reports whether the edge joins the given pair, in either order
func (e Edge) Connects(a, b valueobjects.UserID) bool {
	return (e.low.Equals(a) && e.high.Equals(b)) || (e.low.Equals(b) && e.high.Equals(a))
}

// Involves reports whether the user is one of the edge's endpoints
func (e Edge) Involves(user valueobjects.UserID) bool {
	return e.low.Equals(user) || e.high.Equals(user)
}

// Other returns the user on the opposite side of the edge
func (e Edge) Other(user valueobjects.UserID) (valueobjects.UserID, bool) {
	switch {
	case e.low.Equals(user):
		return e.high, true
	case e.high.Equals(user):
		return e.low, true
	default:
		return valueobjects.UserID{}, false
	}
}

// CreatedAt returns when the friendship was formed
func (e Edge) CreatedAt() time.Time {
	return e.createdAt
}
