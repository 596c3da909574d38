package valueobjects

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// EmbeddingDimensions is the fixed dimensionality of all stored vectors.
// The external vector provider produces 384-dimensional embeddings.
const EmbeddingDimensions = 384

// Embedding is an immutable vector produced by the external embedding
// provider. The core never computes embeddings, only stores and compares them.
type Embedding struct {
	values []float64
}

// NewEmbedding creates an embedding, validating dimensionality
func NewEmbedding(values []float64) (Embedding, error) {
	if len(values) != EmbeddingDimensions {
		return Embedding{}, fmt.Errorf("embedding must have %d dimensions, got %d", EmbeddingDimensions, len(values))
	}
	copied := make([]float64, len(values))
	copy(copied, values)
	return Embedding{values: copied}, nil
}

// Values returns a copy of the vector components
func (e Embedding) Values() []float64 {
	out := make([]float64, len(e.values))
	copy(out, e.values)
	return out
}

// IsZero checks if no vector has been assigned
func (e Embedding) IsZero() bool {
	return len(e.values) == 0
}

// CosineDistance returns 1 - cosine similarity, in [0, 2].
// Zero-magnitude vectors are treated as maximally distant.
func (e Embedding) CosineDistance(other Embedding) (float64, error) {
	if e.IsZero() || other.IsZero() {
		return 0, errors.New("cosine distance requires two non-empty embeddings")
	}
	if len(e.values) != len(other.values) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(e.values), len(other.values))
	}

	dot := floats.Dot(e.values, other.values)
	normA := floats.Norm(e.values, 2)
	normB := floats.Norm(other.values, 2)
	if normA == 0 || normB == 0 {
		return 2, nil
	}

	sim := dot / (normA * normB)
	// Guard against floating-point drift outside [-1, 1]
	sim = math.Max(-1, math.Min(1, sim))
	return 1 - sim, nil
}
