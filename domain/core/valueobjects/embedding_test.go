package valueobjects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVector(t *testing.T, cos float64) Embedding {
	t.Helper()
	values := make([]float64, EmbeddingDimensions)
	values[0] = cos
	values[1] = math.Sqrt(1 - cos*cos)
	e, err := NewEmbedding(values)
	require.NoError(t, err)
	return e
}

func TestNewEmbedding_RejectsWrongDimensions(t *testing.T) {
	_, err := NewEmbedding([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestNewEmbedding_CopiesInput(t *testing.T) {
	values := make([]float64, EmbeddingDimensions)
	values[0] = 1
	e, err := NewEmbedding(values)
	require.NoError(t, err)

	values[0] = -1
	assert.Equal(t, 1.0, e.Values()[0])
}

func TestCosineDistance_IdenticalVectorsAreAtZero(t *testing.T) {
	e := unitVector(t, 1)
	d, err := e.CosineDistance(e)
	require.NoError(t, err)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestCosineDistance_KnownAngles(t *testing.T) {
	reference := unitVector(t, 1)

	cases := []struct {
		cos      float64
		expected float64
	}{
		{cos: 0.9, expected: 0.1},
		{cos: 0.3, expected: 0.7},
		{cos: 0, expected: 1},
		{cos: -1, expected: 2},
	}
	for _, tc := range cases {
		d, err := reference.CosineDistance(unitVector(t, tc.cos))
		require.NoError(t, err)
		assert.InDelta(t, tc.expected, d, 1e-9)
	}
}

func TestCosineDistance_ZeroMagnitudeIsMaximallyDistant(t *testing.T) {
	zeroes, err := NewEmbedding(make([]float64, EmbeddingDimensions))
	require.NoError(t, err)

	d, err := unitVector(t, 1).CosineDistance(zeroes)
	require.NoError(t, err)
	assert.Equal(t, 2.0, d)
}

func TestCosineDistance_UnassignedEmbeddingErrors(t *testing.T) {
	_, err := unitVector(t, 1).CosineDistance(Embedding{})
	assert.Error(t, err)
}
