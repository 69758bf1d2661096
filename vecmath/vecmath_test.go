package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)

	// degenerate inputs score zero instead of erroring
	assert.Zero(t, Cosine([]float32{1, 0}, []float32{1}))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 0}))
	assert.Zero(t, Cosine(nil, nil))
}

func TestNormalize(t *testing.T) {
	v := Normalize([]float32{3, 4})
	require.Len(t, v, 2)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)
	assert.InDelta(t, 1.0, Cosine(v, []float32{3, 4}), 1e-6)

	zero := Normalize([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestMean(t *testing.T) {
	v := []float32{1, 0}
	against := [][]float32{
		{1, 0},  // cos 1
		{0, 1},  // cos 0
		{-1, 0}, // cos -1
	}
	assert.InDelta(t, 0.0, Mean(v, against), 1e-9)
	assert.InDelta(t, 1.0, Mean(v, [][]float32{{2, 0}}), 1e-9)
	assert.Zero(t, Mean(v, nil))
}
