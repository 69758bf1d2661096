// Package vecmath holds the small numeric kernels shared by chunk-boundary
// detection, citation scoring and the in-memory store.
package vecmath

import "math"

// Cosine returns the cosine similarity of a and b in [-1,1]. Mismatched
// lengths and zero vectors score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize scales v to unit length in place and returns it. Zero vectors
// are returned unchanged.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}
	for i, x := range v {
		v[i] = float32(float64(x) / norm)
	}
	return v
}

// Mean averages the cosine similarity of v against each vector in against.
func Mean(v []float32, against [][]float32) float64 {
	if len(against) == 0 {
		return 0
	}
	var sum float64
	for _, u := range against {
		sum += Cosine(v, u)
	}
	return sum / float64(len(against))
}
