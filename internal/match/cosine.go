// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import "math"

// Cosine returns the cosine similarity of two vectors, clamped to [0, 1].
// A zero vector, or a length mismatch, yields 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim > 1 {
		return 1
	}
	if sim < 0 {
		return 0
	}
	return sim
}
