package vector

import "math"

// InvalidScore is returned by Cosine when two vectors cannot be compared.
// It sits below every real cosine value.
const InvalidScore = -1.0

// Cosine returns the cosine similarity of a and b, or InvalidScore when
// either vector is empty, the lengths differ, or either norm is zero.
// The result always lies in [-1, 1].
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return InvalidScore
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return InvalidScore
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(score) || math.IsInf(score, 0):
		return InvalidScore
	case score > 1:
		return 1
	case score < -1:
		return -1
	}
	return score
}
