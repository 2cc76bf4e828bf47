package ai

import "math"

// NormalizeVector scales v to unit length and returns a new slice.
// A zero vector stays zero; the magnitude is accumulated in float64 so long
// encoder outputs do not lose precision.
func NormalizeVector(v []float32) []float32 {
	result := make([]float32, len(v))
	if len(v) == 0 {
		return result
	}

	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sum)
	if magnitude == 0 {
		return result
	}

	for i, val := range v {
		result[i] = float32(float64(val) / magnitude)
	}
	return result
}
