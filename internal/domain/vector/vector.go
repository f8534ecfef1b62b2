// Package vector holds dense embedding math and the vector store port.
package vector

import (
	"errors"
	"fmt"
	"math"
)

// Dim is the embedding dimension used throughout the service.
const Dim = 384

// unitTolerance bounds |‖v‖ - 1| for a vector to count as normalized.
const unitTolerance = 1e-3

// ErrZeroVector is returned when normalizing a vector with no magnitude.
var ErrZeroVector = errors.New("zero vector")

// Vector is a dense embedding.
type Vector []float32

// Norm returns the L2 norm accumulated in float64.
func Norm(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy of v.
func Normalize(v Vector) (Vector, error) {
	n := Norm(v)
	if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, ErrZeroVector
	}
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out, nil
}

// Dot returns the inner product. Mismatched lengths are an error.
func Dot(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// IsUnit reports whether v has L2 norm 1 within tolerance.
func IsUnit(v Vector) bool {
	return math.Abs(Norm(v)-1) <= unitTolerance
}

// Check validates dimension and unit norm.
func Check(v Vector, dim int) error {
	if len(v) != dim {
		return fmt.Errorf("expected dimension %d, got %d", dim, len(v))
	}
	if !IsUnit(v) {
		return fmt.Errorf("vector is not unit length (norm %.6f)", Norm(v))
	}
	return nil
}

// WeightedMean sums w[i]*vs[i] and normalizes the result. It returns
// ErrZeroVector when nothing contributes.
func WeightedMean(vs []Vector, w []float64) (Vector, error) {
	if len(vs) == 0 {
		return nil, ErrZeroVector
	}
	if len(vs) != len(w) {
		return nil, fmt.Errorf("got %d vectors and %d weights", len(vs), len(w))
	}
	dim := len(vs[0])
	acc := make([]float64, dim)
	for i, v := range vs {
		if len(v) != dim {
			return nil, fmt.Errorf("dimension mismatch: %d vs %d", len(v), dim)
		}
		for j, x := range v {
			acc[j] += w[i] * float64(x)
		}
	}
	out := make(Vector, dim)
	for j, x := range acc {
		out[j] = float32(x)
	}
	return Normalize(out)
}
