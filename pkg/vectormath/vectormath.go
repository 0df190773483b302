// Package vectormath provides the vector primitives used by the
// recommendation engine and the user clusterer: cosine similarity,
// L2 normalization and centroid computation.
//
// Contract violations (mismatched dimensions, empty centroid input) are
// caller bugs and surface as errors; zero vectors are a documented edge
// case, not an error.
package vectormath

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrDimensionMismatch is returned when two vectors disagree on length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrEmptyInput is returned when an aggregate is requested over no vectors.
	ErrEmptyInput = errors.New("empty vector input")
)

// CosineSimilarity returns the cosine of the angle between a and b,
// in [-1, 1]. A zero vector on either side yields 0, not NaN.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}

	fa := toFloat64(a)
	fb := toFloat64(b)
	normA := floats.Norm(fa, 2)
	normB := floats.Norm(fb, 2)
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return floats.Dot(fa, fb) / (normA * normB), nil
}

// Normalize returns a unit-length copy of v. A zero vector is returned
// unchanged.
func Normalize(v []float32) []float32 {
	f := toFloat64(v)
	norm := floats.Norm(f, 2)
	if norm == 0 {
		out := make([]float32, len(v))
		copy(out, v)
		return out
	}
	floats.Scale(1/norm, f)
	return toFloat32(f)
}

// Centroid returns the element-wise mean of the given vectors. All inputs
// must share the same dimensionality.
func Centroid(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 {
		return nil, ErrEmptyInput
	}
	dims := len(vectors[0])
	sum := make([]float64, dims)
	for i, v := range vectors {
		if len(v) != dims {
			return nil, fmt.Errorf("%w: vector %d has %d dims, want %d", ErrDimensionMismatch, i, len(v), dims)
		}
		floats.Add(sum, toFloat64(v))
	}
	floats.Scale(1/float64(len(vectors)), sum)
	return toFloat32(sum), nil
}

// EuclideanDistance returns the L2 distance between a and b.
func EuclideanDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	return floats.Distance(toFloat64(a), toFloat64(b), 2), nil
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
