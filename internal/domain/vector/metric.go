// Package vector implements the pluggable distance metrics and the uniform
// similarity scale shared by every search path.
package vector

import (
	"fmt"
	"math"
)

// Metric selects the distance function used for similarity ranking.
type Metric string

// Supported metrics.
const (
	// Cosine is cosine distance, 1 − cos(a,b).
	Cosine Metric = "cosine"
	// L2 is Euclidean distance.
	L2 Metric = "l2"
	// Dot ranks by inner product (distance 1 − a·b).
	Dot Metric = "dot"
)

// IsValid checks if the metric is one of the supported values.
func (m Metric) IsValid() bool {
	return m == Cosine || m == L2 || m == Dot
}

// maxCosineDistance is the degenerate distance assigned when either vector
// has zero magnitude.
const maxCosineDistance = 2.0

// Distance computes the distance between two equal-length vectors.
// Mismatched lengths are a caller contract violation and panic.
func Distance(m Metric, a, b []float32) float64 {
	checkDims(a, b)
	switch m {
	case Cosine:
		return cosineDistance(a, b)
	case L2:
		return l2Distance(a, b)
	case Dot:
		return 1 - dot(a, b)
	default:
		panic(fmt.Sprintf("vector: unknown metric %q", m))
	}
}

// Similarity computes 1 − normalized distance, so higher is always more
// alike regardless of the metric. Identical vectors score 1.0 under cosine
// and l2. Mismatched lengths panic.
func Similarity(m Metric, a, b []float32) float64 {
	return SimilarityFromDistance(m, Distance(m, a, b))
}

// SimilarityFromDistance converts a raw metric distance (computed here or
// reported by a storage backend) to the uniform similarity scale:
//
//	cosine: 1 − d  (= cos, zero vector → −1)
//	l2:     1 − d/(1+d)  (= 1/(1+d), identical → 1)
//	dot:    1 − d  (= a·b, unbounded, monotonic)
func SimilarityFromDistance(m Metric, d float64) float64 {
	switch m {
	case Cosine, Dot:
		return 1 - d
	case L2:
		return 1 / (1 + d)
	default:
		panic(fmt.Sprintf("vector: unknown metric %q", m))
	}
}

func cosineDistance(a, b []float32) float64 {
	var dotP, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dotP += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return maxCosineDistance
	}
	return 1 - dotP/(math.Sqrt(na2)*math.Sqrt(nb2))
}

func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func checkDims(a, b []float32) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("vector: dimension mismatch: %d vs %d", len(a), len(b)))
	}
}
