// Package kernel implements the quantized scoring kernel: a metric variant
// selected at pipeline-build time, bound to a raw byte-group reduction
// primitive and an affine correction pair that undoes the scalar
// quantization's shift.
package kernel

import (
	"fmt"

	"github.com/hupe1980/sqkernel/internal/simd"
)

// Metric selects the distance/similarity family a kernel is built for.
// Exactly one variant is baked into a pipeline at build time; there is no
// per-call metric dispatch.
type Metric int

const (
	// MetricUnset is the zero value. Building a kernel with it fails.
	MetricUnset Metric = iota
	// MetricCosine scores cosine similarity over L2-normalized vectors.
	MetricCosine
	// MetricDot scores the inner product.
	MetricDot
	// MetricEuclidean scores the negated squared L2 distance, so that
	// larger is always better across all metrics.
	MetricEuclidean
	// MetricManhattan scores the negated L1 distance.
	MetricManhattan
)

func (m Metric) String() string {
	switch m {
	case MetricCosine:
		return "Cosine"
	case MetricDot:
		return "Dot"
	case MetricEuclidean:
		return "Euclidean"
	case MetricManhattan:
		return "Manhattan"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// RawFunc reduces two full code vectors to an unsigned raw sum.
type RawFunc func(a, b []byte) uint64

// RawStridedFunc reduces only the 4-wide byte groups owned by one lane of a
// cooperating group. Summing all lanes' results equals the RawFunc reduction.
type RawStridedFunc func(a, b []byte, lane, lanes int) uint64

// Variant is a metric resolved against trained quantizer parameters.
// It is immutable after construction and safe for concurrent use.
//
// The final score of a candidate is
//
//	Multiplier*float32(rawSum) + targetOffset + candidateOffset - Diff
//
// where the per-point offsets are produced at encode time by the quantizer.
type Variant struct {
	Metric     Metric
	Multiplier float32
	Diff       float32

	raw        RawFunc
	rawStrided RawStridedFunc
}

// NewVariant resolves a metric against the quantizer's affine parameters:
// alpha is the per-step scale (range/255), minVal the range lower bound and
// dim the logical (unpadded) vector dimension.
//
// Cosine, Dot and Euclidean all reduce with the unsigned sum-of-products
// primitive; the metric-specific math lives entirely in the
// multiplier/diff pair. Manhattan reduces with the signed absolute-difference
// primitive.
func NewVariant(m Metric, alpha, minVal float32, dim int) (Variant, error) {
	if dim <= 0 {
		return Variant{}, fmt.Errorf("kernel: invalid dimension %d", dim)
	}

	switch m {
	case MetricCosine, MetricDot:
		// q·c = alpha^2*sum(a*b) + alpha*min*(sum(a)+sum(b)) + dim*min^2.
		// The per-point terms are folded into the encode-time offsets,
		// the constant term into Diff.
		return Variant{
			Metric:     m,
			Multiplier: alpha * alpha,
			Diff:       -float32(dim) * minVal * minVal,
			raw:        simd.DotSQ8,
			rawStrided: simd.DotSQ8Strided,
		}, nil
	case MetricEuclidean:
		// -|q-c|^2 = 2*alpha^2*sum(a*b) - alpha^2*sum(a^2) - alpha^2*sum(b^2).
		// The squared-norm terms are the encode-time offsets.
		return Variant{
			Metric:     m,
			Multiplier: 2 * alpha * alpha,
			raw:        simd.DotSQ8,
			rawStrided: simd.DotSQ8Strided,
		}, nil
	case MetricManhattan:
		// -|q-c|_1 = -alpha*sum(|a-b|), exactly (the affine shift cancels).
		return Variant{
			Metric:     m,
			Multiplier: -alpha,
			raw:        simd.L1SQ8,
			rawStrided: simd.L1SQ8Strided,
		}, nil
	case MetricUnset:
		return Variant{}, fmt.Errorf("kernel: metric not set")
	default:
		return Variant{}, fmt.Errorf("kernel: unsupported metric %v", m)
	}
}

// Raw applies the variant's full-vector reduction primitive.
//
// SAFETY: Assumes len(a) == len(b) and len(a)%4 == 0.
func (v Variant) Raw(a, b []byte) uint64 {
	return v.raw(a, b)
}

// RawStrided applies the variant's lane-strided reduction primitive.
//
// SAFETY: Assumes len(a) == len(b), len(a)%4 == 0 and 0 <= lane < lanes.
func (v Variant) RawStrided(a, b []byte, lane, lanes int) uint64 {
	return v.rawStrided(a, b, lane, lanes)
}

// Reduce combines per-lane partial sums into the group-wide raw sum.
// Integer addition is commutative and associative, so lane ordering never
// affects the result.
func (v Variant) Reduce(partials []uint64) uint64 {
	var sum uint64
	for _, p := range partials {
		sum += p
	}
	return sum
}

// Finish applies the affine correction to a reduced raw sum.
func (v Variant) Finish(rawSum uint64, targetOffset, candidateOffset float32) float32 {
	return v.Multiplier*float32(rawSum) + targetOffset + candidateOffset - v.Diff
}
