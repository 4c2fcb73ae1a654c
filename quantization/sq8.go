// Package quantization implements the global-affine 8-bit scalar quantizer
// that feeds the scoring kernel.
//
// Every dimension is compressed to one byte via a single (min, alpha) pair
// shared across dimensions, so that one float offset per point is enough to
// undo the transform at scoring time. Codes are padded to 4-wide groups to
// match the kernel's reduction primitives; padding bytes are zero on both
// sides of every comparison and cancel out of all metric formulas.
package quantization

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/sqkernel/kernel"
)

var (
	// ErrNotTrained is returned when encoding before Train or SetBounds.
	ErrNotTrained = errors.New("quantization: quantizer not trained")
	// ErrNoVectors is returned when Train receives an empty sample.
	ErrNoVectors = errors.New("quantization: no vectors provided for training")
)

// ErrDimensionMismatch indicates a vector whose length does not match the
// quantizer's configured dimension.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("quantization: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// SQ8 is a global-affine 8-bit scalar quantizer bound to one metric.
// A value v maps to the code round((v-min)/alpha); reconstruction is
// alpha*code + min.
//
// SQ8 is immutable after training and safe for concurrent encoding.
type SQ8 struct {
	metric  Metric
	dim     int
	min     float32
	max     float32
	alpha   float32
	trained bool
}

// Metric re-exports the kernel's metric tags so that callers configuring a
// quantizer do not need to import the kernel package directly.
type Metric = kernel.Metric

// NewSQ8 creates an untrained quantizer for the given logical dimension and
// metric. The metric determines the per-point offset formula baked into each
// encoded vector.
func NewSQ8(dim int, m Metric) (*SQ8, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("quantization: invalid dimension %d", dim)
	}
	switch m {
	case kernel.MetricCosine, kernel.MetricDot, kernel.MetricEuclidean, kernel.MetricManhattan:
	default:
		return nil, fmt.Errorf("quantization: unsupported metric %v", m)
	}
	return &SQ8{metric: m, dim: dim}, nil
}

// Metric returns the metric the quantizer encodes offsets for.
func (q *SQ8) Metric() Metric { return q.metric }

// Dim returns the logical vector dimension.
func (q *SQ8) Dim() int { return q.dim }

// PaddedDim returns the code vector length: Dim rounded up to a multiple of 4.
func (q *SQ8) PaddedDim() int { return (q.dim + 3) &^ 3 }

// Alpha returns the quantization step (range/255).
func (q *SQ8) Alpha() float32 { return q.alpha }

// Min returns the lower bound of the quantized range.
func (q *SQ8) Min() float32 { return q.min }

// Trained reports whether bounds have been established.
func (q *SQ8) Trained() bool { return q.trained }

// Variant resolves the quantizer's metric into a scoring kernel variant.
func (q *SQ8) Variant() (kernel.Variant, error) {
	if !q.trained {
		return kernel.Variant{}, ErrNotTrained
	}
	return kernel.NewVariant(q.metric, q.alpha, q.min, q.dim)
}

// SetBounds installs precomputed range bounds, marking the quantizer trained.
func (q *SQ8) SetBounds(minVal, maxVal float32) error {
	if math.IsNaN(float64(minVal)) || math.IsNaN(float64(maxVal)) || minVal > maxVal {
		return fmt.Errorf("quantization: invalid bounds [%g, %g]", minVal, maxVal)
	}
	if maxVal == minVal {
		// Constant data still needs a nonzero step to stay invertible.
		maxVal = minVal + 1e-6
	}
	q.min = minVal
	q.max = maxVal
	q.alpha = (maxVal - minVal) / 255.0
	q.trained = true
	return nil
}

// Train establishes the global [min, max] range over a training sample.
func (q *SQ8) Train(vectors [][]float32) error {
	if len(vectors) == 0 {
		return ErrNoVectors
	}

	minVal := float32(math.MaxFloat32)
	maxVal := float32(-math.MaxFloat32)
	for _, vec := range vectors {
		if len(vec) != q.dim {
			return &ErrDimensionMismatch{Expected: q.dim, Actual: len(vec)}
		}
		for _, v := range vec {
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}

	return q.SetBounds(minVal, maxVal)
}

// Encode quantizes v into a freshly allocated padded code vector and returns
// it together with the per-point correction offset.
func (q *SQ8) Encode(v []float32) ([]byte, float32, error) {
	codes := make([]byte, q.PaddedDim())
	offset, err := q.EncodeInto(v, codes)
	if err != nil {
		return nil, 0, err
	}
	return codes, offset, nil
}

// EncodeInto quantizes v into dst, which must have length PaddedDim.
// It returns the per-point correction offset for the configured metric:
//
//	Cosine/Dot:  alpha*min*sum(code)
//	Euclidean:   -alpha^2*sum(code^2)
//	Manhattan:   0
func (q *SQ8) EncodeInto(v []float32, dst []byte) (float32, error) {
	if !q.trained {
		return 0, ErrNotTrained
	}
	if len(v) != q.dim {
		return 0, &ErrDimensionMismatch{Expected: q.dim, Actual: len(v)}
	}
	if len(dst) != q.PaddedDim() {
		return 0, &ErrDimensionMismatch{Expected: q.PaddedDim(), Actual: len(dst)}
	}

	var codeSum uint64
	var codeSqSum uint64
	for i, val := range v {
		if val < q.min {
			val = q.min
		} else if val > q.max {
			val = q.max
		}
		c := uint8((val-q.min)/q.alpha + 0.5)
		dst[i] = c
		codeSum += uint64(c)
		codeSqSum += uint64(c) * uint64(c)
	}
	for i := q.dim; i < len(dst); i++ {
		dst[i] = 0
	}

	switch q.metric {
	case kernel.MetricCosine, kernel.MetricDot:
		return q.alpha * q.min * float32(codeSum), nil
	case kernel.MetricEuclidean:
		return -q.alpha * q.alpha * float32(codeSqSum), nil
	default: // Manhattan
		return 0, nil
	}
}

// Decode reconstructs an approximate float32 vector from padded codes.
// Padding bytes are ignored.
func (q *SQ8) Decode(codes []byte) ([]float32, error) {
	if !q.trained {
		return nil, ErrNotTrained
	}
	if len(codes) != q.PaddedDim() {
		return nil, &ErrDimensionMismatch{Expected: q.PaddedDim(), Actual: len(codes)}
	}
	out := make([]float32, q.dim)
	for i := range out {
		out[i] = q.alpha*float32(codes[i]) + q.min
	}
	return out, nil
}

// QuantizationError is the worst-case per-dimension reconstruction error
// (half a quantization step).
func (q *SQ8) QuantizationError() float32 {
	return q.alpha / 2
}
