package kernel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVariantConstants(t *testing.T) {
	const (
		alpha = float32(0.05)
		min   = float32(-1.5)
		dim   = 32
	)

	tests := []struct {
		metric     Metric
		multiplier float32
		diff       float32
	}{
		{MetricDot, alpha * alpha, -float32(dim) * min * min},
		{MetricCosine, alpha * alpha, -float32(dim) * min * min},
		{MetricEuclidean, 2 * alpha * alpha, 0},
		{MetricManhattan, -alpha, 0},
	}

	for _, tt := range tests {
		t.Run(tt.metric.String(), func(t *testing.T) {
			v, err := NewVariant(tt.metric, alpha, min, dim)
			require.NoError(t, err)
			assert.Equal(t, tt.metric, v.Metric)
			assert.InDelta(t, tt.multiplier, v.Multiplier, 1e-9)
			assert.InDelta(t, tt.diff, v.Diff, 1e-9)
		})
	}
}

func TestNewVariantErrors(t *testing.T) {
	_, err := NewVariant(MetricUnset, 0.1, 0, 8)
	assert.Error(t, err)

	_, err = NewVariant(Metric(99), 0.1, 0, 8)
	assert.Error(t, err)

	_, err = NewVariant(MetricDot, 0.1, 0, 0)
	assert.Error(t, err)
}

func TestFinishFormula(t *testing.T) {
	v, err := NewVariant(MetricDot, 0.1, -2, 4)
	require.NoError(t, err)

	// multiplier*sum + targetOffset + candidateOffset - diff, verified by
	// direct computation.
	got := v.Finish(1000, 3.5, -1.25)
	want := v.Multiplier*1000 + 3.5 + -1.25 - v.Diff
	assert.Equal(t, want, got)
}

func TestRawPrimitiveSelection(t *testing.T) {
	a := []byte{255, 255, 255, 255}
	b := []byte{0, 0, 0, 0}

	for _, m := range []Metric{MetricCosine, MetricDot, MetricEuclidean} {
		v, err := NewVariant(m, 0.1, 0, 4)
		require.NoError(t, err)
		// Sum of products: one all-zero operand nulls the sum.
		assert.Equal(t, uint64(0), v.Raw(a, b), m.String())
	}

	v, err := NewVariant(MetricManhattan, 0.1, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(1020), v.Raw(a, b))
}

func TestReduceOrderIndependent(t *testing.T) {
	v, err := NewVariant(MetricDot, 0.1, 0, 4)
	require.NoError(t, err)

	partials := []uint64{17, 0, 9999, 42, 1}
	want := v.Reduce(partials)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(partials), func(a, b int) {
			partials[a], partials[b] = partials[b], partials[a]
		})
		assert.Equal(t, want, v.Reduce(partials))
	}
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "Cosine", MetricCosine.String())
	assert.Equal(t, "Dot", MetricDot.String())
	assert.Equal(t, "Euclidean", MetricEuclidean.String())
	assert.Equal(t, "Manhattan", MetricManhattan.String())
	assert.Equal(t, "Unknown(0)", MetricUnset.String())
}
