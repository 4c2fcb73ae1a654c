// Package testutil provides deterministic data generators and float32
// reference scorers for kernel tests.
package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Float32 returns a pseudo-random number in [0.0, 1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Intn returns a non-negative pseudo-random number in [0, n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Vector returns a random vector with components in [lo, hi).
func (r *RNG) Vector(dim int, lo, hi float32) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = lo + (hi-lo)*r.Float32()
	}
	return v
}

// Vectors returns n random vectors with components in [lo, hi).
func (r *RNG) Vectors(n, dim int, lo, hi float32) [][]float32 {
	vs := make([][]float32, n)
	for i := range vs {
		vs[i] = r.Vector(dim, lo, hi)
	}
	return vs
}

// Perturb returns a copy of v with uniform noise in [-eps, eps] added to
// every component.
func (r *RNG) Perturb(v []float32, eps float32) []float32 {
	out := make([]float32, len(v))
	for i := range v {
		out[i] = v[i] + eps*(2*r.Float32()-1)
	}
	return out
}

// Reference float32 scorers. These are the unquantized ground truth the
// kernel approximates; comparisons need a quantization-aware tolerance.

// Dot returns the inner product of a and b.
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// NegSquaredL2 returns the negated squared euclidean distance.
func NegSquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return -sum
}

// NegL1 returns the negated manhattan distance.
func NegL1(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += float32(math.Abs(float64(a[i] - b[i])))
	}
	return -sum
}

// Normalize returns an L2-normalized copy of v, or v itself if its norm is 0.
func Normalize(v []float32) []float32 {
	norm := float32(math.Sqrt(float64(Dot(v, v))))
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i := range v {
		out[i] = v[i] / norm
	}
	return out
}
