package simd

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDotGroupSQ8(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []byte
		expected uint32
	}{
		{"AllZero", []byte{0, 0, 0, 0}, []byte{0, 0, 0, 0}, 0},
		{"MaxVsZero", []byte{255, 255, 255, 255}, []byte{0, 0, 0, 0}, 0},
		{"ZeroVsMax", []byte{0, 0, 0, 0}, []byte{255, 255, 255, 255}, 0},
		{"MaxVsMax", []byte{255, 255, 255, 255}, []byte{255, 255, 255, 255}, 4 * 255 * 255},
		{"Mixed", []byte{1, 2, 3, 4}, []byte{5, 6, 7, 8}, 5 + 12 + 21 + 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DotGroupSQ8(tt.a, tt.b))
		})
	}
}

func TestL1GroupSQ8(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []byte
		expected uint32
	}{
		{"AllZero", []byte{0, 0, 0, 0}, []byte{0, 0, 0, 0}, 0},
		{"MaxVsZero", []byte{255, 255, 255, 255}, []byte{0, 0, 0, 0}, 1020},
		{"ZeroVsMax", []byte{0, 0, 0, 0}, []byte{255, 255, 255, 255}, 1020},
		{"Equal", []byte{7, 19, 200, 255}, []byte{7, 19, 200, 255}, 0},
		{"SignedDiffs", []byte{10, 250, 0, 128}, []byte{20, 240, 255, 128}, 10 + 10 + 255 + 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, L1GroupSQ8(tt.a, tt.b))
		})
	}
}

func randomCodes(rng *rand.Rand, n int) []byte {
	codes := make([]byte, n)
	rng.Read(codes)
	return codes
}

func TestDotSQ8Commutative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		a := randomCodes(rng, 64)
		b := randomCodes(rng, 64)
		assert.Equal(t, DotSQ8(a, b), DotSQ8(b, a))
	}
}

func TestL1SQ8SymmetricAndZeroIffEqual(t *testing.T) {
	rng := rand.New(rand.NewSource(43))
	for i := 0; i < 50; i++ {
		a := randomCodes(rng, 32)
		b := randomCodes(rng, 32)
		assert.Equal(t, L1SQ8(a, b), L1SQ8(b, a))
		assert.Zero(t, L1SQ8(a, a))
		if L1SQ8(a, b) == 0 {
			assert.Equal(t, a, b)
		}
	}
}

func TestStridedLanesSumToFullReduction(t *testing.T) {
	rng := rand.New(rand.NewSource(44))
	a := randomCodes(rng, 128)
	b := randomCodes(rng, 128)

	for _, lanes := range []int{1, 2, 4, 8, 32, 33} {
		var dot, l1 uint64
		for lane := 0; lane < lanes; lane++ {
			dot += DotSQ8Strided(a, b, lane, lanes)
			l1 += L1SQ8Strided(a, b, lane, lanes)
		}
		assert.Equal(t, DotSQ8(a, b), dot, "lanes=%d", lanes)
		assert.Equal(t, L1SQ8(a, b), l1, "lanes=%d", lanes)
	}
}

func TestDotSQ8MatchesNaive(t *testing.T) {
	rng := rand.New(rand.NewSource(45))
	a := randomCodes(rng, 96)
	b := randomCodes(rng, 96)

	var want uint64
	for i := range a {
		want += uint64(a[i]) * uint64(b[i])
	}
	require.Equal(t, want, DotSQ8(a, b))
}

func BenchmarkDotSQ8(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	x := randomCodes(rng, 768)
	y := randomCodes(rng, 768)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = DotSQ8(x, y)
	}
}
