// Package simd provides the byte-group reduction primitives used by the
// quantized scoring kernel.
//
// Kernel function pointers are set once at init, giving zero runtime dispatch
// overhead. Generic implementations are the default; platform-specific init()
// functions in arch-tagged files override them with SIMD versions when
// available.
package simd

var (
	kernelDotSQ8        = dotSQ8Generic
	kernelDotSQ8Strided = dotSQ8StridedGeneric
	kernelL1SQ8         = l1SQ8Generic
	kernelL1SQ8Strided  = l1SQ8StridedGeneric
	kernelDot           = dotGeneric
	kernelScale         = scaleGeneric
)

// DotSQ8 computes the unsigned sum of products over two quantized code
// vectors, reducing every 4-wide byte group.
//
// SAFETY: Assumes len(a) == len(b) and len(a)%4 == 0. Caller MUST ensure this.
func DotSQ8(a, b []byte) uint64 {
	return kernelDotSQ8(a, b)
}

// DotSQ8Strided reduces only the 4-wide byte groups owned by the given lane,
// visiting groups lane, lane+lanes, lane+2*lanes, ...
//
// Summing the results of all lanes in [0, lanes) equals DotSQ8(a, b).
//
// SAFETY: Assumes len(a) == len(b), len(a)%4 == 0 and 0 <= lane < lanes.
func DotSQ8Strided(a, b []byte, lane, lanes int) uint64 {
	return kernelDotSQ8Strided(a, b, lane, lanes)
}

// L1SQ8 computes the sum of absolute per-dimension differences over two
// quantized code vectors, reducing every 4-wide byte group.
// Differences are taken in signed arithmetic to avoid underflow.
//
// SAFETY: Assumes len(a) == len(b) and len(a)%4 == 0. Caller MUST ensure this.
func L1SQ8(a, b []byte) uint64 {
	return kernelL1SQ8(a, b)
}

// L1SQ8Strided is the lane-strided variant of L1SQ8. See DotSQ8Strided.
//
// SAFETY: Assumes len(a) == len(b), len(a)%4 == 0 and 0 <= lane < lanes.
func L1SQ8Strided(a, b []byte, lane, lanes int) uint64 {
	return kernelL1SQ8Strided(a, b, lane, lanes)
}

// Dot calculates the dot product of two float32 vectors.
//
// SAFETY: Assumes len(a) == len(b). Caller MUST ensure lengths match.
func Dot(a, b []float32) float32 {
	return kernelDot(a, b)
}

// ScaleInPlace multiplies all elements of a by scalar.
func ScaleInPlace(a []float32, scalar float32) {
	kernelScale(a, scalar)
}
