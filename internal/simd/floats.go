package simd

// Float32 helpers used for query normalization on the host side.
// Candidate-side math never touches floats until the final affine correction.

func dotGeneric(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func scaleGeneric(a []float32, scalar float32) {
	for i := range a {
		a[i] *= scalar
	}
}
