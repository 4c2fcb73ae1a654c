package simd

// Generic reductions over 4-wide byte groups of SQ8 codes.
//
// Accumulation is u32 per group and u64 across groups: a single group peaks at
// 4*255*255 (dot) or 4*255 (l1), so the per-group accumulator never overflows,
// and u64 keeps the vector-level sum exact for any realistic dimension.

// DotGroupSQ8 reduces a single 4-wide byte group: a0*b0 + a1*b1 + a2*b2 + a3*b3.
//
// SAFETY: Assumes len(a) >= 4 and len(b) >= 4.
func DotGroupSQ8(a, b []byte) uint32 {
	return uint32(a[0])*uint32(b[0]) +
		uint32(a[1])*uint32(b[1]) +
		uint32(a[2])*uint32(b[2]) +
		uint32(a[3])*uint32(b[3])
}

// L1GroupSQ8 reduces a single 4-wide byte group: |a0-b0| + |a1-b1| + |a2-b2| + |a3-b3|.
// Computed with signed arithmetic since the byte values are unsigned but the
// differences are not.
//
// SAFETY: Assumes len(a) >= 4 and len(b) >= 4.
func L1GroupSQ8(a, b []byte) uint32 {
	var sum int32
	for i := 0; i < 4; i++ {
		d := int32(a[i]) - int32(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return uint32(sum)
}

func dotSQ8Generic(a, b []byte) uint64 {
	var sum uint64
	for i := 0; i+4 <= len(a); i += 4 {
		sum += uint64(DotGroupSQ8(a[i:i+4], b[i:i+4]))
	}
	return sum
}

func dotSQ8StridedGeneric(a, b []byte, lane, lanes int) uint64 {
	var sum uint64
	step := lanes * 4
	for i := lane * 4; i+4 <= len(a); i += step {
		sum += uint64(DotGroupSQ8(a[i:i+4], b[i:i+4]))
	}
	return sum
}

func l1SQ8Generic(a, b []byte) uint64 {
	var sum uint64
	for i := 0; i+4 <= len(a); i += 4 {
		sum += uint64(L1GroupSQ8(a[i:i+4], b[i:i+4]))
	}
	return sum
}

func l1SQ8StridedGeneric(a, b []byte, lane, lanes int) uint64 {
	var sum uint64
	step := lanes * 4
	for i := lane * 4; i+4 <= len(a); i += step {
		sum += uint64(L1GroupSQ8(a[i:i+4], b[i:i+4]))
	}
	return sum
}
