package kernel

import "github.com/hupe1980/sqkernel/core"

// CodeSource provides read-only access to quantized codes and per-point
// correction offsets. Implementations must return code slices of identical
// length (the padded stride) for every valid PointID.
type CodeSource interface {
	// Codes returns the padded code vector for the given point.
	Codes(id core.PointID) []byte
	// Offset returns the per-point affine correction term.
	Offset(id core.PointID) float32
}

// Scorer evaluates candidates against a fixed target point.
// The target's offset is fetched once at construction and cached; candidate
// offsets differ per point and are re-read on every call.
//
// Scorer performs no bounds checking: out-of-range PointIDs are a contract
// violation that the host-side preflight must rule out before dispatch.
type Scorer struct {
	variant      Variant
	src          CodeSource
	target       []byte
	targetOffset float32
}

// NewScorer builds a scorer for one search pass. target must already be
// encoded with the same quantizer (and padding) as the stored candidates.
func NewScorer(v Variant, src CodeSource, target []byte, targetOffset float32) *Scorer {
	return &Scorer{
		variant:      v,
		src:          src,
		target:       target,
		targetOffset: targetOffset,
	}
}

// Variant returns the metric variant the scorer was built with.
func (s *Scorer) Variant() Variant { return s.variant }

// Score computes the corrected similarity score of a candidate against the
// cached target. No state is mutated.
func (s *Scorer) Score(id core.PointID) float32 {
	raw := s.variant.Raw(s.target, s.src.Codes(id))
	return s.variant.Finish(raw, s.targetOffset, s.src.Offset(id))
}

// PartialRaw computes the raw partial sum for one lane of a cooperating
// group. The caller combines all lanes with Variant.Reduce and finishes with
// FinishRaw.
func (s *Scorer) PartialRaw(id core.PointID, lane, lanes int) uint64 {
	return s.variant.RawStrided(s.target, s.src.Codes(id), lane, lanes)
}

// FinishRaw applies the affine correction to a group-reduced raw sum for the
// given candidate.
func (s *Scorer) FinishRaw(id core.PointID, rawSum uint64) float32 {
	return s.variant.Finish(rawSum, s.targetOffset, s.src.Offset(id))
}
