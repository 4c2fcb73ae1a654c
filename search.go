package sqkernel

import (
	"context"
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/sqkernel/core"
	"github.com/hupe1980/sqkernel/internal/simd"
	"github.com/hupe1980/sqkernel/kernel"
	"github.com/hupe1980/sqkernel/quantization"
	"github.com/hupe1980/sqkernel/vectorstore"
	"github.com/hupe1980/sqkernel/visited"
)

// ctxCheckInterval is how many candidates a lane group processes between
// context checks. The kernel inner loop itself never suspends.
const ctxCheckInterval = 1024

// Pipeline is an immutable, fully validated scoring configuration: one baked
// metric variant, one code store, one visited buffer. It is safe for
// concurrent NewPass calls, but passes sharing the pipeline share its visited
// buffer and must therefore use distinct generations or run sequentially.
type Pipeline struct {
	variant   kernel.Variant
	quantizer *quantization.SQ8
	store     vectorstore.Store
	tracker   *visited.Tracker
	remap     []core.PointID
	groups    uint32
	groupSize uint32
	filter    *roaring.Bitmap
	limiter   *rate.Limiter
	logger    *Logger
}

// Variant returns the metric variant baked into the pipeline.
func (p *Pipeline) Variant() kernel.Variant { return p.variant }

// Tracker returns the pipeline's visited tracker.
func (p *Pipeline) Tracker() *visited.Tracker { return p.tracker }

// groupOf assigns a candidate to its cooperating group. The assignment is a
// pure function of the candidate's visited slot, so a point lands in the
// same group on every dispatch of a pass and no two groups ever mark the
// same byte. This is what upholds the tracker's one-point-per-group contract.
func (p *Pipeline) groupOf(id core.PointID) uint32 {
	slot := id
	if p.remap != nil {
		slot = p.remap[id]
	}
	return uint32(slot) % p.groups
}

// Pass is one search pass: a fixed encoded target, a cached target offset
// and a generation stamp. Scoring never mutates the pass.
type Pass struct {
	pipe   *Pipeline
	scorer *kernel.Scorer
	gen    visited.Generation
}

// NewPass encodes the target vector once and returns a pass bound to the
// given generation. For the cosine metric the target is L2-normalized first;
// stored candidates are expected to have been normalized before encoding.
func (p *Pipeline) NewPass(target []float32, gen visited.Generation) (*Pass, error) {
	if p.variant.Metric == kernel.MetricCosine {
		norm2 := simd.Dot(target, target)
		if norm2 > 0 {
			target = slices.Clone(target)
			simd.ScaleInPlace(target, 1/sqrt32(norm2))
		}
	}

	codes := make([]byte, p.quantizer.PaddedDim())
	offset, err := p.quantizer.EncodeInto(target, codes)
	if err != nil {
		return nil, err
	}

	return &Pass{
		pipe:   p,
		scorer: kernel.NewScorer(p.variant, p.store, codes, offset),
		gen:    gen,
	}, nil
}

// Generation returns the pass's generation stamp.
func (pass *Pass) Generation() visited.Generation { return pass.gen }

// Score computes the target-to-candidate score without touching the visited
// buffer. Bounds are checked before scoring.
func (pass *Pass) Score(id core.PointID) (float32, error) {
	if int(id) >= pass.pipe.store.Len() {
		return 0, &ErrPointOutOfRange{ID: uint32(id), Len: pass.pipe.store.Len()}
	}
	return pass.scorer.Score(id), nil
}

// Dispatch scores every not-yet-visited candidate of the current generation
// and marks it visited. Candidates equal to core.InvalidPointID are skipped;
// any other out-of-range id aborts the dispatch before launch. Results carry
// no ordering guarantee; the consumer's priority structure imposes one.
//
// Candidates are partitioned across the pipeline's cooperating groups, one
// goroutine per group, each owning a disjoint region of the visited buffer.
func (pass *Pass) Dispatch(ctx context.Context, candidates []core.PointID) ([]core.ScoredPoint, error) {
	p := pass.pipe

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	// Host-side preflight: the kernel has no runtime bounds path, so refuse
	// to launch on any invalid id.
	for _, id := range candidates {
		if id == core.InvalidPointID {
			continue
		}
		if int(id) >= p.store.Len() {
			return nil, &ErrPointOutOfRange{ID: uint32(id), Len: p.store.Len()}
		}
	}

	results := make([][]core.ScoredPoint, p.groups)
	g, ctx := errgroup.WithContext(ctx)
	for group := uint32(0); group < p.groups; group++ {
		g.Go(func() error {
			var out []core.ScoredPoint
			var partials []uint64
			if p.groupSize > 1 {
				partials = make([]uint64, p.groupSize)
			}
			for i, id := range candidates {
				if i%ctxCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if id == core.InvalidPointID || p.groupOf(id) != group {
					continue
				}
				if p.filter != nil && !p.filter.Contains(uint32(id)) {
					continue
				}
				if p.tracker.CheckAndMark(group, id, pass.gen) {
					continue
				}
				out = append(out, core.ScoredPoint{ID: id, Score: pass.score(id, partials)})
			}
			results[group] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []core.ScoredPoint
	for _, r := range results {
		merged = append(merged, r...)
	}
	p.logger.Debug("dispatch complete",
		"candidates", len(candidates), "scored", len(merged), "generation", int(pass.gen))
	return merged, nil
}

// score runs the scoring kernel for one candidate. With a single lane per
// group the full reduction runs directly; otherwise each lane reduces its
// strided share of the byte groups into the caller's scratch and the
// partials are combined by the order-independent group sum.
func (pass *Pass) score(id core.PointID, partials []uint64) float32 {
	if partials == nil {
		return pass.scorer.Score(id)
	}
	lanes := len(partials)
	for lane := 0; lane < lanes; lane++ {
		partials[lane] = pass.scorer.PartialRaw(id, lane, lanes)
	}
	return pass.scorer.FinishRaw(id, pass.scorer.Variant().Reduce(partials))
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
