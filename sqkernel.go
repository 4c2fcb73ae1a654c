package sqkernel

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"
	"golang.org/x/time/rate"

	"github.com/hupe1980/sqkernel/core"
	"github.com/hupe1980/sqkernel/quantization"
	"github.com/hupe1980/sqkernel/vectorstore"
	"github.com/hupe1980/sqkernel/visited"
)

// Builder assembles a scoring Pipeline. It is immutable: every method
// returns an updated copy, and Build runs the full preflight before any
// dispatch is possible. Mandatory settings are a trained quantizer, a code
// store and a visited capacity; everything else has defaults.
type Builder struct {
	quantizer  *quantization.SQ8
	store      vectorstore.Store
	capacity   uint32
	groups     uint32
	groupSize  uint32
	remap      []core.PointID
	visitedBuf []byte
	filter     *roaring.Bitmap
	limiter    *rate.Limiter
	logger     *Logger
}

// NewBuilder creates a Builder with defaults: one cooperating group of one
// lane, no remap, no filter, no throttle.
func NewBuilder() Builder {
	return Builder{
		groups:    1,
		groupSize: 1,
	}
}

// Quantizer sets the trained quantizer that defines the metric variant and
// encodes pass targets.
func (b Builder) Quantizer(q *quantization.SQ8) Builder {
	b.quantizer = q
	return b
}

// Store sets the code store candidates are read from.
func (b Builder) Store(s vectorstore.Store) Builder {
	b.store = s
	return b
}

// VisitedCapacity sets the per-group visited slot capacity. Mandatory; the
// visited buffer is sized capacity*groups and never resized at run time.
func (b Builder) VisitedCapacity(capacity uint32) Builder {
	b.capacity = capacity
	return b
}

// Groups sets the number of cooperating lane groups.
func (b Builder) Groups(groups uint32) Builder {
	b.groups = groups
	return b
}

// GroupSize sets the number of lanes per cooperating group. With more than
// one lane, each candidate's byte groups are partitioned lane-strided and
// partial sums are combined by the group reduction.
func (b Builder) GroupSize(size uint32) Builder {
	b.groupSize = size
	return b
}

// Remap installs an indirection table translating point ids to compact
// visited slots. It affects visited addressing only, never scoring.
func (b Builder) Remap(remap []core.PointID) Builder {
	b.remap = remap
	return b
}

// VisitedBuffer supplies an externally owned flags buffer of length
// capacity*groups. The pipeline never clears it.
func (b Builder) VisitedBuffer(buf []byte) Builder {
	b.visitedBuf = buf
	return b
}

// Filter restricts dispatches to candidates contained in the bitmap.
// Filtered-out candidates are neither scored nor marked visited.
func (b Builder) Filter(f *roaring.Bitmap) Builder {
	b.filter = f
	return b
}

// DispatchLimit throttles Dispatch calls with the given rate limiter.
func (b Builder) DispatchLimit(l *rate.Limiter) Builder {
	b.limiter = l
	return b
}

// WithLogger sets the logger. Defaults to a no-op logger.
func (b Builder) WithLogger(l *Logger) Builder {
	b.logger = l
	return b
}

// Build validates the configuration and returns an immutable Pipeline.
// All configuration errors surface here, before any dispatch; the kernel
// layer itself has no error channel.
func (b Builder) Build() (*Pipeline, error) {
	if b.store == nil {
		return nil, ErrStoreNotSet
	}
	if b.quantizer == nil {
		return nil, ErrMetricNotSet
	}
	if !b.quantizer.Trained() {
		return nil, ErrNotTrained
	}
	if b.capacity == 0 {
		return nil, ErrInvalidCapacity
	}
	if b.groups == 0 {
		return nil, ErrInvalidGroups
	}
	if b.groupSize == 0 {
		return nil, ErrInvalidGroupSize
	}
	if b.store.Stride() != b.quantizer.PaddedDim() {
		return nil, &ErrStrideMismatch{Expected: b.quantizer.PaddedDim(), Actual: b.store.Stride()}
	}

	logger := b.logger
	if logger == nil {
		logger = NopLogger()
	}

	if b.remap != nil {
		if len(b.remap) < b.store.Len() {
			return nil, &ErrRemapTooSmall{RemapLen: len(b.remap), StoreLen: b.store.Len()}
		}
		// Slots alias modulo capacity at mark time, but a remap entry at or
		// above capacity is almost always a misbuilt table. Duplicate slot
		// assignments are legal aliasing, surfaced as a warning only.
		seen := bitset.New(uint(b.capacity))
		duplicates := 0
		for i, slot := range b.remap {
			if uint32(slot) >= b.capacity {
				return nil, &ErrRemapEntry{Index: i, Slot: uint32(slot), Capacity: b.capacity}
			}
			if seen.Test(uint(slot)) {
				duplicates++
			}
			seen.Set(uint(slot))
		}
		if duplicates > 0 {
			logger.Warn("remap table aliases visited slots",
				"duplicates", duplicates, "capacity", int(b.capacity))
		}
	}

	var tracker *visited.Tracker
	var err error
	if b.visitedBuf != nil {
		tracker, err = visited.NewWithBuffer(b.visitedBuf, b.capacity, b.groups)
	} else {
		tracker, err = visited.New(b.capacity, b.groups)
	}
	if err != nil {
		return nil, err
	}
	tracker.SetRemap(b.remap)

	variant, err := b.quantizer.Variant()
	if err != nil {
		return nil, err
	}

	logger.Debug("pipeline built",
		"metric", variant.Metric.String(),
		"dim", b.quantizer.Dim(),
		"capacity", int(b.capacity),
		"groups", int(b.groups),
		"group_size", int(b.groupSize),
		"remap", b.remap != nil,
	)

	return &Pipeline{
		variant:   variant,
		quantizer: b.quantizer,
		store:     b.store,
		tracker:   tracker,
		remap:     b.remap,
		groups:    b.groups,
		groupSize: b.groupSize,
		filter:    b.filter,
		limiter:   b.limiter,
		logger:    logger,
	}, nil
}
