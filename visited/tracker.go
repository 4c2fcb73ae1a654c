// Package visited implements the generation-stamped visited-flags tracker
// used to deduplicate candidates during one search pass.
//
// The tracker never clears its buffer between passes. Each slot byte holds
// the last generation (0-255, wrapping) that marked it; a point counts as
// visited in the current pass iff its slot equals the current generation.
// Advancing the generation between passes invalidates all prior marks in O(1).
package visited

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sqkernel/core"
)

var (
	// ErrInvalidCapacity is returned when the per-group capacity is zero.
	ErrInvalidCapacity = errors.New("visited: capacity must be positive")
	// ErrInvalidGroups is returned when the group count is zero.
	ErrInvalidGroups = errors.New("visited: groups must be positive")
)

// ErrBufferSize indicates an externally supplied flags buffer whose length
// does not match capacity*groups.
type ErrBufferSize struct {
	Expected int
	Actual   int
}

func (e *ErrBufferSize) Error() string {
	return fmt.Sprintf("visited: flags buffer size mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Generation is the search-pass stamp. It is issued by the orchestrator,
// advances monotonically between unrelated passes and wraps after 255.
// A freshly allocated buffer is all zero, so the first pass must use a
// nonzero generation or every slot reads as already visited.
// Reusing a generation over a buffer that still carries live marks from the
// same value is a correctness hazard the orchestrator must prevent.
type Generation = uint8

// NextGeneration advances a generation stamp, wrapping at 255.
func NextGeneration(g Generation) Generation {
	return g + 1
}

// Tracker answers "has this candidate already been examined in the current
// pass?" and marks it as examined.
//
// The flags buffer is partitioned into one capacity-sized region per
// cooperating group, so two different groups never touch the same byte.
// Check-and-mark is a plain read-then-write, not an atomic test-and-set:
// correctness relies on the dispatcher never handing the same point to two
// lanes of the same group within one traversal step. That partitioning
// contract is the sole race-avoidance mechanism; no locking is used.
type Tracker struct {
	flags    []byte
	capacity uint32
	groups   uint32
	remap    []core.PointID
}

// New allocates a tracker owning its own flags buffer.
func New(capacity, groups uint32) (*Tracker, error) {
	if capacity == 0 {
		return nil, ErrInvalidCapacity
	}
	if groups == 0 {
		return nil, ErrInvalidGroups
	}
	return &Tracker{
		flags:    make([]byte, int(capacity)*int(groups)),
		capacity: capacity,
		groups:   groups,
	}, nil
}

// NewWithBuffer wraps an externally owned flags buffer. The buffer's lifetime
// spans many passes and is never cleared by the tracker.
func NewWithBuffer(flags []byte, capacity, groups uint32) (*Tracker, error) {
	if capacity == 0 {
		return nil, ErrInvalidCapacity
	}
	if groups == 0 {
		return nil, ErrInvalidGroups
	}
	if want := int(capacity) * int(groups); len(flags) != want {
		return nil, &ErrBufferSize{Expected: want, Actual: len(flags)}
	}
	return &Tracker{
		flags:    flags,
		capacity: capacity,
		groups:   groups,
	}, nil
}

// SetRemap installs (or removes, when nil) the indirection table translating
// external point identifiers to compact slot identifiers. The table affects
// only visited-flag addressing, never scoring.
func (t *Tracker) SetRemap(remap []core.PointID) {
	t.remap = remap
}

// Remapped reports whether remap indirection is active.
func (t *Tracker) Remapped() bool { return t.remap != nil }

// Capacity returns the per-group slot capacity.
func (t *Tracker) Capacity() uint32 { return t.capacity }

// Groups returns the number of cooperating groups sharing the buffer.
func (t *Tracker) Groups() uint32 { return t.groups }

// CheckAndMark returns true if the point was already visited in the given
// generation (no mutation), or false on the first visit, in which case the
// slot is stamped with the generation before returning.
//
// SAFETY: Assumes group < Groups() and, with remap active, id < len(remap).
// Caller MUST guarantee bounds; there is no runtime check on this path.
func (t *Tracker) CheckAndMark(group uint32, id core.PointID, gen Generation) bool {
	if t.remap != nil {
		id = t.remap[id]
	}
	return t.CheckAndMarkSlot(group, id, gen)
}

// CheckAndMarkSlot is CheckAndMark after remap translation. Exposed so the
// equivalence CheckAndMark(ext) == CheckAndMarkSlot(remap[ext]) is directly
// observable.
func (t *Tracker) CheckAndMarkSlot(group uint32, slot core.PointID, gen Generation) bool {
	idx := group*t.capacity + uint32(slot)%t.capacity
	if t.flags[idx] == gen {
		return true
	}
	t.flags[idx] = gen
	return false
}
