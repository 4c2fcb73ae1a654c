package sqkernel

import (
	"errors"
	"fmt"
)

var (
	// ErrMetricNotSet is returned by Build when no quantizer (and therefore
	// no metric) was configured.
	ErrMetricNotSet = errors.New("sqkernel: metric not set: configure a trained quantizer")
	// ErrStoreNotSet is returned by Build when no code store was configured.
	ErrStoreNotSet = errors.New("sqkernel: code store not set")
	// ErrNotTrained is returned by Build when the quantizer has no bounds.
	ErrNotTrained = errors.New("sqkernel: quantizer not trained")
	// ErrInvalidCapacity is returned by Build for a zero visited capacity.
	ErrInvalidCapacity = errors.New("sqkernel: visited capacity must be positive")
	// ErrInvalidGroups is returned by Build for a zero group count.
	ErrInvalidGroups = errors.New("sqkernel: groups must be positive")
	// ErrInvalidGroupSize is returned by Build for a zero group size.
	ErrInvalidGroupSize = errors.New("sqkernel: group size must be positive")
)

// ErrStrideMismatch indicates a code store whose stride does not match the
// quantizer's padded dimension.
type ErrStrideMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrStrideMismatch) Error() string {
	return fmt.Sprintf("sqkernel: store stride %d does not match quantizer padded dimension %d", e.Actual, e.Expected)
}

// ErrRemapEntry indicates a remap table entry referencing a slot at or above
// the visited capacity.
type ErrRemapEntry struct {
	Index    int
	Slot     uint32
	Capacity uint32
}

func (e *ErrRemapEntry) Error() string {
	return fmt.Sprintf("sqkernel: remap[%d] = %d exceeds visited capacity %d", e.Index, e.Slot, e.Capacity)
}

// ErrPointOutOfRange indicates a dispatch candidate outside the store's
// valid id range. Dispatch refuses to launch rather than risking undefined
// behavior in the unchecked kernel.
type ErrPointOutOfRange struct {
	ID  uint32
	Len int
}

func (e *ErrPointOutOfRange) Error() string {
	return fmt.Sprintf("sqkernel: point id %d out of range (store has %d points)", e.ID, e.Len)
}

// ErrRemapTooSmall indicates a remap table shorter than the store, leaving
// some candidates without a slot translation.
type ErrRemapTooSmall struct {
	RemapLen int
	StoreLen int
}

func (e *ErrRemapTooSmall) Error() string {
	return fmt.Sprintf("sqkernel: remap table has %d entries for a store of %d points", e.RemapLen, e.StoreLen)
}
