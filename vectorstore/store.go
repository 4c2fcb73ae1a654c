// Package vectorstore stores quantized code vectors and their per-point
// correction offsets, either in memory or memory-mapped from a file.
//
// Stores are the resource bindings a scoring pipeline reads from: codes are
// addressed by PointID, one padded code vector plus one float offset per
// point. Stores are read-only from the kernel's perspective.
package vectorstore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/sqkernel/core"
)

var (
	// ErrInvalidStride is returned when the padded code stride is zero or
	// not a multiple of 4.
	ErrInvalidStride = errors.New("vectorstore: stride must be a positive multiple of 4")
	// ErrFull is returned when adding a point would exceed the PointID space.
	ErrFull = errors.New("vectorstore: point id space exhausted")
)

// ErrCodeSize indicates a code vector whose length does not match the stride.
type ErrCodeSize struct {
	Expected int
	Actual   int
}

func (e *ErrCodeSize) Error() string {
	return fmt.Sprintf("vectorstore: code size mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Store is read-only access to quantized codes and offsets.
// Codes and Offset perform no bounds checking; callers validate ids against
// Len before dispatch.
type Store interface {
	Codes(id core.PointID) []byte
	Offset(id core.PointID) float32
	Len() int
	Stride() int
}

// MemoryStore keeps codes and offsets in flat contiguous slices.
// Appends and reads must not overlap; the scoring pipeline treats the store
// as frozen for the duration of a dispatch.
type MemoryStore struct {
	codes   []byte
	offsets []float32
	stride  int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store for padded code vectors of the given
// stride (bytes per point, a multiple of 4).
func NewMemoryStore(stride int) (*MemoryStore, error) {
	if stride <= 0 || stride%4 != 0 {
		return nil, ErrInvalidStride
	}
	return &MemoryStore{stride: stride}, nil
}

// Add appends a point and returns its id. Ids are dense and start at 0.
func (s *MemoryStore) Add(codes []byte, offset float32) (core.PointID, error) {
	if len(codes) != s.stride {
		return core.InvalidPointID, &ErrCodeSize{Expected: s.stride, Actual: len(codes)}
	}
	if len(s.offsets) > int(core.MaxPointID) {
		return core.InvalidPointID, ErrFull
	}
	id := core.PointID(len(s.offsets))
	s.codes = append(s.codes, codes...)
	s.offsets = append(s.offsets, offset)
	return id, nil
}

// Codes returns the padded code vector for id.
//
// SAFETY: Assumes id < Len(). Caller MUST guarantee bounds.
func (s *MemoryStore) Codes(id core.PointID) []byte {
	start := int(id) * s.stride
	return s.codes[start : start+s.stride]
}

// Offset returns the per-point correction term for id.
//
// SAFETY: Assumes id < Len(). Caller MUST guarantee bounds.
func (s *MemoryStore) Offset(id core.PointID) float32 {
	return s.offsets[id]
}

// Len returns the number of stored points.
func (s *MemoryStore) Len() int { return len(s.offsets) }

// Stride returns the padded code length per point.
func (s *MemoryStore) Stride() int { return s.stride }
