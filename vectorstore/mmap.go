package vectorstore

import (
	"encoding/binary"
	"math"

	"github.com/hupe1980/sqkernel/core"
	"github.com/hupe1980/sqkernel/internal/mmap"
)

// MmapStore is a read-only code store backed by a memory-mapped file in the
// Write format. The checksum is verified once at open; reads afterwards go
// straight to the mapping without copies.
type MmapStore struct {
	file    *mmap.File
	meta    Metadata
	offsets []byte // count*4 raw little-endian float32s
	codes   []byte
}

var _ Store = (*MmapStore)(nil)

// OpenMmap maps the store at path and validates its header and checksum.
func OpenMmap(path string) (*MmapStore, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	meta, err := parseHeader(f.Data)
	if err != nil {
		f.Close()
		return nil, err
	}

	offsetsEnd := headerSize + int(meta.Count)*4
	return &MmapStore{
		file:    f,
		meta:    meta,
		offsets: f.Data[headerSize:offsetsEnd],
		codes:   f.Data[offsetsEnd : offsetsEnd+int(meta.Count)*int(meta.Stride)],
	}, nil
}

// Close unmaps the store. Code slices returned earlier become invalid.
func (s *MmapStore) Close() error { return s.file.Close() }

// Metadata returns the quantizer parameters the store was encoded with.
func (s *MmapStore) Metadata() Metadata { return s.meta }

// Codes returns the padded code vector for id, aliasing the mapping.
//
// SAFETY: Assumes id < Len(). Caller MUST guarantee bounds.
func (s *MmapStore) Codes(id core.PointID) []byte {
	start := int(id) * int(s.meta.Stride)
	return s.codes[start : start+int(s.meta.Stride)]
}

// Offset returns the per-point correction term for id.
//
// SAFETY: Assumes id < Len(). Caller MUST guarantee bounds.
func (s *MmapStore) Offset(id core.PointID) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(s.offsets[int(id)*4:]))
}

// Len returns the number of stored points.
func (s *MmapStore) Len() int { return int(s.meta.Count) }

// Stride returns the padded code length per point.
func (s *MmapStore) Stride() int { return int(s.meta.Stride) }
