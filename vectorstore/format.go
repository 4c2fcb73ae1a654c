package vectorstore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"os"
)

// File format (little-endian):
//
//	[magic:4]["SQKC"]
//	[version:u16]
//	[metric:u8][pad:u8]
//	[dim:u32]     logical dimension
//	[stride:u32]  padded bytes per point
//	[count:u32]
//	[alpha:f32][min:f32]
//	[offsets: count*f32]
//	[codes: count*stride bytes]
//	[crc32c:u32]  over everything before it
const (
	formatMagic   = "SQKC"
	formatVersion = 1
	headerSize    = 4 + 2 + 2 + 4 + 4 + 4 + 4 + 4
)

var (
	// ErrBadMagic is returned for files that are not code stores.
	ErrBadMagic = errors.New("vectorstore: bad magic")
	// ErrChecksum is returned when the trailing CRC-32C does not match.
	ErrChecksum = errors.New("vectorstore: checksum mismatch")
)

// crc32cTable is pre-computed for the Castagnoli polynomial, hardware
// accelerated on modern CPUs.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Metadata describes a serialized code store: the quantizer parameters it was
// encoded with and the layout of its code vectors.
type Metadata struct {
	Metric uint8
	Dim    uint32
	Stride uint32
	Count  uint32
	Alpha  float32
	Min    float32
}

// Write serializes a code store to w.
// offsets must have Count entries and codes Count*Stride bytes.
func Write(w io.Writer, meta Metadata, offsets []float32, codes []byte) error {
	if uint32(len(offsets)) != meta.Count {
		return fmt.Errorf("vectorstore: offsets length %d does not match count %d", len(offsets), meta.Count)
	}
	if uint64(len(codes)) != uint64(meta.Count)*uint64(meta.Stride) {
		return fmt.Errorf("vectorstore: codes length %d does not match count*stride %d", len(codes), uint64(meta.Count)*uint64(meta.Stride))
	}

	buf := make([]byte, headerSize+len(offsets)*4)
	copy(buf[0:4], formatMagic)
	binary.LittleEndian.PutUint16(buf[4:6], formatVersion)
	buf[6] = meta.Metric
	binary.LittleEndian.PutUint32(buf[8:12], meta.Dim)
	binary.LittleEndian.PutUint32(buf[12:16], meta.Stride)
	binary.LittleEndian.PutUint32(buf[16:20], meta.Count)
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(meta.Alpha))
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(meta.Min))
	for i, off := range offsets {
		binary.LittleEndian.PutUint32(buf[headerSize+i*4:], math.Float32bits(off))
	}

	crc := crc32.New(crc32cTable)
	mw := io.MultiWriter(w, crc)
	if _, err := mw.Write(buf); err != nil {
		return err
	}
	if _, err := mw.Write(codes); err != nil {
		return err
	}

	var trailer [4]byte
	binary.LittleEndian.PutUint32(trailer[:], crc.Sum32())
	_, err := w.Write(trailer[:])
	return err
}

// WriteFile serializes a MemoryStore to path with the given quantizer
// metadata. The write goes through a temp file and rename so a crashed write
// never leaves a truncated store behind.
func WriteFile(path string, meta Metadata, s *MemoryStore) error {
	meta.Stride = uint32(s.stride)
	meta.Count = uint32(s.Len())

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := Write(f, meta, s.offsets, s.codes); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func parseHeader(data []byte) (Metadata, error) {
	if len(data) < headerSize+4 {
		return Metadata{}, errors.New("vectorstore: file too small")
	}
	if string(data[0:4]) != formatMagic {
		return Metadata{}, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(data[4:6]); v != formatVersion {
		return Metadata{}, fmt.Errorf("vectorstore: unsupported version %d", v)
	}
	meta := Metadata{
		Metric: data[6],
		Dim:    binary.LittleEndian.Uint32(data[8:12]),
		Stride: binary.LittleEndian.Uint32(data[12:16]),
		Count:  binary.LittleEndian.Uint32(data[16:20]),
		Alpha:  math.Float32frombits(binary.LittleEndian.Uint32(data[20:24])),
		Min:    math.Float32frombits(binary.LittleEndian.Uint32(data[24:28])),
	}
	if meta.Stride == 0 || meta.Stride%4 != 0 {
		return Metadata{}, ErrInvalidStride
	}
	expected := uint64(headerSize) + uint64(meta.Count)*4 + uint64(meta.Count)*uint64(meta.Stride) + 4
	if uint64(len(data)) != expected {
		return Metadata{}, fmt.Errorf("vectorstore: file size %d does not match header (want %d)", len(data), expected)
	}

	stored := binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.Checksum(data[:len(data)-4], crc32cTable) != stored {
		return Metadata{}, ErrChecksum
	}
	return meta, nil
}
