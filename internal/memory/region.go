package memory

import (
	"encoding/binary"
	"fmt"
)

// RegionSize is the byte size of a serialized Region descriptor.
const RegionSize = 12

// Region describes a byte buffer living in guest linear memory. It is the
// sole argument/return shape for any boundary call that moves variable-length
// data. A region is either a read-source (Length == Capacity, content
// pre-filled by the guest) or a write-target (Length == 0 until the host
// fills it and sets Length to the number of bytes written).
type Region struct {
	Offset   uint32
	Capacity uint32
	Length   uint32
}

// Validate checks the descriptor invariants against the current memory size.
func (r Region) Validate(memorySize uint32) error {
	if r.Length > r.Capacity {
		return fmt.Errorf("%w: length %d exceeds capacity %d", ErrInvalidRegion, r.Length, r.Capacity)
	}
	if uint64(r.Offset)+uint64(r.Capacity) > uint64(memorySize) {
		return fmt.Errorf("%w: offset %d + capacity %d beyond memory size %d", ErrInvalidRegion, r.Offset, r.Capacity, memorySize)
	}
	return nil
}

// DecodeRegion parses the 12-byte descriptor layout: three little-endian
// uint32 fields (offset, capacity, length), matching the wasm struct layout.
func DecodeRegion(raw []byte) (Region, error) {
	if len(raw) != RegionSize {
		return Region{}, fmt.Errorf("%w: descriptor is %d bytes, want %d", ErrInvalidRegion, len(raw), RegionSize)
	}
	return Region{
		Offset:   binary.LittleEndian.Uint32(raw[0:4]),
		Capacity: binary.LittleEndian.Uint32(raw[4:8]),
		Length:   binary.LittleEndian.Uint32(raw[8:12]),
	}, nil
}

// Encode serializes the descriptor into its 12-byte layout.
func (r Region) Encode() []byte {
	raw := make([]byte, RegionSize)
	binary.LittleEndian.PutUint32(raw[0:4], r.Offset)
	binary.LittleEndian.PutUint32(raw[4:8], r.Capacity)
	binary.LittleEndian.PutUint32(raw[8:12], r.Length)
	return raw
}
