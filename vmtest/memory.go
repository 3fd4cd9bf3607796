package vmtest

import "github.com/kromsten/cosmwasm/internal/memory"

// DefaultMaxPages caps the mock linear memory at 64 MiB.
const DefaultMaxPages = 1024

// LinearMemory is an in-process wasm-style linear memory: a flat byte array
// growing in 64 KiB pages up to a fixed limit.
type LinearMemory struct {
	data     []byte
	maxPages uint32
}

var _ memory.Memory = (*LinearMemory)(nil)

// NewLinearMemory creates an empty memory with the default page limit.
func NewLinearMemory() *LinearMemory {
	return NewLinearMemoryWithLimit(DefaultMaxPages)
}

// NewLinearMemoryWithLimit creates an empty memory capped at maxPages pages.
func NewLinearMemoryWithLimit(maxPages uint32) *LinearMemory {
	return &LinearMemory{maxPages: maxPages}
}

// Read returns a view of length bytes at offset, or false when out of range.
func (m *LinearMemory) Read(offset, length uint32) ([]byte, bool) {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(m.data)) {
		return nil, false
	}
	return m.data[offset:end], true
}

// Write copies data into memory at offset, or returns false when out of range.
func (m *LinearMemory) Write(offset uint32, data []byte) bool {
	end := uint64(offset) + uint64(len(data))
	if end > uint64(len(m.data)) {
		return false
	}
	copy(m.data[offset:end], data)
	return true
}

// Size returns the current size in bytes.
func (m *LinearMemory) Size() uint32 {
	return uint32(len(m.data))
}

// Grow extends the memory by deltaPages pages, or returns false once the
// page limit is reached.
func (m *LinearMemory) Grow(deltaPages uint32) bool {
	currentPages := uint32(len(m.data)) / memory.PageSize
	if currentPages+deltaPages > m.maxPages {
		return false
	}
	m.data = append(m.data, make([]byte, deltaPages*memory.PageSize)...)
	return true
}
