// Package memory implements the guest side of the boundary memory protocol:
// region descriptors, the guest allocator, and the staging/reclaiming of
// byte buffers exchanged with the host.
package memory

import "fmt"

// Memory is a raw linear memory. The production implementation is the wasm
// instance's own memory; tests use an in-process arena.
type Memory interface {
	// Read returns length bytes at offset, or false when out of range.
	Read(offset, length uint32) ([]byte, bool)
	// Write copies data into memory at offset, or returns false when out of range.
	Write(offset uint32, data []byte) bool
	// Size returns the current memory size in bytes.
	Size() uint32
	// Grow extends the memory by deltaPages pages, or returns false when the
	// limit is reached.
	Grow(deltaPages uint32) bool
}

// Manager combines a linear memory with the guest allocator and implements
// the region lifecycle: staging read-sources, allocating write-targets, and
// consuming host-written buffers into owned byte slices.
type Manager struct {
	mem   Memory
	alloc *Allocator
}

// NewManager creates a Manager over the given linear memory.
func NewManager(mem Memory) *Manager {
	return &Manager{
		mem:   mem,
		alloc: NewAllocator(mem),
	}
}

// Memory returns the underlying linear memory.
func (m *Manager) Memory() Memory { return m.mem }

// Allocator returns the guest allocator.
func (m *Manager) Allocator() *Allocator { return m.alloc }

// Read copies length bytes from memory at the given offset.
func (m *Manager) Read(offset, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("%w: read of %d bytes at offset %d", ErrInvalidMemoryAccess, length, offset)
	}
	// The view may alias the memory; return an owned copy.
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write copies data into memory at the given offset.
func (m *Manager) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("%w: write of %d bytes at offset %d", ErrInvalidMemoryAccess, len(data), offset)
	}
	return nil
}

// ReadRegion reads and validates the Region descriptor at regionPtr.
func (m *Manager) ReadRegion(regionPtr uint32) (Region, error) {
	raw, err := m.Read(regionPtr, RegionSize)
	if err != nil {
		return Region{}, err
	}
	region, err := DecodeRegion(raw)
	if err != nil {
		return Region{}, err
	}
	if err := region.Validate(m.mem.Size()); err != nil {
		return Region{}, err
	}
	return region, nil
}

// WriteRegion writes the Region descriptor to regionPtr.
func (m *Manager) WriteRegion(regionPtr uint32, region Region) error {
	return m.Write(regionPtr, region.Encode())
}

// Alloc reserves capacity bytes for the host to fill and returns the address
// of a fresh write-target Region (length 0). The capacity must cover the
// largest value the host is contractually permitted to write.
func (m *Manager) Alloc(capacity uint32) (uint32, error) {
	dataPtr, err := m.alloc.Allocate(capacity)
	if err != nil {
		return 0, err
	}
	regionPtr, err := m.alloc.Allocate(RegionSize)
	if err != nil {
		m.alloc.Free(dataPtr)
		return 0, err
	}
	region := Region{Offset: dataPtr, Capacity: capacity, Length: 0}
	if err := m.WriteRegion(regionPtr, region); err != nil {
		m.alloc.Free(regionPtr)
		m.alloc.Free(dataPtr)
		return 0, err
	}
	return regionPtr, nil
}

// BuildRegion stages data as a read-only Region (length == capacity) and
// returns its address.
func (m *Manager) BuildRegion(data []byte) (uint32, error) {
	size := uint32(len(data))
	dataPtr, err := m.alloc.Allocate(size)
	if err != nil {
		return 0, err
	}
	if err := m.Write(dataPtr, data); err != nil {
		m.alloc.Free(dataPtr)
		return 0, err
	}
	regionPtr, err := m.alloc.Allocate(RegionSize)
	if err != nil {
		m.alloc.Free(dataPtr)
		return 0, err
	}
	region := Region{Offset: dataPtr, Capacity: size, Length: size}
	if err := m.WriteRegion(regionPtr, region); err != nil {
		m.alloc.Free(regionPtr)
		m.alloc.Free(dataPtr)
		return 0, err
	}
	return regionPtr, nil
}

// BuildOptionalRegion stages data like BuildRegion, but maps a nil slice to
// the address 0 so the host can tell "no bound" apart from "empty bound".
// An empty-but-non-nil slice becomes a real region of length 0.
func (m *Manager) BuildOptionalRegion(data []byte) (uint32, error) {
	if data == nil {
		return 0, nil
	}
	return m.BuildRegion(data)
}

// ConsumeRegion reclaims a Region written by the host: it returns an owned
// copy of exactly Length bytes and releases both the data buffer and the
// descriptor. Each region address must be consumed exactly once, immediately
// after the call that produced it.
func (m *Manager) ConsumeRegion(regionPtr uint32) ([]byte, error) {
	region, err := m.ReadRegion(regionPtr)
	if err != nil {
		return nil, err
	}
	data, err := m.Read(region.Offset, region.Length)
	if err != nil {
		return nil, err
	}
	if err := m.alloc.Free(region.Offset); err != nil {
		return nil, err
	}
	if err := m.alloc.Free(regionPtr); err != nil {
		return nil, err
	}
	return data, nil
}

// FreeRegion releases a staged Region without reading it, for send-only
// arguments once the call has returned.
func (m *Manager) FreeRegion(regionPtr uint32) error {
	region, err := m.ReadRegion(regionPtr)
	if err != nil {
		return err
	}
	if err := m.alloc.Free(region.Offset); err != nil {
		return err
	}
	return m.alloc.Free(regionPtr)
}
