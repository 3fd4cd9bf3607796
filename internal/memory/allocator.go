package memory

import (
	"fmt"
	"sort"
)

// heapBase is the first allocatable offset. Offset 0 is reserved so that the
// boundary protocol can use the address 0 as "no region".
const heapBase = 1024

// PageSize is the wasm linear memory page size (64 KiB).
const PageSize = 65536

type freeBlock struct {
	offset uint32
	size   uint32
}

// Allocator hands out blocks of guest linear memory. It is the guest-side
// implementation of the allocate/deallocate exports: first-fit over a free
// list, growing the memory by whole pages when no block fits.
//
// Block metadata lives on the Go side rather than in headers inside the
// linear memory, so the host can never corrupt it.
type Allocator struct {
	mem       Memory
	next      uint32            // bump pointer above all freed blocks
	free      []freeBlock       // sorted by offset, adjacent blocks coalesced
	allocated map[uint32]uint32 // offset -> size
}

// NewAllocator creates an allocator over the given linear memory.
func NewAllocator(mem Memory) *Allocator {
	return &Allocator{
		mem:       mem,
		next:      heapBase,
		allocated: make(map[uint32]uint32),
	}
}

// Allocate reserves size bytes and returns their offset. Zero-size requests
// reserve a single byte so that every allocation has a distinct address.
func (a *Allocator) Allocate(size uint32) (uint32, error) {
	if size == 0 {
		size = 1
	}

	// First fit from the free list.
	for i, blk := range a.free {
		if blk.size >= size {
			a.free = append(a.free[:i], a.free[i+1:]...)
			if rest := blk.size - size; rest > 0 {
				a.insertFree(freeBlock{offset: blk.offset + size, size: rest})
			}
			a.allocated[blk.offset] = size
			return blk.offset, nil
		}
	}

	// Bump allocate, growing the memory as needed.
	offset := a.next
	end := uint64(offset) + uint64(size)
	if end > uint64(a.mem.Size()) {
		needed := end - uint64(a.mem.Size())
		pages := uint32((needed + PageSize - 1) / PageSize)
		if !a.mem.Grow(pages) {
			return 0, fmt.Errorf("%w: cannot grow by %d pages", ErrOutOfMemory, pages)
		}
	}
	a.next = uint32(end)
	a.allocated[offset] = size
	return offset, nil
}

// Free releases a previously allocated block.
func (a *Allocator) Free(offset uint32) error {
	size, ok := a.allocated[offset]
	if !ok {
		return fmt.Errorf("%w: offset %d", ErrInvalidFree, offset)
	}
	delete(a.allocated, offset)
	a.insertFree(freeBlock{offset: offset, size: size})
	return nil
}

// AllocatedSize returns the size of the block at offset, or false if the
// offset is not a live allocation.
func (a *Allocator) AllocatedSize(offset uint32) (uint32, bool) {
	size, ok := a.allocated[offset]
	return size, ok
}

// LiveAllocations returns the number of outstanding blocks. Used by tests to
// verify the consume-exactly-once discipline leaks nothing.
func (a *Allocator) LiveAllocations() int {
	return len(a.allocated)
}

func (a *Allocator) insertFree(blk freeBlock) {
	i := sort.Search(len(a.free), func(i int) bool { return a.free[i].offset > blk.offset })
	a.free = append(a.free, freeBlock{})
	copy(a.free[i+1:], a.free[i:])
	a.free[i] = blk

	// Coalesce with the right neighbor, then the left one.
	if i+1 < len(a.free) && a.free[i].offset+a.free[i].size == a.free[i+1].offset {
		a.free[i].size += a.free[i+1].size
		a.free = append(a.free[:i+1], a.free[i+2:]...)
	}
	if i > 0 && a.free[i-1].offset+a.free[i-1].size == a.free[i].offset {
		a.free[i-1].size += a.free[i].size
		a.free = append(a.free[:i], a.free[i+1:]...)
	}
}
