package memory

import "errors"

var (
	// ErrInvalidMemoryAccess is returned for reads or writes outside the linear memory
	ErrInvalidMemoryAccess = errors.New("invalid memory access")
	// ErrInvalidRegion is returned when a region descriptor violates its invariants
	ErrInvalidRegion = errors.New("invalid region")
	// ErrOutOfMemory is returned when the allocator cannot grow the linear memory
	ErrOutOfMemory = errors.New("out of memory")
	// ErrInvalidFree is returned when freeing an offset that is not an allocated block
	ErrInvalidFree = errors.New("free of unallocated offset")
)
