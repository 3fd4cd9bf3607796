package memory

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManagerBuildAndConsumeRegion(t *testing.T) {
	m := NewManager(newTestMemory(16))
	payload := []byte("the quick brown fox")

	regionPtr, err := m.BuildRegion(payload)
	require.NoError(t, err)
	require.NotZero(t, regionPtr)

	region, err := m.ReadRegion(regionPtr)
	require.NoError(t, err)
	require.Equal(t, uint32(len(payload)), region.Capacity)
	require.Equal(t, uint32(len(payload)), region.Length)

	got, err := m.ConsumeRegion(regionPtr)
	require.NoError(t, err)
	require.Equal(t, payload, got)
	require.Equal(t, 0, m.Allocator().LiveAllocations())
}

func TestManagerConsumeRegionExactlyOnce(t *testing.T) {
	m := NewManager(newTestMemory(16))

	regionPtr, err := m.BuildRegion([]byte("data"))
	require.NoError(t, err)

	_, err = m.ConsumeRegion(regionPtr)
	require.NoError(t, err)

	// A second consume of the same address must fail instead of double-freeing.
	_, err = m.ConsumeRegion(regionPtr)
	require.Error(t, err)
}

func TestManagerConsumeReturnsOwnedCopy(t *testing.T) {
	m := NewManager(newTestMemory(16))

	regionPtr, err := m.BuildRegion([]byte("original"))
	require.NoError(t, err)
	region, err := m.ReadRegion(regionPtr)
	require.NoError(t, err)

	got, err := m.ConsumeRegion(regionPtr)
	require.NoError(t, err)

	// Overwriting the freed memory must not change the consumed slice.
	require.NoError(t, m.Write(region.Offset, bytes.Repeat([]byte{0xFF}, len("original"))))
	require.Equal(t, []byte("original"), got)
}

func TestManagerAllocProducesWriteTarget(t *testing.T) {
	m := NewManager(newTestMemory(16))

	regionPtr, err := m.Alloc(64)
	require.NoError(t, err)

	region, err := m.ReadRegion(regionPtr)
	require.NoError(t, err)
	require.Equal(t, uint32(64), region.Capacity)
	require.Equal(t, uint32(0), region.Length)

	// Simulate the host filling the buffer and updating the length.
	require.NoError(t, m.Write(region.Offset, []byte("filled")))
	region.Length = 6
	require.NoError(t, m.WriteRegion(regionPtr, region))

	got, err := m.ConsumeRegion(regionPtr)
	require.NoError(t, err)
	require.Equal(t, []byte("filled"), got)
}

func TestManagerBuildOptionalRegion(t *testing.T) {
	m := NewManager(newTestMemory(16))

	// nil maps to the reserved "no region" address.
	ptr, err := m.BuildOptionalRegion(nil)
	require.NoError(t, err)
	require.Equal(t, uint32(0), ptr)
	require.Equal(t, 0, m.Allocator().LiveAllocations())

	// An empty-but-present slice becomes a real zero-length region.
	ptr, err = m.BuildOptionalRegion([]byte{})
	require.NoError(t, err)
	require.NotZero(t, ptr)
	region, err := m.ReadRegion(ptr)
	require.NoError(t, err)
	require.Equal(t, uint32(0), region.Length)
}

func TestManagerFreeRegion(t *testing.T) {
	m := NewManager(newTestMemory(16))

	regionPtr, err := m.BuildRegion([]byte("send only"))
	require.NoError(t, err)
	require.Equal(t, 2, m.Allocator().LiveAllocations())

	require.NoError(t, m.FreeRegion(regionPtr))
	require.Equal(t, 0, m.Allocator().LiveAllocations())
	require.Error(t, m.FreeRegion(regionPtr))
}

func TestManagerReadRegionValidates(t *testing.T) {
	m := NewManager(newTestMemory(16))

	regionPtr, err := m.BuildRegion([]byte("abc"))
	require.NoError(t, err)

	// Corrupt the descriptor so length exceeds capacity.
	bad := Region{Offset: 2048, Capacity: 2, Length: 9}
	require.NoError(t, m.WriteRegion(regionPtr, bad))
	_, err = m.ReadRegion(regionPtr)
	require.ErrorIs(t, err, ErrInvalidRegion)
}

func TestManagerReadOutOfBounds(t *testing.T) {
	m := NewManager(newTestMemory(1))
	_, err := m.Read(0, 10)
	require.ErrorIs(t, err, ErrInvalidMemoryAccess)
}
