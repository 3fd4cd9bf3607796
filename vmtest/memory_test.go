package vmtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kromsten/cosmwasm/internal/memory"
)

func TestLinearMemoryGrowAndAccess(t *testing.T) {
	mem := NewLinearMemory()
	require.Equal(t, uint32(0), mem.Size())

	// Out of range until grown.
	_, ok := mem.Read(0, 1)
	require.False(t, ok)
	require.False(t, mem.Write(0, []byte{1}))

	require.True(t, mem.Grow(2))
	require.Equal(t, uint32(2*memory.PageSize), mem.Size())

	require.True(t, mem.Write(100, []byte("hello")))
	data, ok := mem.Read(100, 5)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), data)

	// Reads crossing the end fail.
	_, ok = mem.Read(mem.Size()-2, 4)
	require.False(t, ok)
	require.False(t, mem.Write(mem.Size()-2, []byte("1234")))
}

func TestLinearMemoryGrowLimit(t *testing.T) {
	mem := NewLinearMemoryWithLimit(2)
	require.True(t, mem.Grow(2))
	require.False(t, mem.Grow(1))
	require.Equal(t, uint32(2*memory.PageSize), mem.Size())
}

func TestMockAddressScheme(t *testing.T) {
	canon, err := MockCanonicalizeAddress("alice")
	require.NoError(t, err)
	require.Len(t, canon, CanonicalLength)

	human, err := MockHumanizeAddress(canon)
	require.NoError(t, err)
	require.Equal(t, "alice", human)

	require.NoError(t, MockValidateAddress("alice"))
	require.Error(t, MockValidateAddress(""))
	_, err = MockCanonicalizeAddress(string(make([]byte, CanonicalLength+1)))
	require.Error(t, err)
	_, err = MockHumanizeAddress([]byte("short"))
	require.Error(t, err)
}
