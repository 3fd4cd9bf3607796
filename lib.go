// Package cosmwasm is the guest side of the boundary between a sandboxed
// wasm module and its host environment. Only primitive integers cross the
// boundary directly; this package implements the protocol layered on top:
// region descriptors for byte buffers in guest memory, the allocation and
// ownership handshake for buffers written by either side, the packed
// dual-value return encoding, the sections encoding for batched buffers,
// and the mapping from host error codes to typed errors.
//
// The host's capability functions are described by the Host interface. A
// production build supplies the real wasm imports; the vmtest package
// supplies an in-memory host for tests.
package cosmwasm

import (
	"github.com/kromsten/cosmwasm/internal/memory"
	"github.com/kromsten/cosmwasm/types"
)

// Memory is the guest's linear memory. The production implementation is the
// wasm instance's own memory; vmtest.LinearMemory is an in-process arena.
type Memory = memory.Memory

// MemoryManager combines the linear memory with the guest allocator and the
// region lifecycle operations. In-process hosts (like the mock) use it to
// access guest memory the way a real VM would.
type MemoryManager = memory.Manager

// Storage is the guest's view of the host's key/value store.
type Storage interface {
	// Get returns the value stored under key, or nil when the key is absent.
	Get(key []byte) []byte
	// Set persists value under key. Empty values are rejected before any
	// host interaction.
	Set(key, value []byte) error
	// Remove deletes the key. Removing an absent key is a no-op.
	Remove(key []byte)
	// Range iterates over the half-open interval [start, end) in the given
	// order. A nil bound is unbounded; an empty non-nil bound is a real
	// (empty) bound.
	Range(start, end []byte, order types.Order) *ExternalIterator
}

// API is the guest's view of the host's address and crypto capabilities.
type API interface {
	AddrValidate(input string) (types.HumanAddress, error)
	AddrCanonicalize(input string) (types.CanonicalAddress, error)
	AddrHumanize(canonical types.CanonicalAddress) (types.HumanAddress, error)
	Secp256k1Verify(messageHash, signature, publicKey []byte) (bool, error)
	Secp256k1RecoverPubkey(messageHash, signature []byte, recoveryParam uint8) ([]byte, error)
	Secp256k1Sign(message, privateKey []byte) ([]byte, error)
	Ed25519Verify(message, signature, publicKey []byte) (bool, error)
	Ed25519BatchVerify(messages, signatures, publicKeys [][]byte) (bool, error)
	Ed25519Sign(message, privateKey []byte) ([]byte, error)
	Debug(message string)
	CheckGas() (types.Gas, error)
	GasEvaporate(amount uint32) error
}

// Querier executes chain queries through the host.
type Querier interface {
	// RawQuery sends opaque request bytes and returns the host's decoded
	// response envelope. Errors are part of the envelope, not a Go error.
	RawQuery(request []byte) types.QuerierResult
}

var (
	_ Storage = (*ExternalStorage)(nil)
	_ API     = (*ExternalAPI)(nil)
	_ Querier = (*ExternalQuerier)(nil)
)
