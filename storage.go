package cosmwasm

import (
	"fmt"

	"github.com/kromsten/cosmwasm/internal/sections"
	"github.com/kromsten/cosmwasm/types"
)

// ExternalStorage is a stateless wrapper around the storage imports. Each
// call stages its inputs as fresh regions and releases them before
// returning.
type ExternalStorage struct {
	env *Environment
}

// Get returns the value stored under key, or nil when the key is absent.
func (s *ExternalStorage) Get(key []byte) []byte {
	keyPtr := s.env.mustBuildRegion(key)
	resultPtr := s.env.host.DBRead(keyPtr)
	s.env.mustFreeRegion(keyPtr)

	if resultPtr == 0 {
		// key does not exist in external storage
		return nil
	}
	return s.env.mustConsumeRegion(resultPtr)
}

// Set persists value under key. Empty values are rejected here, before any
// host interaction: the host's interfaces cannot tell a non-existent key
// from an empty value, so storing one would make later reads unreliable.
// Use Remove to delete a key.
func (s *ExternalStorage) Set(key, value []byte) error {
	if len(value) == 0 {
		return types.NewGenericError("value must not be empty in Storage.Set; use Storage.Remove to delete a key")
	}

	keyPtr := s.env.mustBuildRegion(key)
	valuePtr := s.env.mustBuildRegion(value)
	s.env.host.DBWrite(keyPtr, valuePtr)
	s.env.mustFreeRegion(valuePtr)
	s.env.mustFreeRegion(keyPtr)
	return nil
}

// Remove deletes the key. Removing an absent key is a no-op.
func (s *ExternalStorage) Remove(key []byte) {
	keyPtr := s.env.mustBuildRegion(key)
	s.env.host.DBRemove(keyPtr)
	s.env.mustFreeRegion(keyPtr)
}

// Range creates an iterator over the half-open interval [start, end) in the
// given order. A nil bound is unbounded and crosses the boundary as the
// address 0, distinct from an empty non-nil bound, which crosses as a real
// region of length 0.
func (s *ExternalStorage) Range(start, end []byte, order types.Order) *ExternalIterator {
	startPtr := s.env.mustBuildOptionalRegion(start)
	endPtr := s.env.mustBuildOptionalRegion(end)
	iteratorID := s.env.host.DBScan(startPtr, endPtr, int32(order))
	s.env.mustFreeOptionalRegion(endPtr)
	s.env.mustFreeOptionalRegion(startPtr)

	if iteratorID == 0 {
		// The host failed to create the cursor. There is no recoverable
		// error channel for scans.
		s.env.Abort(fmt.Sprintf("db_scan failed for order %d", order))
	}
	return &ExternalIterator{env: s.env, iteratorID: iteratorID}
}

// ExternalIterator is a forward-only, non-restartable view of a host-side
// cursor. Each Next is one host round-trip fetching a single key/value pair;
// a pair with an empty key is the host's end-of-sequence sentinel. (The
// protocol cannot represent a legitimately-empty stored key for this
// reason; empty values are already forbidden by Set.)
type ExternalIterator struct {
	env        *Environment
	iteratorID uint32
	exhausted  bool
}

// Next returns the next record, or false once the sequence is exhausted.
// After exhaustion it keeps returning false without calling the host.
func (it *ExternalIterator) Next() (types.Record, bool) {
	if it.exhausted {
		return types.Record{}, false
	}

	kvPtr := it.env.host.DBNext(it.iteratorID)
	kv := it.env.mustConsumeRegion(kvPtr)
	key, value, err := sections.DecodeTwo(kv)
	if err != nil {
		it.env.Abort("db_next returned a malformed key/value pair: " + err.Error())
	}
	if len(key) == 0 {
		it.exhausted = true
		return types.Record{}, false
	}
	return types.Record{Key: key, Value: value}, true
}
