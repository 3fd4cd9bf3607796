// Package types provides the shared types of the guest/host boundary:
// typed error values for host-reported codes, iteration orders and records,
// and the query result envelopes.
package types

// HumanAddress is a printable (typically bech32 encoded) address string.
// Just use it as a label for developers.
type HumanAddress = string

// CanonicalAddress is the binary representation of an address, using the
// host's canonical encoding. Just use it as a label for developers.
type CanonicalAddress = []byte
