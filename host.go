package cosmwasm

// Host is the complete table of functions the guest imports from its
// environment, by numeric signature. All parameters and results are 32- or
// 64-bit integers; pointers are addresses of Region descriptors in guest
// linear memory, and the address 0 means "no region".
//
// This is the single seam between the typed wrappers and the environment:
// a wasm build wires these to the real imports, vmtest.MockHost implements
// them in process.
type Host interface {
	// DBRead returns the address of a region holding the value for the key
	// region, or 0 when the key does not exist.
	DBRead(keyPtr uint32) uint32
	// DBWrite stores the value region's content under the key region's content.
	DBWrite(keyPtr, valuePtr uint32)
	// DBRemove deletes the key region's content from storage.
	DBRemove(keyPtr uint32)
	// DBScan creates an iterator over [start, end) and returns its id.
	// Bound addresses may be 0 for an unbounded side.
	DBScan(startPtr, endPtr uint32, order int32) uint32
	// DBNext returns the address of a region holding the two-section
	// encoding of the next key/value pair. An empty key signals exhaustion.
	DBNext(iteratorID uint32) uint32

	// AddrValidate returns 0 on success or the address of an error-string region.
	AddrValidate(sourcePtr uint32) uint32
	// AddrCanonicalize writes the canonical form into the destination region.
	// Returns 0 on success or the address of an error-string region.
	AddrCanonicalize(sourcePtr, destinationPtr uint32) uint32
	// AddrHumanize writes the human form into the destination region.
	// Returns 0 on success or the address of an error-string region.
	AddrHumanize(sourcePtr, destinationPtr uint32) uint32

	// Secp256k1Verify returns 0 on match, 1 on mismatch, and an error code
	// greater than 1 otherwise.
	Secp256k1Verify(hashPtr, signaturePtr, publicKeyPtr uint32) uint32
	// Secp256k1RecoverPubkey returns an error code in the high half and the
	// recovered key's region address in the low half.
	Secp256k1RecoverPubkey(hashPtr, signaturePtr uint32, recoveryParam uint32) uint64
	// Secp256k1Sign returns an error code in the high half and the
	// signature's region address in the low half.
	Secp256k1Sign(messagePtr, privateKeyPtr uint32) uint64
	// Ed25519Verify returns 0 on match, 1 on mismatch, and an error code
	// greater than 1 otherwise.
	Ed25519Verify(messagePtr, signaturePtr, publicKeyPtr uint32) uint32
	// Ed25519BatchVerify takes three sections-encoded lists and returns
	// codes like Ed25519Verify.
	Ed25519BatchVerify(messagesPtr, signaturesPtr, publicKeysPtr uint32) uint32
	// Ed25519Sign returns an error code in the high half and the signature's
	// region address in the low half.
	Ed25519Sign(messagePtr, privateKeyPtr uint32) uint64

	// Debug hands a UTF-8 message to the host, which is free to discard it.
	Debug(messagePtr uint32)
	// QueryChain returns the address of a region holding the JSON-encoded
	// QuerierResult for the request region.
	QueryChain(requestPtr uint32) uint32

	// CheckGas returns the remaining gas. The host reserves 0 to signal
	// failure of the call itself.
	CheckGas() uint64
	// GasEvaporate burns the given amount, returning 0 on success.
	GasEvaporate(amount uint32) uint32

	// Abort reports a fatal guest condition to the host. It may not return.
	Abort(messagePtr uint32)
}
