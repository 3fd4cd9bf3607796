package cosmwasm

import (
	"github.com/kromsten/cosmwasm/internal/sections"
	"github.com/kromsten/cosmwasm/types"
)

// maxAddressInputLength mirrors the host's limit on human readable address
// inputs. Longer inputs are rejected locally so the caller gets an ordinary
// error instead of a host-side refusal to read the region.
const maxAddressInputLength = 256

// An upper bound for typical canonical address lengths (e.g. 20 in Cosmos SDK/Ethereum or 32 in Nano/Substrate)
const canonicalAddressBufferLength = 64

// An upper bound for typical human readable address formats (e.g. 42 for Ethereum hex addresses or 90 for bech32)
const humanAddressBufferLength = 90

// ExternalAPI is a stateless wrapper around the address, crypto and gas
// imports.
type ExternalAPI struct {
	env *Environment
}

// AddrValidate checks that input is a valid address on the current chain and
// returns it unchanged.
func (a *ExternalAPI) AddrValidate(input string) (types.HumanAddress, error) {
	if len(input) > maxAddressInputLength {
		return "", types.NewGenericError("input too long for addr_validate")
	}
	sourcePtr := a.env.mustBuildRegion([]byte(input))
	result := a.env.host.AddrValidate(sourcePtr)
	a.env.mustFreeRegion(sourcePtr)

	if result != 0 {
		return "", types.NewGenericError("addr_validate errored: %s", a.env.mustConsumeString(result))
	}
	return input, nil
}

// AddrCanonicalize converts a human readable address into its binary
// representation.
func (a *ExternalAPI) AddrCanonicalize(input string) (types.CanonicalAddress, error) {
	if len(input) > maxAddressInputLength {
		return nil, types.NewGenericError("input too long for addr_canonicalize")
	}
	sourcePtr := a.env.mustBuildRegion([]byte(input))
	destinationPtr := a.env.mustAlloc(canonicalAddressBufferLength)
	result := a.env.host.AddrCanonicalize(sourcePtr, destinationPtr)
	a.env.mustFreeRegion(sourcePtr)

	if result != 0 {
		a.env.mustFreeRegion(destinationPtr)
		return nil, types.NewGenericError("addr_canonicalize errored: %s", a.env.mustConsumeString(result))
	}
	return a.env.mustConsumeRegion(destinationPtr), nil
}

// AddrHumanize converts a canonical address back into its human readable
// form.
func (a *ExternalAPI) AddrHumanize(canonical types.CanonicalAddress) (types.HumanAddress, error) {
	sourcePtr := a.env.mustBuildRegion(canonical)
	destinationPtr := a.env.mustAlloc(humanAddressBufferLength)
	result := a.env.host.AddrHumanize(sourcePtr, destinationPtr)
	a.env.mustFreeRegion(sourcePtr)

	if result != 0 {
		a.env.mustFreeRegion(destinationPtr)
		return "", types.NewGenericError("addr_humanize errored: %s", a.env.mustConsumeString(result))
	}
	return a.env.mustConsumeString(destinationPtr), nil
}

// Secp256k1Verify checks a 64-byte r||s signature over a 32-byte message
// hash against a compressed or uncompressed public key, using the secp256k1
// ECDSA parametrization.
func (a *ExternalAPI) Secp256k1Verify(messageHash, signature, publicKey []byte) (bool, error) {
	hashPtr := a.env.mustBuildRegion(messageHash)
	signaturePtr := a.env.mustBuildRegion(signature)
	publicKeyPtr := a.env.mustBuildRegion(publicKey)
	result := a.env.host.Secp256k1Verify(hashPtr, signaturePtr, publicKeyPtr)
	a.env.mustFreeRegion(publicKeyPtr)
	a.env.mustFreeRegion(signaturePtr)
	a.env.mustFreeRegion(hashPtr)

	switch result {
	case 0:
		return true, nil
	case 1:
		return false, nil
	case 2:
		a.env.Abort("secp256k1_verify: MessageTooLong must not happen. This is a bug in the host.")
		panic("unreachable")
	case 3:
		return false, types.ErrInvalidHashFormat
	case 4:
		return false, types.ErrInvalidSignatureFormat
	case 5:
		return false, types.ErrInvalidPubkeyFormat
	case 10:
		return false, types.ErrVerificationFailed
	default:
		return false, types.UnknownHostError{Source: "secp256k1_verify", Code: result}
	}
}

// Secp256k1RecoverPubkey recovers the uncompressed public key that signed
// the message hash. recoveryParam must be 0, 1, 2 or 3.
func (a *ExternalAPI) Secp256k1RecoverPubkey(messageHash, signature []byte, recoveryParam uint8) ([]byte, error) {
	hashPtr := a.env.mustBuildRegion(messageHash)
	signaturePtr := a.env.mustBuildRegion(signature)
	packed := a.env.host.Secp256k1RecoverPubkey(hashPtr, signaturePtr, uint32(recoveryParam))
	a.env.mustFreeRegion(signaturePtr)
	a.env.mustFreeRegion(hashPtr)

	code := fromHighHalf(packed)
	resultPtr := fromLowHalf(packed)
	switch code {
	case 0:
		return a.env.mustConsumeRegion(resultPtr), nil
	case 2:
		a.env.Abort("secp256k1_recover_pubkey: MessageTooLong must not happen. This is a bug in the host.")
		panic("unreachable")
	case 3:
		return nil, types.ErrInvalidHashFormat
	case 4:
		return nil, types.ErrInvalidSignatureFormat
	case 6:
		return nil, types.ErrInvalidRecoveryParam
	default:
		return nil, types.UnknownHostError{Source: "secp256k1_recover_pubkey", Code: code}
	}
}

// Secp256k1Sign signs the message with a 32-byte private key, returning the
// 64-byte r||s signature.
func (a *ExternalAPI) Secp256k1Sign(message, privateKey []byte) ([]byte, error) {
	return a.sign("secp256k1_sign", a.env.host.Secp256k1Sign, message, privateKey)
}

// Ed25519Sign signs the message with a 32-byte seed private key, using the
// ed25519 EdDSA scheme.
func (a *ExternalAPI) Ed25519Sign(message, privateKey []byte) ([]byte, error) {
	return a.sign("ed25519_sign", a.env.host.Ed25519Sign, message, privateKey)
}

// sign shares the staging and packed-return handling of the two signing
// imports, which use the same code table.
func (a *ExternalAPI) sign(source string, call func(messagePtr, privateKeyPtr uint32) uint64, message, privateKey []byte) ([]byte, error) {
	messagePtr := a.env.mustBuildRegion(message)
	privateKeyPtr := a.env.mustBuildRegion(privateKey)
	packed := call(messagePtr, privateKeyPtr)
	a.env.mustFreeRegion(privateKeyPtr)
	a.env.mustFreeRegion(messagePtr)

	code := fromHighHalf(packed)
	resultPtr := fromLowHalf(packed)
	switch code {
	case 0:
		return a.env.mustConsumeRegion(resultPtr), nil
	case 1000:
		return nil, types.ErrInvalidPrivateKeyFormat
	default:
		return nil, types.UnknownHostError{Source: source, Code: code}
	}
}

// Ed25519Verify checks an ed25519 signature over the raw (unhashed) message.
func (a *ExternalAPI) Ed25519Verify(message, signature, publicKey []byte) (bool, error) {
	messagePtr := a.env.mustBuildRegion(message)
	signaturePtr := a.env.mustBuildRegion(signature)
	publicKeyPtr := a.env.mustBuildRegion(publicKey)
	result := a.env.host.Ed25519Verify(messagePtr, signaturePtr, publicKeyPtr)
	a.env.mustFreeRegion(publicKeyPtr)
	a.env.mustFreeRegion(signaturePtr)
	a.env.mustFreeRegion(messagePtr)

	return a.interpretEd25519Result("ed25519_verify", result)
}

// Ed25519BatchVerify checks a batch of messages, signatures and public keys
// in one host call. The three lists are flattened with the sections encoding
// before crossing the boundary.
func (a *ExternalAPI) Ed25519BatchVerify(messages, signatures, publicKeys [][]byte) (bool, error) {
	messagesPtr := a.env.mustBuildRegion(sections.Encode(messages))
	signaturesPtr := a.env.mustBuildRegion(sections.Encode(signatures))
	publicKeysPtr := a.env.mustBuildRegion(sections.Encode(publicKeys))
	result := a.env.host.Ed25519BatchVerify(messagesPtr, signaturesPtr, publicKeysPtr)
	a.env.mustFreeRegion(publicKeysPtr)
	a.env.mustFreeRegion(signaturesPtr)
	a.env.mustFreeRegion(messagesPtr)

	return a.interpretEd25519Result("ed25519_batch_verify", result)
}

func (a *ExternalAPI) interpretEd25519Result(source string, result uint32) (bool, error) {
	switch result {
	case 0:
		return true, nil
	case 1:
		return false, nil
	case 2:
		a.env.Abort(source + ": error code 2 is unused. This is a bug in the host.")
		panic("unreachable")
	case 3:
		a.env.Abort(source + ": InvalidHashFormat must not happen. This is a bug in the host.")
		panic("unreachable")
	case 4:
		return false, types.ErrInvalidSignatureFormat
	case 5:
		return false, types.ErrInvalidPubkeyFormat
	case 10:
		return false, types.ErrVerificationFailed
	default:
		return false, types.UnknownHostError{Source: source, Code: result}
	}
}

// Debug hands a message to the host's debug sink.
func (a *ExternalAPI) Debug(message string) {
	a.env.Debug(message)
}

// CheckGas returns the gas remaining for this invocation. The host reserves
// the value 0 to signal that the call itself failed; a running invocation
// never legitimately observes exactly zero remaining gas, since the call has
// a nonzero cost.
func (a *ExternalAPI) CheckGas() (types.Gas, error) {
	result := a.env.host.CheckGas()
	if result == 0 {
		return 0, types.NewGenericError("check_gas errored")
	}
	return result, nil
}

// GasEvaporate burns the given amount of gas without doing work.
func (a *ExternalAPI) GasEvaporate(amount uint32) error {
	if result := a.env.host.GasEvaporate(amount); result != 0 {
		return types.NewGenericError("gas_evaporate errored: %d", result)
	}
	return nil
}
