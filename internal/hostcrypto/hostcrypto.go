// Package hostcrypto implements the host side of the crypto imports with the
// boundary protocol's numeric code tables. It backs both the mock host used
// in tests and the wazero host binding.
package hostcrypto

import (
	"crypto/ed25519"
	"crypto/sha256"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// Result codes shared by the verify calls.
const (
	CodeOK             = 0
	CodeMismatch       = 1
	CodeMessageTooLong = 2 // reserved; reported only for host-internal bugs
	CodeInvalidHash    = 3
	CodeInvalidSig     = 4
	CodeInvalidPubkey  = 5
	CodeInvalidParam   = 6
	CodeGenericErr     = 10
	CodeInvalidPrivkey = 1000
)

const (
	hashLen       = 32
	signatureLen  = 64
	privateKeyLen = 32
)

// Secp256k1Verify checks a 64-byte r||s signature over a 32-byte message
// hash against a compressed or uncompressed public key.
func Secp256k1Verify(messageHash, signature, publicKey []byte) uint32 {
	if len(messageHash) != hashLen {
		return CodeInvalidHash
	}
	if len(signature) != signatureLen {
		return CodeInvalidSig
	}
	pubKey, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return CodeInvalidPubkey
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow {
		return CodeInvalidSig
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow {
		return CodeInvalidSig
	}
	if secpecdsa.NewSignature(&r, &s).Verify(messageHash, pubKey) {
		return CodeOK
	}
	return CodeMismatch
}

// Secp256k1RecoverPubkey recovers the uncompressed public key that signed
// the given message hash. On success the code is 0 and the key is returned.
func Secp256k1RecoverPubkey(messageHash, signature []byte, recoveryParam uint32) ([]byte, uint32) {
	if recoveryParam > 3 {
		return nil, CodeInvalidParam
	}
	if len(messageHash) != hashLen {
		return nil, CodeInvalidHash
	}
	if len(signature) != signatureLen {
		return nil, CodeInvalidSig
	}
	// RecoverCompact expects the recovery code in the leading byte.
	compact := make([]byte, 1+signatureLen)
	compact[0] = byte(27 + recoveryParam)
	copy(compact[1:], signature)
	pubKey, _, err := secpecdsa.RecoverCompact(compact, messageHash)
	if err != nil {
		return nil, CodeGenericErr
	}
	return pubKey.SerializeUncompressed(), CodeOK
}

// Secp256k1Sign signs sha256(message) with a 32-byte private key and returns
// the 64-byte r||s signature.
func Secp256k1Sign(message, privateKey []byte) ([]byte, uint32) {
	if len(privateKey) != privateKeyLen {
		return nil, CodeInvalidPrivkey
	}
	privKey := secp256k1.PrivKeyFromBytes(privateKey)
	if privKey.Key.IsZero() {
		return nil, CodeInvalidPrivkey
	}
	hash := sha256.Sum256(message)
	compact := secpecdsa.SignCompact(privKey, hash[:], false)
	// Strip the recovery byte, keeping r||s.
	return compact[1:], CodeOK
}

// Ed25519Verify checks an ed25519 signature over the raw (unhashed) message.
func Ed25519Verify(message, signature, publicKey []byte) uint32 {
	if len(signature) != ed25519.SignatureSize {
		return CodeInvalidSig
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return CodeInvalidPubkey
	}
	if ed25519.Verify(ed25519.PublicKey(publicKey), message, signature) {
		return CodeOK
	}
	return CodeMismatch
}

// Ed25519BatchVerify checks a batch of messages/signatures/keys. The batch
// is valid when all lists have equal length, or a single key (or message) is
// broadcast against the other lists. An empty batch verifies trivially.
func Ed25519BatchVerify(messages, signatures, publicKeys [][]byte) uint32 {
	n := len(signatures)
	switch {
	case len(messages) == n && len(publicKeys) == n: // all equal
	case len(messages) == 1 && len(publicKeys) == n:
		broadcast := messages[0]
		messages = make([][]byte, n)
		for i := range messages {
			messages[i] = broadcast
		}
	case len(messages) == n && len(publicKeys) == 1:
		broadcast := publicKeys[0]
		publicKeys = make([][]byte, n)
		for i := range publicKeys {
			publicKeys[i] = broadcast
		}
	default:
		return CodeGenericErr
	}
	for i := 0; i < n; i++ {
		switch code := Ed25519Verify(messages[i], signatures[i], publicKeys[i]); code {
		case CodeOK:
		default:
			return code
		}
	}
	return CodeOK
}

// Ed25519Sign signs the raw message with a 32-byte seed private key.
func Ed25519Sign(message, privateKey []byte) ([]byte, uint32) {
	if len(privateKey) != ed25519.SeedSize {
		return nil, CodeInvalidPrivkey
	}
	key := ed25519.NewKeyFromSeed(privateKey)
	return ed25519.Sign(key, message), CodeOK
}
