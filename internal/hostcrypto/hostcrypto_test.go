package hostcrypto

import (
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

func secpFixture(t *testing.T, message []byte) (hash, signature, pubCompressed, pubUncompressed, seed []byte) {
	t.Helper()
	privKey, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	digest := sha256.Sum256(message)
	signature, code := Secp256k1Sign(message, privKey.Serialize())
	require.Equal(t, uint32(CodeOK), code)
	pub := privKey.PubKey()
	return digest[:], signature, pub.SerializeCompressed(), pub.SerializeUncompressed(), privKey.Serialize()
}

func TestSecp256k1SignVerifyRoundTrip(t *testing.T) {
	message := []byte("sign me")
	hash, signature, compressed, uncompressed, _ := secpFixture(t, message)

	require.Equal(t, uint32(CodeOK), Secp256k1Verify(hash, signature, compressed))
	require.Equal(t, uint32(CodeOK), Secp256k1Verify(hash, signature, uncompressed))

	otherHash := sha256.Sum256([]byte("different message"))
	require.Equal(t, uint32(CodeMismatch), Secp256k1Verify(otherHash[:], signature, compressed))
}

func TestSecp256k1VerifyRejectsMalformedInputs(t *testing.T) {
	hash, signature, pubkey, _, _ := secpFixture(t, []byte("msg"))

	require.Equal(t, uint32(CodeInvalidHash), Secp256k1Verify(hash[:31], signature, pubkey))
	require.Equal(t, uint32(CodeInvalidSig), Secp256k1Verify(hash, signature[:63], pubkey))
	require.Equal(t, uint32(CodeInvalidPubkey), Secp256k1Verify(hash, signature, []byte{1, 2, 3}))
}

func TestSecp256k1RecoverPubkey(t *testing.T) {
	message := []byte("recover me")
	hash, signature, _, uncompressed, _ := secpFixture(t, message)

	// One of the two low recovery params yields the signing key.
	var recovered []byte
	for param := uint32(0); param < 2; param++ {
		key, code := Secp256k1RecoverPubkey(hash, signature, param)
		if code == CodeOK && string(key) == string(uncompressed) {
			recovered = key
		}
	}
	require.Equal(t, uncompressed, recovered)
}

func TestSecp256k1RecoverPubkeyRejectsMalformedInputs(t *testing.T) {
	hash, signature, _, _, _ := secpFixture(t, []byte("msg"))

	_, code := Secp256k1RecoverPubkey(hash, signature, 4)
	require.Equal(t, uint32(CodeInvalidParam), code)
	_, code = Secp256k1RecoverPubkey(hash[:10], signature, 0)
	require.Equal(t, uint32(CodeInvalidHash), code)
	_, code = Secp256k1RecoverPubkey(hash, signature[:10], 0)
	require.Equal(t, uint32(CodeInvalidSig), code)
}

func TestSecp256k1SignRejectsBadKeys(t *testing.T) {
	_, code := Secp256k1Sign([]byte("msg"), make([]byte, 31))
	require.Equal(t, uint32(CodeInvalidPrivkey), code)
	_, code = Secp256k1Sign([]byte("msg"), make([]byte, 32))
	require.Equal(t, uint32(CodeInvalidPrivkey), code)
}

func TestEd25519SignVerifyRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	message := []byte("ed25519 message")

	signature, code := Ed25519Sign(message, priv.Seed())
	require.Equal(t, uint32(CodeOK), code)
	require.Equal(t, uint32(CodeOK), Ed25519Verify(message, signature, pub))
	require.Equal(t, uint32(CodeMismatch), Ed25519Verify([]byte("other"), signature, pub))
}

func TestEd25519VerifyRejectsMalformedInputs(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	require.Equal(t, uint32(CodeInvalidSig), Ed25519Verify([]byte("m"), make([]byte, 63), pub))
	require.Equal(t, uint32(CodeInvalidPubkey), Ed25519Verify([]byte("m"), make([]byte, 64), pub[:31]))
}

func TestEd25519SignRejectsBadSeed(t *testing.T) {
	_, code := Ed25519Sign([]byte("m"), make([]byte, 16))
	require.Equal(t, uint32(CodeInvalidPrivkey), code)
}

func TestEd25519BatchVerify(t *testing.T) {
	makePair := func(message []byte) (sig, pub []byte) {
		p, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		return ed25519.Sign(priv, message), p
	}

	m1, m2 := []byte("first"), []byte("second")
	sig1, pub1 := makePair(m1)
	sig2, pub2 := makePair(m2)

	t.Run("equal lengths", func(t *testing.T) {
		code := Ed25519BatchVerify([][]byte{m1, m2}, [][]byte{sig1, sig2}, [][]byte{pub1, pub2})
		require.Equal(t, uint32(CodeOK), code)
	})

	t.Run("empty batch", func(t *testing.T) {
		code := Ed25519BatchVerify(nil, nil, nil)
		require.Equal(t, uint32(CodeOK), code)
	})

	t.Run("one message many keys", func(t *testing.T) {
		sigA, pubA := makePair(m1)
		sigB, pubB := makePair(m1)
		code := Ed25519BatchVerify([][]byte{m1}, [][]byte{sigA, sigB}, [][]byte{pubA, pubB})
		require.Equal(t, uint32(CodeOK), code)
	})

	t.Run("one key many messages", func(t *testing.T) {
		pub, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		code := Ed25519BatchVerify(
			[][]byte{m1, m2},
			[][]byte{ed25519.Sign(priv, m1), ed25519.Sign(priv, m2)},
			[][]byte{pub},
		)
		require.Equal(t, uint32(CodeOK), code)
	})

	t.Run("mismatched signature fails whole batch", func(t *testing.T) {
		code := Ed25519BatchVerify([][]byte{m1, m2}, [][]byte{sig1, sig1}, [][]byte{pub1, pub2})
		require.Equal(t, uint32(CodeMismatch), code)
	})

	t.Run("inconsistent lengths", func(t *testing.T) {
		code := Ed25519BatchVerify([][]byte{m1, m2}, [][]byte{sig1}, [][]byte{pub1, pub2})
		require.Equal(t, uint32(CodeGenericErr), code)
	})
}
