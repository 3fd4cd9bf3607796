package types

import (
	"errors"
	"fmt"
)

// Recoverable errors reported by the host for crypto calls. Each numeric
// code from a known code table maps to exactly one of these values, so
// callers can branch on them with errors.Is.
var (
	// ErrInvalidHashFormat is returned when a message hash has an invalid format
	ErrInvalidHashFormat = errors.New("invalid hash format")
	// ErrInvalidSignatureFormat is returned when a signature has an invalid format
	ErrInvalidSignatureFormat = errors.New("invalid signature format")
	// ErrInvalidPubkeyFormat is returned when a public key has an invalid format
	ErrInvalidPubkeyFormat = errors.New("invalid public key format")
	// ErrVerificationFailed is the host's generic verification error
	ErrVerificationFailed = errors.New("generic verification error")
	// ErrInvalidRecoveryParam is returned for recovery parameters outside 0..3
	ErrInvalidRecoveryParam = errors.New("invalid recovery parameter")
	// ErrInvalidPrivateKeyFormat is returned when a private key has an invalid format
	ErrInvalidPrivateKeyFormat = errors.New("invalid private key format")
)

// UnknownHostError preserves a host-reported error code that is not part of
// any known code table. The code is kept losslessly for diagnostics and is
// never coerced to one of the known error values.
type UnknownHostError struct {
	// Source names the host call that produced the code, e.g. "secp256k1_verify"
	Source string `json:"source"`
	Code   uint32 `json:"code"`
}

var _ error = UnknownHostError{}

func (e UnknownHostError) Error() string {
	return fmt.Sprintf("unknown error from %s: code %d", e.Source, e.Code)
}

// GenericError is an ordinary typed error, used both for inputs rejected
// before any host call (oversized address, empty storage value) and for
// host calls that only report "something went wrong" without a code table.
type GenericError struct {
	Msg string `json:"msg,omitempty"`
}

var _ error = GenericError{}

func (e GenericError) Error() string {
	return e.Msg
}

// NewGenericError formats a GenericError.
func NewGenericError(format string, args ...any) GenericError {
	return GenericError{Msg: fmt.Sprintf(format, args...)}
}
