package vmtest

import (
	"bytes"
	"fmt"

	"github.com/kromsten/cosmwasm/types"
)

// CanonicalLength is the fixed canonical address size of the mock scheme.
const CanonicalLength = 32

// MockCanonicalizeAddress canonicalizes by zero-padding the input to
// CanonicalLength bytes.
func MockCanonicalizeAddress(human string) ([]byte, error) {
	if len(human) == 0 {
		return nil, fmt.Errorf("empty address")
	}
	if len(human) > CanonicalLength {
		return nil, fmt.Errorf("human encoding too long")
	}
	res := make([]byte, CanonicalLength)
	copy(res, human)
	return res, nil
}

// MockHumanizeAddress strips the zero padding again.
func MockHumanizeAddress(canon []byte) (string, error) {
	if len(canon) != CanonicalLength {
		return "", fmt.Errorf("wrong canonical length")
	}
	cut := bytes.IndexByte(canon, 0)
	if cut == -1 {
		cut = CanonicalLength
	}
	return string(canon[:cut]), nil
}

// MockValidateAddress accepts addresses that survive a canonicalize/humanize
// round trip unchanged.
func MockValidateAddress(human string) error {
	canon, err := MockCanonicalizeAddress(human)
	if err != nil {
		return err
	}
	recovered, err := MockHumanizeAddress(canon)
	if err != nil {
		return err
	}
	if recovered != human {
		return fmt.Errorf("address not normalized")
	}
	return nil
}

// NewMockGoAPI bundles the mock address scheme.
func NewMockGoAPI() types.GoAPI {
	return types.GoAPI{
		HumanizeAddress:     MockHumanizeAddress,
		CanonicalizeAddress: MockCanonicalizeAddress,
		ValidateAddress:     MockValidateAddress,
	}
}
