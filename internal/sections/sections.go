// Package sections implements the multi-slice buffer encoding used when more
// than one variable-length byte string crosses the boundary in a single
// region: each slice is followed by its own 4-byte big-endian length, so the
// sections can be peeled off the end of the buffer.
package sections

import (
	"encoding/binary"
	"fmt"
)

// lengthSize is the byte size of the per-section length suffix.
const lengthSize = 4

// Encode concatenates the sections in input order, each immediately followed
// by its big-endian encoded length. The result is
// sum(len(section_i)) + 4*len(sections) bytes.
func Encode(sects [][]byte) []byte {
	total := 0
	for _, s := range sects {
		total += len(s) + lengthSize
	}
	out := make([]byte, 0, total)
	for _, s := range sects {
		out = append(out, s...)
		out = binary.BigEndian.AppendUint32(out, uint32(len(s)))
	}
	return out
}

// DecodeTwo splits a two-section encoding back into the two original slices,
// reading the trailing length fields from the end of the buffer. The host is
// trusted to encode validly; an error here indicates a violated contract,
// not a recoverable runtime condition.
func DecodeTwo(data []byte) (first, second []byte, err error) {
	second, rest, err := splitTail(data)
	if err != nil {
		return nil, nil, err
	}
	first, rest, err = splitTail(rest)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) != 0 {
		return nil, nil, fmt.Errorf("malformed sections: %d trailing bytes after two sections", len(rest))
	}
	return first, second, nil
}

// Decode splits an encoding of any number of sections back into the
// original slices, in their original order. Host-side counterpart of Encode
// for the batched crypto calls.
func Decode(data []byte) ([][]byte, error) {
	var reversed [][]byte
	rest := data
	for len(rest) > 0 {
		section, remaining, err := splitTail(rest)
		if err != nil {
			return nil, err
		}
		reversed = append(reversed, section)
		rest = remaining
	}
	out := make([][]byte, len(reversed))
	for i, s := range reversed {
		out[len(out)-1-i] = s
	}
	return out, nil
}

// splitTail peels the last section off the buffer.
func splitTail(data []byte) (section, rest []byte, err error) {
	if len(data) < lengthSize {
		return nil, nil, fmt.Errorf("malformed sections: %d bytes left, need a %d-byte length", len(data), lengthSize)
	}
	secLen := binary.BigEndian.Uint32(data[len(data)-lengthSize:])
	remaining := data[:len(data)-lengthSize]
	if uint64(secLen) > uint64(len(remaining)) {
		return nil, nil, fmt.Errorf("malformed sections: section length %d exceeds remaining %d bytes", secLen, len(remaining))
	}
	cut := len(remaining) - int(secLen)
	section = make([]byte, secLen)
	copy(section, remaining[cut:])
	return section, remaining[:cut], nil
}
