package types

// Order defines the direction of a storage range scan.
type Order int32

const (
	Ascending  Order = 1
	Descending Order = 2
)

// Record is a key/value pair yielded by iteration.
type Record struct {
	Key   []byte `json:"key"`
	Value []byte `json:"value"`
}
