package cosmwasm

// Some host calls must report both a status code and a data address through
// a single 64-bit return value. The code travels in the high half, the
// region address in the low half; the address is only meaningful when the
// code denotes success.

func fromHighHalf(v uint64) uint32 {
	return uint32(v >> 32)
}

func fromLowHalf(v uint64) uint32 {
	return uint32(v)
}
