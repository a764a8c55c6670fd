// Copyright (C) 2022 Creditor Corp. Group.
// See LICENSE for copying information.

package reverse

// Bytes reverses value in place and returns it.
func Bytes(value []byte) []byte {
	for i, j := 0, len(value)-1; i < j; i, j = i+1, j-1 {
		value[i], value[j] = value[j], value[i]
	}

	return value
}

// Copy returns reversed copy of value, leaving value untouched.
// Used to switch hashes between internal and display (RPC) byte order.
func Copy(value []byte) []byte {
	reversed := make([]byte, len(value))
	for i, b := range value {
		reversed[len(value)-1-i] = b
	}

	return reversed
}
