package store

import "encoding/binary"

// EncodeUint64 encodes v as an 8-byte big-endian key so that byte-order
// comparison matches numeric order (needed for GlobalSeq range scans
// and ordinal-keyed tables).
func EncodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// DecodeUint64 is the inverse of EncodeUint64.
func DecodeUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
