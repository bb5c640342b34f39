package tlm

import (
	"encoding/binary"
	"encoding/hex"
	"slices"
)

// DataString prints a payload as hex, most significant byte first.
func DataString(data []byte) string {
	reversed := slices.Clone(data)
	slices.Reverse(reversed)

	return "0x" + hex.EncodeToString(reversed)
}

// Uint64LE decodes up to 8 little-endian bytes. Missing bytes count as zero.
func Uint64LE(data []byte) uint64 {
	var buf [8]byte
	copy(buf[:], data)

	return binary.LittleEndian.Uint64(buf[:])
}

// PutUint64LE encodes v as little-endian into data, truncating to len(data)
// bytes when data is shorter than 8 bytes.
func PutUint64LE(data []byte, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	copy(data, buf[:])
}
