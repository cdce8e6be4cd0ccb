package hash

import (
	"encoding/base64"
	"encoding/binary"
	"hash"
	"hash/crc32"
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a streaming CRC32-Castagnoli hash.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// CRC32CBase64 returns the checksum in the form object stores expect:
// base64 of the big-endian uint32.
func CRC32CBase64(data []byte) string {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], CRC32C(data))
	return base64.StdEncoding.EncodeToString(buf[:])
}
