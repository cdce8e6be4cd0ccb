package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrCorrupt is returned when a snapshot fails structural or checksum validation.
	ErrCorrupt = errors.New("snapshot: corrupt")
	// ErrUnsupportedVersion is returned for a snapshot written by a newer format.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported format version")
	// ErrUnknownCodec is returned when the header names a codec this build lacks.
	ErrUnknownCodec = errors.New("snapshot: unknown codec")
	// ErrInUse is returned when deleting the snapshot CURRENT points at.
	ErrInUse = errors.New("snapshot: snapshot is current")
)

// Magic identifies a snapshot blob.
var Magic = [4]byte{'C', 'B', 'G', 'S'}

// Version is the snapshot format version written by this package.
const Version uint16 = 1

// Header layout (little-endian):
//
//	[0:4)   magic
//	[4:6)   version
//	[6]     compression
//	[7]     codec name length
//	[8:12)  block size
//	[12:20) raw (decoded) payload length
//	[20:24) block count
//	[24:28) CRC32C of the block section
//	[28:)   codec name
const fixedHeaderSize = 28

// maxHeaderSize bounds the header of any valid snapshot.
const maxHeaderSize = fixedHeaderSize + 255

// Header describes an encoded snapshot.
type Header struct {
	Version     uint16
	Compression Compression
	Codec       string
	BlockSize   uint32
	RawSize     uint64
	Blocks      uint32
	Checksum    uint32
}

// Size returns the encoded header length.
func (h *Header) Size() int {
	return fixedHeaderSize + len(h.Codec)
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	if len(h.Codec) == 0 || len(h.Codec) > 255 {
		return nil, fmt.Errorf("snapshot: invalid codec name %q", h.Codec)
	}

	buf := make([]byte, h.Size())
	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint16(buf[4:], h.Version)
	buf[6] = byte(h.Compression)
	buf[7] = byte(len(h.Codec))
	binary.LittleEndian.PutUint32(buf[8:], h.BlockSize)
	binary.LittleEndian.PutUint64(buf[12:], h.RawSize)
	binary.LittleEndian.PutUint32(buf[20:], h.Blocks)
	binary.LittleEndian.PutUint32(buf[24:], h.Checksum)
	copy(buf[fixedHeaderSize:], h.Codec)
	return buf, nil
}

// UnmarshalBinary decodes a header from the start of data.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < fixedHeaderSize {
		return fmt.Errorf("%w: short header (%d bytes)", ErrCorrupt, len(data))
	}
	if [4]byte(data[0:4]) != Magic {
		return fmt.Errorf("%w: bad magic %q", ErrCorrupt, data[0:4])
	}

	h.Version = binary.LittleEndian.Uint16(data[4:])
	if h.Version == 0 || h.Version > Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	h.Compression = Compression(data[6])
	if h.Compression > CompressionZSTD {
		return fmt.Errorf("%w: unknown compression %d", ErrCorrupt, data[6])
	}

	n := int(data[7])
	if n == 0 || len(data) < fixedHeaderSize+n {
		return fmt.Errorf("%w: truncated codec name", ErrCorrupt)
	}

	h.BlockSize = binary.LittleEndian.Uint32(data[8:])
	h.RawSize = binary.LittleEndian.Uint64(data[12:])
	h.Blocks = binary.LittleEndian.Uint32(data[20:])
	h.Checksum = binary.LittleEndian.Uint32(data[24:])
	h.Codec = string(data[fixedHeaderSize : fixedHeaderSize+n])
	return nil
}
