package instruction

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// RecordSize is the encoded size of one instruction: [opcode][a u32][b u32],
// little-endian.
const RecordSize = 9

// AppendBinary appends the record for i to dst.
func (i Instruction) AppendBinary(dst []byte) ([]byte, error) {
	dst = append(dst, byte(i.Op))
	dst = binary.LittleEndian.AppendUint32(dst, i.A)
	dst = binary.LittleEndian.AppendUint32(dst, i.B)
	return dst, nil
}

// MarshalBinary returns the record for i.
func (i Instruction) MarshalBinary() ([]byte, error) {
	return i.AppendBinary(make([]byte, 0, RecordSize))
}

// UnmarshalBinary decodes one record.
func (i *Instruction) UnmarshalBinary(data []byte) error {
	if len(data) < RecordSize {
		return ErrTruncated
	}
	op := Opcode(data[0])
	if !op.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownOpcode, op)
	}
	i.Op = op
	i.A = binary.LittleEndian.Uint32(data[1:5])
	i.B = binary.LittleEndian.Uint32(data[5:9])
	return nil
}

// Encode writes every instruction as a record.
func Encode(w io.Writer, ins []Instruction) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, RecordSize)
	for _, in := range ins {
		buf, _ = in.AppendBinary(buf[:0])
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Decoder reads records one at a time.
type Decoder struct {
	r   *bufio.Reader
	buf [RecordSize]byte
	n   int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next instruction, or io.EOF at a record boundary.
func (d *Decoder) Next() (Instruction, error) {
	var in Instruction
	if _, err := io.ReadFull(d.r, d.buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return in, fmt.Errorf("%w: record %d", ErrTruncated, d.n)
		}
		return in, err
	}
	if err := in.UnmarshalBinary(d.buf[:]); err != nil {
		return in, fmt.Errorf("record %d: %w", d.n, err)
	}
	d.n++
	return in, nil
}

// Decode reads records until EOF.
func Decode(r io.Reader) ([]Instruction, error) {
	d := NewDecoder(r)
	var out []Instruction
	for {
		in, err := d.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, in)
	}
}
