package instruction

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cabaliser/clifford"
)

func TestOpcodeEncoding(t *testing.T) {
	assert.Equal(t, Opcode(0x20), LocalOpcode(clifford.I))
	assert.Equal(t, Opcode(0x24), LocalOpcode(clifford.H))
	assert.Equal(t, Opcode(0x37), LocalOpcode(clifford.SHR))

	tests := []struct {
		op    Opcode
		typ   Opcode
		valid bool
		name  string
	}{
		{0x24, TypeLocal, true, "H"},
		{0x37, TypeLocal, true, "SHR"},
		{0x38, TypeLocal, false, "Opcode(0x38)"},
		{CNOT, TypeTwoQubit, true, "CNOT"},
		{CZ, TypeTwoQubit, true, "CZ"},
		{0x42, TypeTwoQubit, false, "Opcode(0x42)"},
		{RZ, TypeRZ, true, "RZ"},
		{0x81, TypeRZ, false, "Opcode(0x81)"},
		{NOP, NOP, true, "NOP"},
		{0x00, 0x00, false, "Opcode(0x00)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.typ, tt.op.Type(), "%#x", uint8(tt.op))
		assert.Equal(t, tt.valid, tt.op.Valid(), "%#x", uint8(tt.op))
		assert.Equal(t, tt.name, tt.op.String(), "%#x", uint8(tt.op))
	}
}

func TestParseOpcode(t *testing.T) {
	for name, want := range map[string]Opcode{
		"H": LocalOpcode(clifford.H), "cx": CNOT, "CZ": CZ, "rz": RZ, "HSX": LocalOpcode(clifford.HSX),
	} {
		got, err := ParseOpcode(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseOpcode("T")
	assert.ErrorIs(t, err, ErrUnknownOpcode)
}

func TestInstructionString(t *testing.T) {
	assert.Equal(t, "H(2)", Local(clifford.H, 2).String())
	assert.Equal(t, "CNOT(0, 1)", NewCNOT(0, 1).String())
	assert.Equal(t, "RZ(3, 7)", NewRZ(3, 7).String())
	assert.Equal(t, "NOP", Instruction{Op: NOP}.String())
}

func TestRecordLayout(t *testing.T) {
	data, err := NewCNOT(0x01020304, 5).MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x04, 0x03, 0x02, 0x01, 0x05, 0x00, 0x00, 0x00}, data)
}

func TestEncodeDecode(t *testing.T) {
	in := []Instruction{
		Local(clifford.H, 2),
		NewCNOT(1, 2),
		NewRZ(2, 2),
		NewCZ(0, 1),
		{Op: NOP},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))
	assert.Equal(t, len(in)*RecordSize, buf.Len())

	out, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0x40, 1, 0, 0}))
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = Decode(bytes.NewReader([]byte{0x90, 0, 0, 0, 0, 0, 0, 0, 0}))
	assert.ErrorIs(t, err, ErrUnknownOpcode)

	var in Instruction
	assert.ErrorIs(t, in.UnmarshalBinary([]byte{0x20}), ErrTruncated)

	out, err := Decode(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSliceSource(t *testing.T) {
	ins := []Instruction{Local(clifford.X, 0), NewCNOT(0, 1), NewCZ(1, 2), Local(clifford.S, 2), NewRZ(0, 1)}
	layers := Chunk(ins, 2)
	require.Len(t, layers, 3)
	assert.Len(t, layers[2], 1)

	src := NewSliceSource(layers...)
	ctx := context.Background()
	got, err := Drain(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, ins, got)

	_, err = src.NextLayer(ctx)
	assert.ErrorIs(t, err, io.EOF)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewSliceSource(ins).NextLayer(cancelled)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Len(t, Chunk(ins, 0), 1)
}

func TestGeneratorRespectsBudget(t *testing.T) {
	g, err := NewGenerator(GeneratorConfig{Qubits: 4, MaxQubits: 10, RZWeight: 5, LocalWeight: 1, Seed: 7})
	require.NoError(t, err)

	var rz int
	for _, in := range g.Generate(500) {
		require.True(t, in.Op.Valid())
		switch in.Op.Type() {
		case TypeRZ:
			rz++
			assert.Contains(t, []uint32{1, 2}, in.B)
			assert.Less(t, in.A, uint32(4))
		case TypeLocal:
			assert.Less(t, in.A, uint32(4))
		}
	}
	assert.Equal(t, 6, rz)
	assert.Zero(t, g.Budget())
}

func TestGeneratorTeleportBudget(t *testing.T) {
	g, err := NewGenerator(GeneratorConfig{Qubits: 3, MaxQubits: 9, TeleportInput: true})
	require.NoError(t, err)
	assert.Equal(t, 3, g.Budget())

	_, err = NewGenerator(GeneratorConfig{Qubits: 3, MaxQubits: 5, TeleportInput: true})
	assert.ErrorIs(t, err, ErrInvalidGenerator)
}

func TestGeneratorDeterministic(t *testing.T) {
	cfg := GeneratorConfig{Qubits: 5, MaxQubits: 20, Seed: 42}
	a, err := NewGenerator(cfg)
	require.NoError(t, err)
	b, err := NewGenerator(cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Generate(100), b.Generate(100))
}

func TestGeneratorTwoQubitOperandsDiffer(t *testing.T) {
	g, err := NewGenerator(GeneratorConfig{Qubits: 2, MaxQubits: 2, TwoQubitWeight: 1})
	require.NoError(t, err)
	for _, in := range g.Generate(100) {
		require.Equal(t, TypeTwoQubit, in.Op.Type())
		require.NotEqual(t, in.A, in.B)
	}
}

func TestGeneratorInvalid(t *testing.T) {
	for _, cfg := range []GeneratorConfig{
		{Qubits: 0, MaxQubits: 4},
		{Qubits: 4, MaxQubits: 3},
		{Qubits: 2, MaxQubits: 4, LocalWeight: -1},
		{Qubits: 2, MaxQubits: 2, RZWeight: 1},
	} {
		_, err := NewGenerator(cfg)
		assert.ErrorIs(t, err, ErrInvalidGenerator, "%+v", cfg)
	}
}
