package instruction

import (
	"context"
	"io"
)

// Source yields a circuit one layer at a time. NextLayer returns io.EOF
// after the last layer.
type Source interface {
	NextLayer(ctx context.Context) ([]Instruction, error)
}

// SliceSource serves a fixed list of layers.
type SliceSource struct {
	layers [][]Instruction
	pos    int
}

// NewSliceSource returns a source over layers.
func NewSliceSource(layers ...[]Instruction) *SliceSource {
	return &SliceSource{layers: layers}
}

// NextLayer returns the next layer.
func (s *SliceSource) NextLayer(ctx context.Context) ([]Instruction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.layers) {
		return nil, io.EOF
	}
	layer := s.layers[s.pos]
	s.pos++
	return layer, nil
}

// Chunk splits ins into layers of at most size instructions.
func Chunk(ins []Instruction, size int) [][]Instruction {
	if size <= 0 {
		size = len(ins)
	}
	var layers [][]Instruction
	for len(ins) > 0 {
		n := min(size, len(ins))
		layers = append(layers, ins[:n:n])
		ins = ins[n:]
	}
	return layers
}

// Drain reads every remaining layer from src into one slice.
func Drain(ctx context.Context, src Source) ([]Instruction, error) {
	var out []Instruction
	for {
		layer, err := src.NextLayer(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, layer...)
	}
}
