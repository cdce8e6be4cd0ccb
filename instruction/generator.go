package instruction

import (
	"errors"
	"math/rand/v2"

	"github.com/hupe1980/cabaliser/clifford"
)

// ErrInvalidGenerator is returned for an unusable generator configuration.
var ErrInvalidGenerator = errors.New("invalid generator config")

// GeneratorConfig configures a random stream.
type GeneratorConfig struct {
	// Qubits is the number of logical qubits instructions address.
	Qubits int
	// MaxQubits bounds the tableau the stream targets. Each RZ consumes one
	// row; RZ stops being drawn once the budget is spent.
	MaxQubits int
	// TeleportInput reserves Qubits rows for input teleportation.
	TeleportInput bool

	// Relative weights per instruction kind. All zero means 6:3:1.
	LocalWeight    int
	TwoQubitWeight int
	RZWeight       int

	// Tags drawn for RZ instructions. Empty means {1, 2}.
	Tags []uint32

	Seed uint64
}

// Generator produces a seeded random instruction stream.
type Generator struct {
	cfg    GeneratorConfig
	rng    *rand.Rand
	budget int
}

// NewGenerator validates cfg and returns a generator.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Qubits <= 0 || cfg.MaxQubits < cfg.Qubits {
		return nil, ErrInvalidGenerator
	}
	if cfg.LocalWeight < 0 || cfg.TwoQubitWeight < 0 || cfg.RZWeight < 0 {
		return nil, ErrInvalidGenerator
	}
	if cfg.LocalWeight+cfg.TwoQubitWeight+cfg.RZWeight == 0 {
		cfg.LocalWeight, cfg.TwoQubitWeight, cfg.RZWeight = 6, 3, 1
	}
	if cfg.Qubits < 2 {
		cfg.TwoQubitWeight = 0
	}
	if len(cfg.Tags) == 0 {
		cfg.Tags = []uint32{1, 2}
	}

	budget := cfg.MaxQubits - cfg.Qubits
	if cfg.TeleportInput {
		budget -= cfg.Qubits
	}
	if budget < 0 {
		return nil, ErrInvalidGenerator
	}
	if cfg.LocalWeight+cfg.TwoQubitWeight == 0 && budget == 0 {
		return nil, ErrInvalidGenerator
	}

	return &Generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		budget: budget,
	}, nil
}

// Budget returns the number of RZ instructions still allowed.
func (g *Generator) Budget() int {
	return g.budget
}

// Next returns the next instruction.
func (g *Generator) Next() Instruction {
	rz := g.cfg.RZWeight
	if g.budget == 0 {
		rz = 0
	}
	total := g.cfg.LocalWeight + g.cfg.TwoQubitWeight + rz
	if total == 0 {
		return Instruction{Op: NOP}
	}
	pick := g.rng.IntN(total)
	n := g.cfg.Qubits

	switch {
	case pick < g.cfg.LocalWeight:
		return Local(clifford.ID(g.rng.IntN(clifford.Count)), uint32(g.rng.IntN(n)))
	case pick < g.cfg.LocalWeight+g.cfg.TwoQubitWeight:
		a := g.rng.IntN(n)
		b := g.rng.IntN(n - 1)
		if b >= a {
			b++
		}
		if g.rng.IntN(2) == 0 {
			return NewCNOT(uint32(a), uint32(b))
		}
		return NewCZ(uint32(a), uint32(b))
	default:
		g.budget--
		tag := g.cfg.Tags[g.rng.IntN(len(g.cfg.Tags))]
		return NewRZ(uint32(g.rng.IntN(n)), tag)
	}
}

// Generate returns count instructions.
func (g *Generator) Generate(count int) []Instruction {
	out := make([]Instruction, count)
	for i := range out {
		out[i] = g.Next()
	}
	return out
}
