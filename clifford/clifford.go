package clifford

import (
	"fmt"
	"strings"

	"github.com/hupe1980/cabaliser/internal/simd"
)

// ID identifies one of the 24 single-qubit Cliffords.
type ID uint8

// The 24 elements, in encoding order.
const (
	I ID = iota
	X
	Y
	Z
	H
	S
	R
	HX
	SX
	RX
	HY
	HZ
	SH
	RH
	HS
	HR
	HSX
	HRX
	SHY
	RHY
	HSH
	HRH
	RHS
	SHR
)

// Count is the order of the single-qubit Clifford group modulo phase.
const Count = 24

// NOP marks a commutation map entry that requires a flush.
const NOP ID = 0xff

var names = [Count]string{
	"I", "X", "Y", "Z", "H", "S", "R", "HX", "SX", "RX", "HY", "HZ",
	"SH", "RH", "HS", "HR", "HSX", "HRX", "SHY", "RHY", "HSH", "HRH", "RHS", "SHR",
}

// String returns the element name, or NOP.
func (id ID) String() string {
	if id.Valid() {
		return names[id]
	}
	if id == NOP {
		return "NOP"
	}
	return fmt.Sprintf("ID(%d)", uint8(id))
}

// Valid reports whether id names one of the 24 elements.
func (id ID) Valid() bool {
	return id < Count
}

// Parse returns the element with the given name.
func Parse(name string) (ID, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range names {
		if n == name {
			return ID(i), true
		}
	}
	return I, false
}

// All returns the 24 elements in encoding order.
func All() []ID {
	out := make([]ID, Count)
	for i := range out {
		out[i] = ID(i)
	}
	return out
}

// ==============================================================================
// Pauli conjugation
// ==============================================================================

// signedPauli is ±P for P in {I, X, Z, Y}, packed as x | z<<1.
type signedPauli struct {
	x, z, sign uint8
}

func (p signedPauli) index() int {
	return int(p.x) | int(p.z)<<1
}

// action holds the images of X, Z and Y under conjugation C·P·C†,
// indexed by signedPauli.index()-1.
type action [3]signedPauli

func (a action) apply(p signedPauli) signedPauli {
	if p.index() == 0 {
		return p
	}
	img := a[p.index()-1]
	img.sign ^= p.sign
	return img
}

// fromXZ completes an action from the images of X and Z using Y = iXZ.
func fromXZ(imgX, imgZ signedPauli) action {
	e := simd.GFunction(uint64(imgX.x), uint64(imgX.z), uint64(imgZ.x), uint64(imgZ.z))
	imgY := signedPauli{
		x:    imgX.x ^ imgZ.x,
		z:    imgX.z ^ imgZ.z,
		sign: imgX.sign ^ imgZ.sign,
	}
	// i · i^e is -1 when e = 1 and +1 when e = 3.
	if e == 1 {
		imgY.sign ^= 1
	}
	return action{imgX, imgZ, imgY}
}

// then returns the action of g∘a.
func (a action) then(g action) action {
	return fromXZ(g.apply(a[0]), g.apply(a[1]))
}

var (
	pauliX = signedPauli{x: 1}
	pauliZ = signedPauli{z: 1}
	pauliY = signedPauli{x: 1, z: 1}
)

func negate(p signedPauli) signedPauli {
	p.sign ^= 1
	return p
}

var generators = map[byte]action{
	'I': fromXZ(pauliX, pauliZ),
	'X': fromXZ(pauliX, negate(pauliZ)),
	'Y': fromXZ(negate(pauliX), negate(pauliZ)),
	'Z': fromXZ(negate(pauliX), pauliZ),
	'H': fromXZ(pauliZ, pauliX),
	'S': fromXZ(pauliY, pauliZ),
	'R': fromXZ(negate(pauliY), pauliZ),
}

var (
	actions     [Count]action
	composition [Count][Count]ID
	inverses    [Count]ID
)

func init() {
	byAction := make(map[[2]signedPauli]ID, Count)
	for i, name := range names {
		a := generators['I']
		for k := len(name) - 1; k >= 0; k-- {
			a = a.then(generators[name[k]])
		}
		key := [2]signedPauli{a[0], a[1]}
		if prev, dup := byAction[key]; dup {
			panic(fmt.Sprintf("clifford: %s and %s have the same action", names[prev], name))
		}
		actions[i] = a
		byAction[key] = ID(i)
	}

	for g := range actions {
		for q := range actions {
			c := actions[q].then(actions[g])
			id, ok := byAction[[2]signedPauli{c[0], c[1]}]
			if !ok {
				panic("clifford: composition left the group")
			}
			composition[g][q] = id
			if id == I {
				inverses[g] = ID(q)
			}
		}
	}
}

// Conjugate returns the image of the Pauli (x, z) under id, with sign 1
// meaning a negated image. (1, 1) is Y.
func Conjugate(id ID, x, z uint8) (xOut, zOut, sign uint8) {
	p := actions[id].apply(signedPauli{x: x & 1, z: z & 1})
	return p.x, p.z, p.sign
}

// Compose returns a∘b.
func Compose(a, b ID) ID {
	return composition[a][b]
}

// ComposeLeft returns g∘q, the queued element after gate g arrives.
func ComposeLeft(g, q ID) ID {
	return composition[g][q]
}

// ComposeRight returns q∘c, the queued element after correction c is
// pulled out of the tableau.
func ComposeRight(q, c ID) ID {
	return composition[q][c]
}

// Inverse returns the element undoing id.
func Inverse(id ID) ID {
	return inverses[id]
}

// IsPauli reports whether id is one of I, X, Y, Z.
func IsPauli(id ID) bool {
	return id <= Z
}
