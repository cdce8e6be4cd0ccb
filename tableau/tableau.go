package tableau

import (
	"fmt"

	"github.com/hupe1980/cabaliser/internal/bitset"
	"github.com/hupe1980/cabaliser/internal/mem"
)

// Orientation tells what a row of the tableau indexes.
type Orientation uint8

const (
	// ColumnMajor rows are qubits; bit g of a row belongs to generator g.
	ColumnMajor Orientation = iota
	// RowMajor rows are generators; bit q of a row belongs to qubit q.
	RowMajor
)

func (o Orientation) String() string {
	if o == RowMajor {
		return "row-major"
	}
	return "column-major"
}

// qubitsPerLine is the number of bits in one 64-byte line.
const qubitsPerLine = mem.Alignment * 8

// Tableau is a bit-packed stabilizer tableau.
//
// One aligned buffer holds the X block followed by the Z block. Each block
// has Rows() rows of WordsPerRow() words, so the block is square in bits and
// every 64x64 tile exists. Rows are reached through offset arrays, which lets
// SwapRows exchange two rows without touching their words.
type Tableau struct {
	nQubits     int
	maxQubits   int
	wordsPerRow int
	rows        int

	buf     []uint64
	slicesX []int
	slicesZ []int
	phases  []uint64

	orientation Orientation
}

// WordsPerRow returns the row width in words for a tableau of maxQubits.
func WordsPerRow(maxQubits int) int {
	return (maxQubits + qubitsPerLine - 1) / qubitsPerLine * mem.WordsPerLine
}

// BufferBytes returns the number of bytes New allocates for maxQubits.
func BufferBytes(maxQubits int) int64 {
	w := int64(WordsPerRow(maxQubits))
	rows := w * 64
	return (2*rows*w + w) * 8
}

// New creates a tableau in the |0…0⟩ state: Z is the identity over every
// allocated row, X and the phases are zero.
func New(nQubits, maxQubits int) (*Tableau, error) {
	if nQubits < 0 || maxQubits <= 0 || nQubits > maxQubits {
		return nil, fmt.Errorf("%w: n=%d max=%d", ErrInvalidSize, nQubits, maxQubits)
	}

	w := WordsPerRow(maxQubits)
	rows := w * 64
	block := rows * w

	t := &Tableau{
		nQubits:     nQubits,
		maxQubits:   maxQubits,
		wordsPerRow: w,
		rows:        rows,
		buf:         mem.AllocAlignedWords(2 * block),
		slicesX:     make([]int, rows),
		slicesZ:     make([]int, rows),
		phases:      mem.AllocAlignedWords(w),
	}

	for i := 0; i < rows; i++ {
		t.slicesX[i] = i * w
		t.slicesZ[i] = block + i*w
		bitset.Set(t.Z(i), i, 1)
	}

	return t, nil
}

// NQubits returns the number of active qubits.
func (t *Tableau) NQubits() int { return t.nQubits }

// MaxQubits returns the qubit capacity.
func (t *Tableau) MaxQubits() int { return t.maxQubits }

// WordsPerRow returns the row width in words.
func (t *Tableau) WordsPerRow() int { return t.wordsPerRow }

// Rows returns the number of allocated rows per block.
func (t *Tableau) Rows() int { return t.rows }

// Orientation returns the current orientation.
func (t *Tableau) Orientation() Orientation { return t.orientation }

// SetNQubits grows or shrinks the active qubit count within capacity.
func (t *Tableau) SetNQubits(n int) {
	if n < 0 || n > t.maxQubits {
		violate("SetNQubits", "%d outside [0, %d]", n, t.maxQubits)
	}
	t.nQubits = n
}

// X returns row i of the X block.
func (t *Tableau) X(i int) []uint64 {
	off := t.slicesX[i]
	return t.buf[off : off+t.wordsPerRow : off+t.wordsPerRow]
}

// Z returns row i of the Z block.
func (t *Tableau) Z(i int) []uint64 {
	off := t.slicesZ[i]
	return t.buf[off : off+t.wordsPerRow : off+t.wordsPerRow]
}

// Phases returns the phase vector, one bit per generator.
func (t *Tableau) Phases() []uint64 {
	return t.phases
}

// Phase returns the phase bit of generator g.
func (t *Tableau) Phase(g int) uint64 {
	return bitset.Get(t.phases, g)
}

// ClearPhases zeroes every phase bit.
func (t *Tableau) ClearPhases() {
	bitset.Clear(t.phases)
}

// SwapRows exchanges generator rows i and j by swapping offsets.
func (t *Tableau) SwapRows(i, j int) {
	t.require(RowMajor, "SwapRows")
	t.slicesX[i], t.slicesX[j] = t.slicesX[j], t.slicesX[i]
	t.slicesZ[i], t.slicesZ[j] = t.slicesZ[j], t.slicesZ[i]
	t.swapPhases(i, j)
}

// SwapRowContents exchanges the words of generator rows i and j.
func (t *Tableau) SwapRowContents(i, j int) {
	t.require(RowMajor, "SwapRowContents")
	bitset.Swap(t.X(i), t.X(j))
	bitset.Swap(t.Z(i), t.Z(j))
	t.swapPhases(i, j)
}

func (t *Tableau) swapPhases(i, j int) {
	pi, pj := bitset.Get(t.phases, i), bitset.Get(t.phases, j)
	bitset.Set(t.phases, i, pj)
	bitset.Set(t.phases, j, pi)
}

func (t *Tableau) require(o Orientation, op string) {
	if t.orientation != o {
		violate(op, "requires %s orientation, tableau is %s", o, t.orientation)
	}
}

// Clone returns a deep copy laid out with identity offsets.
func (t *Tableau) Clone() *Tableau {
	c, _ := New(t.nQubits, t.maxQubits)
	c.orientation = t.orientation
	for i := 0; i < t.rows; i++ {
		copy(c.X(i), t.X(i))
		copy(c.Z(i), t.Z(i))
	}
	copy(c.phases, t.phases)
	return c
}

// Equal reports whether both tableaus hold the same bits in the same
// orientation, regardless of row offsets.
func (t *Tableau) Equal(o *Tableau) bool {
	if t.rows != o.rows || t.orientation != o.orientation || t.nQubits != o.nQubits {
		return false
	}
	for i := 0; i < t.rows; i++ {
		if !wordsEqual(t.X(i), o.X(i)) || !wordsEqual(t.Z(i), o.Z(i)) {
			return false
		}
	}
	return wordsEqual(t.phases, o.phases)
}

func wordsEqual(a, b []uint64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
