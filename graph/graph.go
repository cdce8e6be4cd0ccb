package graph

import (
	"errors"
	"fmt"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/cabaliser/clifford"
)

// ErrInvalidGraph is returned by Validate and Unmarshal for malformed graphs.
var ErrInvalidGraph = errors.New("graph: invalid graph")

// Edge is an undirected edge with A < B.
type Edge struct {
	A, B int
}

// Graph is a graph state plus its residual local Cliffords.
type Graph struct {
	// NQubits is the number of logical qubits.
	NQubits int
	// StateNodes is the number of nodes in the graph state.
	StateNodes int
	// LocalCliffords holds the correction owed on each node.
	LocalCliffords []clifford.ID
	// MeasurementTags holds the non-Clifford tag of each node (0 = none).
	MeasurementTags []uint32
	// OutputNodes maps logical qubit -> node.
	OutputNodes []int
	// InputNodes maps logical qubit -> node when inputs were teleported.
	InputNodes []int

	adj []*roaring.Bitmap
}

// New returns an edgeless graph with stateNodes nodes, identity local
// Cliffords and no tags.
func New(nQubits, stateNodes int) *Graph {
	g := &Graph{
		NQubits:         nQubits,
		StateNodes:      stateNodes,
		LocalCliffords:  make([]clifford.ID, stateNodes),
		MeasurementTags: make([]uint32, stateNodes),
		adj:             make([]*roaring.Bitmap, stateNodes),
	}
	for i := range g.adj {
		g.adj[i] = roaring.New()
	}
	return g
}

// AddEdge adds the undirected edge (a, b).
func (g *Graph) AddEdge(a, b int) {
	g.adj[a].Add(uint32(b))
	g.adj[b].Add(uint32(a))
}

// SetNeighbors replaces the neighbourhood of node without touching the
// reverse direction. Validate reports any resulting asymmetry.
func (g *Graph) SetNeighbors(node int, neighbors []int) {
	rb := roaring.New()
	for _, n := range neighbors {
		rb.AddInt(n)
	}
	g.adj[node] = rb
}

// HasEdge reports whether a and b are adjacent.
func (g *Graph) HasEdge(a, b int) bool {
	return g.adj[a].Contains(uint32(b))
}

// Neighbors returns the sorted neighbourhood of node.
func (g *Graph) Neighbors(node int) []int {
	out := make([]int, 0, g.adj[node].GetCardinality())
	it := g.adj[node].Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Degree returns the number of neighbours of node.
func (g *Graph) Degree(node int) int {
	return int(g.adj[node].GetCardinality())
}

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int {
	var total uint64
	for _, rb := range g.adj {
		total += rb.GetCardinality()
	}
	return int(total / 2)
}

// Edges returns every edge once, sorted by (A, B).
func (g *Graph) Edges() []Edge {
	var out []Edge
	for a, rb := range g.adj {
		it := rb.Iterator()
		it.AdvanceIfNeeded(uint32(a + 1))
		for it.HasNext() {
			out = append(out, Edge{A: a, B: int(it.Next())})
		}
	}
	return out
}

// Tagged returns the nodes carrying a non-zero measurement tag.
func (g *Graph) Tagged() []int {
	var out []int
	for i, tag := range g.MeasurementTags {
		if tag != 0 {
			out = append(out, i)
		}
	}
	return out
}

// Validate checks that the graph is a simple undirected graph over
// StateNodes nodes and that the side tables are consistent with it.
func (g *Graph) Validate() error {
	if g.StateNodes < 0 || g.NQubits < 0 {
		return fmt.Errorf("%w: negative size", ErrInvalidGraph)
	}
	if len(g.adj) != g.StateNodes {
		return fmt.Errorf("%w: %d adjacency sets for %d nodes", ErrInvalidGraph, len(g.adj), g.StateNodes)
	}
	if len(g.LocalCliffords) != g.StateNodes || len(g.MeasurementTags) != g.StateNodes {
		return fmt.Errorf("%w: side tables do not cover %d nodes", ErrInvalidGraph, g.StateNodes)
	}
	if len(g.OutputNodes) != g.NQubits {
		return fmt.Errorf("%w: %d output nodes for %d qubits", ErrInvalidGraph, len(g.OutputNodes), g.NQubits)
	}
	if g.InputNodes != nil && len(g.InputNodes) != g.NQubits {
		return fmt.Errorf("%w: %d input nodes for %d qubits", ErrInvalidGraph, len(g.InputNodes), g.NQubits)
	}

	for a, rb := range g.adj {
		if rb.Contains(uint32(a)) {
			return fmt.Errorf("%w: self loop on node %d", ErrInvalidGraph, a)
		}
		if !rb.IsEmpty() && int(rb.Maximum()) >= g.StateNodes {
			return fmt.Errorf("%w: node %d has neighbour %d out of range", ErrInvalidGraph, a, rb.Maximum())
		}
		it := rb.Iterator()
		for it.HasNext() {
			b := it.Next()
			if !g.adj[b].Contains(uint32(a)) {
				return fmt.Errorf("%w: edge (%d, %d) is not symmetric", ErrInvalidGraph, a, b)
			}
		}
	}

	for i, id := range g.LocalCliffords {
		if !id.Valid() {
			return fmt.Errorf("%w: node %d has invalid local clifford %d", ErrInvalidGraph, i, id)
		}
	}

	if err := checkNodes("output", g.OutputNodes, g.StateNodes); err != nil {
		return err
	}
	return checkNodes("input", g.InputNodes, g.StateNodes)
}

func checkNodes(kind string, nodes []int, n int) error {
	seen := make(map[int]struct{}, len(nodes))
	for q, node := range nodes {
		if node < 0 || node >= n {
			return fmt.Errorf("%w: %s node %d of qubit %d out of range", ErrInvalidGraph, kind, node, q)
		}
		if _, dup := seen[node]; dup {
			return fmt.Errorf("%w: %s node %d used twice", ErrInvalidGraph, kind, node)
		}
		seen[node] = struct{}{}
	}
	return nil
}

// Equal reports whether two graphs describe the same state.
func (g *Graph) Equal(o *Graph) bool {
	if g.NQubits != o.NQubits || g.StateNodes != o.StateNodes || len(g.adj) != len(o.adj) {
		return false
	}
	if !slices.Equal(g.LocalCliffords, o.LocalCliffords) ||
		!slices.Equal(g.MeasurementTags, o.MeasurementTags) ||
		!slices.Equal(g.OutputNodes, o.OutputNodes) ||
		!slices.Equal(g.InputNodes, o.InputNodes) {
		return false
	}
	for i := range g.adj {
		if !g.adj[i].Equals(o.adj[i]) {
			return false
		}
	}
	return true
}
