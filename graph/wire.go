package graph

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/cabaliser/clifford"
	"github.com/hupe1980/cabaliser/codec"
)

// FormatVersion is the version of the wire form written by Marshal.
const FormatVersion = 1

type wireTag struct {
	Node int    `json:"node"`
	Tag  uint32 `json:"tag"`
}

type wireGraph struct {
	Version         int       `json:"version"`
	NQubits         int       `json:"n_qubits"`
	StateNodes      int       `json:"state_nodes"`
	Adjacency       [][]byte  `json:"adjacency"`
	LocalCliffords  []string  `json:"local_cliffords"`
	MeasurementTags []wireTag `json:"measurement_tags,omitempty"`
	OutputNodes     []int     `json:"output_nodes"`
	InputNodes      []int     `json:"input_nodes,omitempty"`
}

// Marshal encodes the graph with c. A nil codec selects codec.Default.
func (g *Graph) Marshal(c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}

	w := wireGraph{
		Version:        FormatVersion,
		NQubits:        g.NQubits,
		StateNodes:     g.StateNodes,
		Adjacency:      make([][]byte, len(g.adj)),
		LocalCliffords: make([]string, len(g.LocalCliffords)),
		OutputNodes:    g.OutputNodes,
		InputNodes:     g.InputNodes,
	}
	for i, rb := range g.adj {
		rb.RunOptimize()
		b, err := rb.ToBytes()
		if err != nil {
			return nil, fmt.Errorf("graph: encode adjacency of node %d: %w", i, err)
		}
		w.Adjacency[i] = b
	}
	for i, id := range g.LocalCliffords {
		w.LocalCliffords[i] = id.String()
	}
	for _, node := range g.Tagged() {
		w.MeasurementTags = append(w.MeasurementTags, wireTag{Node: node, Tag: g.MeasurementTags[node]})
	}

	return c.Marshal(w)
}

// Unmarshal decodes a graph written by Marshal with the same codec and
// validates it.
func Unmarshal(c codec.Codec, data []byte) (*Graph, error) {
	if c == nil {
		c = codec.Default
	}

	var w wireGraph
	if err := c.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("graph: decode with %s: %w", c.Name(), err)
	}
	if w.Version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidGraph, w.Version)
	}
	if w.StateNodes < 0 || len(w.Adjacency) != w.StateNodes || len(w.LocalCliffords) != w.StateNodes {
		return nil, fmt.Errorf("%w: tables do not cover %d nodes", ErrInvalidGraph, w.StateNodes)
	}

	g := New(w.NQubits, w.StateNodes)
	for i, b := range w.Adjacency {
		rb := roaring.New()
		if err := rb.UnmarshalBinary(b); err != nil {
			return nil, fmt.Errorf("%w: adjacency of node %d: %v", ErrInvalidGraph, i, err)
		}
		g.adj[i] = rb
	}
	for i, name := range w.LocalCliffords {
		id, ok := clifford.Parse(name)
		if !ok {
			return nil, fmt.Errorf("%w: node %d has unknown local clifford %q", ErrInvalidGraph, i, name)
		}
		g.LocalCliffords[i] = id
	}
	for _, t := range w.MeasurementTags {
		if t.Node < 0 || t.Node >= w.StateNodes {
			return nil, fmt.Errorf("%w: tag on node %d out of range", ErrInvalidGraph, t.Node)
		}
		g.MeasurementTags[t.Node] = t.Tag
	}
	g.OutputNodes = w.OutputNodes
	g.InputNodes = w.InputNodes

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Node is the readable form of one graph node.
type Node struct {
	ID        int    `json:"id"`
	Clifford  string `json:"clifford"`
	Tag       uint32 `json:"tag,omitempty"`
	Neighbors []int  `json:"neighbors"`
}

// Document is the readable form of a graph, used for printing.
type Document struct {
	NQubits     int    `json:"n_qubits"`
	StateNodes  int    `json:"state_nodes"`
	Edges       int    `json:"edges"`
	Nodes       []Node `json:"nodes"`
	OutputNodes []int  `json:"output_nodes"`
	InputNodes  []int  `json:"input_nodes,omitempty"`
}

// Document returns the readable form of the graph.
func (g *Graph) Document() Document {
	d := Document{
		NQubits:     g.NQubits,
		StateNodes:  g.StateNodes,
		Edges:       g.NumEdges(),
		Nodes:       make([]Node, g.StateNodes),
		OutputNodes: g.OutputNodes,
		InputNodes:  g.InputNodes,
	}
	for i := range d.Nodes {
		d.Nodes[i] = Node{
			ID:        i,
			Clifford:  g.LocalCliffords[i].String(),
			Tag:       g.MeasurementTags[i],
			Neighbors: g.Neighbors(i),
		}
	}
	return d
}
