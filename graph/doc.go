// Package graph holds the graph-state form of a decomposed widget.
//
// A Graph is the adjacency of the state's stabilizer Z-block, the local
// Clifford still owed on every node, the non-Clifford measurement tags and
// the mapping from logical qubits to output (and optionally input) nodes.
//
// Adjacency sets are Roaring bitmaps. The wire form produced by Marshal stores
// each neighbourhood in the portable Roaring serialization, so graphs with
// clustered node ids stay small. Document returns a readable form with plain
// neighbour lists.
package graph
