// Package cabaliser compiles stabilizer circuits with non-Clifford rotations
// into graph states.
//
// A Widget holds a bit-packed stabilizer tableau over a fixed maximum number
// of rows. Local Cliffords are queued per row and composed algebraically;
// two-qubit gates flush the queue of their operands and update the tableau.
// Every RZ rotation teleports its qubit onto a fresh row, leaving the rotation
// tag on the row it came from. Decompose then reduces the tableau to
// graph-state form: the X block becomes the identity and the Z block the
// adjacency matrix of the graph.
//
// # Quick Start
//
//	w, _ := cabaliser.New(3, 20)
//	defer w.Close()
//
//	_ = w.ApplyAll([]instruction.Instruction{
//	    instruction.Local(clifford.H, 0),
//	    instruction.NewCNOT(0, 1),
//	    instruction.NewRZ(1, 1),
//	})
//	_ = w.Decompose()
//
//	g, _ := w.Graph()
//	fmt.Println(g.Edges())
//
// # Concurrency
//
// Gate updates can be split across the workers of a pool (WithWorkers,
// WithPool). A widget itself is not safe for concurrent use.
//
// # Persistence
//
// Decomposed graphs are stored with Widget.Save or the snapshot package, on
// any blobstore.BlobStore: memory, local disk, S3 or MinIO.
package cabaliser
