// Package clifford implements the 24-element single-qubit Clifford group
// and the per-qubit queue of deferred local Cliffords.
//
// # Elements
//
// Each element is named by an operator product applied right to left, so
// HS means "S, then H". R is S†. The order of the 24 IDs is fixed and is
// part of the instruction encoding:
//
//	I X Y Z H S R HX SX RX HY HZ SH RH HS HR HSX HRX SHY RHY HSH HRH RHS SHR
//
// # Tables
//
// The composition table and inverses are derived at init from how each
// element conjugates the Paulis X, Y and Z. Two entry points name the two
// ways a widget composes:
//
//	clifford.ComposeLeft(g, q)  // g∘q: gate g arrives after queued q
//	clifford.ComposeRight(q, c) // q∘c: correction c pulled out of the tableau
//
// # Commutation maps
//
// CZMapCtrl, CZMapTarg and the four CNOTMap tables describe how a queued
// Clifford moves through a two-qubit gate: gate·(q⊗I) = (ctrl⊗targ)·gate.
// NOP marks entries that do not commute.
package clifford
