package clifford

// Commutation maps for pushing a queued Clifford q through a two-qubit gate.
// For a CZ with q on the control: CZ·(q⊗I) = (CZMapCtrl[q] ⊗ CZMapTarg[q])·CZ.
// The CNOT maps follow the same shape. NOP entries do not commute.
var (
	CZMapCtrl = [Count]ID{
		I, X, Y, Z, NOP, S, R, NOP, SX, RX,
		NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP,
	}
	CZMapTarg = [Count]ID{
		I, Z, Z, I, NOP, I, I, NOP, Z, Z,
		NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP,
	}

	// Queued on the control: the element left on the control and on the target.
	CNOTMapCtrlCtrl = CZMapCtrl
	CNOTMapCtrlTarg = [Count]ID{
		I, X, X, I, NOP, I, I, NOP, X, X,
		NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP,
	}

	// Queued on the target: the element left on the target and on the control.
	CNOTMapTargTarg = [Count]ID{
		I, X, Y, Z,
		NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP,
		HSH, HRH, RHS, SHR,
	}
	CNOTMapTargCtrl = [Count]ID{
		I, I, Z, Z,
		NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP, NOP,
		I, I, Z, Z,
	}
)
