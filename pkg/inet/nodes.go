package inet

// UnaryFn is a host-provided foreign function backing a UOP agent.
// ForeignCallTrapError is returned (never panicked) so the driver can
// surface it to the caller per spec.md §7 — the host decides what a
// trapped call means.
type UnaryFn func(x uint64) (uint64, error)

// BinaryFn is a host-provided foreign function backing a BOP agent.
type BinaryFn func(x, y uint64) (uint64, error)

// RootNode anchors the whole net: the one live, externally-observable
// term. Port 0 is its principal (and only) port.
type RootNode struct {
	Ports [1]Port
}

// LamNode is a lambda abstraction. Port 0: principal. Port 1: body.
// Port 2: bound-variable occurrence site (fed by the builder's fan-in
// tree of DUP_0 leaves, or wired directly to a single occurrence, or to
// an ERA if the variable is unused).
type LamNode struct {
	Ports [3]Port
}

// AppNode is a function application. Port 0: principal (meets a LAM's
// principal or passes through commutation). Port 1: argument. Port 2:
// result.
type AppNode struct {
	Ports [3]Port
}

// DupNode duplicates whatever reaches its principal port into its two
// auxiliary ports, tagged with a sharing Level so that a DUP meeting a
// DUP of the same level annihilates (genuine re-merge of one duplicated
// value) while differing levels commute (oracle rule, spec.md §3.1/§4.4).
type DupNode struct {
	Ports [3]Port
	Level uint32
}

// EraNode discards whatever reaches its single port, recursively erasing
// every agent structurally behind it.
type EraNode struct {
	Ports [1]Port
}

// CellNode carries one opaque machine word, the sole literal data agent.
type CellNode struct {
	Ports [1]Port
	Value uint64
}

// UopNode applies a unary foreign function once its argument port meets a
// CELL. Port 0: principal (the argument arrives here). Port 1: result.
type UopNode struct {
	Ports [2]Port
	Name  string
	Fn    UnaryFn
}

// BopNode applies a binary foreign function once both its operand ports
// have each met a CELL. Port 0: principal (first operand). Port 1: second
// operand. Port 2: result. Operands may arrive on separate reduction
// steps (spec.md §4.4's partial-application note, SPEC_FULL.md §8).
type BopNode struct {
	Ports    [3]Port
	Name     string
	Fn       BinaryFn
	pending  bool // operand 0 already resolved to a literal
	literal0 uint64
}

// IfNode selects Then or Else once its condition port meets a CELL (the
// boolean convention: 0 is false, any nonzero is true). Port 0: principal
// (condition). Port 1: then-branch. Port 2: else-branch. Port 3: result.
type IfNode struct {
	Ports [4]Port
}

// FixNode is the one-shot recursion-unfolding agent described in
// SPEC_FULL.md §4.4.1 and DESIGN.md. Port 0: principal. Port 1: body
// (the wrapped abstraction's own output port).
type FixNode struct {
	Ports [2]Port
}
