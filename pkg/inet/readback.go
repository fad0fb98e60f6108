package inet

import (
	"fmt"
	"strconv"

	"github.com/bits-and-blooms/bitset"
)

// ReadBack walks a fully-reduced net from ROOT and renders it per
// spec.md §4.6's grammar:
//
//	result := "(λ " result ")" | "(" result " " result ")" | <decimal> | "cell[" <u64> "]"
//	        | "uop[" name "](" result ")" | "bop[" name "](" result ", " result ")"
//	        | "if(" result ", " result ", " result ")" | "fix(" result ")"
//
// DUP nodes are transparent: a variable occurrence reached through a chain
// of DUP principals is resolved all the way back to its binder before a
// de Bruijn index is printed. A residual UOP/BOP/IF/FIX indicates a stuck
// term (an operand that never reduced to a literal) rather than an error:
// it renders as a tagged atom and readback continues into its remaining
// auxiliary ports.
func ReadBack(p *Pool) (string, error) {
	r := &reader{
		pool:       p,
		lamDepth:   make(map[uint32]int),
		onStack:    bitset.New(uint(p.lams.Len() + 1)),
		fixOnStack: bitset.New(uint(p.fixs.Len() + 1)),
	}
	return r.print(p.Root(), 0)
}

type reader struct {
	pool       *Pool
	lamDepth   map[uint32]int
	onStack    *bitset.BitSet
	fixOnStack *bitset.BitSet
}

// print follows src's wire and renders whatever sits on the other end.
func (r *reader) print(src Port, depth int) (string, error) {
	return r.printNode(r.pool.Neighbor(src), depth)
}

// printNode renders a normal-form value, or — per spec.md §4.6 — a tagged
// stuck atom when a UOP/BOP/IF/FIX agent remains on the output path because
// one of its operands never reduced to a literal. A stuck agent is not an
// error: it emits its tag and continues reading back whatever sits on its
// remaining auxiliary ports.
func (r *reader) printNode(nb Port, depth int) (string, error) {
	switch {
	case nb.Kind == Lam && nb.Slot == 0:
		return r.printLam(nb, depth)
	case nb.Kind == App && nb.Slot == 2:
		return r.printApp(nb, depth)
	case nb.Kind == Cell:
		return fmt.Sprintf("cell[%d]", r.pool.CellValue(nb)), nil
	case nb.Kind == Lam && nb.Slot == 2:
		return r.variableIndex(nb, depth)
	case nb.Kind == Dup:
		return r.variableIndex(r.resolveOccurrence(nb), depth)
	case nb.Kind == Uop && nb.Slot == 1:
		return r.printUop(nb, depth)
	case nb.Kind == Bop && nb.Slot == 2:
		return r.printBop(nb, depth)
	case nb.Kind == If && nb.Slot == 3:
		return r.printIf(nb, depth)
	case nb.Kind == Fix && nb.Slot == 0:
		return r.printFix(nb, depth)
	default:
		return "", &InvariantViolationError{
			Detail: fmt.Sprintf("readback: unexpected residual agent %s (slot %d) on the output path", nb.Kind, nb.Slot),
		}
	}
}

func (r *reader) printUop(uop Port, depth int) (string, error) {
	arg, err := r.print(Port{Kind: Uop, Idx: uop.Idx, Slot: 0}, depth)
	if err != nil {
		return "", err
	}
	return "uop[" + r.pool.UopName(uop) + "](" + arg + ")", nil
}

func (r *reader) printBop(bop Port, depth int) (string, error) {
	lhs, err := r.print(Port{Kind: Bop, Idx: bop.Idx, Slot: 0}, depth)
	if err != nil {
		return "", err
	}
	rhs, err := r.print(Port{Kind: Bop, Idx: bop.Idx, Slot: 1}, depth)
	if err != nil {
		return "", err
	}
	return "bop[" + r.pool.BopName(bop) + "](" + lhs + ", " + rhs + ")", nil
}

func (r *reader) printIf(iff Port, depth int) (string, error) {
	cond, err := r.print(Port{Kind: If, Idx: iff.Idx, Slot: 0}, depth)
	if err != nil {
		return "", err
	}
	then, err := r.print(Port{Kind: If, Idx: iff.Idx, Slot: 1}, depth)
	if err != nil {
		return "", err
	}
	els, err := r.print(Port{Kind: If, Idx: iff.Idx, Slot: 2}, depth)
	if err != nil {
		return "", err
	}
	return "if(" + cond + ", " + then + ", " + els + ")", nil
}

func (r *reader) printFix(fx Port, depth int) (string, error) {
	if r.fixOnStack.Test(uint(fx.Idx)) {
		return "", &InvariantViolationError{Detail: "readback found a cycle through a FIX node"}
	}
	r.fixOnStack.Set(uint(fx.Idx))
	defer r.fixOnStack.Clear(uint(fx.Idx))

	body, err := r.print(Port{Kind: Fix, Idx: fx.Idx, Slot: 1}, depth)
	if err != nil {
		return "", err
	}
	return "fix(" + body + ")", nil
}

func (r *reader) printLam(lam Port, depth int) (string, error) {
	if r.onStack.Test(uint(lam.Idx)) {
		return "", &InvariantViolationError{Detail: "readback found a cycle through a LAM node"}
	}
	r.onStack.Set(uint(lam.Idx))
	defer r.onStack.Clear(uint(lam.Idx))

	r.lamDepth[lam.Idx] = depth
	body, err := r.print(Port{Kind: Lam, Idx: lam.Idx, Slot: 1}, depth+1)
	if err != nil {
		return "", err
	}
	return "(λ " + body + ")", nil
}

func (r *reader) printApp(app Port, depth int) (string, error) {
	fn, err := r.print(Port{Kind: App, Idx: app.Idx, Slot: 0}, depth)
	if err != nil {
		return "", err
	}
	arg, err := r.print(Port{Kind: App, Idx: app.Idx, Slot: 1}, depth)
	if err != nil {
		return "", err
	}
	return "(" + fn + " " + arg + ")", nil
}

// resolveOccurrence follows a chain of DUP principal ports back to the
// binder's aux port they ultimately fan out from.
func (r *reader) resolveOccurrence(p Port) Port {
	cur := p
	for cur.Kind == Dup {
		cur = r.pool.Neighbor(Port{Kind: Dup, Idx: cur.Idx, Slot: 0})
	}
	return cur
}

func (r *reader) variableIndex(binder Port, depth int) (string, error) {
	if binder.Kind != Lam || binder.Slot != 2 {
		return "", &InvariantViolationError{Detail: "variable occurrence did not resolve to a binder's aux port"}
	}
	binderDepth, ok := r.lamDepth[binder.Idx]
	if !ok {
		return "", &InvariantViolationError{Detail: "variable occurrence references a binder not on the current path"}
	}
	return strconv.Itoa(depth - binderDepth - 1), nil
}
