package inet

import "fmt"

// connectAndSchedule is the only place new active pairs are discovered: a
// wire is an active pair exactly when both its ends are principal ports
// (spec.md §3.1), with ROOT excluded since it anchors the net rather than
// taking part in rewriting.
func connectAndSchedule(p *Pool, s *scheduler, a, b Port, depth int) {
	p.Connect(a, b)
	if a.Slot == 0 && b.Slot == 0 && a.Kind != Root && b.Kind != Root {
		s.push(ActivePair{Left: a, Right: b}, depth)
	}
}

// match2 reports whether pair is an unordered (k1, k2) match, returning the
// two ports in (k1-role, k2-role) order regardless of which side of the
// pair they arrived on.
func match2(pair ActivePair, k1, k2 Kind) (p1, p2 Port, ok bool) {
	if pair.Left.Kind == k1 && pair.Right.Kind == k2 {
		return pair.Left, pair.Right, true
	}
	if pair.Left.Kind == k2 && pair.Right.Kind == k1 {
		return pair.Right, pair.Left, true
	}
	return Port{}, Port{}, false
}

func matchKind(pair ActivePair, k Kind) (self, other Port, ok bool) {
	if pair.Left.Kind == k {
		return pair.Left, pair.Right, true
	}
	if pair.Right.Kind == k {
		return pair.Right, pair.Left, true
	}
	return Port{}, Port{}, false
}

// rewrite applies the one rule matching pair's agent kinds and reports any
// ForeignCallTrapError from a host-provided UOP/BOP function. All other
// failure modes (PoolExhausted, InvariantViolation) are fatal and are
// raised as panics/glog.Fatal from deeper in the pool, per spec.md §7.
func rewrite(p *Pool, s *scheduler, st *Stats, pair ActivePair, depth int) error {
	if lam, app, ok := match2(pair, Lam, App); ok {
		beta(p, s, st, lam, app, depth)
		return nil
	}
	if fx, other, ok := matchKind(pair, Fix); ok {
		fixForward(p, s, st, fx, other, depth)
		return nil
	}
	if pair.Left.Kind == Dup && pair.Right.Kind == Dup {
		dupDup(p, s, st, pair.Left, pair.Right, depth)
		return nil
	}
	if era, other, ok := matchKind(pair, Era); ok {
		erase(p, s, st, era, other, depth)
		return nil
	}
	if dup, other, ok := matchKind(pair, Dup); ok {
		commute(p, s, st, dup, other, depth)
		return nil
	}
	if uop, cell, ok := match2(pair, Uop, Cell); ok {
		return unaryOp(p, s, st, uop, cell, depth)
	}
	if bop, cell, ok := match2(pair, Bop, Cell); ok {
		return binaryOp(p, s, st, bop, cell, depth)
	}
	if iff, cell, ok := match2(pair, If, Cell); ok {
		ifSelect(p, s, st, iff, cell, depth)
		return nil
	}
	panic(&InvariantViolationError{
		Detail: fmt.Sprintf("no rewrite rule for active pair (%s, %s)", pair.Left.Kind, pair.Right.Kind),
	})
}

// beta is the classic LAM/APP interaction: the lambda's body replaces the
// application, and the argument flows into the bound-variable site.
// Preserves depth (spec.md §4.5: beta does not increase scheduling depth).
func beta(p *Pool, s *scheduler, st *Stats, lam, app Port, depth int) {
	bodyTarget := p.Neighbor(Port{Lam, lam.Idx, 1})
	boundTarget := p.Neighbor(Port{Lam, lam.Idx, 2})
	argTarget := p.Neighbor(Port{App, app.Idx, 1})
	resTarget := p.Neighbor(Port{App, app.Idx, 2})

	// A lambda whose entire body is its own bound variable's single
	// occurrence (translate.go's fanInLeaves k==1 fast path, e.g. λx.x)
	// wires slot 1 and slot 2 directly to each other. bodyTarget/boundTarget
	// then point back into the very node about to be freed; the correct
	// rewrite is to connect the argument straight through to the result,
	// bypassing both freed ports rather than reconnecting through them.
	identity := bodyTarget.Kind == Lam && bodyTarget.Idx == lam.Idx

	p.free(lam)
	p.free(app)

	if identity {
		connectAndSchedule(p, s, argTarget, resTarget, depth)
	} else {
		connectAndSchedule(p, s, bodyTarget, resTarget, depth)
		connectAndSchedule(p, s, boundTarget, argTarget, depth)
	}
	st.record(RuleBeta, Lam, App)
}

// fixForward realizes the DESIGN.md-resolved FIX rule: FIX is a one-shot
// forwarder. Whatever meets its principal port connects directly to the
// wrapped abstraction's output, and FIX is freed — no new node is ever
// allocated by this rule, because the recursive sharing structure was
// already built once by the net builder.
func fixForward(p *Pool, s *scheduler, st *Stats, fx, other Port, depth int) {
	mPort := p.Neighbor(Port{Fix, fx.Idx, 1})
	p.free(fx)
	connectAndSchedule(p, s, other, mPort, depth)
	st.record(RuleFixUnfold, Fix, other.Kind)
}

// dupDup handles two DUP principals meeting: same level annihilates
// (genuine re-merge of a single duplicated value); different level
// commutes via the oracle rule (DESIGN.md), treating one side as an
// ordinary agent the other duplicates through.
func dupDup(p *Pool, s *scheduler, st *Stats, a, b Port, depth int) {
	if p.DupLevel(a) != p.DupLevel(b) {
		commute(p, s, st, a, b, depth)
		return
	}
	t1 := p.Neighbor(Port{Dup, a.Idx, 1})
	t2 := p.Neighbor(Port{Dup, a.Idx, 2})
	u1 := p.Neighbor(Port{Dup, b.Idx, 1})
	u2 := p.Neighbor(Port{Dup, b.Idx, 2})
	p.free(a)
	p.free(b)
	connectAndSchedule(p, s, t1, u1, depth)
	connectAndSchedule(p, s, t2, u2, depth)
	st.record(RuleDupAnnihilate, Dup, Dup)
}

// erase propagates an ERA through any agent it meets: each of that agent's
// auxiliary legs is handed a fresh ERA, and both original nodes are freed.
// Arity-1 agents (ERA, CELL, ROOT) have no aux legs, so two ERAs meeting
// (or an ERA meeting a CELL) simply annihilate with nothing propagated.
func erase(p *Pool, s *scheduler, st *Stats, era, x Port, depth int) {
	n := x.Kind.Arity()
	targets := make([]Port, 0, n-1)
	for slot := 1; slot < n; slot++ {
		targets = append(targets, p.Neighbor(Port{x.Kind, x.Idx, uint8(slot)}))
	}
	xKind := x.Kind
	p.free(era)
	p.free(x)
	for _, t := range targets {
		e := p.NewEra()
		connectAndSchedule(p, s, e, t, depth)
	}
	st.record(RuleErasure, Era, xKind)
}

// commute is the generic DUP-meets-anything-else rule (spec.md §4.4): the
// other agent is split into two fresh copies, its own auxiliary legs are
// each threaded through a new DUP of the acting duplicator's level, and the
// two copies are handed to the duplicator's own two legs. Depth increases
// by one on every wire this rule creates (spec.md §4.5's "fairness" via
// depth-indexed scheduling).
func commute(p *Pool, s *scheduler, st *Stats, dup, x Port, depth int) {
	level := p.DupLevel(dup)
	q1 := p.Neighbor(Port{Dup, dup.Idx, 1})
	q2 := p.Neighbor(Port{Dup, dup.Idx, 2})

	n := x.Kind.Arity()
	auxTargets := make([]Port, 0, n-1)
	for slot := 1; slot < n; slot++ {
		auxTargets = append(auxTargets, p.Neighbor(Port{x.Kind, x.Idx, uint8(slot)}))
	}
	xKind := x.Kind

	x1 := p.clone(x)
	x2 := p.clone(x)

	p.free(dup)
	p.free(x)

	for i, t := range auxTargets {
		slot := uint8(i + 1)
		d := p.NewDup(level)
		connectAndSchedule(p, s, d, t, depth+1)
		connectAndSchedule(p, s, Port{Dup, d.Idx, 1}, Port{x1.Kind, x1.Idx, slot}, depth+1)
		connectAndSchedule(p, s, Port{Dup, d.Idx, 2}, Port{x2.Kind, x2.Idx, slot}, depth+1)
	}
	connectAndSchedule(p, s, q1, x1, depth+1)
	connectAndSchedule(p, s, q2, x2, depth+1)
	st.record(RuleDupCommute, Dup, xKind)
}

// clone allocates a fresh node of x's kind carrying the same payload
// (level, literal, or foreign-function fields), for use by commute. FIX is
// deliberately not reachable here: a DUP meeting a FIX always dispatches to
// fixForward first (DESIGN.md's resolved Open Question), never to commute.
func (p *Pool) clone(x Port) Port {
	switch x.Kind {
	case Lam:
		return p.NewLam()
	case App:
		return p.NewApp()
	case Dup:
		return p.NewDup(p.DupLevel(x))
	case Cell:
		return p.NewCell(p.CellValue(x))
	case Uop:
		n := p.uops.At(x.Idx)
		return p.NewUop(n.Name, n.Fn)
	case Bop:
		n := p.bops.At(x.Idx)
		pending, literal0 := n.pending, n.literal0
		clone := p.NewBop(n.Name, n.Fn)
		if pending {
			cn := p.bops.At(clone.Idx)
			cn.pending, cn.literal0 = true, literal0
		}
		return clone
	case If:
		return p.NewIf()
	default:
		panic(&InvariantViolationError{Detail: fmt.Sprintf("clone of non-commutable kind %s", x.Kind)})
	}
}

// unaryOp fires a UOP once its principal meets the CELL carrying its
// argument, calling the host function and wiring a fresh CELL with the
// result to whatever consumed the call.
func unaryOp(p *Pool, s *scheduler, st *Stats, uop, cell Port, depth int) error {
	n := p.uops.At(uop.Idx)
	name, fn := n.Name, n.Fn
	arg := p.CellValue(cell)
	resTarget := p.Neighbor(Port{Uop, uop.Idx, 1})

	p.free(uop)
	p.free(cell)

	result, err := fn(arg)
	if err != nil {
		return &ForeignCallTrapError{Name: name, Err: err}
	}
	res := p.NewCell(result)
	connectAndSchedule(p, s, res, resTarget, depth)
	st.record(RuleUnaryOp, Uop, Cell)
	return nil
}

// binaryOp fires in two steps, matching SPEC_FULL.md §8's partial-
// application note: the first CELL to meet BOP's principal is remembered
// (literal0) and the node's own principal leg is re-pointed at its second
// operand's wire, so a later CELL arriving there re-enters this function
// and computes the final result.
func binaryOp(p *Pool, s *scheduler, st *Stats, bop, cell Port, depth int) error {
	n := p.bops.At(bop.Idx)
	if !n.pending {
		v0 := p.CellValue(cell)
		op1Slot := Port{Bop, bop.Idx, 1}
		op1Target := p.Neighbor(op1Slot)
		p.free(cell)
		n.pending = true
		n.literal0 = v0
		connectAndSchedule(p, s, Port{Bop, bop.Idx, 0}, op1Target, depth)
		// op1Target's back-pointer now aims at slot0, not slot1 — leaving
		// slot1 pointed at op1Target too would be a stale, one-sided wire.
		// slot1 is never read again before bop is freed below, but a
		// self-loop keeps the invariant that every live port's neighbor
		// slot is internally consistent.
		*p.neighborSlot(op1Slot) = op1Slot
		st.record(RuleBinaryOp, Bop, Cell)
		return nil
	}

	name, fn, v0 := n.Name, n.Fn, n.literal0
	v1 := p.CellValue(cell)
	resTarget := p.Neighbor(Port{Bop, bop.Idx, 2})

	p.free(cell)
	p.free(bop)

	result, err := fn(v0, v1)
	if err != nil {
		return &ForeignCallTrapError{Name: name, Err: err}
	}
	res := p.NewCell(result)
	connectAndSchedule(p, s, res, resTarget, depth)
	st.record(RuleBinaryOp, Bop, Cell)
	return nil
}

// ifSelect picks the THEN or ELSE branch by the condition CELL's value (0
// is false, any nonzero is true) and erases the branch not taken.
func ifSelect(p *Pool, s *scheduler, st *Stats, iff, cell Port, depth int) {
	v := p.CellValue(cell)
	thenTarget := p.Neighbor(Port{If, iff.Idx, 1})
	elseTarget := p.Neighbor(Port{If, iff.Idx, 2})
	resTarget := p.Neighbor(Port{If, iff.Idx, 3})

	p.free(iff)
	p.free(cell)

	chosen, discarded := elseTarget, thenTarget
	if v != 0 {
		chosen, discarded = thenTarget, elseTarget
	}
	connectAndSchedule(p, s, chosen, resTarget, depth)
	era := p.NewEra()
	connectAndSchedule(p, s, era, discarded, depth)
	st.record(RuleIf, If, Cell)
}
