package inet

import (
	"errors"
	"testing"
)

var errBoom = errors.New("boom")

// openTestPool opens an unbounded pool for one test, closes it when the
// test ends, and returns it with its ROOT port.
func openTestPool(t *testing.T) (*Pool, Port) {
	t.Helper()
	p, root := Open(Limits{})
	t.Cleanup(p.Close)
	return p, root
}

func TestBetaIdentity(t *testing.T) {
	// (λx.x) cell[7] — the fanInLeaves k==1 fast path wires body straight
	// to bound, so beta must special-case it (see engine.go / DESIGN.md).
	p, root := openTestPool(t)

	lam := p.NewLam()
	p.Connect(Port{Lam, lam.Idx, 1}, Port{Lam, lam.Idx, 2})

	app := p.NewApp()
	p.Connect(Port{App, app.Idx, 0}, lam)
	cell := p.NewCell(7)
	p.Connect(Port{App, app.Idx, 1}, cell)
	p.Connect(Port{App, app.Idx, 2}, root)

	stats, err := Reduce(p)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if stats.ByRule[RuleBeta] != 1 {
		t.Fatalf("expected exactly one beta step, got %d", stats.ByRule[RuleBeta])
	}
	if got := p.CellValue(p.Neighbor(root)); got != 7 {
		t.Fatalf("expected root to reach cell[7], got cell[%d]", got)
	}
}

func TestBetaDiscardsUnusedBinder(t *testing.T) {
	// (λx. cell[9]) cell[3] — x unused, so the builder would attach an ERA
	// to the bound port (fanInLeaves k==0); this test wires that directly.
	p, root := openTestPool(t)

	lam := p.NewLam()
	era := p.NewEra()
	p.Connect(Port{Lam, lam.Idx, 2}, era)
	body := p.NewCell(9)
	p.Connect(Port{Lam, lam.Idx, 1}, body)

	app := p.NewApp()
	p.Connect(Port{App, app.Idx, 0}, lam)
	arg := p.NewCell(3)
	p.Connect(Port{App, app.Idx, 1}, arg)
	p.Connect(Port{App, app.Idx, 2}, root)

	stats, err := Reduce(p)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if stats.ByRule[RuleBeta] != 1 || stats.ByRule[RuleErasure] != 1 {
		t.Fatalf("expected one beta and one erasure, got beta=%d erasure=%d",
			stats.ByRule[RuleBeta], stats.ByRule[RuleErasure])
	}
	if got := p.CellValue(p.Neighbor(root)); got != 9 {
		t.Fatalf("expected root to reach cell[9], got cell[%d]", got)
	}
}

func TestDupAnnihilate(t *testing.T) {
	// Two same-level DUP principals meeting annihilate, wiring their aux
	// legs straight across: DUP_0(cell[1], cell[2]) meeting a DUP_0 whose
	// legs are ROOT and an ERA reconnects leg-to-leg, so ROOT gets cell[1].
	p, root := openTestPool(t)

	d1 := p.NewDup(0)
	c1 := p.NewCell(1)
	c2 := p.NewCell(2)
	p.Connect(Port{Dup, d1.Idx, 1}, c1)
	p.Connect(Port{Dup, d1.Idx, 2}, c2)

	d2 := p.NewDup(0)
	p.Connect(d1, d2)
	p.Connect(Port{Dup, d2.Idx, 1}, root)
	out2 := p.NewEra()
	p.Connect(Port{Dup, d2.Idx, 2}, out2)

	stats, err := Reduce(p)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if stats.ByRule[RuleDupAnnihilate] != 1 {
		t.Fatalf("expected one dup-annihilate step, got %d", stats.ByRule[RuleDupAnnihilate])
	}
	if got := p.CellValue(p.Neighbor(root)); got != 1 {
		t.Fatalf("expected root to reach cell[1], got cell[%d]", got)
	}
}

func TestDupCommuteAcrossLam(t *testing.T) {
	// A DUP meeting a LAM (different agent kind, the generic commutation
	// rule) clones the LAM into two, each wired through a fresh DUP of the
	// same level for every aux leg.
	p, root := openTestPool(t)

	lam := p.NewLam()
	bodyEra := p.NewEra()
	p.Connect(Port{Lam, lam.Idx, 1}, bodyEra)
	boundEra := p.NewEra()
	p.Connect(Port{Lam, lam.Idx, 2}, boundEra)

	dup := p.NewDup(0)
	p.Connect(dup, lam)
	p.Connect(Port{Dup, dup.Idx, 1}, root)
	out2 := p.NewEra()
	p.Connect(Port{Dup, dup.Idx, 2}, out2)

	stats, err := Reduce(p)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if stats.ByRule[RuleDupCommute] != 1 {
		t.Fatalf("expected one dup-commute step, got %d", stats.ByRule[RuleDupCommute])
	}
	nb := p.Neighbor(root)
	if nb.Kind != Lam {
		t.Fatalf("expected root to reach a cloned LAM, got %s", nb.Kind)
	}
}

func TestDupDifferentLevelsCommute(t *testing.T) {
	// DUP_0 meeting DUP_1 (different levels) must route through the
	// generic commute rule, not annihilate (the "oracle rule", DESIGN.md).
	p, root := openTestPool(t)

	d0 := p.NewDup(0)
	e1 := p.NewEra()
	e2 := p.NewEra()
	p.Connect(Port{Dup, d0.Idx, 1}, e1)
	p.Connect(Port{Dup, d0.Idx, 2}, e2)

	d1 := p.NewDup(1)
	p.Connect(d0, d1)
	p.Connect(Port{Dup, d1.Idx, 1}, root)
	out2 := p.NewEra()
	p.Connect(Port{Dup, d1.Idx, 2}, out2)

	stats, err := Reduce(p)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if stats.ByRule[RuleDupAnnihilate] != 0 {
		t.Fatalf("mismatched-level DUPs must not annihilate, got %d annihilations",
			stats.ByRule[RuleDupAnnihilate])
	}
	if stats.ByRule[RuleDupCommute] != 1 {
		t.Fatalf("expected one dup-commute step, got %d", stats.ByRule[RuleDupCommute])
	}
}

func TestUnaryOp(t *testing.T) {
	p, root := openTestPool(t)
	uop := p.NewUop("double", func(x uint64) (uint64, error) { return x * 2, nil })
	p.Connect(Port{Uop, uop.Idx, 1}, root)
	cell := p.NewCell(21)
	p.Connect(Port{Uop, uop.Idx, 0}, cell)

	stats, err := Reduce(p)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if stats.ByRule[RuleUnaryOp] != 1 {
		t.Fatalf("expected one unary-op step, got %d", stats.ByRule[RuleUnaryOp])
	}
	if got := p.CellValue(p.Neighbor(root)); got != 42 {
		t.Fatalf("expected cell[42], got cell[%d]", got)
	}
}

func TestUnaryOpForeignTrap(t *testing.T) {
	p, root := openTestPool(t)
	uop := p.NewUop("boom", func(x uint64) (uint64, error) {
		return 0, errBoom
	})
	p.Connect(Port{Uop, uop.Idx, 1}, root)
	cell := p.NewCell(1)
	p.Connect(Port{Uop, uop.Idx, 0}, cell)

	_, err := Reduce(p)
	if err == nil {
		t.Fatal("expected a ForeignCallTrapError")
	}
	var trap *ForeignCallTrapError
	if !errors.As(err, &trap) {
		t.Fatalf("expected *ForeignCallTrapError, got %T: %v", err, err)
	}
	if !errors.Is(trap.Unwrap(), errBoom) {
		t.Fatalf("expected wrapped errBoom, got %v", trap.Unwrap())
	}
}

func TestBinaryOpTwoStepPartialApplication(t *testing.T) {
	// SPEC_FULL.md §8's partial-application note: the two CELL operands
	// may arrive on separate reduction steps, not necessarily together.
	p, root := openTestPool(t)
	bop := p.NewBop("subtract", func(x, y uint64) (uint64, error) { return x - y, nil })
	p.Connect(Port{Bop, bop.Idx, 2}, root)
	lhs := p.NewCell(10)
	p.Connect(Port{Bop, bop.Idx, 0}, lhs)
	rhs := p.NewCell(8)
	p.Connect(Port{Bop, bop.Idx, 1}, rhs)

	stats, err := Reduce(p)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if stats.ByRule[RuleBinaryOp] != 2 {
		t.Fatalf("expected two binary-op steps (partial then complete), got %d",
			stats.ByRule[RuleBinaryOp])
	}
	if got := p.CellValue(p.Neighbor(root)); got != 2 {
		t.Fatalf("expected cell[2], got cell[%d]", got)
	}
}

func TestIfSelectErasesDiscardedBranch(t *testing.T) {
	p, root := openTestPool(t)
	iff := p.NewIf()
	p.Connect(Port{If, iff.Idx, 3}, root)
	thenCell := p.NewCell(100)
	p.Connect(Port{If, iff.Idx, 1}, thenCell)
	elseCell := p.NewCell(200)
	p.Connect(Port{If, iff.Idx, 2}, elseCell)
	cond := p.NewCell(0)
	p.Connect(Port{If, iff.Idx, 0}, cond)

	stats, err := Reduce(p)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if stats.ByRule[RuleIf] != 1 || stats.ByRule[RuleErasure] != 1 {
		t.Fatalf("expected one if and one erasure, got if=%d erasure=%d",
			stats.ByRule[RuleIf], stats.ByRule[RuleErasure])
	}
	if got := p.CellValue(p.Neighbor(root)); got != 200 {
		t.Fatalf("cond==0 should select ELSE, got cell[%d]", got)
	}
}

func TestFixForwardsOnce(t *testing.T) {
	// fix(λrec. cell[5]) — rec unused, so the fan-in tree degenerates to
	// FIX's own principal serving as the sole external leaf (k==1 fast
	// path, DESIGN.md's resolved Open Question). ROOT never forms a
	// scheduler-discovered active pair (it anchors the net, it doesn't
	// rewrite), so this calls fixForward directly rather than routing
	// through Reduce's activePairs() seeding.
	p, root := openTestPool(t)
	fx := p.NewFix()
	body := p.NewCell(5)
	p.Connect(Port{Fix, fx.Idx, 1}, body)

	sched := newScheduler()
	stats := &Stats{}
	fixForward(p, sched, stats, fx, root, 0)

	if stats.ByRule[RuleFixUnfold] != 1 {
		t.Fatalf("expected one fix-unfold step, got %d", stats.ByRule[RuleFixUnfold])
	}
	if got := p.CellValue(p.Neighbor(root)); got != 5 {
		t.Fatalf("expected cell[5], got cell[%d]", got)
	}
}

func TestFixForwardPriorityOverCommute(t *testing.T) {
	// A DUP meeting a FIX must always forward first (DESIGN.md's resolved
	// Open Question), never clone the FIX node itself the way the generic
	// arity-based commutation rule would. Here FIX forwards to expose the
	// literal cell underneath, and *that* is what the DUP legitimately goes
	// on to duplicate — one fix-unfold step followed by one dup-commute
	// step against the revealed CELL, never a commute against FIX itself.
	p, root := openTestPool(t)
	fx := p.NewFix()
	body := p.NewCell(5)
	p.Connect(Port{Fix, fx.Idx, 1}, body)

	dup := p.NewDup(0)
	p.Connect(dup, fx)
	p.Connect(Port{Dup, dup.Idx, 1}, root)
	out2 := p.NewEra()
	p.Connect(Port{Dup, dup.Idx, 2}, out2)

	stats, err := Reduce(p)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if stats.ByRule[RuleFixUnfold] != 1 {
		t.Fatalf("expected the FIX forwarding rule to fire once, got %d fix-unfold steps",
			stats.ByRule[RuleFixUnfold])
	}
	if stats.ByRule[RuleDupCommute] != 1 {
		t.Fatalf("expected the DUP to commute past the revealed CELL once, got %d",
			stats.ByRule[RuleDupCommute])
	}
	if got := p.CellValue(p.Neighbor(root)); got != 5 {
		t.Fatalf("expected root to reach a cloned cell[5], got cell[%d]", got)
	}
}
