package lambda

import "github.com/vic/lambdanet/pkg/inet"

// ToNet lowers term onto pool, wiring its output to pool's ROOT, and
// returns any malformed-term error caught during the build (spec.md §7's
// InvalidTerm case: a free variable, a fix() whose argument is not a
// lambda, or a nil subterm). Grounded on the teacher's two-pass buildTerm
// (pkg/deltanet's translate.go): count occurrences first, then build with a
// live environment — but the concrete algorithm is new, since spec.md's
// DUP_k is strictly binary where the teacher's Replicator grows an
// arbitrary-arity leg on demand (DESIGN.md).
func ToNet(pool *inet.Pool, term Term) error {
	occ := make(map[*Binder]int)
	if err := countOccurrences(term, occ); err != nil {
		return err
	}
	env := make(map[*Binder][]inet.Port)
	return build(pool, occ, env, term, pool.Root())
}

func countOccurrences(term Term, occ map[*Binder]int) error {
	if term == nil {
		return &inet.InvalidTermError{Reason: "nil subterm"}
	}
	switch t := term.(type) {
	case VarTerm:
		occ[t.Bound]++
		return nil
	case LamTerm:
		return countOccurrences(t.Body, occ)
	case AppTerm:
		if err := countOccurrences(t.Fn, occ); err != nil {
			return err
		}
		return countOccurrences(t.Arg, occ)
	case FixTerm:
		return countOccurrences(t.Fn, occ)
	case IfTerm:
		if err := countOccurrences(t.Cond, occ); err != nil {
			return err
		}
		if err := countOccurrences(t.Then, occ); err != nil {
			return err
		}
		return countOccurrences(t.Else, occ)
	case CellTerm:
		return nil
	case UnaryTerm:
		return countOccurrences(t.Arg, occ)
	case BinaryTerm:
		if err := countOccurrences(t.Lhs, occ); err != nil {
			return err
		}
		return countOccurrences(t.Rhs, occ)
	default:
		return &inet.InvalidTermError{Reason: "unknown term kind in occurrence pass"}
	}
}

// build recurs over term, wiring the net it constructs directly to target
// (the port wherever this subterm plugs into its parent), consuming one
// pre-sized fan-in leaf per variable occurrence in left-to-right encounter
// order.
func build(pool *inet.Pool, occ map[*Binder]int, env map[*Binder][]inet.Port, term Term, target inet.Port) error {
	if term == nil {
		return &inet.InvalidTermError{Reason: "nil subterm"}
	}
	switch t := term.(type) {
	case VarTerm:
		leaves, ok := env[t.Bound]
		if !ok {
			return &inet.InvalidTermError{Reason: "free variable " + t.Bound.Name}
		}
		if len(leaves) == 0 {
			return &inet.InvalidTermError{Reason: "more occurrences of " + t.Bound.Name + " than counted"}
		}
		pool.Connect(leaves[0], target)
		env[t.Bound] = leaves[1:]
		return nil

	case LamTerm:
		lam := pool.NewLam()
		pool.Connect(lam, target)
		bound := inet.Port{Kind: inet.Lam, Idx: lam.Idx, Slot: 2}
		env[t.Bound] = fanInLeaves(pool, bound, occ[t.Bound])
		return build(pool, occ, env, t.Body, inet.Port{Kind: inet.Lam, Idx: lam.Idx, Slot: 1})

	case AppTerm:
		app := pool.NewApp()
		result := inet.Port{Kind: inet.App, Idx: app.Idx, Slot: 2}
		pool.Connect(result, target)
		if err := build(pool, occ, env, t.Fn, inet.Port{Kind: inet.App, Idx: app.Idx, Slot: 0}); err != nil {
			return err
		}
		return build(pool, occ, env, t.Arg, inet.Port{Kind: inet.App, Idx: app.Idx, Slot: 1})

	case FixTerm:
		lamTerm, ok := t.Fn.(LamTerm)
		if !ok {
			return &inet.InvalidTermError{Reason: "fix() argument must be a lambda"}
		}
		fx := pool.NewFix()
		leaves := fanInLeaves(pool, fx, occ[lamTerm.Bound]+1)
		external := leaves[len(leaves)-1]
		pool.Connect(external, target)
		env[lamTerm.Bound] = leaves[:len(leaves)-1]
		return build(pool, occ, env, lamTerm.Body, inet.Port{Kind: inet.Fix, Idx: fx.Idx, Slot: 1})

	case IfTerm:
		iff := pool.NewIf()
		result := inet.Port{Kind: inet.If, Idx: iff.Idx, Slot: 3}
		pool.Connect(result, target)
		if err := build(pool, occ, env, t.Cond, inet.Port{Kind: inet.If, Idx: iff.Idx, Slot: 0}); err != nil {
			return err
		}
		if err := build(pool, occ, env, t.Then, inet.Port{Kind: inet.If, Idx: iff.Idx, Slot: 1}); err != nil {
			return err
		}
		return build(pool, occ, env, t.Else, inet.Port{Kind: inet.If, Idx: iff.Idx, Slot: 2})

	case CellTerm:
		cell := pool.NewCell(t.Value)
		pool.Connect(cell, target)
		return nil

	case UnaryTerm:
		uop := pool.NewUop(t.Name, t.Fn)
		result := inet.Port{Kind: inet.Uop, Idx: uop.Idx, Slot: 1}
		pool.Connect(result, target)
		return build(pool, occ, env, t.Arg, inet.Port{Kind: inet.Uop, Idx: uop.Idx, Slot: 0})

	case BinaryTerm:
		bop := pool.NewBop(t.Name, t.Fn)
		result := inet.Port{Kind: inet.Bop, Idx: bop.Idx, Slot: 2}
		pool.Connect(result, target)
		if err := build(pool, occ, env, t.Lhs, inet.Port{Kind: inet.Bop, Idx: bop.Idx, Slot: 0}); err != nil {
			return err
		}
		return build(pool, occ, env, t.Rhs, inet.Port{Kind: inet.Bop, Idx: bop.Idx, Slot: 1})

	default:
		return &inet.InvalidTermError{Reason: "unknown term kind in build pass"}
	}
}

// fanInLeaves wires root to a left-leaning chain of binary DUP_0 nodes
// (a degenerate fan-in tree) and returns k leaf ports to hand to
// occurrences in encounter order. k == 0 attaches an ERA to root (an
// unused binder); k == 1 needs no DUP at all — root itself is the single
// leaf, and the one occurrence connects directly to it.
func fanInLeaves(pool *inet.Pool, root inet.Port, k int) []inet.Port {
	if k == 0 {
		era := pool.NewEra()
		pool.Connect(era, root)
		return nil
	}
	if k == 1 {
		return []inet.Port{root}
	}
	leaves := make([]inet.Port, k)
	cur := root
	for i := 0; i < k-1; i++ {
		d := pool.NewDup(0)
		pool.Connect(cur, d)
		leaves[i] = inet.Port{Kind: inet.Dup, Idx: d.Idx, Slot: 1}
		cur = inet.Port{Kind: inet.Dup, Idx: d.Idx, Slot: 2}
	}
	leaves[k-1] = cur
	return leaves
}

// FromNet reduces pool to normal form and renders the result per
// spec.md §4.6's grammar.
func FromNet(pool *inet.Pool) (string, *inet.Stats, error) {
	stats, err := inet.Reduce(pool)
	if err != nil {
		return "", stats, err
	}
	pool.Canonicalize()
	text, err := inet.ReadBack(pool)
	return text, stats, err
}
