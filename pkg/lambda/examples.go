package lambda

// This file builds the demo terms spec.md §8 and SPEC_FULL.md §8 name:
// combinators, Church arithmetic, and Scott-encoded list sorting with
// foreign-arithmetic digit concatenation, the latter grounded directly on
// original_source/tests.c's insertion-sort/quicksort/concatenate-digits
// test functions. cmd/lambdanet's scenario argument and pkg/lambda's
// endtoend_test.go both build terms from here, so the CLI demo and the
// test suite can never drift apart.

// --- combinators ---

// SKKTerm builds S K K, which reduces to the identity function.
func SKKTerm() Term {
	s := Lambda("x", func(x *Binder) Term {
		return Lambda("y", func(y *Binder) Term {
			return Lambda("z", func(z *Binder) Term {
				return Apply(Apply(Var(x), Var(z)), Apply(Var(y), Var(z)))
			})
		})
	})
	k := Lambda("x", func(x *Binder) Term {
		return Lambda("y", func(y *Binder) Term { return Var(x) })
	})
	return Apply(Apply(s, k), k)
}

// Church builds the Church numeral for n: λf.λx. f (f (... (f x) ...)).
func Church(n uint64) Term {
	return Lambda("f", func(f *Binder) Term {
		return Lambda("x", func(x *Binder) Term {
			body := Var(x)
			for i := uint64(0); i < n; i++ {
				body = Apply(Var(f), body)
			}
			return body
		})
	})
}

// ChurchTwoSquaredTerm builds Church(2) applied to Church(2), i.e. 2^2 as
// a Church numeral (reduces to Church(4)).
func ChurchTwoSquaredTerm() Term {
	return Apply(Church(2), Church(2))
}

// --- foreign arithmetic, grounded on original_source/tests.c's is_zero/
// is_one/add/subtract native functions ---

func isZeroFn(x uint64) (uint64, error) {
	if x == 0 {
		return 1, nil
	}
	return 0, nil
}

func addFn(x, y uint64) (uint64, error) { return x + y, nil }

func subFn(x, y uint64) (uint64, error) {
	if x < y {
		return 0, nil
	}
	return x - y, nil
}

func mulFn(x, y uint64) (uint64, error) { return x * y, nil }

func leFn(x, y uint64) (uint64, error) {
	if x <= y {
		return 1, nil
	}
	return 0, nil
}

func gtFn(x, y uint64) (uint64, error) {
	if x > y {
		return 1, nil
	}
	return 0, nil
}

// concatenateIntsFn reproduces tests.c's concatenate_ints: shift x left by
// as many decimal digits as y has (at least one, even when y is 0) and add
// y, e.g. concatenateIntsFn(1, 350) = 1350.
func concatenateIntsFn(x, y uint64) (uint64, error) {
	z := y
	for {
		x *= 10
		z /= 10
		if z == 0 {
			break
		}
	}
	return x + y, nil
}

// FactorialTerm builds fix(λrec.λn. if is_zero(n) then 1 else n * rec(n-1))
// applied to n, matching tests.c's fix(lambda(rec, ...)) shape for
// recursive arithmetic (DESIGN.md's FIX resolution).
func FactorialTerm(n uint64) Term {
	fact := Fix("rec", func(rec *Binder) Term {
		return Lambda("n", func(m *Binder) Term {
			return IfThenElse(
				UnaryCall("is_zero", isZeroFn, Var(m)),
				Cell(1),
				BinaryCall("mul", mulFn, Var(m),
					Apply(Var(rec), BinaryCall("subtract", subFn, Var(m), Cell(1)))),
			)
		})
	})
	return Apply(fact, Cell(n))
}

// AckermannTerm builds the two-argument Ackermann function as the fixpoint
// of a curried λm.λn. ... function, recursing on both arguments through
// the same rec binder.
func AckermannTerm(m, n uint64) Term {
	ack := Fix("ackM", func(rec *Binder) Term {
		return Lambda("m", func(mb *Binder) Term {
			return Lambda("n", func(nb *Binder) Term {
				return IfThenElse(
					UnaryCall("is_zero", isZeroFn, Var(mb)),
					BinaryCall("add", addFn, Var(nb), Cell(1)),
					IfThenElse(
						UnaryCall("is_zero", isZeroFn, Var(nb)),
						Apply(Apply(Var(rec), BinaryCall("subtract", subFn, Var(mb), Cell(1))), Cell(1)),
						Apply(Apply(Var(rec), BinaryCall("subtract", subFn, Var(mb), Cell(1))),
							Apply(Apply(Var(rec), Var(mb)), BinaryCall("subtract", subFn, Var(nb), Cell(1)))),
					),
				)
			})
		})
	})
	return Apply(Apply(ack, Cell(m)), Cell(n))
}

// --- Scott-encoded lists ---

func scottNil() Term {
	return Lambda("c", func(c *Binder) Term {
		return Lambda("n", func(n *Binder) Term { return Var(n) })
	})
}

func scottCons(h, t Term) Term {
	return Lambda("c", func(c *Binder) Term {
		return Lambda("n", func(n *Binder) Term { return Apply(Apply(Var(c), h), t) })
	})
}

func buildScottList(xs []uint64) Term {
	list := scottNil()
	for i := len(xs) - 1; i >= 0; i-- {
		list = scottCons(Cell(xs[i]), list)
	}
	return list
}

// matchList builds `list onCons onNil`, Scott-encoding's O(1) case
// analysis: onCons receives the head and tail as Terms.
func matchList(list Term, onCons func(h, t Term) Term, onNil Term) Term {
	consCase := Lambda("h", func(h *Binder) Term {
		return Lambda("t", func(t *Binder) Term { return onCons(Var(h), Var(t)) })
	})
	return Apply(Apply(list, consCase), onNil)
}

func insertTerm(x Term, list Term) Term {
	f := Fix("insRec", func(rec *Binder) Term {
		return Lambda("lst", func(lst *Binder) Term {
			return matchList(Var(lst), func(h, t Term) Term {
				return IfThenElse(
					BinaryCall("le", leFn, x, h),
					scottCons(x, scottCons(h, t)),
					scottCons(h, Apply(Var(rec), t)),
				)
			}, scottCons(x, scottNil()))
		})
	})
	return Apply(f, list)
}

// isortTerm builds insertion sort over a Scott list, grounded on
// original_source/tests.c's insertion-sort test.
func isortTerm(list Term) Term {
	f := Fix("sortRec", func(rec *Binder) Term {
		return Lambda("lst", func(lst *Binder) Term {
			return matchList(Var(lst), func(h, t Term) Term {
				return insertTerm(h, Apply(Var(rec), t))
			}, scottNil())
		})
	})
	return Apply(f, list)
}

func filterTerm(keep func(elem Term) Term, list Term) Term {
	f := Fix("filterRec", func(rec *Binder) Term {
		return Lambda("lst", func(lst *Binder) Term {
			return matchList(Var(lst), func(h, t Term) Term {
				return IfThenElse(keep(h), scottCons(h, Apply(Var(rec), t)), Apply(Var(rec), t))
			}, scottNil())
		})
	})
	return Apply(f, list)
}

func appendTerm(a, b Term) Term {
	f := Fix("appendRec", func(rec *Binder) Term {
		return Lambda("lst", func(lst *Binder) Term {
			return matchList(Var(lst), func(h, t Term) Term {
				return scottCons(h, Apply(Var(rec), t))
			}, b)
		})
	})
	return Apply(f, a)
}

// qsortTerm builds quicksort over a Scott list (pivot = head, partition by
// le/gt, recurse, append), grounded on tests.c's quicksort test.
func qsortTerm(list Term) Term {
	f := Fix("qsRec", func(rec *Binder) Term {
		return Lambda("lst", func(lst *Binder) Term {
			return matchList(Var(lst), func(h, t Term) Term {
				lessSorted := Apply(Var(rec), filterTerm(func(e Term) Term {
					return BinaryCall("le", leFn, e, h)
				}, t))
				moreSorted := Apply(Var(rec), filterTerm(func(e Term) Term {
					return BinaryCall("gt", gtFn, e, h)
				}, t))
				return appendTerm(lessSorted, scottCons(h, moreSorted))
			}, scottNil())
		})
	})
	return Apply(f, list)
}

// concatDigitsTerm folds a Scott list of digits into one integer cell via
// concatenateIntsFn, recursing into the tail before combining with the head
// (tests.c's scott_concatenate_list is a right fold seeded with cell(0), not
// a left fold: e.g. [1,1,3,4,5] -> cell[113450], not cell[11345]).
func concatDigitsTerm(list Term) Term {
	f := Fix("catRec", func(rec *Binder) Term {
		return Lambda("lst", func(lst *Binder) Term {
			return matchList(Var(lst), func(h, t Term) Term {
				return BinaryCall("concatenate_ints", concatenateIntsFn, h, Apply(Var(rec), t))
			}, Cell(0))
		})
	})
	return Apply(f, list)
}

// ScottInsertionSortConcatTerm sorts xs with insertion sort and
// concatenates the sorted digits into a single integer literal.
func ScottInsertionSortConcatTerm(xs []uint64) Term {
	return concatDigitsTerm(isortTerm(buildScottList(xs)))
}

// ScottQuickSortConcatTerm sorts xs with quicksort and concatenates the
// sorted digits into a single integer literal.
func ScottQuickSortConcatTerm(xs []uint64) Term {
	return concatDigitsTerm(qsortTerm(buildScottList(xs)))
}

// Examples lists every named scenario, shared by cmd/lambdanet and
// endtoend_test.go.
var Examples = map[string]func() Term{
	"skk": SKKTerm,
	"church2x2": ChurchTwoSquaredTerm,
	"factorial3": func() Term { return FactorialTerm(3) },
	"ackermann33": func() Term { return AckermannTerm(3, 3) },
	"isort": func() Term { return ScottInsertionSortConcatTerm([]uint64{3, 1, 4, 1, 5}) },
	"qsort": func() Term { return ScottQuickSortConcatTerm([]uint64{9, 2, 7, 3, 8, 1, 4}) },
}
