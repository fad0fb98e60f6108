package lambda

import (
	"testing"

	"github.com/vic/lambdanet/pkg/inet"
)

// reduceScenario builds term on a fresh pool and reduces it to normal
// form, matching cmd/lambdanet's own build-reduce-readback pipeline.
func reduceScenario(t *testing.T, term Term) (string, *inet.Stats) {
	t.Helper()
	pool, _ := inet.Open(inet.Limits{})
	defer pool.Close()

	if err := ToNet(pool, term); err != nil {
		t.Fatalf("ToNet: %v", err)
	}
	result, stats, err := FromNet(pool)
	if err != nil {
		t.Fatalf("FromNet: %v", err)
	}
	return result, stats
}

// These are spec.md §8's literal end-to-end scenarios, built directly
// against the Go term-builder API (the construction surface is
// programmatic, not textual — SPEC_FULL.md §6.3).
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		term func() Term
		want string
	}{
		{"skk reduces to identity", SKKTerm, "(λ 0)"},
		{"church 2^2 is church 4", ChurchTwoSquaredTerm, "(λ (λ (1 (1 (1 (1 0))))))"},
		{"factorial of 3 is 6", func() Term { return FactorialTerm(3) }, "cell[6]"},
		{"ackermann(3,3) is 61", func() Term { return AckermannTerm(3, 3) }, "cell[61]"},
		{
			"insertion sort [3 1 4 1 5] concatenates to 113450",
			func() Term { return ScottInsertionSortConcatTerm([]uint64{3, 1, 4, 1, 5}) },
			"cell[113450]",
		},
		{
			"quicksort [9 2 7 3 8 1 4] concatenates to 12347890",
			func() Term { return ScottQuickSortConcatTerm([]uint64{9, 2, 7, 3, 8, 1, 4}) },
			"cell[12347890]",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, stats := reduceScenario(t, c.term())
			if got != c.want {
				t.Fatalf("got %q, want %q (after %d reduction steps)", got, c.want, stats.Steps)
			}
		})
	}
}

func TestExamplesRegistryMatchesScenarios(t *testing.T) {
	for name, build := range Examples {
		if build == nil {
			t.Fatalf("scenario %q has a nil builder", name)
		}
		if _, _, err := reduceScenarioErr(build()); err != nil {
			t.Fatalf("scenario %q failed to reduce: %v", name, err)
		}
	}
}

func reduceScenarioErr(term Term) (string, *inet.Stats, error) {
	pool, _ := inet.Open(inet.Limits{})
	defer pool.Close()
	if err := ToNet(pool, term); err != nil {
		return "", nil, err
	}
	return FromNet(pool)
}

func TestFreeVariableIsInvalidTerm(t *testing.T) {
	pool, _ := inet.Open(inet.Limits{})
	defer pool.Close()

	free := &Binder{Name: "ghost"}
	err := ToNet(pool, Var(free))
	if _, ok := err.(*inet.InvalidTermError); !ok {
		t.Fatalf("expected *inet.InvalidTermError for a free variable, got %T: %v", err, err)
	}
}

func TestFixOfNonLambdaIsInvalidTerm(t *testing.T) {
	pool, _ := inet.Open(inet.Limits{})
	defer pool.Close()

	err := ToNet(pool, FixTerm{Fn: Cell(1)})
	if _, ok := err.(*inet.InvalidTermError); !ok {
		t.Fatalf("expected *inet.InvalidTermError for fix() of a non-lambda, got %T: %v", err, err)
	}
}
