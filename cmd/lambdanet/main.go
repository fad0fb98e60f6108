// Command lambdanet reduces one of pkg/lambda/examples.go's built-in
// scenarios to normal form over an inet.Pool and prints the result plus
// reduction stats, replacing the teacher's cmd/godnet (which read a .lam
// source file — this module's construction surface is programmatic, not
// textual, per SPEC_FULL.md §6.3).
package main

import (
	"flag"
	"os"
	"sort"
	"time"

	"github.com/golang/glog"

	"github.com/vic/lambdanet/pkg/inet"
	"github.com/vic/lambdanet/pkg/lambda"
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if flag.NArg() != 1 {
		glog.Errorf("usage: lambdanet <scenario>, where <scenario> is one of: %v", scenarioNames())
		os.Exit(2)
	}

	name := flag.Arg(0)
	build, ok := lambda.Examples[name]
	if !ok {
		glog.Errorf("unknown scenario %q, want one of: %v", name, scenarioNames())
		os.Exit(2)
	}

	pool, _ := inet.Open(inet.Limits{})
	defer pool.Close()

	if err := lambda.ToNet(pool, build()); err != nil {
		glog.Errorf("building %q: %v", name, err)
		os.Exit(1)
	}

	start := time.Now()
	result, stats, err := lambda.FromNet(pool)
	elapsed := time.Since(start)
	if err != nil {
		glog.Errorf("reducing %q: %v", name, err)
		os.Exit(1)
	}

	os.Stdout.WriteString(result + "\n")

	glog.V(1).Infof("scenario=%s steps=%d elapsed=%v", name, stats.Steps, elapsed)
	glog.V(1).Infof("beta=%d dup-annihilate=%d dup-commute=%d erasure=%d",
		stats.ByRule[inet.RuleBeta], stats.ByRule[inet.RuleDupAnnihilate],
		stats.ByRule[inet.RuleDupCommute], stats.ByRule[inet.RuleErasure])
	glog.V(1).Infof("unary-op=%d binary-op=%d if=%d fix-unfold=%d",
		stats.ByRule[inet.RuleUnaryOp], stats.ByRule[inet.RuleBinaryOp],
		stats.ByRule[inet.RuleIf], stats.ByRule[inet.RuleFixUnfold])
}

func scenarioNames() []string {
	names := make([]string, 0, len(lambda.Examples))
	for n := range lambda.Examples {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
