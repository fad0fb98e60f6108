package inet

// RuleKind names which rewrite rule fired, for tracing and stats. Grounded
// on pkg/deltanet/trace.go's RuleKind, re-enumerated for this module's
// agent set and rule families (spec.md §4.4).
type RuleKind int

const (
	RuleUnknown RuleKind = iota
	RuleBeta
	RuleDupAnnihilate
	RuleDupCommute
	RuleErasure
	RuleUnaryOp
	RuleBinaryOp
	RuleIf
	RuleFixUnfold
)

func (r RuleKind) String() string {
	switch r {
	case RuleBeta:
		return "beta"
	case RuleDupAnnihilate:
		return "dup-annihilate"
	case RuleDupCommute:
		return "dup-commute"
	case RuleErasure:
		return "erasure"
	case RuleUnaryOp:
		return "unary-op"
	case RuleBinaryOp:
		return "binary-op"
	case RuleIf:
		return "if"
	case RuleFixUnfold:
		return "fix-unfold"
	default:
		return "unknown"
	}
}

// TraceEvent records one rewrite step. Grounded on pkg/deltanet/trace.go's
// TraceEvent, with the atomic step counter dropped since there is only one
// writer (spec.md §5).
type TraceEvent struct {
	Step  uint64
	Rule  RuleKind
	ALeft Kind
	BKind Kind
}

// Stats counts rewrites fired per rule, the single-threaded replacement for
// the teacher's atomic counters in Network.
type Stats struct {
	Steps       uint64
	ByRule      [9]uint64
	traceBuf    []TraceEvent
	traceOn     bool
}

// EnableTrace turns on ring-buffer tracing with the given capacity.
func (s *Stats) EnableTrace(capacity int) {
	if capacity <= 0 {
		capacity = 1
	}
	s.traceBuf = make([]TraceEvent, 0, capacity)
	s.traceOn = true
}

func (s *Stats) DisableTrace() { s.traceOn = false }

// Trace returns the most recent events, oldest first (up to the configured
// capacity).
func (s *Stats) Trace() []TraceEvent { return s.traceBuf }

func (s *Stats) record(rule RuleKind, a, b Kind) {
	s.Steps++
	s.ByRule[rule]++
	if !s.traceOn {
		return
	}
	ev := TraceEvent{
		Step:  s.Steps,
		Rule:  rule,
		ALeft: a,
		BKind: b,
	}
	if len(s.traceBuf) >= cap(s.traceBuf) {
		copy(s.traceBuf, s.traceBuf[1:])
		s.traceBuf[len(s.traceBuf)-1] = ev
		return
	}
	s.traceBuf = append(s.traceBuf, ev)
}
