package inet

// MaxDepth bounds the scheduler's priority buckets; wires deeper than this
// all share the lowest-priority bucket, matching the teacher's clamping
// convention rather than growing queues without bound.
const MaxDepth = 64

// ActivePair is a principal-to-principal wire: both of its ends are
// principal ports, so it is always eligible for an immediate rewrite.
type ActivePair struct {
	Left, Right Port
}

// scheduler is a depth-bucketed LIFO queue driving the single-threaded
// reduction loop: lower depth (closer to ROOT) drains first, giving the
// weak-head-first-then-descend order spec.md §4.5 calls "fairness", and
// LIFO within a bucket so a rewrite's own freshly-created pairs are handled
// before siblings queued earlier at the same depth. Grounded on
// pkg/deltanet/scheduler.go's Scheduler, with the channel/signal machinery
// removed since exactly one goroutine ever calls Push/Pop.
type scheduler struct {
	buckets [MaxDepth][]ActivePair
	count   int
}

func newScheduler() *scheduler {
	return &scheduler{}
}

func (s *scheduler) push(pair ActivePair, depth int) {
	if depth < 0 {
		depth = 0
	}
	if depth >= MaxDepth {
		depth = MaxDepth - 1
	}
	s.buckets[depth] = append(s.buckets[depth], pair)
	s.count++
}

// pop removes and returns the next pair to rewrite along with the depth
// bucket it came from, scanning buckets from depth 0 upward. The bool is
// false once the net has reached normal form.
func (s *scheduler) pop() (ActivePair, int, bool) {
	for d := 0; d < MaxDepth; d++ {
		n := len(s.buckets[d])
		if n == 0 {
			continue
		}
		pair := s.buckets[d][n-1]
		s.buckets[d] = s.buckets[d][:n-1]
		s.count--
		return pair, d, true
	}
	return ActivePair{}, 0, false
}

func (s *scheduler) empty() bool { return s.count == 0 }
