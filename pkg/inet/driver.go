package inet

// Reduce drives the net to normal form: single-threaded, cooperative, no
// cancellation (spec.md §5). It seeds the scheduler with every
// principal-to-principal wire already present in the freshly built net,
// then repeatedly pops the lowest-depth active pair and rewrites it until
// none remain. A ForeignCallTrapError from a UOP/BOP is returned to the
// caller immediately, mid-reduction, exactly as spec.md §7 requires —
// every other failure mode is fatal deeper in the pool.
func Reduce(p *Pool) (*Stats, error) {
	p.assertOpen()
	sched := newScheduler()
	stats := &Stats{}

	for _, pair := range p.activePairs() {
		sched.push(pair, 0)
	}

	for {
		pair, depth, ok := sched.pop()
		if !ok {
			break
		}
		if !p.isLiveActivePair(pair) {
			continue
		}
		if err := rewrite(p, sched, stats, pair, depth); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// activePairs scans every arena for principal-to-principal wires, used
// once at startup to seed the scheduler. Each wire is reported from
// exactly one side by requiring the reporting node's (kind, index) to
// precede its neighbor's, so a pair is never pushed twice.
func (p *Pool) activePairs() []ActivePair {
	var pairs []ActivePair
	scan := func(kind Kind, n int) {
		for i := 0; i < n; i++ {
			self := Port{Kind: kind, Idx: uint32(i)}
			if !p.kindAlive(kind, uint32(i)) {
				continue
			}
			nb := p.Neighbor(self)
			if nb.Slot != 0 || nb.Kind == Root || kind == Root {
				continue
			}
			if !before(self, nb) {
				continue
			}
			pairs = append(pairs, ActivePair{Left: self, Right: nb})
		}
	}
	scan(Lam, p.lams.Len())
	scan(App, p.apps.Len())
	scan(Dup, p.dups.Len())
	scan(Era, p.eras.Len())
	scan(Cell, p.cells.Len())
	scan(Uop, p.uops.Len())
	scan(Bop, p.bops.Len())
	scan(If, p.ifs.Len())
	scan(Fix, p.fixs.Len())
	return pairs
}

// before gives (Kind, Idx) a total order so activePairs reports each wire
// from exactly one of its two ends.
func before(a, b Port) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Idx < b.Idx
}

func (p *Pool) kindAlive(kind Kind, idx uint32) bool {
	switch kind {
	case Root:
		return p.roots.IsAlive(idx)
	case Lam:
		return p.lams.IsAlive(idx)
	case App:
		return p.apps.IsAlive(idx)
	case Dup:
		return p.dups.IsAlive(idx)
	case Era:
		return p.eras.IsAlive(idx)
	case Cell:
		return p.cells.IsAlive(idx)
	case Uop:
		return p.uops.IsAlive(idx)
	case Bop:
		return p.bops.IsAlive(idx)
	case If:
		return p.ifs.IsAlive(idx)
	case Fix:
		return p.fixs.IsAlive(idx)
	default:
		return false
	}
}

// isLiveActivePair re-validates a queued pair: by the time it is popped,
// one or both nodes may already have been consumed by an earlier rewrite
// that happened to touch the same wire from the other side.
func (p *Pool) isLiveActivePair(pair ActivePair) bool {
	if !p.kindAlive(pair.Left.Kind, pair.Left.Idx) || !p.kindAlive(pair.Right.Kind, pair.Right.Idx) {
		return false
	}
	return p.Neighbor(pair.Left) == pair.Right && p.Neighbor(pair.Right) == pair.Left
}
