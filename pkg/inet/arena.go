package inet

// Arena is a free-list-backed pool of T, handing out stable small indices
// instead of pointers so a Port can reference a node by (kind, index, slot)
// and look it up by direct array indexing — no pointer chasing, no GC
// pressure from per-node heap allocation.
type Arena[T any] struct {
	slots []T
	alive []bool
	free  []uint32
	limit int // 0 means unbounded
}

// NewArena constructs an arena. A nonzero limit caps the number of live
// slots at once; exceeding it is reported by Alloc as *PoolExhaustedError
// rather than growing without bound (spec.md §7's PoolExhausted case).
func NewArena[T any](limit int) *Arena[T] {
	return &Arena[T]{limit: limit}
}

// Alloc reserves a slot, reusing a freed one when available, and returns
// its index and a pointer to its zero-valued contents for the caller to
// populate.
func (a *Arena[T]) Alloc() (uint32, *T, error) {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.alive[idx] = true
		var zero T
		a.slots[idx] = zero
		return idx, &a.slots[idx], nil
	}
	if a.limit > 0 && len(a.slots) >= a.limit {
		return 0, nil, &PoolExhaustedError{Requested: len(a.slots)}
	}
	a.slots = append(a.slots, *new(T))
	a.alive = append(a.alive, true)
	idx := uint32(len(a.slots) - 1)
	return idx, &a.slots[idx], nil
}

// Free releases idx back to the free list. Freeing a dead or out-of-range
// index is an engine bug, not a runtime condition to recover from.
func (a *Arena[T]) Free(idx uint32) {
	if int(idx) >= len(a.slots) || !a.alive[idx] {
		panic(&InvariantViolationError{Detail: "double free or invalid arena index"})
	}
	a.alive[idx] = false
	a.free = append(a.free, idx)
}

// At returns a pointer to the live slot at idx.
func (a *Arena[T]) At(idx uint32) *T {
	if int(idx) >= len(a.slots) || !a.alive[idx] {
		panic(&InvariantViolationError{Detail: "access to freed or invalid arena index"})
	}
	return &a.slots[idx]
}

// Len returns the arena's current backing-slice length (including freed,
// reusable slots), the natural upper bound for sizing a visited-bitset.
func (a *Arena[T]) Len() int { return len(a.slots) }

// IsAlive reports whether idx currently denotes a live node.
func (a *Arena[T]) IsAlive(idx uint32) bool {
	return int(idx) < len(a.alive) && a.alive[idx]
}
