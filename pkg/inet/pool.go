package inet

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/golang/glog"
)

// Pool owns one arena per agent kind plus the single ROOT node. It is the
// scoped lifetime spec.md §3.3/§5 describes: Open allocates ROOT, Close
// tears the whole scope down at once, and re-entering a closed (or
// double-opening an open) pool is a fatal programming error, not a
// recoverable one.
type Pool struct {
	roots *Arena[RootNode]
	lams  *Arena[LamNode]
	apps  *Arena[AppNode]
	dups  *Arena[DupNode]
	eras  *Arena[EraNode]
	cells *Arena[CellNode]
	uops  *Arena[UopNode]
	bops  *Arena[BopNode]
	ifs   *Arena[IfNode]
	fixs  *Arena[FixNode]

	root   Port
	closed bool
}

// Limits bounds each kind's arena; zero means unbounded. Bounding is what
// lets PoolExhaustedError ever actually trigger — tests and the CLI can
// pass a zero Limits to mean "unbounded" for production use.
type Limits struct {
	Lam, App, Dup, Era, Cell, Uop, Bop, If, Fix int
}

// Open allocates a fresh pool with one live ROOT node and returns it along
// with the ROOT's principal port. Re-opening is not supported; construct a
// new Pool per reduction scope.
func Open(limits Limits) (*Pool, Port) {
	p := &Pool{
		roots: NewArena[RootNode](1),
		lams:  NewArena[LamNode](limits.Lam),
		apps:  NewArena[AppNode](limits.App),
		dups:  NewArena[DupNode](limits.Dup),
		eras:  NewArena[EraNode](limits.Era),
		cells: NewArena[CellNode](limits.Cell),
		uops:  NewArena[UopNode](limits.Uop),
		bops:  NewArena[BopNode](limits.Bop),
		ifs:   NewArena[IfNode](limits.If),
		fixs:  NewArena[FixNode](limits.Fix),
	}
	idx, _, err := p.roots.Alloc()
	if err != nil {
		glog.Fatalf("inet: could not allocate ROOT: %v", err)
	}
	p.root = Port{Kind: Root, Idx: idx, Slot: 0}
	return p, p.root
}

// Root returns the pool's ROOT port.
func (p *Pool) Root() Port { return p.root }

// Close tears the pool down. Calling Close on an already-closed pool, or
// using a Pool after Close, is an InvariantViolation, not silently ignored.
func (p *Pool) Close() {
	if p.closed {
		panic(&InvariantViolationError{Detail: "pool closed twice"})
	}
	p.closed = true
}

func (p *Pool) assertOpen() {
	if p.closed {
		panic(&InvariantViolationError{Detail: "use of pool after Close"})
	}
}

// --- per-kind constructors ---

func (p *Pool) NewLam() Port {
	p.assertOpen()
	idx, _, err := p.lams.Alloc()
	if err != nil {
		glog.Fatalf("inet: %v", err)
	}
	return Port{Kind: Lam, Idx: idx}
}

func (p *Pool) NewApp() Port {
	p.assertOpen()
	idx, _, err := p.apps.Alloc()
	if err != nil {
		glog.Fatalf("inet: %v", err)
	}
	return Port{Kind: App, Idx: idx}
}

func (p *Pool) NewDup(level uint32) Port {
	p.assertOpen()
	idx, n, err := p.dups.Alloc()
	if err != nil {
		glog.Fatalf("inet: %v", err)
	}
	n.Level = level
	return Port{Kind: Dup, Idx: idx}
}

func (p *Pool) NewEra() Port {
	p.assertOpen()
	idx, _, err := p.eras.Alloc()
	if err != nil {
		glog.Fatalf("inet: %v", err)
	}
	return Port{Kind: Era, Idx: idx}
}

func (p *Pool) NewCell(v uint64) Port {
	p.assertOpen()
	idx, n, err := p.cells.Alloc()
	if err != nil {
		glog.Fatalf("inet: %v", err)
	}
	n.Value = v
	return Port{Kind: Cell, Idx: idx}
}

func (p *Pool) NewUop(name string, fn UnaryFn) Port {
	p.assertOpen()
	idx, n, err := p.uops.Alloc()
	if err != nil {
		glog.Fatalf("inet: %v", err)
	}
	n.Name, n.Fn = name, fn
	return Port{Kind: Uop, Idx: idx}
}

func (p *Pool) NewBop(name string, fn BinaryFn) Port {
	p.assertOpen()
	idx, n, err := p.bops.Alloc()
	if err != nil {
		glog.Fatalf("inet: %v", err)
	}
	n.Name, n.Fn = name, fn
	return Port{Kind: Bop, Idx: idx}
}

func (p *Pool) NewIf() Port {
	p.assertOpen()
	idx, _, err := p.ifs.Alloc()
	if err != nil {
		glog.Fatalf("inet: %v", err)
	}
	return Port{Kind: If, Idx: idx}
}

func (p *Pool) NewFix() Port {
	p.assertOpen()
	idx, _, err := p.fixs.Alloc()
	if err != nil {
		glog.Fatalf("inet: %v", err)
	}
	return Port{Kind: Fix, Idx: idx}
}

// free releases a node back to its kind's arena. Does not touch its
// neighbors' wiring; callers must reconnect or free those first.
func (p *Pool) free(port Port) {
	switch port.Kind {
	case Root:
		p.roots.Free(port.Idx)
	case Lam:
		p.lams.Free(port.Idx)
	case App:
		p.apps.Free(port.Idx)
	case Dup:
		p.dups.Free(port.Idx)
	case Era:
		p.eras.Free(port.Idx)
	case Cell:
		p.cells.Free(port.Idx)
	case Uop:
		p.uops.Free(port.Idx)
	case Bop:
		p.bops.Free(port.Idx)
	case If:
		p.ifs.Free(port.Idx)
	case Fix:
		p.fixs.Free(port.Idx)
	default:
		panic(&InvariantViolationError{Detail: "free of unknown kind"})
	}
}

// neighborSlot returns a pointer into the arena-backed neighbor array for
// the given port, the only place port-to-port wiring is actually stored.
func (p *Pool) neighborSlot(port Port) *Port {
	switch port.Kind {
	case Root:
		return &p.roots.At(port.Idx).Ports[port.Slot]
	case Lam:
		return &p.lams.At(port.Idx).Ports[port.Slot]
	case App:
		return &p.apps.At(port.Idx).Ports[port.Slot]
	case Dup:
		return &p.dups.At(port.Idx).Ports[port.Slot]
	case Era:
		return &p.eras.At(port.Idx).Ports[port.Slot]
	case Cell:
		return &p.cells.At(port.Idx).Ports[port.Slot]
	case Uop:
		return &p.uops.At(port.Idx).Ports[port.Slot]
	case Bop:
		return &p.bops.At(port.Idx).Ports[port.Slot]
	case If:
		return &p.ifs.At(port.Idx).Ports[port.Slot]
	case Fix:
		return &p.fixs.At(port.Idx).Ports[port.Slot]
	default:
		panic(&InvariantViolationError{Detail: "neighbor lookup on unknown kind"})
	}
}

// Connect wires a and b together: each becomes the other's neighbor. This
// is the only rewiring primitive in the whole engine (spec.md §4.2).
func (p *Pool) Connect(a, b Port) {
	*p.neighborSlot(a) = b
	*p.neighborSlot(b) = a
}

// Neighbor returns whatever port is currently wired to port.
func (p *Pool) Neighbor(port Port) Port {
	return *p.neighborSlot(port)
}

// DupLevel returns a DUP node's sharing level.
func (p *Pool) DupLevel(port Port) uint32 {
	return p.dups.At(port.Idx).Level
}

// CellValue returns a CELL node's literal.
func (p *Pool) CellValue(port Port) uint64 {
	return p.cells.At(port.Idx).Value
}

// UopName returns a UOP node's foreign-function name, for readback of a
// stuck unary call.
func (p *Pool) UopName(port Port) string {
	return p.uops.At(port.Idx).Name
}

// BopName returns a BOP node's foreign-function name, for readback of a
// stuck binary call.
func (p *Pool) BopName(port Port) string {
	return p.bops.At(port.Idx).Name
}

// Canonicalize walks the net from ROOT and frees every node unreachable
// from it, using a bitset sized to the current arena lengths rather than a
// map, since node ids here are small dense per-kind indices.
func (p *Pool) Canonicalize() {
	p.assertOpen()
	visited := [int(numKinds)]*bitset.BitSet{
		Root:  bitset.New(uint(p.roots.Len())),
		Lam:   bitset.New(uint(p.lams.Len())),
		App:   bitset.New(uint(p.apps.Len())),
		Dup:   bitset.New(uint(p.dups.Len())),
		Era:   bitset.New(uint(p.eras.Len())),
		Cell:  bitset.New(uint(p.cells.Len())),
		Uop:   bitset.New(uint(p.uops.Len())),
		Bop:   bitset.New(uint(p.bops.Len())),
		If:    bitset.New(uint(p.ifs.Len())),
		Fix:   bitset.New(uint(p.fixs.Len())),
	}

	stack := []Port{p.root}
	visited[Root].Set(uint(p.root.Idx))

	markAndPush := func(n Port) {
		bs := visited[n.Kind]
		if !bs.Test(uint(n.Idx)) {
			bs.Set(uint(n.Idx))
			stack = append(stack, n)
		}
	}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for slot := 0; slot < cur.Kind.Arity(); slot++ {
			nb := p.Neighbor(Port{Kind: cur.Kind, Idx: cur.Idx, Slot: uint8(slot)})
			markAndPush(Port{Kind: nb.Kind, Idx: nb.Idx})
		}
	}

	p.sweep(p.lams, Lam, visited[Lam])
	p.sweep(p.apps, App, visited[App])
	p.sweep(p.dups, Dup, visited[Dup])
	p.sweep(p.eras, Era, visited[Era])
	p.sweep(p.cells, Cell, visited[Cell])
	p.sweep(p.uops, Uop, visited[Uop])
	p.sweep(p.bops, Bop, visited[Bop])
	p.sweep(p.ifs, If, visited[If])
	p.sweep(p.fixs, Fix, visited[Fix])
}

func (p *Pool) sweep(arenaLen interface{ Len() int }, kind Kind, visited *bitset.BitSet) {
	n := arenaLen.Len()
	for i := 0; i < n; i++ {
		if visited.Test(uint(i)) {
			continue
		}
		switch kind {
		case Lam:
			if p.lams.IsAlive(uint32(i)) {
				p.lams.Free(uint32(i))
			}
		case App:
			if p.apps.IsAlive(uint32(i)) {
				p.apps.Free(uint32(i))
			}
		case Dup:
			if p.dups.IsAlive(uint32(i)) {
				p.dups.Free(uint32(i))
			}
		case Era:
			if p.eras.IsAlive(uint32(i)) {
				p.eras.Free(uint32(i))
			}
		case Cell:
			if p.cells.IsAlive(uint32(i)) {
				p.cells.Free(uint32(i))
			}
		case Uop:
			if p.uops.IsAlive(uint32(i)) {
				p.uops.Free(uint32(i))
			}
		case Bop:
			if p.bops.IsAlive(uint32(i)) {
				p.bops.Free(uint32(i))
			}
		case If:
			if p.ifs.IsAlive(uint32(i)) {
				p.ifs.Free(uint32(i))
			}
		case Fix:
			if p.fixs.IsAlive(uint32(i)) {
				p.fixs.Free(uint32(i))
			}
		}
	}
}
