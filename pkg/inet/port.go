package inet

// Port names one port of one node: which agent kind, which slot in that
// kind's arena, and which of the agent's own ports (0 is always principal).
// spec.md §4.1/§4.2 describe a port as a single packed machine word
// (kind, index, port-number); this module keeps the three fields apart as
// a plain struct instead. Go has no bitfields, and packing/unpacking a
// uint64 on every Connect/Neighbor call would cost more than it buys —
// this struct is already only 12 bytes and the compiler passes it
// by value in registers, so there is no space or indirection advantage to
// hand-packing it.
type Port struct {
	Kind Kind
	Idx  uint32
	Slot uint8
}

// Nil is the zero Port. It is the same value as ROOT's principal port
// (kind Root, index 0, slot 0), since ROOT is the first and only node of its
// arena, so a port that was never connected reads ROOT as its neighbor;
// callers must never leave a live port's neighbor at Nil.
var Nil = Port{}

// principal reports whether p addresses its node's principal port.
func (p Port) principal() bool { return p.Slot == 0 }
