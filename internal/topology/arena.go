package topology

import (
	"sort"

	"github.com/mirrorlab/rdmsim/internal/ids"
)

// arena assigns stable structural-node slots to mirrors, independent of
// mirror identifier churn, and owns the Node bound to each slot (spec.md
// §9: "each strategy owns one [arena] (structural nodes)"). A freed slot
// is reused before a new one is allocated, so removing and re-adding a
// mirror does not shift every surviving mirror's structural position,
// and the Node occupying that slot is recreated fresh rather than
// inheriting the departed mirror's parent/children.
type arena struct {
	alloc         *ids.Allocator
	structureType StructureType
	slotOf        map[uint64]uint64 // mirror ID -> slot
	mirrorOf      map[uint64]uint64 // slot -> mirror ID
	nodes         map[uint64]*Node  // slot -> structural node
	free          []uint64          // freed slots, kept sorted ascending
}

func newArena(alloc *ids.Allocator, structureType StructureType) *arena {
	return &arena{
		alloc:         alloc,
		structureType: structureType,
		slotOf:        map[uint64]uint64{},
		mirrorOf:      map[uint64]uint64{},
		nodes:         map[uint64]*Node{},
	}
}

// assign returns the slot already bound to mirrorID, or binds and
// returns a new one (reusing the lowest free slot first), creating the
// Node that occupies it.
func (a *arena) assign(mirrorID uint64) uint64 {
	if slot, ok := a.slotOf[mirrorID]; ok {
		return slot
	}
	var slot uint64
	if len(a.free) > 0 {
		slot = a.free[0]
		a.free = a.free[1:]
	} else {
		slot = a.alloc.NextNode()
	}
	a.slotOf[mirrorID] = slot
	a.mirrorOf[slot] = mirrorID
	a.nodes[slot] = &Node{ID: slot, Type: a.structureType, mirrorID: mirrorID, hasMirror: true}
	return slot
}

// release frees the slot bound to mirrorID, if any, detaching its Node
// from the rest of the structural graph first.
func (a *arena) release(mirrorID uint64) {
	slot, ok := a.slotOf[mirrorID]
	if !ok {
		return
	}
	if nd, ok := a.nodes[slot]; ok {
		nd.SetParent(nil)
		for _, child := range append([]*Node(nil), nd.Children...) {
			child.SetParent(nil)
		}
	}
	delete(a.slotOf, mirrorID)
	delete(a.mirrorOf, slot)
	delete(a.nodes, slot)
	a.free = append(a.free, slot)
	sort.Slice(a.free, func(i, j int) bool { return a.free[i] < a.free[j] })
}

// reset discards every assignment, e.g. before a full rebuild on Init.
func (a *arena) reset() {
	a.slotOf = map[uint64]uint64{}
	a.mirrorOf = map[uint64]uint64{}
	a.nodes = map[uint64]*Node{}
	a.free = nil
}

// slots returns the currently occupied slots in ascending (stable
// structural-position) order.
func (a *arena) slots() []uint64 {
	out := make([]uint64, 0, len(a.mirrorOf))
	for s := range a.mirrorOf {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (a *arena) mirrorAt(slot uint64) (uint64, bool) {
	m, ok := a.mirrorOf[slot]
	return m, ok
}

// nodeAt returns the structural Node occupying slot, or nil if the slot
// is not currently assigned.
func (a *arena) nodeAt(slot uint64) *Node { return a.nodes[slot] }

// nodeFor returns the structural Node bound to mirrorID, or nil if the
// mirror has no slot in this arena.
func (a *arena) nodeFor(mirrorID uint64) *Node {
	slot, ok := a.slotOf[mirrorID]
	if !ok {
		return nil
	}
	return a.nodes[slot]
}

func (a *arena) size() int { return len(a.mirrorOf) }
