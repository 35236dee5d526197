package topology

import "github.com/mirrorlab/rdmsim/internal/core"

const minRingSize = 3

// RingStrategy maintains a simple undirected cycle of minimum size 3
// (spec.md §4.3). New mirrors are inserted adjacent to the lowest
// structural slot, splitting the edge that closes the cycle back to it
// (the old closing link is closed) - a deterministic
// reading of "chosen deterministically by lowest identifier" that the
// arena's lowest-free-slot-first reuse policy makes exact when a
// mid-ring mirror is removed and later replaced.
type RingStrategy struct {
	arena   *arena
	root    *Node
	rootSet bool
}

func NewRingStrategy() *RingStrategy { return &RingStrategy{} }

func (s *RingStrategy) Kind() core.StrategyKind { return core.Ring }

// Root returns the structural node chosen as this ring's designated
// head by the most recent Init, or nil before the first Init.
func (s *RingStrategy) Root() *Node { return s.root }

func (s *RingStrategy) ensureArena(n *core.Network) {
	if s.arena == nil {
		s.arena = newArena(n.IDs, RingStructure)
	}
}

func (s *RingStrategy) Init(n *core.Network, tick int64) error {
	if n.LiveMirrorCount() < minRingSize {
		return &InsufficientMirrorsForRingError{Available: n.LiveMirrorCount(), Required: minRingSize, RingIndex: 1}
	}
	s.ensureArena(n)
	s.arena.reset()
	s.rootSet = false
	s.root = nil
	for _, id := range n.LiveMirrorIDs() {
		s.arena.assign(id)
	}
	return s.connect(n, tick)
}

// bindRoot records the node at the lowest occupied slot as this ring's
// head once per Init: Init clears the binding, and later AddMirrors
// calls leave it in place (spec.md §9's fix for the source's reflective
// final-field backfill).
func (s *RingStrategy) bindRoot(head *Node) {
	if s.rootSet {
		return
	}
	head.Head = true
	s.root = head
	s.rootSet = true
}

func (s *RingStrategy) connect(n *core.Network, tick int64) error {
	slots := s.arena.slots()
	m := len(slots)
	if m < 2 {
		return nil
	}
	s.bindRoot(s.arena.nodeAt(slots[0]))
	for i := 0; i < m; i++ {
		a, _ := s.arena.mirrorAt(slots[i])
		b, _ := s.arena.mirrorAt(slots[(i+1)%m])
		s.arena.nodeAt(slots[i]).SetSuccessor(s.arena.nodeAt(slots[(i+1)%m]))
		if a == b || n.HasLink(a, b) {
			continue
		}
		if _, err := n.CreateLink(tick, a, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *RingStrategy) AddMirrors(n *core.Network, count int, tick int64) error {
	if count <= 0 {
		return &InvalidMirrorDistributionError{Total: count, Reason: "mirror count to add must be positive"}
	}
	s.ensureArena(n)
	old := s.arena.slots()
	if len(old) >= 2 {
		a, _ := s.arena.mirrorAt(old[len(old)-1])
		b, _ := s.arena.mirrorAt(old[0])
		if l, ok := n.Links[core.NewLinkKey(a, b)]; ok {
			l.Close(tick)
		}
	}
	for i := 0; i < count; i++ {
		m := n.CreateMirror(tick, false)
		s.arena.assign(m.ID)
	}
	return s.connect(n, tick)
}

func (s *RingStrategy) RemoveMirrors(n *core.Network, count int, tick int64) error {
	s.ensureArena(n)
	if n.LiveMirrorCount()-count < minRingSize {
		count = n.LiveMirrorCount() - minRingSize
	}
	if count <= 0 {
		return nil
	}
	return removeNonRootMirrors(n, s.arena, count, tick)
}

func (s *RingStrategy) Restart(n *core.Network, tick int64) error {
	n.ClearAllLinks(tick)
	return s.Init(n, tick)
}

func (s *RingStrategy) TargetLinkCount(n *core.Network) int {
	return n.LiveMirrorCount()
}

func (s *RingStrategy) PredictedTargetLinkCount(n *core.Network, action core.Action) int {
	return predictedMirrorCount(n, action)
}
