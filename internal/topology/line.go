package topology

import "github.com/mirrorlab/rdmsim/internal/core"

const minLineSize = 2

// LineStrategy maintains a simple path: exactly two endpoints, every
// other mirror with degree 2 (spec.md §4.3). Growth always appends the
// new mirror to the tail end (the highest structural slot), which is a
// deterministic reading of "attach to the shorter endpoint" for a path
// that, by construction, only ever has one free end to grow from once
// built by this strategy.
type LineStrategy struct {
	arena   *arena
	root    *Node
	rootSet bool
}

func NewLineStrategy() *LineStrategy { return &LineStrategy{} }

func (s *LineStrategy) Kind() core.StrategyKind { return core.Line }

// Root returns the head-end structural node chosen by the most recent
// Init, or nil before the first Init.
func (s *LineStrategy) Root() *Node { return s.root }

func (s *LineStrategy) ensureArena(n *core.Network) {
	if s.arena == nil {
		s.arena = newArena(n.IDs, LineStructure)
	}
}

func (s *LineStrategy) Init(n *core.Network, tick int64) error {
	if n.LiveMirrorCount() < minLineSize {
		return &InvalidMirrorDistributionError{Total: n.LiveMirrorCount(), Reason: "a line requires at least 2 mirrors"}
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

// bindRoot records the head node at slot[0] as this strategy's root
// once per Init: Init clears the binding, and later AddMirrors calls
// leave it in place (spec.md §9's fix for the source's reflective
// final-field backfill).
func (s *LineStrategy) bindRoot(head *Node) {
	if s.rootSet {
		return
	}
	head.Head = true
	s.root = head
	s.rootSet = true
}

func (s *LineStrategy) connect(n *core.Network, tick int64) error {
	slots := s.arena.slots()
	if len(slots) > 0 {
		s.bindRoot(s.arena.nodeAt(slots[0]))
	}
	for i := 0; i+1 < len(slots); i++ {
		a, _ := s.arena.mirrorAt(slots[i])
		b, _ := s.arena.mirrorAt(slots[i+1])
		nodeA, nodeB := s.arena.nodeAt(slots[i]), s.arena.nodeAt(slots[i+1])
		nodeB.SetParent(nodeA)
		if n.HasLink(a, b) {
			continue
		}
		if _, err := n.CreateLink(tick, a, b); err != nil {
			return err
		}
	}
	return nil
}

func (s *LineStrategy) AddMirrors(n *core.Network, count int, tick int64) error {
	if count <= 0 {
		return &InvalidMirrorDistributionError{Total: count, Reason: "mirror count to add must be positive"}
	}
	s.ensureArena(n)
	for i := 0; i < count; i++ {
		m := n.CreateMirror(tick, false)
		s.arena.assign(m.ID)
	}
	return s.connect(n, tick)
}

func (s *LineStrategy) RemoveMirrors(n *core.Network, count int, tick int64) error {
	s.ensureArena(n)
	if n.LiveMirrorCount()-count < minLineSize {
		count = n.LiveMirrorCount() - minLineSize
	}
	if count <= 0 {
		return nil
	}
	return removeNonRootMirrors(n, s.arena, count, tick)
}

func (s *LineStrategy) Restart(n *core.Network, tick int64) error {
	n.ClearAllLinks(tick)
	return s.Init(n, tick)
}

func (s *LineStrategy) TargetLinkCount(n *core.Network) int {
	m := n.LiveMirrorCount()
	if m < 1 {
		return 0
	}
	return m - 1
}

func (s *LineStrategy) PredictedTargetLinkCount(n *core.Network, action core.Action) int {
	m := predictedMirrorCount(n, action)
	if m < 1 {
		return 0
	}
	return m - 1
}
