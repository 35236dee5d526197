package topology

import "github.com/mirrorlab/rdmsim/internal/core"

const minStarSize = 3

// StarStrategy maintains one centre mirror (the lowest structural slot)
// plus m-1 leaves, each linked only to the centre (spec.md §4.3).
type StarStrategy struct {
	arena   *arena
	root    *Node
	rootSet bool
}

func NewStarStrategy() *StarStrategy { return &StarStrategy{} }

func (s *StarStrategy) Kind() core.StrategyKind { return core.Star }

// Root returns the centre structural node chosen by the most recent
// Init, or nil before the first Init.
func (s *StarStrategy) Root() *Node { return s.root }

func (s *StarStrategy) ensureArena(n *core.Network) {
	if s.arena == nil {
		s.arena = newArena(n.IDs, StarStructure)
	}
}

func (s *StarStrategy) Init(n *core.Network, tick int64) error {
	if n.LiveMirrorCount() < minStarSize {
		return &InvalidMirrorDistributionError{Total: n.LiveMirrorCount(), Reason: "a star requires at least 3 mirrors"}
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

// bindRoot records the centre node as this strategy's root once per
// Init: Init clears the binding, and later AddMirrors calls leave it in
// place (spec.md §9's fix for the source's reflective final-field backfill).
func (s *StarStrategy) bindRoot(centre *Node) {
	if s.rootSet {
		return
	}
	centre.Head = true
	s.root = centre
	s.rootSet = true
}

// centre is the mirror bound to the lowest occupied structural slot.
func (s *StarStrategy) centre() (uint64, bool) {
	slots := s.arena.slots()
	if len(slots) == 0 {
		return 0, false
	}
	return s.arena.mirrorAt(slots[0])
}

func (s *StarStrategy) connect(n *core.Network, tick int64) error {
	centre, ok := s.centre()
	if !ok {
		return nil
	}
	slots := s.arena.slots()
	centreNode := s.arena.nodeFor(centre)
	s.bindRoot(centreNode)
	for _, slot := range slots {
		leaf, _ := s.arena.mirrorAt(slot)
		if leaf == centre {
			continue
		}
		s.arena.nodeAt(slot).SetParent(centreNode)
		if n.HasLink(centre, leaf) {
			continue
		}
		if _, err := n.CreateLink(tick, centre, leaf); err != nil {
			return err
		}
	}
	return nil
}

func (s *StarStrategy) AddMirrors(n *core.Network, count int, tick int64) error {
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

func (s *StarStrategy) RemoveMirrors(n *core.Network, count int, tick int64) error {
	s.ensureArena(n)
	if n.LiveMirrorCount()-count < minStarSize {
		count = n.LiveMirrorCount() - minStarSize
	}
	if count <= 0 {
		return nil
	}
	centre, ok := s.centre()
	if !ok {
		return removeNonRootMirrors(n, s.arena, count, tick)
	}
	// Protect the centre the same way removeNonRootMirrors protects the
	// root: temporarily mark it used by skipping it if it is selected.
	slots := s.arena.slots()
	removed := 0
	for i := len(slots) - 1; i >= 0 && removed < count; i-- {
		mirrorID, ok := s.arena.mirrorAt(slots[i])
		if !ok || mirrorID == centre {
			continue
		}
		m, ok := n.Mirrors[mirrorID]
		if !ok || m.IsRoot || !m.Live() {
			continue
		}
		m.RequestStop(tick)
		s.arena.release(mirrorID)
		removed++
	}
	return nil
}

func (s *StarStrategy) Restart(n *core.Network, tick int64) error {
	n.ClearAllLinks(tick)
	return s.Init(n, tick)
}

func (s *StarStrategy) TargetLinkCount(n *core.Network) int {
	m := n.LiveMirrorCount()
	if m < 1 {
		return 0
	}
	return m - 1
}

func (s *StarStrategy) PredictedTargetLinkCount(n *core.Network, action core.Action) int {
	m := predictedMirrorCount(n, action)
	if m < 1 {
		return 0
	}
	return m - 1
}
