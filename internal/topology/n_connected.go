package topology

import "github.com/mirrorlab/rdmsim/internal/core"

// NConnectedStrategy maintains a k-regular ring-of-chords (circulant)
// arrangement: each mirror is linked to the k nearest mirrors around a
// structural ring, where k is the network's target links-per-mirror
// (spec.md §4.3).
type NConnectedStrategy struct {
	arena   *arena
	root    *Node
	rootSet bool
}

func NewNConnectedStrategy() *NConnectedStrategy { return &NConnectedStrategy{} }

func (s *NConnectedStrategy) Kind() core.StrategyKind { return core.NConnected }

// Root returns the structural node chosen as this strategy's root by
// the most recent Init, or nil before the first Init.
func (s *NConnectedStrategy) Root() *Node { return s.root }

func (s *NConnectedStrategy) ensureArena(n *core.Network) {
	if s.arena == nil {
		s.arena = newArena(n.IDs, GenericStructure)
	}
}

func (s *NConnectedStrategy) Init(n *core.Network, tick int64) error {
	s.ensureArena(n)
	s.arena.reset()
	s.rootSet = false
	s.root = nil
	for _, id := range n.LiveMirrorIDs() {
		s.arena.assign(id)
	}
	s.bindRoot()
	return s.connect(n, tick)
}

// bindRoot records the node at the lowest occupied slot as this
// strategy's root once per Init: Init clears the binding, and later
// AddMirrors calls leave it in place (spec.md §9's fix for the source's
// reflective final-field backfill).
func (s *NConnectedStrategy) bindRoot() {
	if s.rootSet {
		return
	}
	slots := s.arena.slots()
	if len(slots) == 0 {
		return
	}
	s.root = s.arena.nodeAt(slots[0])
	s.root.Head = true
	s.rootSet = true
}

// connect links each slot to its nearest floor(k/2) neighbours on each
// side around the ring of slots, plus the diametrically opposite slot
// when k is odd, approximating a k-regular circulant graph.
func (s *NConnectedStrategy) connect(n *core.Network, tick int64) error {
	slots := s.arena.slots()
	m := len(slots)
	if m < 2 {
		return nil
	}
	k := n.TargetLinksPerMirror
	if k < 1 {
		k = 1
	}
	if k > m-1 {
		k = m - 1
	}
	half := k / 2
	for i, slot := range slots {
		mi, _ := s.arena.mirrorAt(slot)
		for d := 1; d <= half; d++ {
			j := (i + d) % m
			mj, _ := s.arena.mirrorAt(slots[j])
			if mi == mj || n.HasLink(mi, mj) {
				continue
			}
			if _, err := n.CreateLink(tick, mi, mj); err != nil {
				return err
			}
		}
		if k%2 == 1 {
			j := (i + m/2) % m
			mj, _ := s.arena.mirrorAt(slots[j])
			if mi != mj && !n.HasLink(mi, mj) {
				if _, err := n.CreateLink(tick, mi, mj); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *NConnectedStrategy) AddMirrors(n *core.Network, count int, tick int64) error {
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

func (s *NConnectedStrategy) RemoveMirrors(n *core.Network, count int, tick int64) error {
	s.ensureArena(n)
	return removeNonRootMirrors(n, s.arena, count, tick)
}

func (s *NConnectedStrategy) Restart(n *core.Network, tick int64) error {
	n.ClearAllLinks(tick)
	return s.Init(n, tick)
}

func (s *NConnectedStrategy) TargetLinkCount(n *core.Network) int {
	return circulantLinkCount(n.LiveMirrorCount(), n.TargetLinksPerMirror)
}

func (s *NConnectedStrategy) PredictedTargetLinkCount(n *core.Network, action core.Action) int {
	m := predictedMirrorCount(n, action)
	k := predictedLinksPerMirror(n, action)
	return circulantLinkCount(m, k)
}

// circulantLinkCount is m*k/2, rounded up (preferring the larger count)
// when m*k is odd (spec.md §4.3).
func circulantLinkCount(m, k int) int {
	if m <= 0 || k <= 0 {
		return 0
	}
	if k > m-1 {
		k = m - 1
	}
	total := m * k
	if total%2 == 0 {
		return total / 2
	}
	return (total + 1) / 2
}
