package topology

import "github.com/mirrorlab/rdmsim/internal/core"

// FullyConnectedStrategy connects every live mirror to every other live
// mirror, maintaining a complete graph (spec.md §4.3).
type FullyConnectedStrategy struct {
	arena   *arena
	root    *Node
	rootSet bool
}

// NewFullyConnectedStrategy constructs a strategy with no structural
// root yet bound; it acquires its arena and root on the first Init call
// (spec.md §9).
func NewFullyConnectedStrategy() *FullyConnectedStrategy {
	return &FullyConnectedStrategy{}
}

func (s *FullyConnectedStrategy) Kind() core.StrategyKind { return core.FullyConnected }

// Root returns the structural node chosen as this strategy's root by
// the most recent Init, or nil before the first Init.
func (s *FullyConnectedStrategy) Root() *Node { return s.root }

func (s *FullyConnectedStrategy) ensureArena(n *core.Network) {
	if s.arena == nil {
		s.arena = newArena(n.IDs, GenericStructure)
	}
}

func (s *FullyConnectedStrategy) Init(n *core.Network, tick int64) error {
	s.ensureArena(n)
	s.arena.reset()
	s.rootSet = false
	s.root = nil
	for _, id := range n.LiveMirrorIDs() {
		s.arena.assign(id)
	}
	s.bindRoot()
	return s.connectAll(n, tick)
}

// bindRoot records the node at the lowest occupied slot as this
// strategy's root once per Init (spec.md §9's fix for the source's
// reflective final-field backfill: the root is unknown at construction
// and acquired on Init; Init clears the binding, and later AddMirrors
// calls leave it in place).
func (s *FullyConnectedStrategy) bindRoot() {
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

func (s *FullyConnectedStrategy) connectAll(n *core.Network, tick int64) error {
	ids := n.LiveMirrorIDs()
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if n.HasLink(ids[i], ids[j]) {
				continue
			}
			if _, err := n.CreateLink(tick, ids[i], ids[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *FullyConnectedStrategy) AddMirrors(n *core.Network, count int, tick int64) error {
	if count <= 0 {
		return &InvalidMirrorDistributionError{Total: count, Reason: "mirror count to add must be positive"}
	}
	s.ensureArena(n)
	for i := 0; i < count; i++ {
		m := n.CreateMirror(tick, false)
		s.arena.assign(m.ID)
	}
	return s.connectAll(n, tick)
}

func (s *FullyConnectedStrategy) RemoveMirrors(n *core.Network, count int, tick int64) error {
	s.ensureArena(n)
	return removeNonRootMirrors(n, s.arena, count, tick)
}

func (s *FullyConnectedStrategy) Restart(n *core.Network, tick int64) error {
	n.ClearAllLinks(tick)
	return s.Init(n, tick)
}

func (s *FullyConnectedStrategy) TargetLinkCount(n *core.Network) int {
	m := n.LiveMirrorCount()
	return m * (m - 1) / 2
}

func (s *FullyConnectedStrategy) PredictedTargetLinkCount(n *core.Network, action core.Action) int {
	m := predictedMirrorCount(n, action)
	return m * (m - 1) / 2
}
