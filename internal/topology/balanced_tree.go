package topology

import "github.com/mirrorlab/rdmsim/internal/core"

// BalancedTreeStrategy grows a rooted tree breadth-first: the root
// takes up to k = target-links-per-mirror children, every other
// internal node up to k-1 (one of its k links is its parent edge),
// before the next depth is started (spec.md §4.3). Target link count
// is m-1 regardless of k (it never depends on target-links-per-mirror,
// spec.md §4.6).
type BalancedTreeStrategy struct {
	arena   *arena
	root    *Node
	rootSet bool
}

func NewBalancedTreeStrategy() *BalancedTreeStrategy { return &BalancedTreeStrategy{} }

func (s *BalancedTreeStrategy) Kind() core.StrategyKind { return core.BalancedTree }

// Root returns the tree's root structural node, chosen by the most
// recent Init, or nil before the first Init.
func (s *BalancedTreeStrategy) Root() *Node { return s.root }

func (s *BalancedTreeStrategy) ensureArena(n *core.Network) {
	if s.arena == nil {
		s.arena = newArena(n.IDs, TreeStructure)
	}
}

func (s *BalancedTreeStrategy) Init(n *core.Network, tick int64) error {
	if n.LiveMirrorCount() < 1 {
		return &InvalidMirrorDistributionError{Total: n.LiveMirrorCount(), Reason: "a tree requires at least 1 mirror"}
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

// bindRoot records the node at the lowest occupied slot as this tree's
// root once per Init: Init clears the binding, and later AddMirrors
// calls leave it in place (spec.md §9's fix for the source's reflective
// final-field backfill).
func (s *BalancedTreeStrategy) bindRoot(root *Node) {
	if s.rootSet {
		return
	}
	root.Head = true
	s.root = root
	s.rootSet = true
}

// parentOf computes the breadth-first parent assignment over the
// arena's slot order: order[0] is the root, each subsequent mirror is
// attached to the earliest node in the queue that still has capacity.
func (s *BalancedTreeStrategy) parentOf(n *core.Network) map[uint64]uint64 {
	slots := s.arena.slots()
	parents := make(map[uint64]uint64, len(slots))
	if len(slots) == 0 {
		return parents
	}
	k := n.TargetLinksPerMirror
	if k < 1 {
		k = 1
	}
	type node struct {
		id       uint64
		capacity int
	}
	root, _ := s.arena.mirrorAt(slots[0])
	queue := []node{{root, k}}
	head := 0
	for i := 1; i < len(slots); i++ {
		for head < len(queue) && queue[head].capacity <= 0 {
			head++
		}
		parent := queue[head].id
		child, _ := s.arena.mirrorAt(slots[i])
		parents[child] = parent
		queue[head].capacity--
		childCapacity := k - 1
		if childCapacity < 0 {
			childCapacity = 0
		}
		queue = append(queue, node{child, childCapacity})
	}
	return parents
}

func (s *BalancedTreeStrategy) connect(n *core.Network, tick int64) error {
	slots := s.arena.slots()
	if len(slots) > 0 {
		s.bindRoot(s.arena.nodeAt(slots[0]))
	}
	for child, parent := range s.parentOf(n) {
		s.arena.nodeFor(child).SetParent(s.arena.nodeFor(parent))
		if n.HasLink(child, parent) {
			continue
		}
		if _, err := n.CreateLink(tick, child, parent); err != nil {
			return err
		}
	}
	return nil
}

func (s *BalancedTreeStrategy) AddMirrors(n *core.Network, count int, tick int64) error {
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

func (s *BalancedTreeStrategy) RemoveMirrors(n *core.Network, count int, tick int64) error {
	s.ensureArena(n)
	return removeNonRootMirrors(n, s.arena, count, tick)
}

func (s *BalancedTreeStrategy) Restart(n *core.Network, tick int64) error {
	n.ClearAllLinks(tick)
	return s.Init(n, tick)
}

func (s *BalancedTreeStrategy) TargetLinkCount(n *core.Network) int {
	m := n.LiveMirrorCount()
	if m < 1 {
		return 0
	}
	return m - 1
}

func (s *BalancedTreeStrategy) PredictedTargetLinkCount(n *core.Network, action core.Action) int {
	m := predictedMirrorCount(n, action)
	if m < 1 {
		return 0
	}
	return m - 1
}
