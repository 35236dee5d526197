package topology

import "github.com/mirrorlab/rdmsim/internal/core"

// SnowflakeStrategy builds the composite topology: concentric rings
// connected by bridges, with external star-shaped subtrees hanging off
// designated star-ports on the outermost ring (spec.md §4.3, §9).
//
// Unlike the simpler strategies, a snowflake's ring/bridge/star
// partition depends on the *total* mirror count, not just the delta, so
// AddMirrors here recomputes the whole plan rather than growing the
// existing graph incrementally. RemoveMirrors only marks mirrors
// STOPPING and frees their slots; it does not rebuild the rings,
// bridges or stars around them.
type SnowflakeStrategy struct {
	arena   *arena
	root    *Node
	rootSet bool
}

func NewSnowflakeStrategy() *SnowflakeStrategy { return &SnowflakeStrategy{} }

func (s *SnowflakeStrategy) Kind() core.StrategyKind { return core.Snowflake }

// Root returns the outermost ring's designated head node, chosen by
// the most recent Init, or nil before the first Init.
func (s *SnowflakeStrategy) Root() *Node { return s.root }

func (s *SnowflakeStrategy) ensureArena(n *core.Network) {
	if s.arena == nil {
		s.arena = newArena(n.IDs, SnowflakeStructure)
	}
}

// bindRoot records head as this composite structure's root once per
// Init: Init clears the binding before each rebuild (spec.md §9's fix
// for the source's reflective final-field backfill).
func (s *SnowflakeStrategy) bindRoot(head *Node) {
	if s.rootSet {
		return
	}
	head.Head = true
	s.root = head
	s.rootSet = true
}

// snowflakePlan is the pure partition of m mirrors into rings, bridges
// and star subtrees. The same plan drives both actual construction
// (Init/build) and the pure link-count predictions, so the two can
// never disagree with each other.
type snowflakePlan struct {
	rawRingSizes []int // outside-in, before bridge-mirror steal
	ringSizes    []int // outside-in, after bridge-mirror steal
	bridgeCounts []int // per gap i (between ring i and ring i+1)
	bridgeHeight int
	starPorts    int
	starPerPort  []int
	bridgeToStar int
	ringMirrors  int
	starMirrors  int
}

func validateSnowflakeConfig(cfg core.SnowflakeConfig) error {
	if cfg.MinimalRingMirrorCount < 3 {
		return &InvalidRingParameterError{Parameter: "minimal_ring_mirror_count", Value: cfg.MinimalRingMirrorCount, Constraint: ">= 3"}
	}
	if cfg.MaxRingLayers < 1 {
		return &InvalidRingParameterError{Parameter: "max_ring_layers", Value: cfg.MaxRingLayers, Constraint: ">= 1"}
	}
	if cfg.RingBridgeStep < 0 {
		return &InvalidRingParameterError{Parameter: "ring_bridge_step", Value: cfg.RingBridgeStep, Constraint: ">= 0"}
	}
	if cfg.RingBridgeOffset < 0 {
		return &InvalidRingParameterError{Parameter: "ring_bridge_offset", Value: cfg.RingBridgeOffset, Constraint: ">= 0"}
	}
	if cfg.BridgeHeight < 1 {
		return &InvalidRingParameterError{Parameter: "bridge_height", Value: cfg.BridgeHeight, Constraint: ">= 1"}
	}
	if cfg.ExternStarRatio < 0 || cfg.ExternStarRatio > 1 {
		return &InvalidStarParameterError{Parameter: "extern_star_ratio", Value: cfg.ExternStarRatio, Constraint: "in [0, 1]"}
	}
	if cfg.ExternStarMaxTreeDepth < 1 {
		return &InvalidStarParameterError{Parameter: "extern_star_max_tree_depth", Value: float64(cfg.ExternStarMaxTreeDepth), Constraint: ">= 1"}
	}
	if cfg.BridgeToExternStarDistance < 0 {
		return &InvalidStarParameterError{Parameter: "bridge_to_extern_star_distance", Value: float64(cfg.BridgeToExternStarDistance), Constraint: ">= 0"}
	}
	return nil
}

func planSnowflake(m int, cfg core.SnowflakeConfig) (*snowflakePlan, error) {
	if m <= 0 {
		return nil, &InvalidMirrorDistributionError{Total: m, Reason: "snowflake requires a positive mirror count"}
	}
	if err := validateSnowflakeConfig(cfg); err != nil {
		return nil, err
	}

	ringMirrors := int(float64(m) * (1 - cfg.ExternStarRatio))
	starMirrors := m - ringMirrors
	minimal := cfg.MinimalRingMirrorCount
	if ringMirrors < minimal {
		return nil, &InsufficientMirrorsForRingError{Available: ringMirrors, Required: minimal, RingIndex: 1}
	}

	layers := cfg.MaxRingLayers
	if maxLayers := ringMirrors / minimal; layers > maxLayers {
		layers = maxLayers
	}
	if layers < 1 {
		layers = 1
	}

	sizes := make([]int, layers)
	for i := range sizes {
		sizes[i] = minimal
	}
	leftover := ringMirrors - minimal*layers
	for i := 0; leftover > 0; i = (i + 1) % layers {
		sizes[i]++
		leftover--
	}
	rawRingSizes := append([]int(nil), sizes...)

	bridgeCounts := make([]int, maxInt(layers-1, 0))
	step := cfg.RingBridgeStep + 1
	for i := range bridgeCounts {
		count := sizes[i] / step
		if count < 1 {
			count = 1
		}
		need := count * cfg.BridgeHeight
		if sizes[i+1]-need < minimal {
			need = maxInt(sizes[i+1]-minimal, 0)
			if cfg.BridgeHeight > 0 {
				count = need / cfg.BridgeHeight
			} else {
				count = 0
			}
		}
		sizes[i+1] -= count * cfg.BridgeHeight
		bridgeCounts[i] = count
	}

	starPorts := maxInt(1, sizes[0]/step)
	starPerPort := make([]int, starPorts)
	base := starMirrors / starPorts
	rem := starMirrors % starPorts
	for i := range starPerPort {
		starPerPort[i] = base
		if i < rem {
			starPerPort[i]++
		}
	}

	return &snowflakePlan{
		rawRingSizes: rawRingSizes,
		ringSizes:    sizes,
		bridgeCounts: bridgeCounts,
		bridgeHeight: cfg.BridgeHeight,
		starPorts:    starPorts,
		starPerPort:  starPerPort,
		bridgeToStar: cfg.BridgeToExternStarDistance,
		ringMirrors:  ringMirrors,
		starMirrors:  starMirrors,
	}, nil
}

// edgeCount is the link total this plan implies: ring cycle edges, plus
// bridge chain edges, plus star subtree edges (including the bridge
// connecting a port to its subtree, when configured).
func (p *snowflakePlan) edgeCount() int {
	total := 0
	for _, sz := range p.ringSizes {
		if sz >= 2 {
			total += sz
		}
	}
	for _, c := range p.bridgeCounts {
		total += c * (p.bridgeHeight + 1)
	}
	for _, sp := range p.starPerPort {
		if sp <= 0 {
			continue
		}
		if p.bridgeToStar > 0 {
			take := minInt(p.bridgeToStar, sp)
			total += take
			total += maxInt(sp-take, 0)
		} else {
			total += sp
		}
	}
	return total
}

func (s *SnowflakeStrategy) Init(n *core.Network, tick int64) error {
	s.ensureArena(n)
	plan, err := planSnowflake(n.LiveMirrorCount(), n.Cfg.Snowflake)
	if err != nil {
		return err
	}
	s.arena.reset()
	s.rootSet = false
	s.root = nil
	slots := make([]uint64, 0, n.LiveMirrorCount())
	for _, id := range n.LiveMirrorIDs() {
		slots = append(slots, s.arena.assign(id))
	}
	return s.build(n, tick, plan, slots)
}

func (s *SnowflakeStrategy) mirrorAt(slot uint64) uint64 {
	m, _ := s.arena.mirrorAt(slot)
	return m
}

func (s *SnowflakeStrategy) build(n *core.Network, tick int64, plan *snowflakePlan, slots []uint64) error {
	idx := 0
	ringPools := make([][]uint64, len(plan.rawRingSizes))
	for i, sz := range plan.rawRingSizes {
		end := minInt(idx+sz, len(slots))
		ringPools[i] = slots[idx:end]
		idx = end
	}
	starPool := slots[idx:]

	bridgeChains := make([][][]uint64, len(plan.bridgeCounts))
	for gap, count := range plan.bridgeCounts {
		inner := ringPools[gap+1]
		chains := make([][]uint64, 0, count)
		for b := 0; b < count; b++ {
			take := minInt(plan.bridgeHeight, len(inner))
			if take == 0 {
				break
			}
			chains = append(chains, inner[len(inner)-take:])
			inner = inner[:len(inner)-take]
		}
		ringPools[gap+1] = inner
		bridgeChains[gap] = chains
	}

	if len(ringPools) > 0 && len(ringPools[0]) > 0 {
		s.bindRoot(s.arena.nodeAt(ringPools[0][0]))
	}
	for _, pool := range ringPools {
		if err := s.connectCycle(n, tick, pool); err != nil {
			return err
		}
	}

	step := n.Cfg.Snowflake.RingBridgeStep + 1
	offset := n.Cfg.Snowflake.RingBridgeOffset
	for gap, chains := range bridgeChains {
		outer := ringPools[gap]
		inner := ringPools[gap+1]
		if len(outer) == 0 || len(inner) == 0 {
			continue
		}
		for b, chain := range chains {
			outerPort := s.mirrorAt(outer[(offset+b*step)%len(outer)])
			innerPort := s.mirrorAt(inner[(offset+b*step)%len(inner)])
			if err := s.connectChain(n, tick, outerPort, chain, innerPort); err != nil {
				return err
			}
		}
	}

	branching := n.TargetLinksPerMirror
	if branching < 1 {
		branching = 2
	}
	if len(ringPools) > 0 {
		outer := ringPools[0]
		for p := 0; p < plan.starPorts && len(outer) > 0; p++ {
			port := s.mirrorAt(outer[(offset+p*step)%len(outer)])
			chunkStart := 0
			for i := 0; i < p; i++ {
				chunkStart += plan.starPerPort[i]
			}
			chunkEnd := minInt(chunkStart+plan.starPerPort[p], len(starPool))
			chunkStart = minInt(chunkStart, chunkEnd)
			chunk := starPool[chunkStart:chunkEnd]
			if err := s.attachStar(n, tick, port, chunk, plan.bridgeToStar, n.Cfg.Snowflake.ExternStarMaxTreeDepth, branching); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SnowflakeStrategy) connectCycle(n *core.Network, tick int64, pool []uint64) error {
	m := len(pool)
	if m < 2 {
		return nil
	}
	for i := 0; i < m; i++ {
		a := s.mirrorAt(pool[i])
		b := s.mirrorAt(pool[(i+1)%m])
		s.arena.nodeAt(pool[i]).SetSuccessor(s.arena.nodeAt(pool[(i+1)%m]))
		if a == b || n.HasLink(a, b) {
			continue
		}
		if _, err := n.CreateLink(tick, a, b); err != nil {
			return err
		}
	}
	return nil
}

// connectChain links outerPort -> chainSlots... -> innerPort as a
// parented line segment, recording the bridge between two ring layers
// as its own structure-node chain (spec.md §9's finalizeBridges gap).
func (s *SnowflakeStrategy) connectChain(n *core.Network, tick int64, outerPort uint64, chainSlots []uint64, innerPort uint64) error {
	prev := outerPort
	prevNode := s.arena.nodeFor(outerPort)
	for _, slot := range chainSlots {
		cur := s.mirrorAt(slot)
		curNode := s.arena.nodeAt(slot)
		curNode.SetParent(prevNode)
		if !n.HasLink(prev, cur) {
			if _, err := n.CreateLink(tick, prev, cur); err != nil {
				return err
			}
		}
		prev = cur
		prevNode = curNode
	}
	s.arena.nodeFor(innerPort).SetParent(prevNode)
	if !n.HasLink(prev, innerPort) {
		if _, err := n.CreateLink(tick, prev, innerPort); err != nil {
			return err
		}
	}
	return nil
}

func (s *SnowflakeStrategy) attachStar(n *core.Network, tick int64, port uint64, chunkSlots []uint64, bridgeLen int, maxDepth int, branching int) error {
	if len(chunkSlots) == 0 {
		return nil
	}
	members := make([]uint64, len(chunkSlots))
	for i, slot := range chunkSlots {
		members[i] = s.mirrorAt(slot)
	}
	root := port
	rootNode := s.arena.nodeFor(port)
	rest := members
	if bridgeLen > 0 {
		take := minInt(bridgeLen, len(rest))
		prev := port
		prevNode := rootNode
		for i := 0; i < take; i++ {
			cur := rest[i]
			curNode := s.arena.nodeFor(cur)
			curNode.SetParent(prevNode)
			if !n.HasLink(prev, cur) {
				if _, err := n.CreateLink(tick, prev, cur); err != nil {
					return err
				}
			}
			prev = cur
			prevNode = curNode
		}
		root = prev
		rootNode = prevNode
		rest = rest[take:]
	}
	return s.buildSubtree(n, tick, root, rootNode, rest, maxDepth, branching)
}

// buildSubtree attaches members breadth-first under root, capping depth
// at maxDepth; once every node at the frontier is at capacity or at the
// depth limit, remaining members saturate under the last frontier node
// rather than being dropped.
func (s *SnowflakeStrategy) buildSubtree(n *core.Network, tick int64, root uint64, rootNode *Node, members []uint64, maxDepth, branching int) error {
	if branching < 1 {
		branching = 1
	}
	type frontier struct {
		id       uint64
		node     *Node
		depth    int
		capacity int
	}
	queue := []frontier{{root, rootNode, 0, branching}}
	head := 0
	saturate := 0 // last queued node that may still take children
	for _, member := range members {
		for head < len(queue)-1 && (queue[head].capacity <= 0 || (maxDepth > 0 && queue[head].depth+1 > maxDepth)) {
			head++
		}
		pi := head
		if maxDepth > 0 && queue[pi].depth+1 > maxDepth {
			pi = saturate
		}
		parent := queue[pi]
		memberNode := s.arena.nodeFor(member)
		memberNode.SetParent(parent.node)
		if !n.HasLink(parent.id, member) {
			if _, err := n.CreateLink(tick, parent.id, member); err != nil {
				return err
			}
		}
		queue[pi].capacity--
		queue = append(queue, frontier{member, memberNode, parent.depth + 1, branching})
		if maxDepth <= 0 || parent.depth+1 < maxDepth {
			saturate = len(queue) - 1
		}
	}
	return nil
}

func (s *SnowflakeStrategy) AddMirrors(n *core.Network, count int, tick int64) error {
	if count <= 0 {
		return &InvalidMirrorDistributionError{Total: count, Reason: "mirror count to add must be positive"}
	}
	for i := 0; i < count; i++ {
		n.CreateMirror(tick, false)
	}
	return s.Init(n, tick)
}

func (s *SnowflakeStrategy) RemoveMirrors(n *core.Network, count int, tick int64) error {
	s.ensureArena(n)
	return removeNonRootMirrors(n, s.arena, count, tick)
}

func (s *SnowflakeStrategy) Restart(n *core.Network, tick int64) error {
	n.ClearAllLinks(tick)
	return s.Init(n, tick)
}

func (s *SnowflakeStrategy) TargetLinkCount(n *core.Network) int {
	plan, err := planSnowflake(n.LiveMirrorCount(), n.Cfg.Snowflake)
	if err != nil {
		return 0
	}
	return plan.edgeCount()
}

func (s *SnowflakeStrategy) PredictedTargetLinkCount(n *core.Network, action core.Action) int {
	m := predictedMirrorCount(n, action)
	plan, err := planSnowflake(m, n.Cfg.Snowflake)
	if err != nil {
		return 0
	}
	return plan.edgeCount()
}
