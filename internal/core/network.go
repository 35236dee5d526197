package core

import (
	"sort"

	"go.uber.org/zap"

	"github.com/mirrorlab/rdmsim/internal/ids"
)

// Network is the simulation's central aggregate: it owns the mirrors,
// the links, the active topology strategy, the registered probes and
// the effector, and drives per-tick advancement (spec.md §4.4).
type Network struct {
	Cfg    Config
	Source *Source
	IDs    *ids.Allocator
	Logger *zap.Logger

	Strategy TopologyStrategy
	Effector Effector

	Mirrors map[uint64]*Mirror
	Links   map[LinkKey]*Link

	probes []Probe

	TargetMirrorCount    int
	TargetLinksPerMirror int

	// BandwidthHistory maps tick -> aggregate bytes delivered across all
	// mirrors at that tick (spec.md §4.4 step 5).
	BandwidthHistory map[int64]int64

	lastTick int64
}

// NewNetwork constructs an empty Network. Call Bootstrap to create the
// initial mirror set and Init the strategy.
func NewNetwork(cfg Config, strategy TopologyStrategy, logger *zap.Logger) *Network {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Network{
		Cfg:              cfg,
		Source:           NewSource(cfg.Seed),
		IDs:              &ids.Allocator{},
		Logger:           logger,
		Strategy:         strategy,
		Mirrors:          make(map[uint64]*Mirror),
		Links:            make(map[LinkKey]*Link),
		BandwidthHistory: make(map[int64]int64),
	}
}

// RegisterProbe attaches a read-only observer. Probes are sampled in
// registration order after state advancement and effector application.
func (n *Network) RegisterProbe(p Probe) { n.probes = append(n.probes, p) }

// Bootstrap creates the configured initial mirror set (the first mirror
// created is the root and starts with a completed data package, acting as the initial
// data source) and hands them to the strategy's Init.
func (n *Network) Bootstrap(tick int64) error {
	count := n.Cfg.NumMirrors
	if count < 1 {
		count = 1
	}
	for i := 0; i < count; i++ {
		n.CreateMirror(tick, i == 0)
	}
	n.TargetMirrorCount = count
	n.TargetLinksPerMirror = n.Cfg.NumLinksPerMirror
	n.lastTick = tick - 1
	if n.Strategy == nil {
		return nil
	}
	return n.Strategy.Init(n, tick)
}

// CreateMirror allocates and stores a new mirror. The root mirror is
// seeded with a data package that has already been fully received, so
// it becomes a data source for its neighbours as soon as it is READY.
func (n *Network) CreateMirror(tick int64, isRoot bool) *Mirror {
	id := n.IDs.NextMirror()
	durations := n.Cfg.SampleMirrorDurations(n.Source)
	var data *DataPackage
	if n.Cfg.FileSize > 0 {
		data = NewDataPackage(n.Cfg.FileSize)
		if isRoot {
			data.Received = data.Size
		}
	}
	m := NewMirror(id, tick, durations, isRoot, data)
	n.Mirrors[id] = m
	return m
}

// CreateLink allocates and stores a new link between two mirrors,
// rejecting a second link over the same unordered endpoint pair
// (spec.md §4.2, §4.3 "pair-uniqueness").
func (n *Network) CreateLink(tick int64, a, b uint64) (*Link, error) {
	key := NewLinkKey(a, b)
	if _, exists := n.Links[key]; exists {
		return nil, &InvariantViolationError{Detail: "duplicate link for endpoint pair"}
	}
	ma, aok := n.Mirrors[a]
	mb, bok := n.Mirrors[b]
	if !aok || !bok || a == b {
		return nil, &InvariantViolationError{Detail: "link endpoints must be two distinct existing mirrors"}
	}
	id := n.IDs.NextLink()
	dur := n.Cfg.SampleLinkActivation(n.Source)
	l := NewLink(id, a, b, tick, dur)
	n.Links[key] = l
	ma.Links[l.ID] = struct{}{}
	mb.Links[l.ID] = struct{}{}
	return l, nil
}

// HasLink reports whether a link already exists between the unordered
// pair (a, b).
func (n *Network) HasLink(a, b uint64) bool {
	_, ok := n.Links[NewLinkKey(a, b)]
	return ok
}

// ClearAllLinks immediately tears down every link (used by Restart,
// spec.md §4.3), detaching them from their endpoint mirrors synchronously
// rather than waiting for the normal next-tick removal.
func (n *Network) ClearAllLinks(tick int64) {
	for key, l := range n.Links {
		l.Close(tick)
		if m, ok := n.Mirrors[l.A]; ok {
			delete(m.Links, l.ID)
		}
		if m, ok := n.Mirrors[l.B]; ok {
			delete(m.Links, l.ID)
		}
		delete(n.Links, key)
	}
}

// LiveMirrorIDs returns the identifiers of all non-STOPPED mirrors in
// ascending (deterministic) order.
func (n *Network) LiveMirrorIDs() []uint64 {
	ids := make([]uint64, 0, len(n.Mirrors))
	for id, m := range n.Mirrors {
		if m.Live() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// LiveMirrorCount returns the number of non-STOPPED mirrors.
func (n *Network) LiveMirrorCount() int {
	count := 0
	for _, m := range n.Mirrors {
		if m.Live() {
			count++
		}
	}
	return count
}

// ActiveLinkCount returns the number of links currently in the ACTIVE
// state.
func (n *Network) ActiveLinkCount() int {
	count := 0
	for _, l := range n.Links {
		if l.State == LinkActive {
			count++
		}
	}
	return count
}

// Root returns the network's root mirror, if it is still live.
func (n *Network) Root() *Mirror {
	for _, m := range n.Mirrors {
		if m.IsRoot {
			return m
		}
	}
	return nil
}

// CurrentTick returns the last tick advanced by Tick (or Bootstrap's
// tick-1 if Tick has not yet been called).
func (n *Network) CurrentTick() int64 { return n.lastTick }

// ClampTick bounds t to the simulation's known history range [0, last
// simulated tick], so a historical lookup through it never indexes past
// what has actually been simulated.
func (n *Network) ClampTick(t int64) int64 {
	if t < 0 {
		return 0
	}
	if t > n.lastTick {
		return n.lastTick
	}
	return t
}

// linksSortedByID returns the links in a deterministic order (by link ID).
func (n *Network) linksSortedByID() []*Link {
	links := make([]*Link, 0, len(n.Links))
	for _, l := range n.Links {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ID < links[j].ID })
	return links
}

// Tick advances the network by exactly one discrete step, following the
// ordering in spec.md §4.4/§5: mirror state advancement (with data
// propagation), link state advancement and removal, effector
// application, then probe sampling - each phase in deterministic
// identifier order.
func (n *Network) Tick(t int64) error {
	if t <= n.lastTick {
		return &InvariantViolationError{Detail: "ticks must be called in strictly increasing order"}
	}

	liveIDs := n.LiveMirrorIDs()
	var tickBandwidth int64

	for _, id := range liveIDs {
		m := n.Mirrors[id]
		tickBandwidth += n.propagateInto(m, t)

		shouldCrash := !m.IsRoot && (m.State == MirrorUp || m.State == MirrorReady || m.State == MirrorHasData) &&
			n.Source.Chance(n.Cfg.FaultProbability)
		m.Advance(t, shouldCrash)
	}

	for _, id := range liveIDs {
		m := n.Mirrors[id]
		if m.State == MirrorStopped {
			delete(n.Mirrors, id)
		}
	}

	for _, l := range n.linksSortedByID() {
		if l.State == LinkClosed {
			n.detachClosedLink(l)
			continue
		}
		ma, aok := n.Mirrors[l.A]
		mb, bok := n.Mirrors[l.B]
		if !aok || !bok {
			l.Close(t)
			n.detachClosedLink(l)
			continue
		}
		l.Advance(t, ma, mb)
		if l.State == LinkClosed {
			n.detachClosedLink(l)
		}
	}

	if n.Effector != nil {
		n.Effector.Apply(n, t)
	}

	n.lastTick = t
	n.BandwidthHistory[t] = tickBandwidth

	for _, p := range n.probes {
		p.Sample(n, t)
	}

	return nil
}

// propagateInto credits inbound bytes for `m` from every currently
// ACTIVE link whose other endpoint already HAS_DATA, and returns the
// total bytes credited (spec.md §4.1).
func (n *Network) propagateInto(m *Mirror, tick int64) int64 {
	if !m.ReadyForLink() || m.HasCompletedData() {
		return 0
	}
	var total int64
	linkIDs := make([]uint64, 0, len(m.Links))
	for id := range m.Links {
		linkIDs = append(linkIDs, id)
	}
	sort.Slice(linkIDs, func(i, j int) bool { return linkIDs[i] < linkIDs[j] })
	for _, lid := range linkIDs {
		link, ok := n.Links[n.linkKeyByID(lid)]
		if !ok || link.State != LinkActive {
			continue
		}
		other, ok := n.Mirrors[link.Other(m.ID)]
		if !ok || !other.HasCompletedData() {
			continue
		}
		before := m.Data.Received
		m.ReceiveBytes(tick, n.Cfg.LinkBandwidth)
		total += m.Data.Received - before
		if m.HasCompletedData() {
			break
		}
	}
	return total
}

// linkKeyByID is a small helper for propagateInto, which only has a
// link ID (from a mirror's membership set) and needs the full Link.
func (n *Network) linkKeyByID(id uint64) LinkKey {
	for key, l := range n.Links {
		if l.ID == id {
			return key
		}
	}
	return LinkKey{}
}

func (n *Network) detachClosedLink(l *Link) {
	if m, ok := n.Mirrors[l.A]; ok {
		delete(m.Links, l.ID)
	}
	if m, ok := n.Mirrors[l.B]; ok {
		delete(m.Links, l.ID)
	}
	delete(n.Links, l.Key())
}

// SetTargetMirrorCount grows or shrinks the live mirror population
// toward `target` via the active strategy (spec.md §4.4).
func (n *Network) SetTargetMirrorCount(target int, tick int64) error {
	live := n.LiveMirrorCount()
	n.TargetMirrorCount = target
	switch {
	case target > live:
		return n.Strategy.AddMirrors(n, target-live, tick)
	case target < live:
		return n.Strategy.RemoveMirrors(n, live-target, tick)
	default:
		return nil
	}
}

// SetTargetLinksPerMirror updates the target links-per-mirror and, for
// t > 0, requests a strategy restart (spec.md §4.4).
func (n *Network) SetTargetLinksPerMirror(k int, tick int64) error {
	n.TargetLinksPerMirror = k
	if tick > 0 {
		return n.restartAndNotify(tick)
	}
	return nil
}

// SetStrategy replaces the active strategy and, for t > 0, requests a
// restart under the new strategy (spec.md §4.4).
func (n *Network) SetStrategy(s TopologyStrategy, tick int64) error {
	n.Strategy = s
	if tick > 0 {
		return n.restartAndNotify(tick)
	}
	return nil
}

// restartAndNotify calls the strategy's Restart and then fans a
// structure-changed event to every probe implementing StructureObserver
// (spec.md §9, resolving the BuildAsSubstructure open question in favor
// of a single Network-driven fan-out with no legacy path).
func (n *Network) restartAndNotify(tick int64) error {
	if err := n.Strategy.Restart(n, tick); err != nil {
		return err
	}
	for _, p := range n.probes {
		if obs, ok := p.(StructureObserver); ok {
			obs.OnStructureChanged(n, tick)
		}
	}
	return nil
}
