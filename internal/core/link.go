package core

// LinkState is a position in the link lifecycle, spec.md §4.2.
type LinkState int

const (
	LinkInactive LinkState = iota
	LinkActive
	LinkClosed
)

func (s LinkState) String() string {
	switch s {
	case LinkInactive:
		return "INACTIVE"
	case LinkActive:
		return "ACTIVE"
	case LinkClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// LinkKey is the unordered-pair identity of a link: two links between
// the same two mirrors, in either order, collide on this key (spec.md §4.2).
type LinkKey [2]uint64

// NewLinkKey builds the canonical (sorted) key for an endpoint pair.
func NewLinkKey(a, b uint64) LinkKey {
	if a > b {
		a, b = b, a
	}
	return LinkKey{a, b}
}

// Link is an undirected edge between two mirrors with its own
// activation state machine. Links are owned exclusively by a Network.
type Link struct {
	ID                 uint64
	A, B               uint64 // endpoint mirror identifiers
	CreatedTick        int64
	ActivationDuration int64
	State              LinkState

	bothUpSince int64 // tick both endpoints first observed UP; -1 until set
	stateSince  int64
}

// NewLink creates an INACTIVE link between two distinct mirrors.
func NewLink(id, a, b uint64, tick int64, activationDuration int64) *Link {
	return &Link{
		ID:                 id,
		A:                  a,
		B:                  b,
		CreatedTick:        tick,
		ActivationDuration: activationDuration,
		State:              LinkInactive,
		bothUpSince:        -1,
		stateSince:         tick,
	}
}

// Key returns the unordered-pair identity of this link.
func (l *Link) Key() LinkKey { return NewLinkKey(l.A, l.B) }

// Other returns the endpoint that is not `mirrorID`.
func (l *Link) Other(mirrorID uint64) uint64 {
	if l.A == mirrorID {
		return l.B
	}
	return l.A
}

func (l *Link) transition(to LinkState, tick int64) {
	l.State = to
	l.stateSince = tick
}

// Advance evolves the link's state machine by one tick given the
// current state of its two endpoints.
func (l *Link) Advance(tick int64, a, b *Mirror) {
	switch l.State {
	case LinkInactive:
		if a.State == MirrorStopped || b.State == MirrorStopped {
			l.transition(LinkClosed, tick)
			return
		}
		aUp := a.ReadyForLink()
		bUp := b.ReadyForLink()
		if aUp && bUp {
			if l.bothUpSince < 0 {
				l.bothUpSince = tick
			}
			if tick-l.bothUpSince >= l.ActivationDuration {
				l.transition(LinkActive, tick)
			}
		} else {
			l.bothUpSince = -1
		}
	case LinkActive:
		if a.State == MirrorStopped || b.State == MirrorStopped {
			l.transition(LinkClosed, tick)
		}
	case LinkClosed:
		// absorbing
	}
}

// Close forces the link to CLOSED, e.g. on an explicit shutdown
// (spec.md §4.2) or a restart tearing down the graph.
func (l *Link) Close(tick int64) {
	if l.State != LinkClosed {
		l.transition(LinkClosed, tick)
	}
}
