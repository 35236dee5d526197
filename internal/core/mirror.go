package core

// MirrorState is a position in the mirror lifecycle, spec.md §4.1.
type MirrorState int

const (
	MirrorDown MirrorState = iota
	MirrorStarting
	MirrorUp
	MirrorReady
	MirrorHasData
	MirrorStopping
	MirrorStopped
)

func (s MirrorState) String() string {
	switch s {
	case MirrorDown:
		return "DOWN"
	case MirrorStarting:
		return "STARTING"
	case MirrorUp:
		return "UP"
	case MirrorReady:
		return "READY"
	case MirrorHasData:
		return "HAS_DATA"
	case MirrorStopping:
		return "STOPPING"
	case MirrorStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Durations holds the per-instance ticks-in-state sampled once at
// creation for a mirror (spec.md §4.1). Links sample their single
// activation duration separately (Config.SampleLinkActivation).
type Durations struct {
	Startup int64
	Ready   int64
	Stop    int64
}

// Mirror is a single overlay node: a state machine plus an optional data
// accumulator and its link membership. Mirrors are owned exclusively by
// a Network; strategies reference them only by identifier (spec.md §9).
type Mirror struct {
	ID          uint64
	CreatedTick int64
	State       MirrorState
	IsRoot      bool
	Durations   Durations

	Data *DataPackage

	Links map[uint64]struct{} // link IDs this mirror currently participates in

	// Received is a sparse tick -> bytes-gained-that-tick history,
	// written by ReceiveBytes (Network.Tick computes its bandwidth total
	// from Data.Received directly).
	Received map[int64]int64

	stateSince int64 // tick at which the current State was entered
}

// NewMirror creates a mirror already in STARTING state, as spec.md §4.1
// treats the DOWN->STARTING transition as instantaneous on creation.
func NewMirror(id uint64, tick int64, durations Durations, isRoot bool, data *DataPackage) *Mirror {
	return &Mirror{
		ID:          id,
		CreatedTick: tick,
		State:       MirrorStarting,
		IsRoot:      isRoot,
		Durations:   durations,
		Data:        data,
		Links:       make(map[uint64]struct{}),
		Received:    make(map[int64]int64),
		stateSince:  tick,
	}
}

// RequestStop moves the mirror to STOPPING immediately, unless it is
// already stopping/stopped. The root may be stopped explicitly (only
// random crashes exempt the root, spec.md §8 invariant 3).
func (m *Mirror) RequestStop(tick int64) {
	if m.State == MirrorStopping || m.State == MirrorStopped {
		return
	}
	m.transition(MirrorStopping, tick)
}

// Elapsed returns the number of ticks the mirror has spent in its
// current state as of `tick`.
func (m *Mirror) Elapsed(tick int64) int64 {
	return tick - m.stateSince
}

func (m *Mirror) transition(to MirrorState, tick int64) {
	m.State = to
	m.stateSince = tick
}

// ReceiveBytes credits up to `amount` bytes from link traffic arriving
// this tick and adds the amount actually absorbed to the per-tick
// history. Nothing is recorded when the package is nil or nothing was
// absorbed (for example because the package is already complete).
func (m *Mirror) ReceiveBytes(tick int64, amount int64) {
	if m.Data == nil {
		return
	}
	got := m.Data.Absorb(amount)
	if got > 0 {
		m.Received[tick] += got
	}
}

// Advance evolves the mirror's state machine by one tick. Crash sampling
// for non-root mirrors in {UP, READY, HAS_DATA} is delegated to the
// caller via shouldCrash so that the fault_probability roll can be made
// with the network's shared Source in deterministic mirror-id order.
func (m *Mirror) Advance(tick int64, shouldCrash bool) {
	switch m.State {
	case MirrorStarting:
		if m.Elapsed(tick) >= m.Durations.Startup {
			m.transition(MirrorUp, tick)
		}
	case MirrorUp:
		if shouldCrash && !m.IsRoot {
			m.transition(MirrorStopping, tick)
			return
		}
		if m.Elapsed(tick) >= m.Durations.Ready {
			m.transition(MirrorReady, tick)
		}
	case MirrorReady:
		if shouldCrash && !m.IsRoot {
			m.transition(MirrorStopping, tick)
			return
		}
		if m.Data.Complete() {
			m.transition(MirrorHasData, tick)
		}
	case MirrorHasData:
		if shouldCrash && !m.IsRoot {
			m.transition(MirrorStopping, tick)
		}
	case MirrorStopping:
		if m.Elapsed(tick) >= m.Durations.Stop {
			m.transition(MirrorStopped, tick)
		}
	case MirrorStopped:
		// absorbing
	}
}

// Live reports whether the mirror is not yet STOPPED.
func (m *Mirror) Live() bool { return m.State != MirrorStopped }

// ReadyForLink reports whether the mirror can take part in an ACTIVE
// link transition (it has reached at least UP).
func (m *Mirror) ReadyForLink() bool {
	switch m.State {
	case MirrorUp, MirrorReady, MirrorHasData:
		return true
	default:
		return false
	}
}

// HasCompletedData reports whether this mirror is a data source for its
// neighbours (spec.md §4.1: "becomes a source for its neighbours").
func (m *Mirror) HasCompletedData() bool {
	return m.State == MirrorHasData
}
