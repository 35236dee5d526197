// Package probes implements the read-only observers sampled once per
// tick after state advancement and effector application (spec.md §4.7).
package probes

import "github.com/mirrorlab/rdmsim/internal/core"

// MirrorStateCounts tallies live mirrors by state.
type MirrorStateCounts struct {
	Starting int
	Up       int
	Ready    int
	HasData  int
	Stopping int
}

// MirrorReport is MirrorProbe's snapshot at a given tick.
type MirrorReport struct {
	Tick        int64
	Counts      MirrorStateCounts
	Target      int
	ReadyRatio  float64 // UP-or-better mirrors / target
	HasDataRatio float64
}

// MirrorProbe counts mirrors by state and tracks the ratio of mirrors in
// UP, READY or HAS_DATA to the network's target mirror count (spec.md §4.7).
type MirrorProbe struct {
	history map[int64]MirrorReport
	latest  int64
}

// NewMirrorProbe constructs an empty MirrorProbe.
func NewMirrorProbe() *MirrorProbe {
	return &MirrorProbe{history: make(map[int64]MirrorReport)}
}

func (p *MirrorProbe) Sample(n *core.Network, tick int64) {
	var counts MirrorStateCounts
	readyOrBetter := 0
	hasData := 0
	for _, m := range n.Mirrors {
		switch m.State {
		case core.MirrorStarting:
			counts.Starting++
		case core.MirrorUp:
			counts.Up++
			readyOrBetter++
		case core.MirrorReady:
			counts.Ready++
			readyOrBetter++
		case core.MirrorHasData:
			counts.HasData++
			readyOrBetter++
			hasData++
		case core.MirrorStopping:
			counts.Stopping++
		}
	}
	target := n.TargetMirrorCount
	report := MirrorReport{
		Tick:   tick,
		Counts: counts,
		Target: target,
	}
	if target > 0 {
		report.ReadyRatio = float64(readyOrBetter) / float64(target)
		report.HasDataRatio = float64(hasData) / float64(target)
	}
	p.history[tick] = report
	p.latest = tick
}

func (p *MirrorProbe) Report(tick int64) any {
	if r, ok := p.history[tick]; ok {
		return r
	}
	return p.history[p.latest]
}

// History returns every sample recorded so far, keyed by tick.
func (p *MirrorProbe) History() map[int64]MirrorReport { return p.history }
