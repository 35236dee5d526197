package probes

import "github.com/mirrorlab/rdmsim/internal/core"

// LinkReport is LinkProbe's snapshot at a given tick.
type LinkReport struct {
	Tick        int64
	Active      int
	Inactive    int
	Target      int
	ActiveRatio float64 // active / target
}

// LinkProbe tracks the active-link-to-target ratio and a per-tick
// historical active-link count (spec.md §4.7).
type LinkProbe struct {
	history map[int64]LinkReport
	latest  int64
}

// NewLinkProbe constructs an empty LinkProbe.
func NewLinkProbe() *LinkProbe {
	return &LinkProbe{history: make(map[int64]LinkReport)}
}

func (p *LinkProbe) Sample(n *core.Network, tick int64) {
	active := 0
	inactive := 0
	for _, l := range n.Links {
		switch l.State {
		case core.LinkActive:
			active++
		case core.LinkInactive:
			inactive++
		}
	}
	target := n.Strategy.TargetLinkCount(n)
	report := LinkReport{
		Tick:     tick,
		Active:   active,
		Inactive: inactive,
		Target:   target,
	}
	if target > 0 {
		report.ActiveRatio = float64(active) / float64(target)
	}
	p.history[tick] = report
	p.latest = tick
}

func (p *LinkProbe) Report(tick int64) any {
	if r, ok := p.history[tick]; ok {
		return r
	}
	return p.history[p.latest]
}

// History returns every sample recorded so far, keyed by tick.
func (p *LinkProbe) History() map[int64]LinkReport { return p.history }
