package probes

import (
	"testing"

	"github.com/mirrorlab/rdmsim/internal/core"
	"github.com/mirrorlab/rdmsim/internal/topology"
)

func TestLinkProbe_SampleTracksActiveRatio(t *testing.T) {
	cfg := core.Config{
		StartupMin: 0, StartupMax: 0,
		ReadyMin: 0, ReadyMax: 0,
		StopMin: 1, StopMax: 1,
		LinkActivationMin: 0, LinkActivationMax: 0,
		NumMirrors: 3, FileSize: 5, Seed: 2,
	}
	strategy := topology.NewFullyConnectedStrategy()
	n := core.NewNetwork(cfg, strategy, nil)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	p := NewLinkProbe()
	n.RegisterProbe(p)

	if err := n.Tick(1); err != nil {
		t.Fatalf("Tick(1): %v", err)
	}
	if err := n.Tick(2); err != nil {
		t.Fatalf("Tick(2): %v", err)
	}
	report := p.Report(2).(LinkReport)
	if report.Target != 3 {
		t.Fatalf("expected target link count 3 for K3, got %d", report.Target)
	}
	if report.Active != 3 {
		t.Fatalf("expected all 3 links ACTIVE once endpoints are up, got %d", report.Active)
	}
	if report.ActiveRatio != 1 {
		t.Fatalf("expected active_ratio 1.0, got %f", report.ActiveRatio)
	}
}

func TestLinkProbe_ReportFallsBackToLatestForUnknownTick(t *testing.T) {
	p := NewLinkProbe()
	p.history[7] = LinkReport{Tick: 7, Target: 2}
	p.latest = 7
	got := p.Report(0).(LinkReport)
	if got.Tick != 7 {
		t.Fatalf("expected fallback to latest sample (tick 7), got %d", got.Tick)
	}
}
