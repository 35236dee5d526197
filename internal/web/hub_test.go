package web

import (
	"testing"

	"github.com/mirrorlab/rdmsim/internal/probes"
)

func TestHub_PublishRetainsBoundedHistory(t *testing.T) {
	h, err := NewHub(3, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	for tick := int64(1); tick <= 5; tick++ {
		h.Publish(Snapshot{Tick: tick, Mirror: probes.MirrorReport{Tick: tick}, Link: probes.LinkReport{Tick: tick}})
	}
	hist := h.History()
	if len(hist) != 3 {
		t.Fatalf("expected bounded history of 3, got %d", len(hist))
	}
	if hist[0].Tick != 3 || hist[2].Tick != 5 {
		t.Fatalf("expected ticks 3..5 retained in order, got %+v", hist)
	}
}

func TestHub_ClientCountStartsAtZero(t *testing.T) {
	h, err := NewHub(10, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	if got := h.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}
