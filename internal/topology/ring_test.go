package topology

import "testing"

func TestRing_InitRejectsFewerThanMinimum(t *testing.T) {
	s := NewRingStrategy()
	n := newTestNetwork(2, s)
	if err := n.Bootstrap(0); err == nil {
		t.Fatalf("expected an error building a ring with fewer than %d mirrors", minRingSize)
	}
}

func TestRing_InitBuildsCycle(t *testing.T) {
	s := NewRingStrategy()
	n := newTestNetwork(5, s)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if got, want := len(n.Links), 5; got != want {
		t.Fatalf("expected %d links for a 5-cycle, got %d", want, got)
	}
	for _, m := range n.Mirrors {
		if len(m.Links) != 2 {
			t.Fatalf("expected every ring mirror to have degree 2, mirror %d has %d", m.ID, len(m.Links))
		}
	}
}

func TestRing_RemoveMirrorsNeverDropsBelowMinimum(t *testing.T) {
	s := NewRingStrategy()
	n := newTestNetwork(4, s)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := n.SetTargetMirrorCount(1, 1); err != nil {
		t.Fatalf("SetTargetMirrorCount: %v", err)
	}
	if got := n.LiveMirrorCount(); got < minRingSize {
		t.Fatalf("expected live count to never drop below %d, got %d", minRingSize, got)
	}
}
