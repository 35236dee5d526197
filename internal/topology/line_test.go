package topology

import (
	"testing"

	"github.com/mirrorlab/rdmsim/internal/core"
)

func TestLine_InitRejectsFewerThanTwoMirrors(t *testing.T) {
	s := NewLineStrategy()
	n := newTestNetwork(1, s)
	if err := n.Bootstrap(0); err == nil {
		t.Fatalf("expected an error building a line with fewer than 2 mirrors")
	}
}

func TestLine_InitBuildsPath(t *testing.T) {
	s := NewLineStrategy()
	n := newTestNetwork(5, s)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if got, want := len(n.Links), 4; got != want {
		t.Fatalf("expected %d links for a 5-mirror line, got %d", want, got)
	}
	if got := s.TargetLinkCount(n); got != 4 {
		t.Fatalf("TargetLinkCount: expected 4, got %d", got)
	}
}

func TestLine_AddMirrorsAppendsToTail(t *testing.T) {
	s := NewLineStrategy()
	n := newTestNetwork(3, s)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := n.SetTargetMirrorCount(5, 1); err != nil {
		t.Fatalf("SetTargetMirrorCount: %v", err)
	}
	if got, want := len(n.Links), 4; got != want {
		t.Fatalf("expected %d links after growth, got %d", want, got)
	}
}

func TestLine_RemoveMirrorsNeverShrinksBelowMinimum(t *testing.T) {
	s := NewLineStrategy()
	n := newTestNetwork(5, s)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := n.SetTargetMirrorCount(1, 1); err != nil {
		t.Fatalf("SetTargetMirrorCount: %v", err)
	}
	stopping := 0
	for _, m := range n.Mirrors {
		if m.State == core.MirrorStopping {
			stopping++
		}
	}
	if want := 5 - minLineSize; stopping != want {
		t.Fatalf("expected exactly %d mirrors requested to stop (clamped to minimum %d), got %d", want, minLineSize, stopping)
	}
}
