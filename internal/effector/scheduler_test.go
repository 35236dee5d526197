package effector

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mirrorlab/rdmsim/internal/core"
	"github.com/mirrorlab/rdmsim/internal/topology"
)

func testNetwork(t *testing.T) *core.Network {
	t.Helper()
	cfg := core.Config{NumMirrors: 4, NumLinksPerMirror: 2, Seed: 3, FileSize: 5}
	n := core.NewNetwork(cfg, topology.NewFullyConnectedStrategy(), nil)
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	return n
}

func TestScheduler_PendingReturnsQueuedActionsInFIFOOrder(t *testing.T) {
	s := NewScheduler(nil)
	a1 := core.Action{Kind: core.ActionMirrorChange, TargetMirrorCount: 5}
	a2 := core.Action{Kind: core.ActionMirrorChange, TargetMirrorCount: 6}
	s.Schedule(a1, 10)
	s.Schedule(a2, 10)
	pending := s.Pending(10)
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending actions, got %d", len(pending))
	}
	if pending[0].TargetMirrorCount != 5 || pending[1].TargetMirrorCount != 6 {
		t.Fatalf("expected FIFO order, got %+v", pending)
	}
}

func TestScheduler_CancelRemovesNotYetAppliedAction(t *testing.T) {
	s := NewScheduler(nil)
	handle := s.Schedule(core.Action{Kind: core.ActionMirrorChange, TargetMirrorCount: 5}, 10)
	s.Cancel(handle)
	if got := s.Pending(10); len(got) != 0 {
		t.Fatalf("expected the action to have been cancelled, got %+v", got)
	}
}

func TestScheduler_CancelUnknownHandleIsNoop(t *testing.T) {
	s := NewScheduler(nil)
	s.Schedule(core.Action{Kind: core.ActionMirrorChange, TargetMirrorCount: 5}, 10)
	s.Cancel(uuid.New())
	if got := s.Pending(10); len(got) != 1 {
		t.Fatalf("expected the unrelated action to remain scheduled, got %+v", got)
	}
}

func TestScheduler_ApplyDispatchesAndDrainsExactTick(t *testing.T) {
	n := testNetwork(t)
	s := NewScheduler(nil)
	s.Schedule(core.Action{Kind: core.ActionMirrorChange, TargetMirrorCount: 6}, 5)

	s.Apply(n, 4)
	if n.TargetMirrorCount != 4 {
		t.Fatalf("expected action not yet applied at tick 4, target still %d", n.TargetMirrorCount)
	}

	s.Apply(n, 5)
	if n.TargetMirrorCount != 6 {
		t.Fatalf("expected target mirror count updated to 6 after Apply at tick 5, got %d", n.TargetMirrorCount)
	}
	if got := s.Pending(5); len(got) != 0 {
		t.Fatalf("expected tick 5's queue drained after Apply, got %+v", got)
	}
}

func TestScheduler_ApplyLogsInvalidActionKindWithoutPanicking(t *testing.T) {
	n := testNetwork(t)
	s := NewScheduler(nil)
	s.Schedule(core.Action{Kind: core.ActionKind(99)}, 1)
	s.Apply(n, 1) // must not panic despite the unknown kind
}
