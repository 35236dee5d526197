package core

import "testing"

func up(id uint64) *Mirror    { return &Mirror{ID: id, State: MirrorUp} }
func down(id uint64) *Mirror  { return &Mirror{ID: id, State: MirrorDown} }
func start(id uint64) *Mirror { return &Mirror{ID: id, State: MirrorStarting} }
func stop(id uint64) *Mirror  { return &Mirror{ID: id, State: MirrorStopped} }

func TestNewLinkKey_OrderIndependent(t *testing.T) {
	if NewLinkKey(1, 2) != NewLinkKey(2, 1) {
		t.Fatalf("expected LinkKey to be order-independent")
	}
}

func TestLink_OtherReturnsOppositeEndpoint(t *testing.T) {
	l := NewLink(1, 10, 20, 0, 0)
	if l.Other(10) != 20 {
		t.Fatalf("expected 20, got %d", l.Other(10))
	}
	if l.Other(20) != 10 {
		t.Fatalf("expected 10, got %d", l.Other(20))
	}
}

func TestLink_ActivatesOnceBothEndpointsUpForActivationDuration(t *testing.T) {
	l := NewLink(1, 10, 20, 0, 3)
	a, b := up(10), up(20)

	l.Advance(0, a, b)
	if l.State != LinkInactive {
		t.Fatalf("expected INACTIVE at the tick both become up, got %s", l.State)
	}
	l.Advance(1, a, b)
	l.Advance(2, a, b)
	if l.State != LinkInactive {
		t.Fatalf("expected still INACTIVE before activation duration elapses, got %s", l.State)
	}
	l.Advance(3, a, b)
	if l.State != LinkActive {
		t.Fatalf("expected ACTIVE once both-up duration reaches ActivationDuration, got %s", l.State)
	}
}

func TestLink_BothUpSinceResetsWhenEndpointDrops(t *testing.T) {
	l := NewLink(1, 10, 20, 0, 2)
	a, b := up(10), up(20)
	l.Advance(0, a, b)

	a.State = MirrorStarting
	l.Advance(1, a, b)
	if l.State != LinkInactive {
		t.Fatalf("expected INACTIVE, got %s", l.State)
	}

	a.State = MirrorUp
	l.Advance(2, a, b)
	l.Advance(3, a, b)
	if l.State != LinkInactive {
		t.Fatalf("expected both-up timer to have restarted after the drop, still INACTIVE, got %s", l.State)
	}
	l.Advance(4, a, b)
	if l.State != LinkActive {
		t.Fatalf("expected ACTIVE after a fresh both-up window, got %s", l.State)
	}
}

func TestLink_ClosesWhenEitherEndpointStops(t *testing.T) {
	l := NewLink(1, 10, 20, 0, 0)
	l.Advance(0, stop(10), up(20))
	if l.State != LinkClosed {
		t.Fatalf("expected CLOSED when an endpoint has stopped, got %s", l.State)
	}
}

func TestLink_ActiveLinkClosesWhenEndpointStops(t *testing.T) {
	l := &Link{ID: 1, A: 10, B: 20, State: LinkActive}
	l.Advance(5, stop(10), up(20))
	if l.State != LinkClosed {
		t.Fatalf("expected CLOSED once an ACTIVE link's endpoint stops, got %s", l.State)
	}
}

func TestLink_ClosedIsAbsorbing(t *testing.T) {
	l := &Link{ID: 1, A: 10, B: 20, State: LinkClosed}
	l.Advance(5, up(10), up(20))
	if l.State != LinkClosed {
		t.Fatalf("expected CLOSED to remain absorbing, got %s", l.State)
	}
}

func TestLink_Close(t *testing.T) {
	l := NewLink(1, 10, 20, 0, 5)
	l.Close(3)
	if l.State != LinkClosed {
		t.Fatalf("expected CLOSED after explicit Close, got %s", l.State)
	}
}

func TestLink_DownMirrorsDoNotCountAsUp(t *testing.T) {
	l := NewLink(1, 10, 20, 0, 0)
	l.Advance(0, down(10), up(20))
	if l.State != LinkInactive {
		t.Fatalf("expected INACTIVE while one endpoint is still DOWN, got %s", l.State)
	}
}
