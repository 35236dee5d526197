// Package effector schedules future control actions against a Network
// and applies them at their target tick (spec.md §4.5).
package effector

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mirrorlab/rdmsim/internal/core"
)

type entry struct {
	handle uuid.UUID
	action core.Action
}

// Scheduler is a tick-keyed FIFO action queue. It implements
// core.Effector. The simulation's single-threaded cooperative scheduling
// model (spec.md §5) means Scheduler needs no internal locking: it is
// only ever touched from the tick loop that also owns the Network.
type Scheduler struct {
	pending map[int64][]entry
	logger  *zap.Logger
}

// NewScheduler constructs an empty action scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{pending: make(map[int64][]entry), logger: logger}
}

// Schedule inserts action to be applied at tick t and returns a handle
// that can later be used to Cancel it (spec.md §4.5).
func (s *Scheduler) Schedule(action core.Action, t int64) uuid.UUID {
	handle := uuid.New()
	s.pending[t] = append(s.pending[t], entry{handle: handle, action: action})
	s.logger.Debug("action scheduled", zap.String("handle", handle.String()), zap.Int64("tick", t), zap.Stringer("kind", action.Kind))
	return handle
}

// Cancel removes a not-yet-applied action. Cancelling an already-applied
// or unknown handle is a silent no-op (spec.md §4.5).
func (s *Scheduler) Cancel(handle uuid.UUID) {
	for t, entries := range s.pending {
		for i, e := range entries {
			if e.handle == handle {
				s.pending[t] = append(entries[:i], entries[i+1:]...)
				if len(s.pending[t]) == 0 {
					delete(s.pending, t)
				}
				return
			}
		}
	}
}

// Pending returns the actions currently scheduled for tick t, in FIFO
// order, without applying or removing them.
func (s *Scheduler) Pending(t int64) []core.Action {
	entries := s.pending[t]
	out := make([]core.Action, len(entries))
	for i, e := range entries {
		out[i] = e.action
	}
	return out
}

// Apply drains and dispatches every action scheduled for exactly tick t,
// in FIFO order (spec.md §4.4/§4.5).
func (s *Scheduler) Apply(n *core.Network, tick int64) {
	entries := s.pending[tick]
	delete(s.pending, tick)
	for _, e := range entries {
		if err := s.dispatch(n, e.action, tick); err != nil {
			s.logger.Error("action application failed",
				zap.String("handle", e.handle.String()),
				zap.Int64("tick", tick),
				zap.Error(err))
		}
	}
}

func (s *Scheduler) dispatch(n *core.Network, action core.Action, tick int64) error {
	switch action.Kind {
	case core.ActionMirrorChange:
		return n.SetTargetMirrorCount(action.TargetMirrorCount, tick)
	case core.ActionTargetLinkChange:
		return n.SetTargetLinksPerMirror(action.TargetLinksPerMirror, tick)
	case core.ActionTopologyChange:
		return n.SetStrategy(action.NewStrategy, tick)
	default:
		return &core.InvariantViolationError{Detail: "unknown action kind"}
	}
}
