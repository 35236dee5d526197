// Package simulation implements the outer loop that advances a Network
// tick by tick and reports progress (spec.md §2 "Simulation driver").
package simulation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mirrorlab/rdmsim/internal/core"
)

// Driver ticks a Network from 1 through its configured sim_time,
// in strictly increasing order, as spec.md §5 requires of any host loop.
type Driver struct {
	Network *core.Network
	Logger  *zap.Logger

	// OnTick, if set, is invoked after every tick with the tick number
	// just advanced. Used to fan snapshots out to a dashboard hub.
	OnTick func(tick int64)
}

// NewDriver constructs a Driver for the given network.
func NewDriver(n *core.Network, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{Network: n, Logger: logger}
}

// Run advances the network from tick 1 through simTime inclusive,
// or until ctx is cancelled. It returns the last tick actually reached.
func (d *Driver) Run(ctx context.Context, simTime int64) (int64, error) {
	var t int64
	for t = 1; t <= simTime; t++ {
		select {
		case <-ctx.Done():
			return t - 1, ctx.Err()
		default:
		}
		if err := d.Network.Tick(t); err != nil {
			return t - 1, fmt.Errorf("tick %d: %w", t, err)
		}
		if d.OnTick != nil {
			d.OnTick(t)
		}
	}
	return simTime, nil
}

// Step advances the network by exactly one tick beyond whatever it last
// reached, for interactive/headless-toggle driving from a CLI or
// dashboard loop rather than a fixed sim_time run.
func (d *Driver) Step() (int64, error) {
	next := d.Network.CurrentTick() + 1
	if err := d.Network.Tick(next); err != nil {
		return d.Network.CurrentTick(), err
	}
	if d.OnTick != nil {
		d.OnTick(next)
	}
	return next, nil
}
