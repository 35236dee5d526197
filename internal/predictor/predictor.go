// Package predictor implements the effect predictor: a pure function
// estimating the post-action deltas of an effector action without
// mutating the network it reasons about (spec.md §4.6).
package predictor

import (
	"math"

	"github.com/mirrorlab/rdmsim/internal/core"
)

// Deltas holds the three percentage/ratio deltas and the latency the
// predictor computes for a hypothetical action.
type Deltas struct {
	ActiveLinks float64 // real in [-1, +1]
	Bandwidth   int     // signed percent in [-100, +100]
	TimeToWrite int     // signed percent in [-100, +100]
	Latency     int64   // ticks, >= 0
}

// Predict estimates the effect of applying action to n, evaluated as of
// n's current tick. It never mutates n (spec.md §8 invariant 9,
// "prediction purity").
func Predict(n *core.Network, action core.Action) (Deltas, error) {
	strategy := n.Strategy
	if action.Kind == core.ActionTopologyChange && action.NewStrategy != nil {
		strategy = action.NewStrategy
	}

	currentCount := n.Strategy.TargetLinkCount(n)
	predictedCount := strategy.PredictedTargetLinkCount(n, action)

	activeLinks := 0.0
	switch {
	case currentCount > 0:
		activeLinks = float64(predictedCount-currentCount) / float64(currentCount)
	case predictedCount > 0:
		activeLinks = 1
	}
	activeLinks = clampFloat(activeLinks, -1, 1)

	bandwidth, err := predictBandwidth(n, currentCount, predictedCount)
	if err != nil {
		return Deltas{}, err
	}

	latency, err := computeLatency(n, action)
	if err != nil {
		return Deltas{}, err
	}

	timeToWrite := predictTimeToWrite(n, action, strategy)

	return Deltas{
		ActiveLinks: activeLinks,
		Bandwidth:   bandwidth,
		TimeToWrite: timeToWrite,
		Latency:     latency,
	}, nil
}

func predictBandwidth(n *core.Network, currentCount, predictedCount int) (int, error) {
	if !n.Cfg.HasMaxBandwidth || n.Cfg.MaxBandwidth == 0 {
		return 0, &core.ConfigError{Key: "max_bandwidth", Reason: "missing or non-numeric required key"}
	}
	currentUtil := float64(currentCount) * float64(n.Cfg.LinkBandwidth) / float64(n.Cfg.MaxBandwidth)
	predictedUtil := float64(predictedCount) * float64(n.Cfg.LinkBandwidth) / float64(n.Cfg.MaxBandwidth)
	delta := (predictedUtil - currentUtil) * 100
	return int(clampFloat(delta, -100, 100)), nil
}

// computeLatency implements spec.md §4.6's latency rule: the full
// startup+ready+activation chain when the action grows the mirror
// count, only the activation term when it grows/changes links without
// adding mirrors, and zero when it only shrinks.
func computeLatency(n *core.Network, action core.Action) (int64, error) {
	if !n.Cfg.HasDurations {
		return 0, &core.ConfigError{Key: "startup_time/ready_time/link_activation_time", Reason: "missing required duration keys"}
	}
	switch action.Kind {
	case core.ActionMirrorChange:
		if action.TargetMirrorCount > n.LiveMirrorCount() {
			total := maxI64(n.Cfg.StartupMin, n.Cfg.StartupMax) +
				maxI64(n.Cfg.ReadyMin, n.Cfg.ReadyMax) +
				maxI64(n.Cfg.LinkActivationMin, n.Cfg.LinkActivationMax)
			return clampNonNegative(total), nil
		}
		return 0, nil
	case core.ActionTargetLinkChange, core.ActionTopologyChange:
		total := maxI64(n.Cfg.LinkActivationMin, n.Cfg.LinkActivationMax)
		return clampNonNegative(total), nil
	default:
		return 0, nil
	}
}

// predictTimeToWrite estimates the change in expected hop count to
// fully propagate a data package across the post-action graph
// (spec.md §4.6).
func predictTimeToWrite(n *core.Network, action core.Action, strategy core.TopologyStrategy) int {
	k := predictedLinksPerMirror(n, action)
	if k <= 1 {
		return 0
	}
	switch strategy.Kind() {
	case core.FullyConnected:
		return 20
	case core.BalancedTree:
		currentM := float64(n.LiveMirrorCount())
		predictedM := float64(predictedMirrorCount(n, action))
		currentK := float64(maxInt(n.TargetLinksPerMirror, 2))
		predictedK := float64(maxInt(k, 2))
		currentDepth := logBase(currentK, currentM)
		if currentDepth <= 0 {
			return 0
		}
		predictedDepth := logBase(predictedK, predictedM)
		delta := (currentDepth - predictedDepth) / currentDepth * 100
		return int(clampFloat(delta, -100, 100))
	default:
		return 0
	}
}

func predictedMirrorCount(n *core.Network, action core.Action) int {
	if action.Kind == core.ActionMirrorChange {
		return action.TargetMirrorCount
	}
	return n.LiveMirrorCount()
}

func predictedLinksPerMirror(n *core.Network, action core.Action) int {
	if action.Kind == core.ActionTargetLinkChange {
		return action.TargetLinksPerMirror
	}
	return n.TargetLinksPerMirror
}

func logBase(base, x float64) float64 {
	if x <= 1 || base <= 1 {
		return 1
	}
	return math.Log(x) / math.Log(base)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
