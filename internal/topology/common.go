package topology

import "github.com/mirrorlab/rdmsim/internal/core"

// removeNonRootMirrors marks up to count live, non-root mirrors as
// STOPPING, preferring the highest structural slot first so surviving
// mirrors keep their existing structural positions (spec.md §4.3).
func removeNonRootMirrors(n *core.Network, a *arena, count int, tick int64) error {
	if count <= 0 {
		return &InvalidMirrorDistributionError{Total: count, Reason: "mirror count to remove must be positive"}
	}
	slots := a.slots()
	removed := 0
	for i := len(slots) - 1; i >= 0 && removed < count; i-- {
		mirrorID, ok := a.mirrorAt(slots[i])
		if !ok {
			continue
		}
		m, ok := n.Mirrors[mirrorID]
		if !ok || m.IsRoot || !m.Live() {
			continue
		}
		m.RequestStop(tick)
		a.release(mirrorID)
		removed++
	}
	return nil
}

// predictedMirrorCount is the hypothetical live mirror count after
// applying action, used by predicted_target_link_count (spec.md §4.6).
func predictedMirrorCount(n *core.Network, action core.Action) int {
	if action.Kind == core.ActionMirrorChange {
		return action.TargetMirrorCount
	}
	return n.LiveMirrorCount()
}

// predictedLinksPerMirror is the hypothetical target links-per-mirror
// after applying action.
func predictedLinksPerMirror(n *core.Network, action core.Action) int {
	if action.Kind == core.ActionTargetLinkChange {
		return action.TargetLinksPerMirror
	}
	return n.TargetLinksPerMirror
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
