package topology

import (
	"fmt"
	"strings"

	"github.com/mirrorlab/rdmsim/internal/core"
)

// New constructs a fresh strategy instance by name, matched
// case-insensitively against core.StrategyKind's canonical names. Used
// by the CLI's --strategy flag and the dashboard API's topology-change
// endpoint, so both share one name table.
func New(name string) (core.TopologyStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "fullyconnected", "fully-connected", "fully_connected":
		return NewFullyConnectedStrategy(), nil
	case "nconnected", "n-connected", "n_connected":
		return NewNConnectedStrategy(), nil
	case "balancedtree", "balanced-tree", "balanced_tree":
		return NewBalancedTreeStrategy(), nil
	case "line":
		return NewLineStrategy(), nil
	case "ring":
		return NewRingStrategy(), nil
	case "star":
		return NewStarStrategy(), nil
	case "snowflake":
		return NewSnowflakeStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown topology strategy %q", name)
	}
}
