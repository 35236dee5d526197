package topology

import (
	"testing"

	"github.com/mirrorlab/rdmsim/internal/core"
)

func snowflakeConfig() core.SnowflakeConfig {
	return core.SnowflakeConfig{
		MinimalRingMirrorCount:     3,
		MaxRingLayers:              2,
		RingBridgeStep:             1,
		RingBridgeOffset:           0,
		BridgeHeight:               1,
		ExternStarRatio:            0.3,
		ExternStarMaxTreeDepth:     2,
		BridgeToExternStarDistance: 1,
	}
}

func TestPlanSnowflake_RejectsNonPositiveMirrorCount(t *testing.T) {
	if _, err := planSnowflake(0, snowflakeConfig()); err == nil {
		t.Fatalf("expected an error for a non-positive mirror count")
	}
}

func TestPlanSnowflake_RejectsInsufficientRingMirrors(t *testing.T) {
	cfg := snowflakeConfig()
	cfg.MinimalRingMirrorCount = 10
	if _, err := planSnowflake(5, cfg); err == nil {
		t.Fatalf("expected an error when the ring portion falls below the minimum")
	}
}

func TestValidateSnowflakeConfig_RejectsOutOfRangeRatio(t *testing.T) {
	cfg := snowflakeConfig()
	cfg.ExternStarRatio = 1.5
	if err := validateSnowflakeConfig(cfg); err == nil {
		t.Fatalf("expected an error for extern_star_ratio outside [0,1]")
	}
}

func TestSnowflake_InitBuildsAConnectedStructure(t *testing.T) {
	s := NewSnowflakeStrategy()
	n := newTestNetwork(20, s)
	n.Cfg.Snowflake = snowflakeConfig()
	n.Cfg.NumLinksPerMirror = 2
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(n.Links) == 0 {
		t.Fatalf("expected a non-empty link set")
	}
	for _, m := range n.Mirrors {
		if len(m.Links) == 0 {
			t.Errorf("mirror %d has no links, expected every mirror attached somewhere", m.ID)
		}
	}
}

func TestSnowflake_TargetLinkCountMatchesPlanEdgeCount(t *testing.T) {
	s := NewSnowflakeStrategy()
	n := newTestNetwork(20, s)
	n.Cfg.Snowflake = snowflakeConfig()
	n.Cfg.NumLinksPerMirror = 2
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	plan, err := planSnowflake(n.LiveMirrorCount(), n.Cfg.Snowflake)
	if err != nil {
		t.Fatalf("planSnowflake: %v", err)
	}
	if got, want := s.TargetLinkCount(n), plan.edgeCount(); got != want {
		t.Fatalf("TargetLinkCount=%d, want plan.edgeCount()=%d", got, want)
	}
}

func TestSnowflake_PredictedTargetLinkCountIsPure(t *testing.T) {
	s := NewSnowflakeStrategy()
	n := newTestNetwork(20, s)
	n.Cfg.Snowflake = snowflakeConfig()
	n.Cfg.NumLinksPerMirror = 2
	if err := n.Bootstrap(0); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	before := len(n.Links)
	_ = s.PredictedTargetLinkCount(n, core.Action{Kind: core.ActionMirrorChange, TargetMirrorCount: 30})
	if len(n.Links) != before {
		t.Fatalf("PredictedTargetLinkCount must not mutate the network")
	}
}
