package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestValidate_ValidConfig(t *testing.T) {
	valid := `num_mirrors: 8
num_links_per_mirror: 2
seed: 42
sim_time: 50
`
	p := writeTempConfig(t, "valid.yaml", valid)
	if err := Validate(p); err != nil {
		t.Fatalf("expected valid config, got error: %v", err)
	}
}

func TestValidate_TabsInConfig(t *testing.T) {
	tabbed := "num_mirrors: 8\n\tnum_links_per_mirror: 2\n"
	p := writeTempConfig(t, "tabs.yaml", tabbed)
	if err := Validate(p); err == nil {
		t.Fatalf("expected validation to fail due to tabs, but it passed")
	}
}

func TestValidate_MissingFile(t *testing.T) {
	if err := Validate(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil, filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load returned error for missing (tolerated) file: %v", err)
	}
	if cfg.NumMirrors != 5 {
		t.Fatalf("expected default num_mirrors=5, got %d", cfg.NumMirrors)
	}
	if cfg.HasMaxBandwidth {
		t.Fatalf("expected HasMaxBandwidth=false when max_bandwidth is never set in file or env")
	}
	if !cfg.HasDurations {
		t.Fatalf("expected HasDurations=true: defaults populate every duration key")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	content := `num_mirrors: 12
num_links_per_mirror: 3
max_bandwidth: 4096
fault_probability: 0.1
`
	p := writeTempConfig(t, "rdmsim.yaml", content)
	cfg, err := Load(nil, p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NumMirrors != 12 {
		t.Fatalf("expected num_mirrors=12, got %d", cfg.NumMirrors)
	}
	if cfg.NumLinksPerMirror != 3 {
		t.Fatalf("expected num_links_per_mirror=3, got %d", cfg.NumLinksPerMirror)
	}
	if !cfg.HasMaxBandwidth || cfg.MaxBandwidth != 4096 {
		t.Fatalf("expected max_bandwidth=4096 recognised as set, got %+v", cfg)
	}
	if cfg.FaultProbability != 0.1 {
		t.Fatalf("expected fault_probability=0.1, got %v", cfg.FaultProbability)
	}
}

func TestLoad_UnknownKeysTolerated(t *testing.T) {
	content := `num_mirrors: 6
this_key_does_not_exist: true
`
	p := writeTempConfig(t, "extra.yaml", content)
	if _, err := Load(nil, p); err != nil {
		t.Fatalf("expected unknown keys to be tolerated, got error: %v", err)
	}
}

func TestLoad_SnowflakeKeys(t *testing.T) {
	content := `minimal_ring_mirror_count: 5
max_ring_layers: 2
extern_star_ratio: 0.4
`
	p := writeTempConfig(t, "snowflake.yaml", content)
	cfg, err := Load(nil, p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Snowflake.MinimalRingMirrorCount != 5 {
		t.Fatalf("expected minimal_ring_mirror_count=5, got %d", cfg.Snowflake.MinimalRingMirrorCount)
	}
	if cfg.Snowflake.MaxRingLayers != 2 {
		t.Fatalf("expected max_ring_layers=2, got %d", cfg.Snowflake.MaxRingLayers)
	}
	if cfg.Snowflake.ExternStarRatio != 0.4 {
		t.Fatalf("expected extern_star_ratio=0.4, got %v", cfg.Snowflake.ExternStarRatio)
	}
}
