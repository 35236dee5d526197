// Package config loads the flat key/value simulation configuration
// (spec.md §6) through Viper, the same way the teacher's
// backend/config package loads AllStar Nexus server configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mirrorlab/rdmsim/internal/core"
)

// durationKeys are the keys the effect predictor requires (spec.md §4.6).
// HasDurations is only set once every one of these is present.
var durationKeys = []string{
	"startup_time_min", "startup_time_max",
	"ready_time_min", "ready_time_max",
	"stop_time_min", "stop_time_max",
	"link_activation_time_min", "link_activation_time_max",
}

// Load reads configuration from an optional file path, environment
// variables, and built-in defaults, and decodes the result into a
// core.Config. A nil logger disables reload/diagnostic logging.
func Load(logger *zap.Logger, configPath ...string) (core.Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := viper.New()

	v.SetDefault("startup_time_min", 1)
	v.SetDefault("startup_time_max", 3)
	v.SetDefault("ready_time_min", 1)
	v.SetDefault("ready_time_max", 2)
	v.SetDefault("stop_time_min", 1)
	v.SetDefault("stop_time_max", 2)
	v.SetDefault("link_activation_time_min", 1)
	v.SetDefault("link_activation_time_max", 2)
	v.SetDefault("link_bandwidth", 1024)
	v.SetDefault("fault_probability", 0.0)
	v.SetDefault("file_size", 1<<20)
	v.SetDefault("num_mirrors", 5)
	v.SetDefault("num_links_per_mirror", 2)
	v.SetDefault("seed", 1)
	v.SetDefault("sim_time", 100)

	v.SetDefault("minimal_ring_mirror_count", 3)
	v.SetDefault("max_ring_layers", 4)
	v.SetDefault("ring_bridge_step", 1)
	v.SetDefault("ring_bridge_offset", 0)
	v.SetDefault("bridge_height", 1)
	v.SetDefault("extern_star_ratio", 0.25)
	v.SetDefault("extern_star_max_tree_depth", 3)
	v.SetDefault("bridge_to_extern_star_distance", 1)

	haveFile := len(configPath) > 0 && configPath[0] != ""
	if haveFile {
		v.SetConfigFile(configPath[0])
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("data")
		v.AddConfigPath("/etc/rdmsim")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || errors.Is(err, os.ErrNotExist) {
			logger.Info("no config file found, using defaults and environment variables")
		} else {
			return core.Config{}, fmt.Errorf("reading config: %w", err)
		}
	} else {
		logger.Info("using config file", zap.String("path", v.ConfigFileUsed()))
	}

	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if haveFile {
		v.OnConfigChange(func(e fsnotify.Event) {
			logger.Info("config file changed; the already loaded configuration is not updated", zap.String("op", e.Op.String()))
		})
		v.WatchConfig()
	}

	cfg := core.Config{
		StartupMin:        v.GetInt64("startup_time_min"),
		StartupMax:        v.GetInt64("startup_time_max"),
		ReadyMin:          v.GetInt64("ready_time_min"),
		ReadyMax:          v.GetInt64("ready_time_max"),
		StopMin:           v.GetInt64("stop_time_min"),
		StopMax:           v.GetInt64("stop_time_max"),
		LinkActivationMin: v.GetInt64("link_activation_time_min"),
		LinkActivationMax: v.GetInt64("link_activation_time_max"),

		LinkBandwidth: v.GetInt64("link_bandwidth"),
		MaxBandwidth:  v.GetInt64("max_bandwidth"),

		FaultProbability: v.GetFloat64("fault_probability"),

		FileSize:          v.GetInt64("file_size"),
		NumMirrors:        v.GetInt("num_mirrors"),
		NumLinksPerMirror: v.GetInt("num_links_per_mirror"),
		Seed:              v.GetInt64("seed"),
		SimTime:           v.GetInt64("sim_time"),

		Snowflake: core.SnowflakeConfig{
			MinimalRingMirrorCount:     v.GetInt("minimal_ring_mirror_count"),
			MaxRingLayers:              v.GetInt("max_ring_layers"),
			RingBridgeStep:             v.GetInt("ring_bridge_step"),
			RingBridgeOffset:           v.GetInt("ring_bridge_offset"),
			BridgeHeight:               v.GetInt("bridge_height"),
			ExternStarRatio:            v.GetFloat64("extern_star_ratio"),
			ExternStarMaxTreeDepth:     v.GetInt("extern_star_max_tree_depth"),
			BridgeToExternStarDistance: v.GetInt("bridge_to_extern_star_distance"),
		},

		HasMaxBandwidth: v.IsSet("max_bandwidth"),
	}

	cfg.HasDurations = true
	for _, key := range durationKeys {
		if !v.IsSet(key) {
			cfg.HasDurations = false
			break
		}
	}

	return cfg, nil
}

// Validate checks that path parses as YAML config without error, and
// rejects tab-indented files before Viper ever sees them: tabs produce
// confusing error positions out of gopkg.in/yaml.v3-backed decoding,
// the same defensive check the teacher's config validation performs.
func Validate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if strings.Contains(string(data), "\t") {
		return fmt.Errorf("config file %s contains tab characters; use spaces for YAML indentation", path)
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(string(data))); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}
