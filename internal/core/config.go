package core

// SnowflakeConfig holds the Snowflake topology's tunable parameters,
// spec.md §4.3/§6.
type SnowflakeConfig struct {
	MinimalRingMirrorCount     int
	MaxRingLayers              int
	RingBridgeStep             int
	RingBridgeOffset           int
	BridgeHeight               int
	ExternStarRatio            float64
	ExternStarMaxTreeDepth     int
	BridgeToExternStarDistance int
}

// Config is the flat key/value configuration recognised by the
// simulation, spec.md §6. Unknown keys are tolerated by the loader
// before this struct is ever built; everything here is a recognised key.
type Config struct {
	StartupMin, StartupMax             int64
	ReadyMin, ReadyMax                 int64
	StopMin, StopMax                   int64
	LinkActivationMin, LinkActivationMax int64

	LinkBandwidth int64
	MaxBandwidth  int64

	FaultProbability float64

	FileSize          int64
	NumMirrors        int
	NumLinksPerMirror int
	Seed              int64
	SimTime           int64

	Snowflake SnowflakeConfig

	// HasMaxBandwidth/HasDurations record whether the keys the effect
	// predictor depends on were actually present in the source config,
	// so a missing key can surface as a ConfigError naming itself rather
	// than silently defaulting to zero (spec.md §4.6/§7).
	HasMaxBandwidth bool
	HasDurations    bool
}

// SampleMirrorDurations samples one set of per-instance durations from this config's
// ranges using the given Source.
func (c Config) SampleMirrorDurations(s *Source) Durations {
	return Durations{
		Startup: s.UniformInt(c.StartupMin, c.StartupMax),
		Ready:   s.UniformInt(c.ReadyMin, c.ReadyMax),
		Stop:    s.UniformInt(c.StopMin, c.StopMax),
	}
}

// SampleLinkActivation samples one link activation duration.
func (c Config) SampleLinkActivation(s *Source) int64 {
	return s.UniformInt(c.LinkActivationMin, c.LinkActivationMax)
}
