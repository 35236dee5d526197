package topology

import "fmt"

// InvalidMirrorDistributionError is raised when a strategy is asked to
// build or grow over a mirror count that cannot be partitioned into a
// valid structure: a non-positive total, a negative component, or a
// component sum that disagrees with the total (spec.md §7).
type InvalidMirrorDistributionError struct {
	Total       int
	RingMirrors int
	StarMirrors int
	Reason      string
}

func (e *InvalidMirrorDistributionError) Error() string {
	return fmt.Sprintf("invalid mirror distribution (total=%d, ring=%d, star=%d): %s",
		e.Total, e.RingMirrors, e.StarMirrors, e.Reason)
}

// InsufficientMirrorsForRingError is raised when a ring (the outer ring
// or one of the snowflake's concentric rings) would have fewer members
// than the configured minimum (spec.md §7, scenario S6).
type InsufficientMirrorsForRingError struct {
	Available int
	Required  int
	RingIndex int
}

func (e *InsufficientMirrorsForRingError) Error() string {
	return fmt.Sprintf("ring %d needs at least %d mirrors, only %d available",
		e.RingIndex, e.Required, e.Available)
}

// InvalidRingParameterError is raised when a configured ring/snowflake
// knob violates its documented constraint (spec.md §6/§7).
type InvalidRingParameterError struct {
	Parameter  string
	Value      int
	Constraint string
}

func (e *InvalidRingParameterError) Error() string {
	return fmt.Sprintf("ring parameter %q=%d violates constraint %s", e.Parameter, e.Value, e.Constraint)
}

// InvalidStarParameterError is raised when a configured star knob
// violates its documented constraint (spec.md §6/§7).
type InvalidStarParameterError struct {
	Parameter  string
	Value      float64
	Constraint string
}

func (e *InvalidStarParameterError) Error() string {
	return fmt.Sprintf("star parameter %q=%v violates constraint %s", e.Parameter, e.Value, e.Constraint)
}
