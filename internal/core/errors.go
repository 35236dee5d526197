package core

import "fmt"

// ConfigError reports a missing or unparsable configuration key required
// by a caller (typically the effect predictor, spec.md §4.6/§6).
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: key %q: %s", e.Key, e.Reason)
}

// InvariantViolationError indicates a strategy's structural invariant
// failed after a mutation. It is always a bug, never a validation outcome.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Detail)
}
