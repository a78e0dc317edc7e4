package mps

import "fmt"

// ConfigurationError reports missing required input, invalid geometry, or
// zero fluid particles at initialisation. Surfaced to the caller; never
// recovered from internally.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("mps: configuration error: %s", e.Reason)
}

// CapacityExceeded reports a particle whose neighbour count would exceed
// max_neighbours. Fatal: the caller must restart with a larger capacity,
// since the neighbour list and downstream operator state are left
// inconsistent for the offending step.
type CapacityExceeded struct {
	ParticleIndex int
	MaxNeighbors  int
}

func (e *CapacityExceeded) Error() string {
	return fmt.Sprintf("mps: particle %d exceeded max_neighbors=%d", e.ParticleIndex, e.MaxNeighbors)
}

// SolverStalled reports that CG/ICCG could not make progress (|p^T A p| fell
// below the guard). Non-fatal: the step proceeds with the last iterate and a
// diagnostic counter is incremented by the caller.
type SolverStalled struct {
	Iteration int
	Residual  float64
}

func (e *SolverStalled) Error() string {
	return fmt.Sprintf("mps: solver stalled at iteration %d, residual %g", e.Iteration, e.Residual)
}

// NumericalDrift reports a particle that became NaN or left the domain.
// Handled by the boundary stage reclassifying it to Ghost; recovery is
// silent from the caller's point of view, but the event is still reported so
// diagnostics can count it.
type NumericalDrift struct {
	ParticleIndex int
	Cause         string
}

func (e *NumericalDrift) Error() string {
	return fmt.Sprintf("mps: particle %d drifted (%s), reclassified to ghost", e.ParticleIndex, e.Cause)
}
