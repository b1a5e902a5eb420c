// Package fault defines the error taxonomy shared by the network builder
// and the simulation orchestrator. Errors carry enough context for the
// caller to decide between exclusion, fallback, and abort.
package fault

import "fmt"

// DataError indicates malformed or empty street or building input.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "data error: " + e.Reason
}

// OutOfRangeError indicates an entity too far from any street edge to snap.
// Per-building occurrences are non-fatal; the building is excluded.
type OutOfRangeError struct {
	Distance float64
	Limit    float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("nearest street edge at %.1f exceeds snap limit %.1f", e.Distance, e.Limit)
}

// UnroutableBuildingError indicates a snapped building with no path to the
// plant after connectivity repair.
type UnroutableBuildingError struct {
	BuildingID string
	NodeID     int64
}

func (e *UnroutableBuildingError) Error() string {
	if e.BuildingID != "" {
		return fmt.Sprintf("building %s (node %d) has no path to the plant", e.BuildingID, e.NodeID)
	}
	return fmt.Sprintf("node %d has no path to the plant", e.NodeID)
}

// TopologyInvariantError indicates a builder or snapper defect, such as an
// edge joining the plant directly to a service node. Always fatal.
type TopologyInvariantError struct {
	Detail string
}

func (e *TopologyInvariantError) Error() string {
	return "topology invariant violated: " + e.Detail
}

// ValidationError indicates malformed scenario parameters. It aborts a run
// before any solver invocation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid scenario: %s: %s", e.Field, e.Reason)
	}
	return "invalid scenario: " + e.Reason
}

// ConvergenceError indicates the physics solver failed to reach a solution.
type ConvergenceError struct {
	Solver     string
	Iterations int
	Cause      error
}

func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf("solver %s did not converge after %d iterations", e.Solver, e.Iterations)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ConvergenceError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a corrupt or unreadable cache entry. It never aborts
// a run; the entry is treated as a miss.
type CacheError struct {
	Key   string
	Cause error
}

func (e *CacheError) Error() string {
	msg := "cache entry " + e.Key + " unreadable"
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}
