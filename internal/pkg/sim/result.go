package sim

import (
	"time"

	"github.com/google/uuid"
)

// Mode tells whether a result came from the real solver or the
// deterministic placeholder.
type Mode string

const (
	ModeReal        Mode = "real"
	ModePlaceholder Mode = "placeholder"
)

// Result is the standardized outcome of one orchestrator run. It is
// immutable after creation and serializable for caching and persistence.
// A failed run carries exactly one terminal error; approximated results are
// always tagged ModePlaceholder with an accompanying warning, never
// presented as solved.
type Result struct {
	RunID       uuid.UUID          `json:"run_id"`
	ScenarioID  uuid.UUID          `json:"scenario_id"`
	Scenario    string             `json:"scenario"`
	Kind        Kind               `json:"kind"`
	Success     bool               `json:"success"`
	Mode        Mode               `json:"mode,omitempty"`
	CacheHit    bool               `json:"cache_hit"`
	KPI         map[string]float64 `json:"kpi,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
	Error       string             `json:"error,omitempty"`
	Duration    time.Duration      `json:"duration_ns"`
	CompletedAt time.Time          `json:"completed_at"`
}
