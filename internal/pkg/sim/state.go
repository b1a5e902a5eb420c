package sim

import (
	"log"

	"github.com/google/uuid"

	"github.com/ijhewaratne/gridplan/internal/pkg/progress"
)

// RunState is a stage of one orchestrator run.
type RunState string

const (
	StatePending            RunState = "PENDING"
	StateValidating         RunState = "VALIDATING"
	StateNetworkBuilt       RunState = "NETWORK_BUILT"
	StateSolving            RunState = "SOLVING"
	StateConverged          RunState = "CONVERGED"
	StateFailed             RunState = "FAILED"
	StatePlaceholderSolving RunState = "PLACEHOLDER_SOLVING"
	StateDone               RunState = "DONE"
	StateFailedTerminal     RunState = "FAILED_TERMINAL"
)

var transitions = map[RunState][]RunState{
	StatePending:            {StateValidating, StateDone, StateFailedTerminal},
	StateValidating:         {StateNetworkBuilt, StateFailedTerminal},
	StateNetworkBuilt:       {StateSolving, StateFailedTerminal},
	StateSolving:            {StateConverged, StateFailed, StateFailedTerminal},
	StateConverged:          {StateDone},
	StateFailed:             {StatePlaceholderSolving, StateFailedTerminal},
	StatePlaceholderSolving: {StateDone, StateFailedTerminal},
}

var stageByState = map[RunState]progress.Stage{
	StatePending:            progress.StagePending,
	StateValidating:         progress.StageValidating,
	StateNetworkBuilt:       progress.StageNetworkBuilt,
	StateSolving:            progress.StageSolving,
	StateConverged:          progress.StageSolving,
	StateFailed:             progress.StageFailed,
	StatePlaceholderSolving: progress.StagePlaceholderSolving,
	StateDone:               progress.StageDone,
	StateFailedTerminal:     progress.StageFailed,
}

// runMachine tracks a run through its states, logging transitions and
// emitting advisory progress events.
type runMachine struct {
	runID   uuid.UUID
	state   RunState
	tracker *progress.Tracker
}

func newRunMachine(runID uuid.UUID, tracker *progress.Tracker) *runMachine {
	m := &runMachine{runID: runID, state: StatePending, tracker: tracker}
	tracker.Publish(runID, progress.StagePending, "")
	return m
}

func (m *runMachine) to(next RunState, detail string) {
	if !legalTransition(m.state, next) {
		log.Printf("[Orchestrator] run %s: unexpected transition %s -> %s\n", m.runID, m.state, next)
	}
	m.state = next
	m.tracker.Publish(m.runID, stageByState[next], detail)
}

func legalTransition(from, to RunState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
