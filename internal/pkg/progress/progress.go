// Package progress broadcasts advisory named-stage events from the
// simulation orchestrator. Listeners are optional; a run's outcome never
// depends on whether anyone is subscribed.
package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stage names a point in the orchestrator run state machine.
type Stage string

const (
	StagePending            Stage = "pending"
	StageValidating         Stage = "validating"
	StageNetworkBuilt       Stage = "network-built"
	StageSolving            Stage = "solving"
	StagePlaceholderSolving Stage = "placeholder-solving"
	StageExtractingResults  Stage = "extracting-results"
	StageCacheHit           Stage = "cache-hit"
	StageDone               Stage = "done"
	StageFailed             Stage = "failed"
)

// Event is one advisory progress notification.
type Event struct {
	RunID  uuid.UUID `json:"run_id"`
	Stage  Stage     `json:"stage"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Tracker fans events out to subscribers. Sends never block: a subscriber
// that is not keeping up misses events rather than stalling the run.
// A nil *Tracker is valid and drops everything.
type Tracker struct {
	mux       sync.Mutex
	broadcast map[uuid.UUID]chan Event
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{broadcast: make(map[uuid.UUID]chan Event)}
}

// Subscribe returns a read-only event channel for the subscriber pid.
func (t *Tracker) Subscribe(pid uuid.UUID) <-chan Event {
	ch := make(chan Event, 32)
	t.mux.Lock()
	defer t.mux.Unlock()
	t.broadcast[pid] = ch
	return ch
}

// Unsubscribe closes the channel associated with pid.
func (t *Tracker) Unsubscribe(pid uuid.UUID) {
	t.mux.Lock()
	defer t.mux.Unlock()
	if ch, ok := t.broadcast[pid]; ok {
		delete(t.broadcast, pid)
		close(ch)
	}
}

// Publish broadcasts an event to every subscriber.
func (t *Tracker) Publish(runID uuid.UUID, stage Stage, detail string) {
	if t == nil {
		return
	}
	ev := Event{RunID: runID, Stage: stage, Detail: detail, At: time.Now()}
	t.mux.Lock()
	defer t.mux.Unlock()
	for _, ch := range t.broadcast {
		select {
		case ch <- ev:
		default:
		}
	}
}
