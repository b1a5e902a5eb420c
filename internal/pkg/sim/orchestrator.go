package sim

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ijhewaratne/gridplan/internal/pkg/cache"
	"github.com/ijhewaratne/gridplan/internal/pkg/circuit"
	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/metrics"
	"github.com/ijhewaratne/gridplan/internal/pkg/progress"
)

// SimulatorMode selects which solver implementation a run uses.
type SimulatorMode string

const (
	SimAuto        SimulatorMode = "auto"
	SimReal        SimulatorMode = "real"
	SimPlaceholder SimulatorMode = "placeholder"
)

// Config is the orchestrator configuration surface.
type Config struct {
	SimulationMode  SimulatorMode `json:"SimulationMode" yaml:"mode"`
	FallbackOnError bool          `json:"FallbackOnError" yaml:"fallback_on_error"`
	CacheTTLSeconds int           `json:"CacheTTLSeconds" yaml:"cache_ttl_seconds"`
}

// CacheTTL returns the configured TTL as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ReadConfig loads an orchestrator configuration file.
func ReadConfig(configPath string) (Config, error) {
	jsonConfig, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Orchestrator runs scenarios against prepared networks. It owns simulator
// selection, result caching, convergence fallback, and progress reporting.
// Independent runs may proceed concurrently; identical in-flight requests
// for one cache key are coalesced into a single computation.
type Orchestrator struct {
	pid         uuid.UUID
	config      Config
	cache       *cache.Manager
	tracker     *progress.Tracker
	real        Solver
	placeholder Solver
	group       singleflight.Group

	mux       sync.Mutex
	broadcast map[uuid.UUID]chan Result
}

// New returns an orchestrator. The real solver may be nil when no solver
// collaborator is wired in; the placeholder must always be present. The
// tracker may be nil.
func New(config Config, real, placeholder Solver, cm *cache.Manager, tracker *progress.Tracker) (*Orchestrator, error) {
	if placeholder == nil {
		return nil, &fault.ValidationError{Field: "placeholder", Reason: "placeholder solver is required"}
	}
	if cm == nil {
		cm = cache.NewManager(config.CacheTTL())
	}
	return &Orchestrator{
		pid:         uuid.New(),
		config:      config,
		cache:       cm,
		tracker:     tracker,
		real:        real,
		placeholder: placeholder,
		broadcast:   make(map[uuid.UUID]chan Result),
	}, nil
}

// Cache exposes the result cache, for lifecycle control.
func (o *Orchestrator) Cache() *cache.Manager {
	return o.cache
}

// SubscribeResults returns a channel receiving every finished run.
func (o *Orchestrator) SubscribeResults(pid uuid.UUID) <-chan Result {
	ch := make(chan Result, 16)
	o.mux.Lock()
	defer o.mux.Unlock()
	o.broadcast[pid] = ch
	return ch
}

// UnsubscribeResults closes the channel associated with pid.
func (o *Orchestrator) UnsubscribeResults(pid uuid.UUID) {
	o.mux.Lock()
	defer o.mux.Unlock()
	if ch, ok := o.broadcast[pid]; ok {
		delete(o.broadcast, pid)
		close(ch)
	}
}

func (o *Orchestrator) publishResult(r Result) {
	o.mux.Lock()
	defer o.mux.Unlock()
	for _, ch := range o.broadcast {
		select {
		case ch <- r:
		default:
		}
	}
}

// Run executes one scenario against a prepared network and always returns
// a Result: failures surface as Success == false with a terminal error,
// never as a raised error.
func (o *Orchestrator) Run(ctx context.Context, sc Scenario, dual *circuit.DualNetwork) Result {
	runID := uuid.New()

	var key string
	if dual != nil {
		key = cache.Key(dual.BuildingIDs(), string(sc.Kind), sc.NormalizedParams())
		if payload, ok := o.cache.Get(key); ok {
			var r Result
			if err := json.Unmarshal(payload, &r); err != nil {
				cerr := &fault.CacheError{Key: key, Cause: err}
				log.Println("[Orchestrator]", cerr)
			} else {
				metrics.CacheHitsTotal.Inc()
				o.tracker.Publish(runID, progress.StageCacheHit, key)
				r.RunID = runID
				r.CacheHit = true
				return r
			}
		}
		metrics.CacheMissesTotal.Inc()
	}

	if key == "" {
		// No network, no cache key: coalescing on the empty key would let
		// unrelated scenarios share one terminal result.
		return o.execute(ctx, runID, key, sc, dual)
	}

	v, _, shared := o.group.Do(key, func() (interface{}, error) {
		return o.execute(ctx, runID, key, sc, dual), nil
	})
	r := v.(Result)
	if shared && r.RunID != runID {
		// Coalesced onto another request's computation; same content, so
		// the shared result is equally valid for this caller.
		r.RunID = runID
	}
	return r
}

func (o *Orchestrator) execute(ctx context.Context, runID uuid.UUID, key string, sc Scenario, dual *circuit.DualNetwork) Result {
	start := time.Now()
	m := newRunMachine(runID, o.tracker)
	res := Result{
		RunID:      runID,
		ScenarioID: sc.ID,
		Scenario:   sc.Name,
		Kind:       sc.Kind,
	}

	m.to(StateValidating, "")
	net, err := BuildSolverNetwork(sc, dual)
	if err != nil {
		return o.terminal(m, res, start, err)
	}
	m.to(StateNetworkBuilt, "")

	solver, mode, err := o.selectSolver()
	if err != nil {
		return o.terminal(m, res, start, err)
	}

	m.to(StateSolving, solver.Name())
	sol, err := o.solve(ctx, solver, net)
	if err != nil {
		if ctx.Err() != nil {
			// Abandoned by the caller; the solver call is not interrupted,
			// its result is simply never acted on or cached.
			return o.terminal(m, res, start, ctx.Err())
		}
		m.to(StateFailed, err.Error())
		if mode != ModeReal || !o.config.FallbackOnError {
			return o.terminal(m, res, start, err)
		}

		log.Printf("[Orchestrator] run %s: %v; falling back to %s\n", runID, err, o.placeholder.Name())
		res.Warnings = append(res.Warnings, "real solver failed ("+err.Error()+"); result approximated by placeholder simulator")
		mode = ModePlaceholder
		m.to(StatePlaceholderSolving, o.placeholder.Name())
		sol, err = o.solve(ctx, o.placeholder, net)
		if err != nil {
			return o.terminal(m, res, start, err)
		}
	} else {
		m.to(StateConverged, "")
	}

	o.tracker.Publish(runID, progress.StageExtractingResults, "")
	res.Success = true
	res.Mode = mode
	res.KPI = ExtractKPI(sc, net, sol)
	res.Duration = time.Since(start)
	res.CompletedAt = time.Now()

	if key != "" {
		if payload, err := json.Marshal(res); err == nil {
			o.cache.Put(key, payload)
		} else {
			log.Println("[Orchestrator] result not cacheable:", err)
		}
	}

	m.to(StateDone, "")
	metrics.RunsTotal.WithLabelValues(string(res.Kind), string(mode), "success").Inc()
	o.publishResult(res)
	return res
}

func (o *Orchestrator) terminal(m *runMachine, res Result, start time.Time, err error) Result {
	m.to(StateFailedTerminal, err.Error())
	res.Success = false
	res.Error = err.Error()
	res.Duration = time.Since(start)
	res.CompletedAt = time.Now()
	metrics.RunsTotal.WithLabelValues(string(res.Kind), string(res.Mode), "failure").Inc()
	o.publishResult(res)
	return res
}

// selectSolver picks the simulator implementation purely from configuration
// flags and static availability.
func (o *Orchestrator) selectSolver() (Solver, Mode, error) {
	switch o.config.SimulationMode {
	case SimReal:
		if o.real == nil || !o.real.Available() {
			return nil, "", &fault.ValidationError{Field: "SimulationMode", Reason: "real solver requested but unavailable"}
		}
		return o.real, ModeReal, nil
	case SimPlaceholder:
		return o.placeholder, ModePlaceholder, nil
	case SimAuto, "":
		if o.real != nil && o.real.Available() {
			return o.real, ModeReal, nil
		}
		return o.placeholder, ModePlaceholder, nil
	default:
		return nil, "", &fault.ValidationError{Field: "SimulationMode", Reason: "unknown mode " + string(o.config.SimulationMode)}
	}
}

// solve runs the solver off the caller's goroutine. Cancellation is
// advisory: an abandoned run stops waiting, but the in-flight computation
// is not preempted mid-iteration.
func (o *Orchestrator) solve(ctx context.Context, solver Solver, net *SolverNetwork) (*Solution, error) {
	type outcome struct {
		sol *Solution
		err error
	}
	ch := make(chan outcome, 1)
	start := time.Now()
	go func() {
		sol, err := solver.Solve(ctx, net)
		metrics.SolveDuration.WithLabelValues(solver.Name()).Observe(time.Since(start).Seconds())
		ch <- outcome{sol, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		if out.sol == nil || !out.sol.Converged {
			return nil, &fault.ConvergenceError{Solver: solver.Name(), Iterations: iterations(out.sol)}
		}
		return out.sol, nil
	}
}

func iterations(sol *Solution) int {
	if sol == nil {
		return 0
	}
	return sol.Iterations
}
