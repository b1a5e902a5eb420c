// Package webservice exposes the analysis pipeline over HTTP: submit a
// scenario against a set of inputs, poll for the result, and export the
// constructed network.
package webservice

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ijhewaratne/gridplan/internal/pkg/export"
	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/plan"
	"github.com/ijhewaratne/gridplan/internal/pkg/sim"
)

// RunRequest is the POST body for a scenario run.
type RunRequest struct {
	Scenario ScenarioRequest `json:"scenario"`
	Inputs   plan.Inputs     `json:"inputs"`
}

// ScenarioRequest selects a scenario kind and its parameters.
type ScenarioRequest struct {
	Name       string                `json:"name"`
	Kind       sim.Kind              `json:"kind"`
	Thermal    *sim.ThermalParams    `json:"thermal,omitempty"`
	Electrical *sim.ElectricalParams `json:"electrical,omitempty"`
}

// RunAccepted acknowledges a submitted run.
type RunAccepted struct {
	RequestID uuid.UUID `json:"request_id"`
}

type run struct {
	done     bool
	result   sim.Result
	prepared *plan.Prepared
}

// App holds the HTTP-facing state: the planner, the orchestrator, and the
// accepted runs awaiting poll.
type App struct {
	mux     *sync.Mutex
	planner *plan.Planner
	orch    *sim.Orchestrator
	runs    map[uuid.UUID]*run
}

func NewApp(planner *plan.Planner, orch *sim.Orchestrator) *App {
	return &App{
		mux:     &sync.Mutex{},
		planner: planner,
		orch:    orch,
		runs:    make(map[uuid.UUID]*run),
	}
}

// Router wires the application's routes.
func (a *App) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", BaseHandler)
	r.HandleFunc("/scenario/run", a.RunHandler).Methods("POST")
	r.HandleFunc("/run/{id}/result", a.ResultHandler).Methods("GET")
	r.HandleFunc("/run/{id}/network/main", a.MainNetworkHandler).Methods("GET")
	r.HandleFunc("/run/{id}/network/dual", a.DualNetworkHandler).Methods("GET")
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func BaseHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(http.StatusOK)
}

func (a *App) RunHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON: "+err.Error())
		return
	}

	sc, err := buildScenario(req.Scenario)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	requestID := uuid.New()
	a.mux.Lock()
	a.runs[requestID] = &run{}
	a.mux.Unlock()

	go func() {
		res, prepared := a.planner.Run(context.Background(), a.orch, sc, req.Inputs)
		a.mux.Lock()
		defer a.mux.Unlock()
		a.runs[requestID] = &run{done: true, result: res, prepared: prepared}
	}()

	w.WriteHeader(http.StatusAccepted)
	body, _ := json.Marshal(RunAccepted{RequestID: requestID})
	if _, err := w.Write(body); err != nil {
		log.Println("[Webservice] write failed:", err)
	}
}

func (a *App) ResultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	rn, ok := a.lookup(w, r)
	if !ok {
		return
	}
	if !rn.done {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	body, err := json.Marshal(rn.result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Println("[Webservice] write failed:", err)
	}
}

func (a *App) MainNetworkHandler(w http.ResponseWriter, r *http.Request) {
	a.networkHandler(w, r, func(p *plan.Prepared) export.Network {
		return export.MainNetwork(p.Main)
	})
}

func (a *App) DualNetworkHandler(w http.ResponseWriter, r *http.Request) {
	a.networkHandler(w, r, func(p *plan.Prepared) export.Network {
		return export.DualNetwork(p.Dual)
	})
}

func (a *App) networkHandler(w http.ResponseWriter, r *http.Request, view func(*plan.Prepared) export.Network) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	rn, ok := a.lookup(w, r)
	if !ok {
		return
	}
	if !rn.done {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	if rn.prepared == nil {
		writeError(w, http.StatusConflict, "run failed before a network was constructed")
		return
	}

	body, err := export.Marshal(view(rn.prepared))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Println("[Webservice] write failed:", err)
	}
}

func (a *App) lookup(w http.ResponseWriter, r *http.Request) (*run, bool) {
	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed UUID: "+err.Error())
		return nil, false
	}
	a.mux.Lock()
	rn, ok := a.runs[id]
	a.mux.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown run id")
		return nil, false
	}
	return rn, true
}

func buildScenario(req ScenarioRequest) (sim.Scenario, error) {
	switch req.Kind {
	case sim.Thermal:
		p := sim.ThermalParams{}
		if req.Thermal != nil {
			p = *req.Thermal
		}
		return sim.NewThermalScenario(req.Name, p)
	case sim.Electrical:
		p := sim.ElectricalParams{}
		if req.Electrical != nil {
			p = *req.Electrical
		}
		return sim.NewElectricalScenario(req.Name, p)
	default:
		return sim.Scenario{}, &fault.ValidationError{Field: "kind", Reason: "unknown scenario kind " + string(req.Kind)}
	}
}

func writeError(w http.ResponseWriter, code int, reason string) {
	w.WriteHeader(code)
	body, _ := json.Marshal(map[string]string{"error": reason})
	_, _ = w.Write(body)
}
