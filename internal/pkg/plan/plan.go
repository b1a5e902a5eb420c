// Package plan composes the street-graph builder, snapper, router, and
// dual-circuit expander into one analysis pipeline: raw geometry in,
// prepared dual network plus per-building exclusions out.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/google/uuid"

	"github.com/ijhewaratne/gridplan/internal/pkg/circuit"
	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/geom"
	"github.com/ijhewaratne/gridplan/internal/pkg/route"
	"github.com/ijhewaratne/gridplan/internal/pkg/sim"
	"github.com/ijhewaratne/gridplan/internal/pkg/streetgraph"
)

// Building is one demand point supplied by the geospatial and forecast
// providers: a centroid in projected coordinates and an aggregated scalar
// demand in kW.
type Building struct {
	ID       string     `json:"id" yaml:"id"`
	Centroid geom.Point `json:"centroid" yaml:"centroid"`
	DemandKW float64    `json:"demand_kw" yaml:"demand_kw"`
}

// Inputs is the full upstream payload for one analysis.
type Inputs struct {
	Streets   []geom.Polyline `json:"streets" yaml:"streets"`
	Plant     geom.Point      `json:"plant" yaml:"plant"`
	Buildings []Building      `json:"buildings" yaml:"buildings"`
}

// Config holds the network-construction tunables.
type Config struct {
	MaxSegmentLength      float64 `json:"MaxSegmentLength" yaml:"max_segment_length"`
	MergeTolerance        float64 `json:"MergeTolerance" yaml:"merge_tolerance"`
	ConnectivityThreshold float64 `json:"ConnectivityThreshold" yaml:"connectivity_threshold"`
	MaxSnapDistance       float64 `json:"MaxSnapDistance" yaml:"max_snap_distance"`
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		MaxSegmentLength:      25,
		MergeTolerance:        0.25,
		ConnectivityThreshold: 1,
		MaxSnapDistance:       100,
	}
}

// ReadConfig loads a pipeline configuration file.
func ReadConfig(configPath string) (Config, error) {
	jsonConfig, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Planner runs the network-construction pipeline.
type Planner struct {
	pid    uuid.UUID
	config Config
}

// NewPlanner returns a Planner with the given configuration.
func NewPlanner(config Config) *Planner {
	if config.MaxSnapDistance <= 0 {
		config.MaxSnapDistance = DefaultConfig().MaxSnapDistance
	}
	return &Planner{pid: uuid.New(), config: config}
}

// Prepared is a constructed network ready for orchestration, along with
// everything the caller needs for reporting: service connections, excluded
// buildings, and human-readable warnings.
type Prepared struct {
	Graph       *streetgraph.Graph
	Main        *route.Subgraph
	Dual        *circuit.DualNetwork
	Connections []streetgraph.ServiceConnection
	Excluded    []route.Exclusion
	Warnings    []string
}

// Prepare builds the street graph, snaps the plant and every building,
// routes the main network, and expands it into a dual circuit. Per-building
// failures (out of snap range, unroutable) become warnings and exclusions;
// only input-level and topology-level defects fail the whole call.
func (p *Planner) Prepare(in Inputs, params circuit.Params) (*Prepared, error) {
	var warnings []string
	if looksGeographic(in) {
		warnings = append(warnings, "street coordinates fall entirely inside the geographic-degree window; verify they are projected")
	}
	if len(in.Buildings) == 0 {
		return nil, &fault.DataError{Reason: "no buildings provided"}
	}

	g, err := streetgraph.Build(in.Streets, streetgraph.Options{
		MaxSegmentLength:      p.config.MaxSegmentLength,
		MergeTolerance:        p.config.MergeTolerance,
		ConnectivityThreshold: p.config.ConnectivityThreshold,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Planner] street graph: %d nodes, %d edges\n", g.NumNodes(), g.NumEdges())

	plantConn, err := g.Snap(in.Plant, streetgraph.NodePlant, p.config.MaxSnapDistance)
	if err != nil {
		// The plant is not a per-building issue; without it there is no
		// network at all.
		return nil, err
	}

	prepared := &Prepared{Graph: g, Warnings: warnings}
	demands := make(map[string]float64, len(in.Buildings))
	var serviceIDs []int64
	connByNode := make(map[int64]string)

	for _, b := range in.Buildings {
		conn, err := g.Snap(b.Centroid, streetgraph.NodeVirtual, p.config.MaxSnapDistance)
		if err != nil {
			prepared.Excluded = append(prepared.Excluded, route.Exclusion{BuildingID: b.ID, Reason: err})
			prepared.Warnings = append(prepared.Warnings, fmt.Sprintf("building %s excluded: %v", b.ID, err))
			continue
		}
		conn.BuildingID = b.ID
		prepared.Connections = append(prepared.Connections, conn)
		demands[b.ID] = b.DemandKW
		serviceIDs = append(serviceIDs, conn.NodeID)
		connByNode[conn.NodeID] = b.ID
	}
	if len(serviceIDs) == 0 {
		return nil, &fault.DataError{Reason: "no building could be connected to the street network"}
	}

	sub, excluded, err := route.Main(g, plantConn.NodeID, serviceIDs)
	if err != nil {
		return nil, err
	}
	for _, ex := range excluded {
		ex.BuildingID = connByNode[ex.NodeID]
		prepared.Excluded = append(prepared.Excluded, ex)
		prepared.Warnings = append(prepared.Warnings, fmt.Sprintf("building %s excluded: %v", ex.BuildingID, ex.Reason))
		delete(demands, ex.BuildingID)
	}
	prepared.Main = sub

	dual, err := circuit.Expand(sub, prepared.Connections, demands, params)
	if err != nil {
		return nil, err
	}
	prepared.Dual = dual
	return prepared, nil
}

// Run prepares the network for sc and executes it through the
// orchestrator, folding the pipeline's per-building warnings into the
// returned result. Pipeline-level failures surface as a terminal result,
// mirroring the orchestrator's never-raise contract.
func (p *Planner) Run(ctx context.Context, o *sim.Orchestrator, sc sim.Scenario, in Inputs) (sim.Result, *Prepared) {
	prepared, err := p.Prepare(in, sc.CircuitParams())
	if err != nil {
		return sim.Result{
			ScenarioID: sc.ID,
			Scenario:   sc.Name,
			Kind:       sc.Kind,
			Success:    false,
			Error:      err.Error(),
		}, nil
	}

	res := o.Run(ctx, sc, prepared.Dual)
	res.Warnings = append(prepared.Warnings, res.Warnings...)
	return res, prepared
}

// looksGeographic reports whether every street coordinate falls inside the
// [-180,180]x[-90,90] window. Unprojected degree input looks like this, but
// so does a site-local frame near the origin, so callers warn rather than
// reject.
func looksGeographic(in Inputs) bool {
	degreeLike := func(p geom.Point) bool {
		return math.Abs(p.X) <= 180 && math.Abs(p.Y) <= 90
	}
	count := 0
	for _, line := range in.Streets {
		for _, pt := range line {
			count++
			if !degreeLike(pt) {
				return false
			}
		}
	}
	return count > 0
}
