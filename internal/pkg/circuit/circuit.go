// Package circuit duplicates the main network into labeled supply and
// return circuits and attaches per-building service devices sized from
// demand.
package circuit

import (
	"sort"

	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/geom"
	"github.com/ijhewaratne/gridplan/internal/pkg/route"
	"github.com/ijhewaratne/gridplan/internal/pkg/streetgraph"
)

// Label names one of the two circuits.
type Label string

const (
	CircuitSupply Label = "supply"
	CircuitReturn Label = "return"
)

// Kind selects the physical domain the circuits model.
type Kind string

const (
	KindThermal    Kind = "thermal"
	KindElectrical Kind = "electrical"
)

// Role is the function of a service device on a circuit.
type Role string

const (
	RoleSink   Role = "sink"
	RoleSource Role = "source"
)

// Params carries the circuit-specific differential attributes. For thermal
// networks the supply/return temperature pair and the fluid's specific heat
// capacity; for electrical networks the voltage class.
type Params struct {
	Kind Kind `json:"Kind"`

	SupplyTempC          float64 `json:"SupplyTempC,omitempty"`
	ReturnTempC          float64 `json:"ReturnTempC,omitempty"`
	SpecificHeatKJPerKgK float64 `json:"SpecificHeatKJPerKgK,omitempty"`
	RefPressureBar       float64 `json:"RefPressureBar,omitempty"`

	VoltageClassKV float64 `json:"VoltageClassKV,omitempty"`
}

// Validate checks the parameter set for its kind.
func (p Params) Validate() error {
	switch p.Kind {
	case KindThermal:
		if p.SupplyTempC <= p.ReturnTempC {
			return &fault.ValidationError{Field: "SupplyTempC", Reason: "supply temperature must exceed return temperature"}
		}
		if p.SpecificHeatKJPerKgK <= 0 {
			return &fault.ValidationError{Field: "SpecificHeatKJPerKgK", Reason: "must be positive"}
		}
	case KindElectrical:
		if p.VoltageClassKV <= 0 {
			return &fault.ValidationError{Field: "VoltageClassKV", Reason: "must be positive"}
		}
	default:
		return &fault.ValidationError{Field: "Kind", Reason: "unknown circuit kind"}
	}
	return nil
}

// Node is a node copy on one circuit. The id is shared with the other
// circuit's copy; circuit label disambiguates.
type Node struct {
	ID      int64               `json:"id"`
	Pos     geom.Point          `json:"pos"`
	Kind    streetgraph.NodeKind `json:"kind"`
	Circuit Label               `json:"circuit"`
}

// Edge is an edge copy on one circuit.
type Edge struct {
	From    int64                `json:"from"`
	To      int64                `json:"to"`
	Length  float64              `json:"length"`
	Kind    streetgraph.EdgeKind `json:"kind"`
	Circuit Label                `json:"circuit"`
}

// Device is a per-building sink or source carrying computed throughput:
// mass flow in kg/s for thermal circuits, active power in kW for electrical.
type Device struct {
	BuildingID string  `json:"building_id"`
	NodeID     int64   `json:"node_id"`
	Circuit    Label   `json:"circuit"`
	Role       Role    `json:"role"`
	Throughput float64 `json:"throughput"`
}

// Boundary is the plant's fixed reference element on one circuit.
type Boundary struct {
	NodeID         int64   `json:"node_id"`
	Circuit        Label   `json:"circuit"`
	RefPressureBar float64 `json:"ref_pressure_bar,omitempty"`
	RefTempC       float64 `json:"ref_temp_c,omitempty"`
	RefVoltageKV   float64 `json:"ref_voltage_kv,omitempty"`
}

// Circuit is one labeled copy of the main network.
type Circuit struct {
	Label    Label    `json:"label"`
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	TempC    float64  `json:"temp_c,omitempty"`
	Boundary Boundary `json:"boundary"`
}

// DualNetwork is the prepared model handed to the simulation orchestrator:
// two edge-isomorphic circuits plus per-building devices.
type DualNetwork struct {
	Kind     Kind               `json:"kind"`
	Params   Params             `json:"params"`
	Supply   Circuit            `json:"supply"`
	Return   Circuit            `json:"return"`
	Devices  []Device           `json:"devices"`
	Demands  map[string]float64 `json:"demands"`
	TotalLen float64            `json:"total_length"`
}

// BuildingIDs returns the ids of all connected buildings, sorted.
func (d *DualNetwork) BuildingIDs() []string {
	ids := make([]string, 0, len(d.Demands))
	for id := range d.Demands {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Expand copies sub onto a supply and a return circuit, attaches one sink
// device on the supply circuit and one source device on the return circuit
// per building, and fixes the plant as the boundary element of both.
//
// Thermal throughput is demand / (specific heat capacity × temperature
// differential); electrical throughput is the load's active-power demand.
func Expand(sub *route.Subgraph, conns []streetgraph.ServiceConnection, demands map[string]float64, params Params) (*DualNetwork, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if sub == nil || len(sub.Nodes) == 0 {
		return nil, &fault.DataError{Reason: "empty main network"}
	}

	dual := &DualNetwork{
		Kind:     params.Kind,
		Params:   params,
		Supply:   copyCircuit(sub, params, CircuitSupply),
		Return:   copyCircuit(sub, params, CircuitReturn),
		Demands:  make(map[string]float64),
		TotalLen: sub.TotalLength,
	}

	routed := make(map[int64]bool, len(sub.ServiceIDs))
	for _, id := range sub.ServiceIDs {
		routed[id] = true
	}

	for _, conn := range conns {
		if !routed[conn.NodeID] {
			continue
		}
		demand, ok := demands[conn.BuildingID]
		if !ok {
			return nil, &fault.ValidationError{Field: "demand", Reason: "no demand value for building " + conn.BuildingID}
		}
		throughput, err := throughputFor(demand, params)
		if err != nil {
			return nil, err
		}
		dual.Demands[conn.BuildingID] = demand
		dual.Devices = append(dual.Devices,
			Device{BuildingID: conn.BuildingID, NodeID: conn.NodeID, Circuit: CircuitSupply, Role: RoleSink, Throughput: throughput},
			Device{BuildingID: conn.BuildingID, NodeID: conn.NodeID, Circuit: CircuitReturn, Role: RoleSource, Throughput: throughput},
		)
	}
	return dual, nil
}

func throughputFor(demand float64, params Params) (float64, error) {
	if demand < 0 {
		return 0, &fault.ValidationError{Field: "demand", Reason: "must be non-negative"}
	}
	if params.Kind == KindElectrical {
		return demand, nil
	}
	dT := params.SupplyTempC - params.ReturnTempC
	return demand / (params.SpecificHeatKJPerKgK * dT), nil
}

func copyCircuit(sub *route.Subgraph, params Params, label Label) Circuit {
	c := Circuit{Label: label}

	ids := make([]int64, 0, len(sub.Nodes))
	for id := range sub.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		n := sub.Nodes[id]
		c.Nodes = append(c.Nodes, Node{ID: n.ID(), Pos: n.Pos, Kind: n.Kind, Circuit: label})
	}
	for _, e := range sub.Edges {
		c.Edges = append(c.Edges, Edge{
			From:    e.F.ID(),
			To:      e.T.ID(),
			Length:  e.W,
			Kind:    e.Kind,
			Circuit: label,
		})
	}

	boundary := Boundary{NodeID: sub.PlantID, Circuit: label}
	switch params.Kind {
	case KindThermal:
		boundary.RefPressureBar = params.RefPressureBar
		if label == CircuitSupply {
			c.TempC = params.SupplyTempC
		} else {
			c.TempC = params.ReturnTempC
		}
		boundary.RefTempC = c.TempC
	case KindElectrical:
		boundary.RefVoltageKV = params.VoltageClassKV
	}
	c.Boundary = boundary
	return c
}
