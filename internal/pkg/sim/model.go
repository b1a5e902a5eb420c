package sim

import (
	"github.com/ijhewaratne/gridplan/internal/pkg/circuit"
	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
)

// SolverNetwork is the solver collaborator's native representation:
// junctions, branches, boundary elements, and sink/source taps, flattened
// from both circuits of a DualNetwork.
type SolverNetwork struct {
	Kind        circuit.Kind
	Junctions   []Junction
	Branches    []Branch
	Boundaries  []BoundaryElement
	Taps        []Tap
	TotalLength float64
}

// Junction is a solver node on one circuit.
type Junction struct {
	NodeID  int64
	Circuit circuit.Label
	X, Y    float64
}

// Branch is a solver pipe or line on one circuit.
type Branch struct {
	From, To int64
	Circuit  circuit.Label
	Length   float64
}

// BoundaryElement fixes the plant's reference quantities on one circuit.
type BoundaryElement struct {
	NodeID         int64
	Circuit        circuit.Label
	RefPressureBar float64
	RefTempC       float64
	RefVoltageKV   float64
}

// Tap is a per-building sink or source device.
type Tap struct {
	NodeID     int64
	Circuit    circuit.Label
	BuildingID string
	Role       circuit.Role
	Throughput float64
}

// BuildSolverNetwork validates dual against the scenario's required shape
// and converts it. A kind mismatch or a network without service devices is
// a ValidationError; the run aborts before any solver invocation.
func BuildSolverNetwork(sc Scenario, dual *circuit.DualNetwork) (*SolverNetwork, error) {
	if dual == nil || len(dual.Supply.Nodes) == 0 {
		return nil, &fault.ValidationError{Field: "network", Reason: "prepared network is empty"}
	}
	if string(dual.Kind) != string(sc.Kind) {
		return nil, &fault.ValidationError{
			Field:  "network",
			Reason: "network kind " + string(dual.Kind) + " does not match scenario kind " + string(sc.Kind),
		}
	}
	if len(dual.Devices) == 0 {
		return nil, &fault.ValidationError{Field: "network", Reason: "no service devices attached"}
	}

	net := &SolverNetwork{Kind: dual.Kind, TotalLength: dual.TotalLen}
	for _, c := range []circuit.Circuit{dual.Supply, dual.Return} {
		for _, n := range c.Nodes {
			net.Junctions = append(net.Junctions, Junction{NodeID: n.ID, Circuit: c.Label, X: n.Pos.X, Y: n.Pos.Y})
		}
		for _, e := range c.Edges {
			net.Branches = append(net.Branches, Branch{From: e.From, To: e.To, Circuit: c.Label, Length: e.Length})
		}
		net.Boundaries = append(net.Boundaries, BoundaryElement{
			NodeID:         c.Boundary.NodeID,
			Circuit:        c.Label,
			RefPressureBar: c.Boundary.RefPressureBar,
			RefTempC:       c.Boundary.RefTempC,
			RefVoltageKV:   c.Boundary.RefVoltageKV,
		})
	}
	for _, d := range dual.Devices {
		net.Taps = append(net.Taps, Tap{
			NodeID:     d.NodeID,
			Circuit:    d.Circuit,
			BuildingID: d.BuildingID,
			Role:       d.Role,
			Throughput: d.Throughput,
		})
	}
	return net, nil
}
