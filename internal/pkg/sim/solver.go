package sim

import (
	"context"
	"math"

	"github.com/ijhewaratne/gridplan/internal/pkg/circuit"
)

// Solver is the physics solver collaborator boundary. Implementations
// accept a native network representation and return per-element quantities
// plus a convergence outcome; their internal iteration scheme is opaque to
// the orchestrator.
type Solver interface {
	Name() string
	// Available reports whether the solver can be invoked at all. It must
	// be a static precondition, not transient runtime state.
	Available() bool
	Solve(ctx context.Context, net *SolverNetwork) (*Solution, error)
}

// NodeState is a solved per-junction quantity set. Fields outside the
// network kind's domain are zero.
type NodeState struct {
	NodeID      int64         `json:"node_id"`
	Circuit     circuit.Label `json:"circuit"`
	PressureBar float64       `json:"pressure_bar,omitempty"`
	TempC       float64       `json:"temp_c,omitempty"`
	VoltageKV   float64       `json:"voltage_kv,omitempty"`
}

// BranchState is a solved per-branch quantity set.
type BranchState struct {
	From    int64         `json:"from"`
	To      int64         `json:"to"`
	Circuit circuit.Label `json:"circuit"`
	Flow    float64       `json:"flow"`
	LossKW  float64       `json:"loss_kw"`
}

// Solution is a solver's output for one network.
type Solution struct {
	Converged  bool          `json:"converged"`
	Iterations int           `json:"iterations"`
	Nodes      []NodeState   `json:"nodes"`
	Branches   []BranchState `json:"branches"`
}

// ExtractKPI reduces a solution to the standardized KPI mapping consumed by
// the reporting and agent layers.
func ExtractKPI(sc Scenario, net *SolverNetwork, sol *Solution) map[string]float64 {
	kpi := map[string]float64{
		"network_length_m": net.TotalLength,
	}

	buildings := make(map[string]bool)
	totalThroughput := 0.0
	for _, tap := range net.Taps {
		if tap.Role == circuit.RoleSink {
			totalThroughput += tap.Throughput
			buildings[tap.BuildingID] = true
		}
	}
	kpi["building_count"] = float64(len(buildings))
	kpi["total_throughput"] = totalThroughput

	totalLoss := 0.0
	for _, b := range sol.Branches {
		totalLoss += b.LossKW
	}
	kpi["loss_kw"] = totalLoss

	violations := 0.0
	switch net.Kind {
	case circuit.KindThermal:
		minP, maxP := math.Inf(1), math.Inf(-1)
		for _, n := range sol.Nodes {
			minP = math.Min(minP, n.PressureBar)
			maxP = math.Max(maxP, n.PressureBar)
			if n.PressureBar < 1.0 {
				violations++
			}
		}
		if len(sol.Nodes) > 0 {
			kpi["min_pressure_bar"] = minP
			kpi["max_pressure_bar"] = maxP
		}

		// Recover delivered power from total mass flow and the circuit
		// differential: demand = flow * cp * dT.
		p := sc.Thermal()
		demand := totalThroughput * p.SpecificHeatKJPerKgK * (p.SupplyTempC - p.ReturnTempC)
		if demand > 0 {
			kpi["loss_percent"] = 100 * totalLoss / demand
		}
	case circuit.KindElectrical:
		ref := sc.Electrical().VoltageClassKV
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, n := range sol.Nodes {
			minV = math.Min(minV, n.VoltageKV)
			maxV = math.Max(maxV, n.VoltageKV)
			if ref > 0 && math.Abs(n.VoltageKV-ref)/ref > 0.1 {
				violations++
			}
		}
		if len(sol.Nodes) > 0 {
			kpi["min_voltage_kv"] = minV
			kpi["max_voltage_kv"] = maxV
		}
		if totalThroughput > 0 {
			kpi["loss_percent"] = 100 * totalLoss / totalThroughput
		}
	}
	kpi["violation_count"] = violations
	return kpi
}
