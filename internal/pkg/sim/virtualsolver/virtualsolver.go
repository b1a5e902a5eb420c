// Package virtualsolver is a fast deterministic stand-in for the physics
// solver collaborator. It approximates per-element quantities from network
// geometry alone and always converges. Results produced through it are
// tagged placeholder by the orchestrator, never presented as solved.
package virtualsolver

import (
	"context"

	"github.com/ijhewaratne/gridplan/internal/pkg/circuit"
	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/sim"
)

// Pressure and voltage gradients used by the approximation. Chosen to sit
// in the plausible range for district networks; they carry no calibration.
const (
	pressureDropBarPerM  = 0.0008
	voltageDropPctPerKm  = 0.6
	thermalLossKWPerM    = 0.02
	electricalLossFactor = 0.015
)

// VirtualSolver implements sim.Solver.
type VirtualSolver struct{}

// New returns a VirtualSolver.
func New() *VirtualSolver {
	return &VirtualSolver{}
}

// Name implements sim.Solver.
func (s *VirtualSolver) Name() string {
	return "virtual"
}

// Available implements sim.Solver. The placeholder is always available.
func (s *VirtualSolver) Available() bool {
	return true
}

// Solve walks each circuit outward from its boundary element, assigning
// potentials that fall linearly with network distance and aggregating tap
// throughput onto the traversal tree to approximate branch flows.
func (s *VirtualSolver) Solve(_ context.Context, net *sim.SolverNetwork) (*sim.Solution, error) {
	if net == nil || len(net.Junctions) == 0 {
		return nil, &fault.ValidationError{Field: "network", Reason: "empty solver network"}
	}

	sol := &sim.Solution{Converged: true, Iterations: 1}
	for _, boundary := range net.Boundaries {
		c := newCircuitView(net, boundary)
		c.assignPotentials(sol)
		c.aggregateFlows(sol)
	}
	return sol, nil
}

type circuitView struct {
	net      *sim.SolverNetwork
	boundary sim.BoundaryElement
	label    circuit.Label
	adj      map[int64][]sim.Branch
	dist     map[int64]float64
	parent   map[int64]int64
	order    []int64
}

func newCircuitView(net *sim.SolverNetwork, boundary sim.BoundaryElement) *circuitView {
	c := &circuitView{
		net:      net,
		boundary: boundary,
		label:    boundary.Circuit,
		adj:      make(map[int64][]sim.Branch),
		dist:     make(map[int64]float64),
		parent:   make(map[int64]int64),
	}
	for _, b := range net.Branches {
		if b.Circuit != c.label {
			continue
		}
		c.adj[b.From] = append(c.adj[b.From], b)
		c.adj[b.To] = append(c.adj[b.To], sim.Branch{From: b.To, To: b.From, Circuit: b.Circuit, Length: b.Length})
	}

	// Breadth-first tree from the boundary node accumulating distance.
	root := boundary.NodeID
	c.dist[root] = 0
	c.parent[root] = root
	queue := []int64{root}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		c.order = append(c.order, curr)
		for _, b := range c.adj[curr] {
			if _, seen := c.dist[b.To]; seen {
				continue
			}
			c.dist[b.To] = c.dist[curr] + b.Length
			c.parent[b.To] = curr
			queue = append(queue, b.To)
		}
	}
	return c
}

func (c *circuitView) assignPotentials(sol *sim.Solution) {
	for _, j := range c.net.Junctions {
		if j.Circuit != c.label {
			continue
		}
		d, reachable := c.dist[j.NodeID]
		if !reachable {
			d = c.maxDist()
		}
		state := sim.NodeState{NodeID: j.NodeID, Circuit: c.label}
		switch c.net.Kind {
		case circuit.KindThermal:
			state.PressureBar = c.boundary.RefPressureBar - pressureDropBarPerM*d
			state.TempC = c.boundary.RefTempC
		case circuit.KindElectrical:
			drop := voltageDropPctPerKm * (d / 1000) / 100
			state.VoltageKV = c.boundary.RefVoltageKV * (1 - drop)
		}
		sol.Nodes = append(sol.Nodes, state)
	}
}

// aggregateFlows pushes every tap's throughput up the traversal tree so a
// branch carries the summed demand of everything downstream of it.
func (c *circuitView) aggregateFlows(sol *sim.Solution) {
	carried := make(map[int64]float64)
	for _, tap := range c.net.Taps {
		if tap.Circuit == c.label {
			carried[tap.NodeID] += tap.Throughput
		}
	}

	// Children-before-parents: reverse BFS order.
	for i := len(c.order) - 1; i > 0; i-- {
		node := c.order[i]
		carried[c.parent[node]] += carried[node]
	}

	for _, b := range c.net.Branches {
		if b.Circuit != c.label {
			continue
		}
		// Flow on a tree branch is the amount carried by its child side.
		child := b.To
		if c.parent[b.To] != b.From {
			if c.parent[b.From] == b.To {
				child = b.From
			} else {
				continue // non-tree branch carries nothing in this model
			}
		}
		flow := carried[child]
		state := sim.BranchState{From: b.From, To: b.To, Circuit: c.label, Flow: flow}
		switch c.net.Kind {
		case circuit.KindThermal:
			if flow > 0 {
				state.LossKW = thermalLossKWPerM * b.Length / 1000 * flow
			}
		case circuit.KindElectrical:
			state.LossKW = electricalLossFactor * flow * (b.Length / 1000)
		}
		sol.Branches = append(sol.Branches, state)
	}
}

func (c *circuitView) maxDist() float64 {
	max := 0.0
	for _, d := range c.dist {
		if d > max {
			max = d
		}
	}
	return max
}
