package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ijhewaratne/gridplan/internal/pkg/export"
	"github.com/ijhewaratne/gridplan/internal/pkg/plan"
	"github.com/ijhewaratne/gridplan/internal/pkg/sim"
	"github.com/ijhewaratne/gridplan/internal/pkg/sim/virtualsolver"
)

// project is the YAML document a CLI invocation operates on: one scenario,
// the network tunables, and the raw inputs.
type project struct {
	Scenario struct {
		Name       string                `yaml:"name"`
		Kind       sim.Kind              `yaml:"kind"`
		Thermal    *sim.ThermalParams    `yaml:"thermal,omitempty"`
		Electrical *sim.ElectricalParams `yaml:"electrical,omitempty"`
	} `yaml:"scenario"`
	Network    plan.Config `yaml:"network"`
	Simulation sim.Config  `yaml:"simulation"`
	Inputs     plan.Inputs `yaml:"inputs"`
}

func loadProject(path string) (*project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	p := &project{
		Network:    plan.DefaultConfig(),
		Simulation: sim.Config{SimulationMode: "auto", FallbackOnError: true},
	}
	if err := yaml.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parsing project: %w", err)
	}
	return p, nil
}

func (p *project) scenario() (sim.Scenario, error) {
	switch p.Scenario.Kind {
	case sim.Thermal:
		params := sim.ThermalParams{}
		if p.Scenario.Thermal != nil {
			params = *p.Scenario.Thermal
		}
		return sim.NewThermalScenario(p.Scenario.Name, params)
	case sim.Electrical:
		params := sim.ElectricalParams{}
		if p.Scenario.Electrical != nil {
			params = *p.Scenario.Electrical
		}
		return sim.NewElectricalScenario(p.Scenario.Name, params)
	default:
		return sim.Scenario{}, fmt.Errorf("unknown scenario kind %q", p.Scenario.Kind)
	}
}

func runScenario(projectPath, outPath string) error {
	p, err := loadProject(projectPath)
	if err != nil {
		return err
	}

	sc, err := p.scenario()
	if err != nil {
		return err
	}

	orch, err := sim.New(p.Simulation, nil, virtualsolver.New(), nil, nil)
	if err != nil {
		return err
	}

	planner := plan.NewPlanner(p.Network)
	res, prepared := planner.Run(context.Background(), orch, sc, p.Inputs)

	body, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(body))

	if !res.Success {
		return fmt.Errorf("scenario %q failed: %s", sc.Name, res.Error)
	}

	if outPath != "" && prepared != nil {
		net, err := export.Marshal(export.DualNetwork(prepared.Dual))
		if err != nil {
			return err
		}
		if err := os.WriteFile(outPath, net, 0644); err != nil {
			return err
		}
	}
	return nil
}

func runGraph(projectPath string) error {
	p, err := loadProject(projectPath)
	if err != nil {
		return err
	}

	sc, err := p.scenario()
	if err != nil {
		return err
	}

	planner := plan.NewPlanner(p.Network)
	prepared, err := planner.Prepare(p.Inputs, sc.CircuitParams())
	if err != nil {
		return err
	}

	for _, w := range prepared.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	body, err := export.Marshal(export.MainNetwork(prepared.Main))
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}
