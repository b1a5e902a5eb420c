package sim

import (
	"github.com/google/uuid"

	"github.com/ijhewaratne/gridplan/internal/pkg/circuit"
	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
)

// Kind selects the physical domain of a scenario.
type Kind string

const (
	Thermal    Kind = "thermal"
	Electrical Kind = "electrical"
)

// ThermalParams are the parameters of a district-heating scenario.
type ThermalParams struct {
	SupplyTempC          float64 `json:"SupplyTempC" yaml:"supply_temp_c"`
	ReturnTempC          float64 `json:"ReturnTempC" yaml:"return_temp_c"`
	SpecificHeatKJPerKgK float64 `json:"SpecificHeatKJPerKgK" yaml:"specific_heat_kj_per_kg_k"`
	RefPressureBar       float64 `json:"RefPressureBar" yaml:"ref_pressure_bar"`
}

// ElectricalParams are the parameters of a distribution-grid scenario.
type ElectricalParams struct {
	VoltageClassKV float64 `json:"VoltageClassKV" yaml:"voltage_class_kv"`
	MaxLoadingPct  float64 `json:"MaxLoadingPct" yaml:"max_loading_pct"`
}

// Scenario is a validated simulation request. The parameter set is a tagged
// union keyed by Kind: only the matching accessor carries meaning.
// Construct through NewThermalScenario or NewElectricalScenario so that
// malformed parameters fail fast instead of surfacing inside the solver.
type Scenario struct {
	ID   uuid.UUID
	Name string
	Kind Kind

	thermal    ThermalParams
	electrical ElectricalParams
}

// NewThermalScenario validates p and returns a thermal scenario.
func NewThermalScenario(name string, p ThermalParams) (Scenario, error) {
	if p.SpecificHeatKJPerKgK == 0 {
		p.SpecificHeatKJPerKgK = 4.19
	}
	if p.RefPressureBar == 0 {
		p.RefPressureBar = 6
	}
	if p.SupplyTempC <= p.ReturnTempC {
		return Scenario{}, &fault.ValidationError{Field: "SupplyTempC", Reason: "supply temperature must exceed return temperature"}
	}
	if p.ReturnTempC <= 0 {
		return Scenario{}, &fault.ValidationError{Field: "ReturnTempC", Reason: "must be positive"}
	}
	if p.SpecificHeatKJPerKgK <= 0 {
		return Scenario{}, &fault.ValidationError{Field: "SpecificHeatKJPerKgK", Reason: "must be positive"}
	}
	if p.RefPressureBar <= 0 {
		return Scenario{}, &fault.ValidationError{Field: "RefPressureBar", Reason: "must be positive"}
	}
	return Scenario{ID: uuid.New(), Name: name, Kind: Thermal, thermal: p}, nil
}

// NewElectricalScenario validates p and returns an electrical scenario.
func NewElectricalScenario(name string, p ElectricalParams) (Scenario, error) {
	if p.MaxLoadingPct == 0 {
		p.MaxLoadingPct = 100
	}
	if p.VoltageClassKV <= 0 {
		return Scenario{}, &fault.ValidationError{Field: "VoltageClassKV", Reason: "must be positive"}
	}
	if p.MaxLoadingPct <= 0 {
		return Scenario{}, &fault.ValidationError{Field: "MaxLoadingPct", Reason: "must be positive"}
	}
	return Scenario{ID: uuid.New(), Name: name, Kind: Electrical, electrical: p}, nil
}

// Thermal returns the thermal parameter set. Meaningful only when
// Kind == Thermal.
func (s Scenario) Thermal() ThermalParams {
	return s.thermal
}

// Electrical returns the electrical parameter set. Meaningful only when
// Kind == Electrical.
func (s Scenario) Electrical() ElectricalParams {
	return s.electrical
}

// NormalizedParams flattens the active parameter set into named scalar
// values for cache-key hashing.
func (s Scenario) NormalizedParams() map[string]float64 {
	switch s.Kind {
	case Thermal:
		return map[string]float64{
			"supply_temp_c":             s.thermal.SupplyTempC,
			"return_temp_c":             s.thermal.ReturnTempC,
			"specific_heat_kj_per_kg_k": s.thermal.SpecificHeatKJPerKgK,
			"ref_pressure_bar":          s.thermal.RefPressureBar,
		}
	case Electrical:
		return map[string]float64{
			"voltage_class_kv": s.electrical.VoltageClassKV,
			"max_loading_pct":  s.electrical.MaxLoadingPct,
		}
	}
	return nil
}

// CircuitParams maps the scenario onto the dual-circuit attribute set.
func (s Scenario) CircuitParams() circuit.Params {
	switch s.Kind {
	case Thermal:
		return circuit.Params{
			Kind:                 circuit.KindThermal,
			SupplyTempC:          s.thermal.SupplyTempC,
			ReturnTempC:          s.thermal.ReturnTempC,
			SpecificHeatKJPerKgK: s.thermal.SpecificHeatKJPerKgK,
			RefPressureBar:       s.thermal.RefPressureBar,
		}
	case Electrical:
		return circuit.Params{
			Kind:           circuit.KindElectrical,
			VoltageClassKV: s.electrical.VoltageClassKV,
		}
	}
	return circuit.Params{}
}
