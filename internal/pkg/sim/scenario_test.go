package sim

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/ijhewaratne/gridplan/internal/pkg/circuit"
	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
)

func TestThermalScenarioValidation(t *testing.T) {
	var verr *fault.ValidationError

	_, err := NewThermalScenario("x", ThermalParams{SupplyTempC: 40, ReturnTempC: 60})
	assert.Assert(t, errors.As(err, &verr))

	_, err = NewThermalScenario("x", ThermalParams{SupplyTempC: 80, ReturnTempC: -10})
	assert.Assert(t, errors.As(err, &verr))

	sc, err := NewThermalScenario("x", ThermalParams{SupplyTempC: 80, ReturnTempC: 50})
	assert.NilError(t, err)
	assert.Equal(t, sc.Kind, Thermal)
	// Defaults applied on construction.
	assert.Equal(t, sc.Thermal().SpecificHeatKJPerKgK, 4.19)
	assert.Equal(t, sc.Thermal().RefPressureBar, 6.0)
}

func TestElectricalScenarioValidation(t *testing.T) {
	var verr *fault.ValidationError

	_, err := NewElectricalScenario("x", ElectricalParams{VoltageClassKV: 0})
	assert.Assert(t, errors.As(err, &verr))

	sc, err := NewElectricalScenario("x", ElectricalParams{VoltageClassKV: 10})
	assert.NilError(t, err)
	assert.Equal(t, sc.Kind, Electrical)
	assert.Equal(t, sc.Electrical().MaxLoadingPct, 100.0)
}

func TestNormalizedParamsAreComplete(t *testing.T) {
	sc, err := NewThermalScenario("x", ThermalParams{SupplyTempC: 80, ReturnTempC: 50})
	assert.NilError(t, err)
	p := sc.NormalizedParams()
	assert.Equal(t, len(p), 4)
	assert.Equal(t, p["supply_temp_c"], 80.0)

	sc, err = NewElectricalScenario("x", ElectricalParams{VoltageClassKV: 10})
	assert.NilError(t, err)
	p = sc.NormalizedParams()
	assert.Equal(t, len(p), 2)
	assert.Equal(t, p["voltage_class_kv"], 10.0)
}

func TestCircuitParamsMapping(t *testing.T) {
	sc, err := NewThermalScenario("x", ThermalParams{SupplyTempC: 80, ReturnTempC: 50})
	assert.NilError(t, err)
	cp := sc.CircuitParams()
	assert.Equal(t, cp.Kind, circuit.KindThermal)
	assert.NilError(t, cp.Validate())

	sc, err = NewElectricalScenario("x", ElectricalParams{VoltageClassKV: 10})
	assert.NilError(t, err)
	cp = sc.CircuitParams()
	assert.Equal(t, cp.Kind, circuit.KindElectrical)
	assert.NilError(t, cp.Validate())
}
