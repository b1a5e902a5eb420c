package circuit

import (
	"errors"
	"math"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/geom"
	"github.com/ijhewaratne/gridplan/internal/pkg/route"
	"github.com/ijhewaratne/gridplan/internal/pkg/streetgraph"
)

func thermalParams() Params {
	return Params{
		Kind:                 KindThermal,
		SupplyTempC:          80,
		ReturnTempC:          50,
		SpecificHeatKJPerKgK: 4.19,
		RefPressureBar:       6,
	}
}

func prepare(t *testing.T) (*route.Subgraph, []streetgraph.ServiceConnection) {
	t.Helper()
	g, err := streetgraph.Build([]geom.Polyline{{geom.Pt(0, 0), geom.Pt(200, 0)}}, streetgraph.Options{MaxSegmentLength: 20})
	assert.NilError(t, err)

	plant, err := g.Snap(geom.Pt(0, 10), streetgraph.NodePlant, 50)
	assert.NilError(t, err)

	var conns []streetgraph.ServiceConnection
	for i, x := range []float64{60, 180} {
		conn, err := g.Snap(geom.Pt(x, 15), streetgraph.NodeVirtual, 50)
		assert.NilError(t, err)
		conn.BuildingID = []string{"b1", "b2"}[i]
		conns = append(conns, conn)
	}

	ids := []int64{conns[0].NodeID, conns[1].NodeID}
	sub, excluded, err := route.Main(g, plant.NodeID, ids)
	assert.NilError(t, err)
	assert.Equal(t, len(excluded), 0)
	return sub, conns
}

func TestExpandCircuitsAreEdgeIsomorphic(t *testing.T) {
	sub, conns := prepare(t)
	demands := map[string]float64{"b1": 100, "b2": 250}

	dual, err := Expand(sub, conns, demands, thermalParams())
	assert.NilError(t, err)

	assert.Equal(t, len(dual.Supply.Nodes), len(dual.Return.Nodes))
	assert.Equal(t, len(dual.Supply.Edges), len(dual.Return.Edges))
	for i, e := range dual.Supply.Edges {
		r := dual.Return.Edges[i]
		assert.Equal(t, e.From, r.From)
		assert.Equal(t, e.To, r.To)
		assert.Equal(t, e.Length, r.Length)
		assert.Equal(t, e.Circuit, CircuitSupply)
		assert.Equal(t, r.Circuit, CircuitReturn)
	}
	assert.Equal(t, dual.Supply.TempC, 80.0)
	assert.Equal(t, dual.Return.TempC, 50.0)
}

func TestExpandDevicesAndThroughput(t *testing.T) {
	sub, conns := prepare(t)
	demands := map[string]float64{"b1": 100, "b2": 250}

	dual, err := Expand(sub, conns, demands, thermalParams())
	assert.NilError(t, err)

	// One sink on supply and one source on return per building.
	assert.Equal(t, len(dual.Devices), 4)
	perBuilding := make(map[string]map[Label]Role)
	for _, d := range dual.Devices {
		if perBuilding[d.BuildingID] == nil {
			perBuilding[d.BuildingID] = make(map[Label]Role)
		}
		perBuilding[d.BuildingID][d.Circuit] = d.Role

		want := demands[d.BuildingID] / (4.19 * 30)
		assert.Assert(t, math.Abs(d.Throughput-want) < 1e-12)
	}
	for _, roles := range perBuilding {
		assert.Equal(t, roles[CircuitSupply], RoleSink)
		assert.Equal(t, roles[CircuitReturn], RoleSource)
	}
}

func TestExpandElectricalThroughputIsDemand(t *testing.T) {
	sub, conns := prepare(t)
	demands := map[string]float64{"b1": 40, "b2": 75}

	dual, err := Expand(sub, conns, demands, Params{Kind: KindElectrical, VoltageClassKV: 10})
	assert.NilError(t, err)
	for _, d := range dual.Devices {
		assert.Equal(t, d.Throughput, demands[d.BuildingID])
	}
	assert.Equal(t, dual.Supply.Boundary.RefVoltageKV, 10.0)
}

func TestExpandValidatesParams(t *testing.T) {
	sub, conns := prepare(t)
	demands := map[string]float64{"b1": 1, "b2": 1}
	var verr *fault.ValidationError

	// Inverted temperature pair.
	p := thermalParams()
	p.SupplyTempC, p.ReturnTempC = 50, 80
	_, err := Expand(sub, conns, demands, p)
	assert.Assert(t, errors.As(err, &verr))

	// Missing demand.
	_, err = Expand(sub, conns, map[string]float64{"b1": 1}, thermalParams())
	assert.Assert(t, errors.As(err, &verr))
}

func TestExpandSkipsUnroutedConnections(t *testing.T) {
	sub, conns := prepare(t)
	extra := streetgraph.ServiceConnection{BuildingID: "ghost", NodeID: 99999}
	demands := map[string]float64{"b1": 10, "b2": 20}

	dual, err := Expand(sub, append(conns, extra), demands, thermalParams())
	assert.NilError(t, err)
	assert.Equal(t, len(dual.Devices), 4)
	_, present := dual.Demands["ghost"]
	assert.Assert(t, !present)
}
