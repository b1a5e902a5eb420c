package export

import (
	"encoding/json"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/ijhewaratne/gridplan/internal/pkg/circuit"
	"github.com/ijhewaratne/gridplan/internal/pkg/geom"
	"github.com/ijhewaratne/gridplan/internal/pkg/route"
	"github.com/ijhewaratne/gridplan/internal/pkg/streetgraph"
)

func routed(t *testing.T) (*route.Subgraph, []streetgraph.ServiceConnection) {
	t.Helper()
	g, err := streetgraph.Build([]geom.Polyline{{geom.Pt(0, 0), geom.Pt(100, 0)}}, streetgraph.Options{MaxSegmentLength: 25})
	assert.NilError(t, err)
	plant, err := g.Snap(geom.Pt(0, 3), streetgraph.NodePlant, 20)
	assert.NilError(t, err)
	b, err := g.Snap(geom.Pt(100, 3), streetgraph.NodeVirtual, 20)
	assert.NilError(t, err)
	sub, _, err := route.Main(g, plant.NodeID, []int64{b.NodeID})
	assert.NilError(t, err)
	b.BuildingID = "b1"
	return sub, []streetgraph.ServiceConnection{b}
}

func TestMainNetworkExportIsDeterministic(t *testing.T) {
	sub, _ := routed(t)
	n1 := MainNetwork(sub)
	n2 := MainNetwork(sub)

	j1, err := Marshal(n1)
	assert.NilError(t, err)
	j2, err := Marshal(n2)
	assert.NilError(t, err)
	assert.Equal(t, string(j1), string(j2))

	// Round-trips as plain JSON.
	var decoded Network
	assert.NilError(t, json.Unmarshal(j1, &decoded))
	assert.Equal(t, len(decoded.Nodes), len(n1.Nodes))
	assert.Equal(t, decoded.TotalLength, sub.TotalLength)
}

func TestDualNetworkExportCarriesCircuits(t *testing.T) {
	sub, conns := routed(t)
	dual, err := circuit.Expand(sub, conns, map[string]float64{"b1": 50}, circuit.Params{
		Kind: circuit.KindElectrical, VoltageClassKV: 10,
	})
	assert.NilError(t, err)

	n := DualNetwork(dual)
	assert.Equal(t, len(n.Nodes), 2*len(sub.Nodes))
	assert.Equal(t, len(n.Edges), 2*len(sub.Edges))

	labels := make(map[string]int)
	for _, e := range n.Edges {
		labels[e.Circuit]++
	}
	assert.Equal(t, labels["supply"], len(sub.Edges))
	assert.Equal(t, labels["return"], len(sub.Edges))
}
