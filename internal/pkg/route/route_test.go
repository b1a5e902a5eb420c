package route

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/geom"
	"github.com/ijhewaratne/gridplan/internal/pkg/streetgraph"
)

// Three buildings along one straight 400-unit street, plant at one end. The
// main network length is the farthest building's distance, not the sum of
// the individual distances.
func TestSharedTrunkAlongOneStreet(t *testing.T) {
	g, err := streetgraph.Build([]geom.Polyline{{geom.Pt(0, 0), geom.Pt(400, 0)}}, streetgraph.Options{MaxSegmentLength: 10})
	assert.NilError(t, err)

	plant, err := g.Snap(geom.Pt(0, 0), streetgraph.NodePlant, 50)
	assert.NilError(t, err)

	var services []int64
	for _, x := range []float64{50, 120, 300} {
		conn, err := g.Snap(geom.Pt(x, 0), streetgraph.NodeVirtual, 50)
		assert.NilError(t, err)
		services = append(services, conn.NodeID)
	}

	sub, excluded, err := Main(g, plant.NodeID, services)
	assert.NilError(t, err)
	assert.Equal(t, len(excluded), 0)
	assert.Equal(t, len(sub.ServiceIDs), 3)

	// Total length within snapping slack of 300.
	assert.Assert(t, sub.TotalLength > 295 && sub.TotalLength < 305,
		"total length %.1f, want about 300", sub.TotalLength)

	// Processed in ascending distance order.
	assert.Equal(t, sub.ServiceIDs[0], services[0])
	assert.Equal(t, sub.ServiceIDs[2], services[2])

	// Every routed service node is reachable in the subgraph.
	for _, id := range services {
		assert.Assert(t, sub.Nodes[id] != nil)
		assert.Assert(t, len(sub.PathByNode[id]) >= 2)
	}
}

func TestUnroutableBuildingExcluded(t *testing.T) {
	// Two disconnected streets; no connectivity repair.
	g, err := streetgraph.Build([]geom.Polyline{
		{geom.Pt(0, 0), geom.Pt(100, 0)},
		{geom.Pt(0, 500), geom.Pt(100, 500)},
	}, streetgraph.Options{MaxSegmentLength: 50})
	assert.NilError(t, err)

	plant, err := g.Snap(geom.Pt(0, 0), streetgraph.NodePlant, 50)
	assert.NilError(t, err)
	near, err := g.Snap(geom.Pt(80, 10), streetgraph.NodeVirtual, 50)
	assert.NilError(t, err)
	far, err := g.Snap(geom.Pt(80, 510), streetgraph.NodeVirtual, 50)
	assert.NilError(t, err)

	sub, excluded, err := Main(g, plant.NodeID, []int64{near.NodeID, far.NodeID})
	assert.NilError(t, err)

	assert.Equal(t, len(excluded), 1)
	assert.Equal(t, excluded[0].NodeID, far.NodeID)
	var unroutable *fault.UnroutableBuildingError
	assert.Assert(t, errors.As(excluded[0].Reason, &unroutable))

	// The reachable building is still routed.
	assert.Equal(t, len(sub.ServiceIDs), 1)
	assert.Equal(t, sub.ServiceIDs[0], near.NodeID)
}

func TestRoutingAcrossRepairedGap(t *testing.T) {
	// Two street segments 2 units apart bridged by connectivity repair.
	g, err := streetgraph.Build([]geom.Polyline{
		{geom.Pt(0, 0), geom.Pt(10, 0)},
		{geom.Pt(12, 0), geom.Pt(22, 0)},
	}, streetgraph.Options{MaxSegmentLength: 50, ConnectivityThreshold: 5})
	assert.NilError(t, err)

	plant, err := g.Snap(geom.Pt(0, 1), streetgraph.NodePlant, 10)
	assert.NilError(t, err)
	svc, err := g.Snap(geom.Pt(22, 1), streetgraph.NodeVirtual, 10)
	assert.NilError(t, err)

	sub, excluded, err := Main(g, plant.NodeID, []int64{svc.NodeID})
	assert.NilError(t, err)
	assert.Equal(t, len(excluded), 0)
	assert.Equal(t, len(sub.ServiceIDs), 1)
	assert.Assert(t, sub.TotalLength > 22-1e-9)
}

func TestStarEdgeIsFatal(t *testing.T) {
	g, err := streetgraph.Build([]geom.Polyline{{geom.Pt(0, 0), geom.Pt(100, 0)}}, streetgraph.Options{MaxSegmentLength: 50})
	assert.NilError(t, err)

	plant, err := g.Snap(geom.Pt(0, 0), streetgraph.NodePlant, 10)
	assert.NilError(t, err)
	// A service "node" that is really the street node adjacent to the plant
	// models a snapper defect wiring the plant straight to a service.
	badService := plant.NearestStreetNodeID

	_, _, err = Main(g, plant.NodeID, []int64{badService})
	var topo *fault.TopologyInvariantError
	assert.Assert(t, errors.As(err, &topo))
}

func TestMissingPlantNode(t *testing.T) {
	g, err := streetgraph.Build([]geom.Polyline{{geom.Pt(0, 0), geom.Pt(100, 0)}}, streetgraph.Options{})
	assert.NilError(t, err)

	_, _, err = Main(g, 9999, nil)
	var dataErr *fault.DataError
	assert.Assert(t, errors.As(err, &dataErr))
}
