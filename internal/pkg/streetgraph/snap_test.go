package streetgraph

import (
	"errors"
	"math"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/geom"
)

func buildLine(t *testing.T) *Graph {
	t.Helper()
	g, err := Build([]geom.Polyline{{geom.Pt(0, 0), geom.Pt(400, 0)}}, Options{MaxSegmentLength: 50})
	assert.NilError(t, err)
	return g
}

func TestSnapInsertsVirtualNode(t *testing.T) {
	g := buildLine(t)
	before := g.NumNodes()

	conn, err := g.Snap(geom.Pt(120, 30), NodeVirtual, 100)
	assert.NilError(t, err)
	assert.Equal(t, g.NumNodes(), before+1)
	assert.Equal(t, conn.Distance, 30.0)
	assert.Equal(t, conn.Point, geom.Pt(120, 0))

	n := g.Node(conn.NodeID)
	assert.Equal(t, n.Kind, NodeVirtual)

	link := g.EdgeBetween(conn.NodeID, conn.NearestStreetNodeID)
	assert.Assert(t, link != nil)
	assert.Equal(t, link.Kind, EdgeServiceLink)
	assert.Equal(t, link.W, n.Pos.Distance(g.Node(conn.NearestStreetNodeID).Pos))
}

func TestSnapPlantUsesPlantLink(t *testing.T) {
	g := buildLine(t)
	conn, err := g.Snap(geom.Pt(0, 5), NodePlant, 100)
	assert.NilError(t, err)
	assert.Equal(t, g.Node(conn.NodeID).Kind, NodePlant)
	assert.Equal(t, g.EdgeBetween(conn.NodeID, conn.NearestStreetNodeID).Kind, EdgePlantLink)
}

func TestSnapOutOfRange(t *testing.T) {
	g := buildLine(t)
	before := g.NumNodes()

	_, err := g.Snap(geom.Pt(200, 150), NodeVirtual, 100)
	var oor *fault.OutOfRangeError
	assert.Assert(t, errors.As(err, &oor))
	assert.Equal(t, oor.Distance, 150.0)
	assert.Equal(t, oor.Limit, 100.0)

	// Nothing was inserted on failure.
	assert.Equal(t, g.NumNodes(), before)
}

func TestSnapIdempotentConnectionPoint(t *testing.T) {
	p := geom.Pt(233, 17)

	g1 := buildLine(t)
	c1, err := g1.Snap(p, NodeVirtual, 100)
	assert.NilError(t, err)

	g2 := buildLine(t)
	c2, err := g2.Snap(p, NodeVirtual, 100)
	assert.NilError(t, err)

	assert.Assert(t, math.Abs(c1.Point.X-c2.Point.X) < 1e-9)
	assert.Assert(t, math.Abs(c1.Point.Y-c2.Point.Y) < 1e-9)
	assert.Assert(t, math.Abs(c1.Distance-c2.Distance) < 1e-9)
}
