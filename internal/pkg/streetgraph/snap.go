package streetgraph

import (
	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/geom"
)

// ServiceConnection records how an entity attaches to the street graph.
// BuildingID is filled in by the caller; the snapper does not know it.
type ServiceConnection struct {
	BuildingID          string     `json:"building_id,omitempty"`
	NodeID              int64      `json:"node_id"`
	NearestStreetNodeID int64      `json:"nearest_street_node_id"`
	Point               geom.Point `json:"point"`
	Distance            float64    `json:"distance"`
}

// Snap projects p onto every edge of the graph, keeps the globally nearest
// connection point, inserts a node of the given kind there, and links it to
// the nearer endpoint of the chosen edge. Existing nodes and edges are
// never mutated, so re-snapping the same point against an unmodified graph
// yields the same connection point.
//
// Callers must not re-snap an already-snapped entity without removing its
// prior node first; doing so duplicates the attachment.
func (g *Graph) Snap(p geom.Point, kind NodeKind, maxSnapDistance float64) (ServiceConnection, error) {
	var (
		best     *Edge
		bestPt   geom.Point
		bestDist = maxSnapDistance + 1
	)
	for _, e := range g.Edges() {
		cp, _ := geom.ClosestPointOnSegment(p, e.F.Pos, e.T.Pos)
		d := p.Distance(cp)
		if best == nil || d < bestDist {
			best, bestPt, bestDist = e, cp, d
		}
	}
	if best == nil {
		return ServiceConnection{}, &fault.DataError{Reason: "cannot snap onto an empty graph"}
	}
	if bestDist > maxSnapDistance {
		return ServiceConnection{}, &fault.OutOfRangeError{Distance: bestDist, Limit: maxSnapDistance}
	}

	anchor := best.F
	if bestPt.Distance(best.T.Pos) < bestPt.Distance(best.F.Pos) {
		anchor = best.T
	}

	linkKind := EdgeServiceLink
	if kind == NodePlant {
		linkKind = EdgePlantLink
	}

	n := g.addNode(bestPt, kind)
	g.addEdge(n, anchor, bestPt.Distance(anchor.Pos), linkKind)

	return ServiceConnection{
		NodeID:              n.id,
		NearestStreetNodeID: anchor.id,
		Point:               bestPt,
		Distance:            bestDist,
	}, nil
}
