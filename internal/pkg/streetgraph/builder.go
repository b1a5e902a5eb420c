package streetgraph

import (
	"log"
	"math"

	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/geom"
)

// Options control graph granularity and connectivity repair.
type Options struct {
	// MaxSegmentLength is the longest sub-segment produced when splitting
	// input polylines. Shorter segments give finer snapping granularity.
	MaxSegmentLength float64 `json:"MaxSegmentLength"`
	// MergeTolerance unifies endpoints closer than this into one node,
	// modeling intersections across slightly misaligned geometries.
	MergeTolerance float64 `json:"MergeTolerance"`
	// ConnectivityThreshold bridges unlinked node pairs closer than this
	// with a connector edge, repairing small digitization gaps.
	ConnectivityThreshold float64 `json:"ConnectivityThreshold"`
}

// DefaultOptions returns the builder defaults.
func DefaultOptions() Options {
	return Options{
		MaxSegmentLength:      25.0,
		MergeTolerance:        0.25,
		ConnectivityThreshold: 1.0,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxSegmentLength <= 0 {
		o.MaxSegmentLength = def.MaxSegmentLength
	}
	if o.MergeTolerance <= 0 {
		o.MergeTolerance = def.MergeTolerance
	}
	if o.ConnectivityThreshold < 0 {
		o.ConnectivityThreshold = 0
	}
	return o
}

type cellKey struct {
	ix, iy int64
}

// nodeIndex merges points within tolerance into a single node by bucketing
// them on a tolerance-sized grid and probing neighboring cells.
type nodeIndex struct {
	tol   float64
	cells map[cellKey][]*Node
}

func newNodeIndex(tol float64) *nodeIndex {
	return &nodeIndex{tol: tol, cells: make(map[cellKey][]*Node)}
}

func (idx *nodeIndex) key(p geom.Point) cellKey {
	return cellKey{
		ix: int64(math.Floor(p.X / idx.tol)),
		iy: int64(math.Floor(p.Y / idx.tol)),
	}
}

func (idx *nodeIndex) find(p geom.Point) *Node {
	center := idx.key(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			k := cellKey{center.ix + dx, center.iy + dy}
			for _, n := range idx.cells[k] {
				if n.Pos.Distance(p) <= idx.tol {
					return n
				}
			}
		}
	}
	return nil
}

func (idx *nodeIndex) insert(n *Node) {
	k := idx.key(n.Pos)
	idx.cells[k] = append(idx.cells[k], n)
}

// Build constructs a street connectivity graph from raw centerlines. Every
// polyline span is split into sub-segments no longer than
// opts.MaxSegmentLength, endpoints within opts.MergeTolerance are unified,
// and unlinked node pairs closer than opts.ConnectivityThreshold are
// bridged with connector edges.
func Build(lines []geom.Polyline, opts Options) (*Graph, error) {
	opts = opts.withDefaults()

	if len(lines) == 0 {
		return nil, &fault.DataError{Reason: "no street segments provided"}
	}
	if err := checkFinite(lines); err != nil {
		return nil, err
	}

	g := NewGraph()
	idx := newNodeIndex(opts.MergeTolerance)

	nodeAt := func(p geom.Point) *Node {
		if n := idx.find(p); n != nil {
			return n
		}
		n := g.addNode(p, NodeStreet)
		idx.insert(n)
		return n
	}

	for _, line := range lines {
		for i := 1; i < len(line); i++ {
			a, b := line[i-1], line[i]
			if a.Distance(b) == 0 {
				continue
			}
			prev := nodeAt(a)
			for _, p := range geom.Subdivide(a, b, opts.MaxSegmentLength) {
				next := nodeAt(p)
				if next == prev {
					continue
				}
				if !g.HasEdgeBetween(prev.id, next.id) {
					g.addEdge(prev, next, prev.Pos.Distance(next.Pos), EdgeStreetSegment)
				}
				prev = next
			}
		}
	}

	if g.NumEdges() == 0 {
		return nil, &fault.DataError{Reason: "no street segment has finite length"}
	}

	if added := repairConnectivity(g, opts.ConnectivityThreshold); added > 0 {
		log.Printf("[StreetGraph] connectivity repair added %d connector edges\n", added)
	}

	return g, nil
}

func checkFinite(lines []geom.Polyline) error {
	hasFinite := false
	for _, line := range lines {
		for i, p := range line {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				return &fault.DataError{Reason: "street geometry contains non-finite coordinates"}
			}
			if i > 0 && line[i-1].Distance(p) > 0 {
				hasFinite = true
			}
		}
	}
	if !hasFinite {
		return &fault.DataError{Reason: "no street segment has finite length"}
	}
	return nil
}

// repairConnectivity adds a connector edge between every unlinked node pair
// closer than threshold and returns the number of edges added.
func repairConnectivity(g *Graph, threshold float64) int {
	if threshold <= 0 {
		return 0
	}
	nodes := g.Nodes()
	added := 0
	for i, u := range nodes {
		for _, v := range nodes[i+1:] {
			d := u.Pos.Distance(v.Pos)
			if d >= threshold || d == 0 {
				continue
			}
			if g.HasEdgeBetween(u.id, v.id) {
				continue
			}
			g.addEdge(u, v, d, EdgeConnector)
			added++
		}
	}
	return added
}
