// Package route computes the shared main network joining a plant to every
// reachable building connection by unioning single-source shortest paths.
package route

import (
	"log"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"

	"github.com/ijhewaratne/gridplan/internal/pkg/fault"
	"github.com/ijhewaratne/gridplan/internal/pkg/streetgraph"
)

// Exclusion records a service node left out of the main network.
type Exclusion struct {
	NodeID     int64
	BuildingID string
	Reason     error
}

// Subgraph is the node/edge subset used by at least one plant-to-building
// shortest path. Shared trunk segments appear once; overlapping paths reuse
// the same edges, which is what makes the network hierarchical instead of
// a star of independent plant-to-building lines.
type Subgraph struct {
	PlantID     int64
	Nodes       map[int64]*streetgraph.Node
	Edges       []*streetgraph.Edge
	ServiceIDs  []int64
	DistByNode  map[int64]float64
	PathByNode  map[int64][]int64
	TotalLength float64
}

// Main routes from plantID to every entry of serviceIDs over g. Service
// nodes are processed in ascending shortest-path distance from the plant, so
// closer buildings establish trunks that farther buildings extend. Nodes
// with no path to the plant are excluded, not fatal.
func Main(g *streetgraph.Graph, plantID int64, serviceIDs []int64) (*Subgraph, []Exclusion, error) {
	plant := g.Node(plantID)
	if plant == nil {
		return nil, nil, &fault.DataError{Reason: "plant node not present in graph"}
	}

	shortest := path.DijkstraFrom(plant, g.Underlying())

	type target struct {
		id   int64
		dist float64
	}
	var (
		targets  []target
		excluded []Exclusion
	)
	for _, id := range serviceIDs {
		if g.Node(id) == nil {
			excluded = append(excluded, Exclusion{NodeID: id, Reason: &fault.DataError{Reason: "service node not present in graph"}})
			continue
		}
		d := shortest.WeightTo(id)
		if math.IsInf(d, 1) {
			excluded = append(excluded, Exclusion{NodeID: id, Reason: &fault.UnroutableBuildingError{NodeID: id}})
			continue
		}
		targets = append(targets, target{id: id, dist: d})
	}
	sort.Slice(targets, func(i, j int) bool {
		if targets[i].dist != targets[j].dist {
			return targets[i].dist < targets[j].dist
		}
		return targets[i].id < targets[j].id
	})

	sub := &Subgraph{
		PlantID:    plantID,
		Nodes:      map[int64]*streetgraph.Node{plantID: plant},
		DistByNode: map[int64]float64{plantID: 0},
		PathByNode: make(map[int64][]int64),
	}
	seenEdges := make(map[[2]int64]bool)

	for _, tg := range targets {
		nodes, _ := shortest.To(tg.id)
		ids := make([]int64, len(nodes))
		for i, n := range nodes {
			ids[i] = n.ID()
		}
		sub.PathByNode[tg.id] = ids
		sub.DistByNode[tg.id] = tg.dist
		sub.ServiceIDs = append(sub.ServiceIDs, tg.id)

		for i := 1; i < len(ids); i++ {
			u, v := ids[i-1], ids[i]
			key := edgeKey(u, v)
			if seenEdges[key] {
				continue
			}
			seenEdges[key] = true
			e := g.EdgeBetween(u, v)
			sub.Edges = append(sub.Edges, e)
			sub.Nodes[u] = g.Node(u)
			sub.Nodes[v] = g.Node(v)
			sub.TotalLength += e.W
		}
	}

	if err := checkNonStar(g, plantID, serviceIDs); err != nil {
		return nil, nil, err
	}

	if len(excluded) > 0 {
		log.Printf("[Router] %d of %d service nodes excluded\n", len(excluded), len(serviceIDs))
	}
	return sub, excluded, nil
}

// checkNonStar rejects any structure where the plant connects straight to a
// service node. That shape can only come from a builder or snapper defect,
// so it is a logic failure rather than an input-data failure.
func checkNonStar(g *streetgraph.Graph, plantID int64, serviceIDs []int64) error {
	service := make(map[int64]bool, len(serviceIDs))
	for _, id := range serviceIDs {
		service[id] = true
	}
	for _, nb := range g.Neighbors(plantID) {
		if service[nb] {
			return &fault.TopologyInvariantError{
				Detail: "plant node is directly linked to a service node",
			}
		}
	}
	return nil
}

func edgeKey(u, v int64) [2]int64 {
	if u < v {
		return [2]int64{u, v}
	}
	return [2]int64{v, u}
}
