// Package streetgraph turns raw street centerlines into a weighted
// connectivity graph and snaps plant and building locations onto it.
package streetgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/ijhewaratne/gridplan/internal/pkg/geom"
)

// NodeKind tags the origin of a graph node.
type NodeKind string

const (
	NodeStreet  NodeKind = "street"
	NodePlant   NodeKind = "plant"
	NodeVirtual NodeKind = "virtual"
)

// EdgeKind tags the role of a graph edge.
type EdgeKind string

const (
	EdgeStreetSegment EdgeKind = "street-segment"
	EdgeConnector     EdgeKind = "connector"
	EdgePlantLink     EdgeKind = "plant-link"
	EdgeServiceLink   EdgeKind = "service-link"
)

// Node is a graph node at a fixed planar coordinate. Nodes are immutable
// after insertion; connectivity repair adds edges but never moves nodes.
type Node struct {
	id   int64
	Pos  geom.Point
	Kind NodeKind
}

// ID implements gonum's graph.Node.
func (n *Node) ID() int64 {
	return n.id
}

// Edge is a weighted graph edge. Weight equals the Euclidean distance
// between its endpoints for every edge kind.
type Edge struct {
	F, T *Node
	W    float64
	Kind EdgeKind
}

// From implements gonum's graph.Edge.
func (e *Edge) From() graph.Node { return e.F }

// To implements gonum's graph.Edge.
func (e *Edge) To() graph.Node { return e.T }

// ReversedEdge implements gonum's graph.Edge.
func (e *Edge) ReversedEdge() graph.Edge {
	return &Edge{F: e.T, T: e.F, W: e.W, Kind: e.Kind}
}

// Weight implements gonum's graph.WeightedEdge.
func (e *Edge) Weight() float64 { return e.W }

// Graph is a weighted undirected street connectivity graph backed by
// gonum's simple.WeightedUndirectedGraph.
type Graph struct {
	g      *simple.WeightedUndirectedGraph
	nextID int64
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{g: simple.NewWeightedUndirectedGraph(0, 0)}
}

func (g *Graph) addNode(p geom.Point, kind NodeKind) *Node {
	n := &Node{id: g.nextID, Pos: p, Kind: kind}
	g.nextID++
	g.g.AddNode(n)
	return n
}

func (g *Graph) addEdge(u, v *Node, w float64, kind EdgeKind) *Edge {
	e := &Edge{F: u, T: v, W: w, Kind: kind}
	g.g.SetWeightedEdge(e)
	return e
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id int64) *Node {
	n := g.g.Node(id)
	if n == nil {
		return nil
	}
	return n.(*Node)
}

// Nodes returns all nodes in ascending id order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, g.g.Nodes().Len())
	for it := g.g.Nodes(); it.Next(); {
		nodes = append(nodes, it.Node().(*Node))
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].id < nodes[j].id })
	return nodes
}

// Edges returns all edges in a deterministic order.
func (g *Graph) Edges() []*Edge {
	edges := make([]*Edge, 0)
	for it := g.g.Edges(); it.Next(); {
		edges = append(edges, it.Edge().(*Edge))
	}
	sort.Slice(edges, func(i, j int) bool {
		ai, aj := edgeKey(edges[i])
		bi, bj := edgeKey(edges[j])
		if ai != bi {
			return ai < bi
		}
		return aj < bj
	})
	return edges
}

func edgeKey(e *Edge) (int64, int64) {
	if e.F.id < e.T.id {
		return e.F.id, e.T.id
	}
	return e.T.id, e.F.id
}

// EdgeBetween returns the edge joining uid and vid, or nil.
func (g *Graph) EdgeBetween(uid, vid int64) *Edge {
	e := g.g.Edge(uid, vid)
	if e == nil {
		return nil
	}
	return e.(*Edge)
}

// HasEdgeBetween reports whether an edge joins uid and vid.
func (g *Graph) HasEdgeBetween(uid, vid int64) bool {
	return g.g.HasEdgeBetween(uid, vid)
}

// Neighbors returns the ids of nodes adjacent to id.
func (g *Graph) Neighbors(id int64) []int64 {
	var ids []int64
	for it := g.g.From(id); it.Next(); {
		ids = append(ids, it.Node().ID())
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int {
	return g.g.Nodes().Len()
}

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int {
	return g.g.Edges().Len()
}

// Underlying exposes the gonum graph for shortest-path traversal.
func (g *Graph) Underlying() *simple.WeightedUndirectedGraph {
	return g.g
}
