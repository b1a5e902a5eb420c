// Package export flattens graph structures into the plain node-list /
// edge-list form consumed by visualization and reporting layers.
package export

import (
	"encoding/json"
	"sort"

	"github.com/ijhewaratne/gridplan/internal/pkg/circuit"
	"github.com/ijhewaratne/gridplan/internal/pkg/route"
)

// Node is one exported graph node.
type Node struct {
	ID      int64   `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Type    string  `json:"type"`
	Circuit string  `json:"circuit,omitempty"`
}

// Edge is one exported graph edge.
type Edge struct {
	From    int64   `json:"from"`
	To      int64   `json:"to"`
	Length  float64 `json:"length"`
	Type    string  `json:"type"`
	Circuit string  `json:"circuit,omitempty"`
}

// Network is a serializable network snapshot.
type Network struct {
	Nodes       []Node  `json:"nodes"`
	Edges       []Edge  `json:"edges"`
	TotalLength float64 `json:"total_length"`
}

// MainNetwork exports a routed main subgraph.
func MainNetwork(sub *route.Subgraph) Network {
	net := Network{TotalLength: sub.TotalLength}

	ids := make([]int64, 0, len(sub.Nodes))
	for id := range sub.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		n := sub.Nodes[id]
		net.Nodes = append(net.Nodes, Node{ID: n.ID(), X: n.Pos.X, Y: n.Pos.Y, Type: string(n.Kind)})
	}
	for _, e := range sub.Edges {
		net.Edges = append(net.Edges, Edge{From: e.F.ID(), To: e.T.ID(), Length: e.W, Type: string(e.Kind)})
	}
	sortEdges(net.Edges)
	return net
}

// DualNetwork exports both circuits of an expanded network.
func DualNetwork(dual *circuit.DualNetwork) Network {
	net := Network{TotalLength: dual.TotalLen}
	for _, c := range []circuit.Circuit{dual.Supply, dual.Return} {
		for _, n := range c.Nodes {
			net.Nodes = append(net.Nodes, Node{
				ID: n.ID, X: n.Pos.X, Y: n.Pos.Y, Type: string(n.Kind), Circuit: string(c.Label),
			})
		}
		for _, e := range c.Edges {
			net.Edges = append(net.Edges, Edge{
				From: e.From, To: e.To, Length: e.Length, Type: string(e.Kind), Circuit: string(e.Circuit),
			})
		}
	}
	return net
}

// Marshal renders n as indented JSON.
func Marshal(n Network) ([]byte, error) {
	return json.MarshalIndent(n, "", "  ")
}

func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
}
