package models

import (
	"time"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
)

// Node is the JSON shape of a graph node
type Node struct {
	ID            int64      `json:"id"`
	Key           string     `json:"key"`
	Kind          string     `json:"kind"`
	Name          string     `json:"name"`
	StationName   string     `json:"stationName,omitempty"`
	Line          string     `json:"line"`
	Order         *int       `json:"order,omitempty"`
	Accessibility string     `json:"accessibility,omitempty"`
	Position      [2]float64 `json:"position"`
	Color         string     `json:"color"`
}

// Edge is the JSON shape of an undirected edge; From is always the lower id
type Edge struct {
	From int64  `json:"from"`
	To   int64  `json:"to"`
	Kind string `json:"kind"`
	Line string `json:"line,omitempty"`
}

// Graph is the response for GET /api/graph
type Graph struct {
	Nodes      []Node    `json:"nodes"`
	Edges      []Edge    `json:"edges"`
	NodeCount  int       `json:"nodeCount"`
	EdgeCount  int       `json:"edgeCount"`
	Unresolved []string  `json:"unresolved,omitempty"`
	BuiltAt    time.Time `json:"builtAt"`
}

// StationsResponse is the response for station and line lookups
type StationsResponse struct {
	Stations []Node `json:"stations"`
	Count    int    `json:"count"`
}

// NodeFrom converts a graph node
func NodeFrom(n *metro.Node) Node {
	out := Node{
		ID:       n.ID(),
		Key:      n.Key(),
		Kind:     n.Kind.String(),
		Name:     n.Name,
		Line:     n.Line,
		Position: [2]float64{n.Position.X(), n.Position.Y()},
		Color:    n.Color,
	}
	if n.Kind == metro.KindStation {
		order := n.Order
		out.Order = &order
	} else {
		out.StationName = n.StationName
		out.Accessibility = n.Accessibility
	}
	return out
}

// NodesFrom converts a slice of graph nodes, never returning nil
func NodesFrom(nodes []*metro.Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, NodeFrom(n))
	}
	return out
}

// GraphFrom converts a whole graph
func GraphFrom(g *metro.Graph, builtAt time.Time) Graph {
	edges := g.Edges()
	out := Graph{
		Nodes:     NodesFrom(g.Nodes()),
		Edges:     make([]Edge, 0, len(edges)),
		NodeCount: g.Len(),
		EdgeCount: g.EdgeCount(),
		BuiltAt:   builtAt,
	}
	for _, e := range edges {
		ed := Edge{From: e.F.ID(), To: e.T.ID(), Kind: e.Kind.String()}
		if e.Kind == metro.EdgeLine {
			ed.Line = e.Line
		}
		out.Edges = append(out.Edges, ed)
	}
	for _, u := range g.Unresolved() {
		out.Unresolved = append(out.Unresolved, u.Error())
	}
	return out
}
