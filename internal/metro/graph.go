// Package metro assembles the station and access records of the metro network into
// one undirected graph.
package metro

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Graph is the finished metro network. It is immutable once Build returns and may
// be shared between goroutines.
type Graph struct {
	g        *simple.UndirectedGraph
	nodes    []*Node // indexed by id
	byKey    map[string]*Node
	stations int
	edges    int
	index    *Index
	lines    []string

	unresolved []UnresolvedReferenceError
}

func newGraph(capacity int) *Graph {
	return &Graph{
		g:     simple.NewUndirectedGraph(),
		nodes: make([]*Node, 0, capacity),
		byKey: make(map[string]*Node, capacity),
	}
}

func (g *Graph) addNode(n *Node) {
	n.id = int64(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.byKey[n.Key()] = n
	g.g.AddNode(n)
	if n.Kind == KindStation {
		g.stations++
	}
}

func (g *Graph) setEdge(from, to int64, kind EdgeKind, line string) {
	if from == to || g.g.HasEdgeBetween(from, to) {
		return
	}
	g.g.SetEdge(Edge{F: g.nodes[from], T: g.nodes[to], Kind: kind, Line: line})
	g.edges++
}

// Len returns the total number of nodes
func (g *Graph) Len() int { return len(g.nodes) }

// StationCount returns the number of station nodes
func (g *Graph) StationCount() int { return g.stations }

// AccessCount returns the number of access nodes
func (g *Graph) AccessCount() int { return len(g.nodes) - g.stations }

// EdgeCount returns the number of undirected edges
func (g *Graph) EdgeCount() int { return g.edges }

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id int64) *Node {
	if id < 0 || id >= int64(len(g.nodes)) {
		return nil
	}
	return g.nodes[id]
}

// NodeByKey returns the node whose Key equals key, or nil.
func (g *Graph) NodeByKey(key string) *Node {
	return g.byKey[key]
}

// Nodes returns all nodes in ascending id order: stations first, then accesses.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns every edge once, with From holding the lower id, sorted by
// (from, to).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for _, n := range g.nodes {
		for _, nb := range g.Neighbors(n.id) {
			if nb.id < n.id {
				continue
			}
			e := g.g.EdgeBetween(n.id, nb.id).(Edge)
			if e.F.id != n.id {
				e = e.ReversedEdge().(Edge)
			}
			out = append(out, e)
		}
	}
	return out
}

// HasEdge reports whether a and b are connected
func (g *Graph) HasEdge(a, b int64) bool {
	return g.g.HasEdgeBetween(a, b)
}

// Degree returns the number of edges incident to id
func (g *Graph) Degree(id int64) int {
	return g.g.From(id).Len()
}

// Neighbors returns the nodes adjacent to id in ascending id order.
func (g *Graph) Neighbors(id int64) []*Node {
	it := g.g.From(id)
	out := make([]*Node, 0, it.Len())
	for it.Next() {
		out = append(out, it.Node().(*Node))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// StationsNamed returns every station node with the given name, one per line.
func (g *Graph) StationsNamed(name string) []*Node {
	ids, err := g.index.Lookup(name)
	if err != nil {
		return nil
	}
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = g.nodes[id]
	}
	return out
}

// StationNames returns the distinct station names, sorted
func (g *Graph) StationNames() []string {
	return g.index.Names()
}

// Lines returns the line codes in order of first appearance in the station data.
func (g *Graph) Lines() []string {
	out := make([]string, len(g.lines))
	copy(out, g.lines)
	return out
}

// LineStations returns the station nodes of line in ascending id order.
func (g *Graph) LineStations(line string) []*Node {
	var out []*Node
	for _, n := range g.nodes[:g.stations] {
		if n.Line == line {
			out = append(out, n)
		}
	}
	return out
}

// Positions projects every node to its position.
func (g *Graph) Positions() map[int64]Position {
	out := make(map[int64]Position, len(g.nodes))
	for _, n := range g.nodes {
		out[n.id] = n.Position
	}
	return out
}

// Colors projects every node to its colour.
func (g *Graph) Colors() map[int64]string {
	out := make(map[int64]string, len(g.nodes))
	for _, n := range g.nodes {
		out[n.id] = n.Color
	}
	return out
}

// Unresolved lists the accesses that were kept without station edges because
// their station could not be found. Always empty under FailFast.
func (g *Graph) Unresolved() []UnresolvedReferenceError {
	out := make([]UnresolvedReferenceError, len(g.unresolved))
	copy(out, g.unresolved)
	return out
}

// Undirected exposes the underlying gonum graph for read-only interop
// (encoders, algorithms). Callers must not mutate it.
func (g *Graph) Undirected() graph.Undirected {
	return g.g
}
