package metro

import (
	"strconv"

	"github.com/paulmach/orb"
	"gonum.org/v1/gonum/graph"
)

// Position is a planar (x, y) coordinate in the source dataset's reference frame.
// No projection or unit conversion is ever applied.
type Position = orb.Point

// Station represents one row of estacions_linia.csv: a stop on a specific line.
// The same Name appears once per line serving the station.
type Station struct {
	Name     string
	Line     string
	Order    int // sequence index within the line
	Position Position
	Color    string
}

// Access represents one row of accessos_estacio_linia.csv: a pedestrian entrance.
type Access struct {
	Name          string
	StationName   string
	Line          string
	Accessibility string
	Position      Position
	Color         string
}

// NodeKind distinguishes station nodes from access nodes
type NodeKind int

const (
	KindStation NodeKind = iota
	KindAccess
)

func (k NodeKind) String() string {
	switch k {
	case KindStation:
		return "station"
	case KindAccess:
		return "access"
	}
	return "unknown"
}

// Node is a graph vertex carrying the attributes copied from its source record.
// Attributes are for rendering only; topology is fixed once the build completes.
type Node struct {
	id int64

	Kind  NodeKind
	Index int // row index within its own record sequence

	Name          string // station name, or access name for accesses
	StationName   string
	Line          string
	Order         int    // stations only
	Accessibility string // accesses only
	Position      Position
	Color         string
}

// ID implements graph.Node. Station ids equal their row index; access ids follow
// after the last station.
func (n *Node) ID() int64 { return n.id }

// Key returns the node's stable textual identity: the row index for stations and
// "<access name>#<row index>" for accesses.
func (n *Node) Key() string {
	if n.Kind == KindAccess {
		return AccessKey(n.Name, n.Index)
	}
	return strconv.Itoa(n.Index)
}

// AccessKey builds the composite identity of the access at row j.
func AccessKey(name string, j int) string {
	return name + "#" + strconv.Itoa(j)
}

// EdgeKind tells line-adjacency edges apart from access linkage edges
type EdgeKind int

const (
	EdgeLine EdgeKind = iota
	EdgeAccess
)

func (k EdgeKind) String() string {
	if k == EdgeAccess {
		return "access"
	}
	return "line"
}

// Edge is an undirected connection between two nodes.
type Edge struct {
	F, T *Node
	Kind EdgeKind
	Line string // set for line edges
}

// From To ReversedEdge implement the graph.Edge interface
func (e Edge) From() graph.Node { return e.F }

func (e Edge) To() graph.Node { return e.T }

func (e Edge) ReversedEdge() graph.Edge { e.F, e.T = e.T, e.F; return e }
