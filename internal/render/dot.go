package render

import (
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
)

// dotNode gives metro nodes readable DOT ids ("s12", "a3") and attributes.
type dotNode struct {
	*metro.Node
}

func (n dotNode) DOTID() string {
	if n.Kind == metro.KindAccess {
		return "a" + strconv.Itoa(n.Index)
	}
	return "s" + strconv.Itoa(n.Index)
}

func (n dotNode) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{
		{Key: "label", Value: n.Name},
		{Key: "kind", Value: n.Kind.String()},
		{Key: "line", Value: n.Line},
		{Key: "pos", Value: formatFloat(n.Position.X()) + "," + formatFloat(n.Position.Y())},
		{Key: "color", Value: n.Color},
	}
	if n.Kind == metro.KindAccess {
		attrs = append(attrs,
			encoding.Attribute{Key: "station", Value: n.StationName},
			encoding.Attribute{Key: "accessibility", Value: n.Accessibility},
		)
	}
	return attrs
}

type dotEdge struct {
	f, t dotNode
	e    metro.Edge
}

func (e dotEdge) From() graph.Node         { return e.f }
func (e dotEdge) To() graph.Node           { return e.t }
func (e dotEdge) ReversedEdge() graph.Edge { e.f, e.t = e.t, e.f; return e }

func (e dotEdge) Attributes() []encoding.Attribute {
	attrs := []encoding.Attribute{{Key: "kind", Value: e.e.Kind.String()}}
	if e.e.Kind == metro.EdgeLine {
		attrs = append(attrs, encoding.Attribute{Key: "line", Value: e.e.Line})
	}
	return attrs
}

func writeDOT(w io.Writer, g *metro.Graph) error {
	dg := simple.NewUndirectedGraph()
	for _, n := range g.Nodes() {
		dg.AddNode(dotNode{n})
	}
	for _, e := range g.Edges() {
		dg.SetEdge(dotEdge{f: dotNode{e.F}, t: dotNode{e.T}, e: e})
	}

	b, err := dot.Marshal(dg, "metro", "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode DOT: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
