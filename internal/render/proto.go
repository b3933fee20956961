package render

import (
	"fmt"
	"io"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
)

// Struct encodes g as a google.protobuf.Struct with "nodes" and "edges" lists.
func Struct(g *metro.Graph) (*structpb.Struct, error) {
	nodes := make([]interface{}, 0, g.Len())
	for _, n := range g.Nodes() {
		m := map[string]interface{}{
			"id":    n.ID(),
			"key":   n.Key(),
			"kind":  n.Kind.String(),
			"name":  n.Name,
			"line":  n.Line,
			"x":     n.Position.X(),
			"y":     n.Position.Y(),
			"color": n.Color,
		}
		if n.Kind == metro.KindStation {
			m["order"] = n.Order
		} else {
			m["station"] = n.StationName
			m["accessibility"] = n.Accessibility
		}
		nodes = append(nodes, m)
	}

	edges := make([]interface{}, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		edges = append(edges, map[string]interface{}{
			"from": e.F.ID(),
			"to":   e.T.ID(),
			"kind": e.Kind.String(),
			"line": e.Line,
		})
	}

	return structpb.NewStruct(map[string]interface{}{
		"nodes": nodes,
		"edges": edges,
	})
}

func writeProto(w io.Writer, g *metro.Graph) error {
	s, err := Struct(g)
	if err != nil {
		return fmt.Errorf("failed to build struct: %w", err)
	}
	b, err := proto.MarshalOptions{Deterministic: true}.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode protobuf: %w", err)
	}
	_, err = w.Write(b)
	return err
}
