package render

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
)

// FeatureCollection builds one Point feature per node followed by one LineString
// feature per edge. Coordinates are the dataset's own, unprojected.
func FeatureCollection(g *metro.Graph) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, n := range g.Nodes() {
		f := geojson.NewFeature(n.Position)
		f.ID = n.Key()
		f.Properties["id"] = n.ID()
		f.Properties["kind"] = n.Kind.String()
		f.Properties["name"] = n.Name
		f.Properties["line"] = n.Line
		f.Properties["color"] = n.Color
		switch n.Kind {
		case metro.KindStation:
			f.Properties["order"] = n.Order
		case metro.KindAccess:
			f.Properties["station"] = n.StationName
			f.Properties["accessibility"] = n.Accessibility
		}
		fc.Append(f)
	}

	for _, e := range g.Edges() {
		f := geojson.NewFeature(orb.LineString{e.F.Position, e.T.Position})
		f.Properties["kind"] = e.Kind.String()
		f.Properties["from"] = e.F.ID()
		f.Properties["to"] = e.T.ID()
		if e.Kind == metro.EdgeLine {
			f.Properties["line"] = e.Line
			f.Properties["color"] = e.F.Color
		}
		fc.Append(f)
	}

	return fc
}

func writeGeoJSON(w io.Writer, g *metro.Graph) error {
	return json.NewEncoder(w).Encode(FeatureCollection(g))
}
