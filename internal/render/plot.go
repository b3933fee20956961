package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg" // png
	_ "gonum.org/v1/plot/vg/vgsvg" // svg

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
)

const (
	stationRadius = 2
	accessRadius  = 1
	edgeWidth     = 0.5
)

var accessEdgeColor = color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 0xff}

// writePlot draws every edge as a thin segment and every node as a dot at its
// dataset position. Axes are hidden; coordinates are plotted as-is.
func writePlot(w io.Writer, format string, g *metro.Graph, o Options) error {
	p := plot.New()
	p.HideAxes()

	for _, e := range g.Edges() {
		seg, err := plotter.NewLine(plotter.XYs{
			{X: e.F.Position.X(), Y: e.F.Position.Y()},
			{X: e.T.Position.X(), Y: e.T.Position.Y()},
		})
		if err != nil {
			return fmt.Errorf("edge %d-%d: %w", e.F.ID(), e.T.ID(), err)
		}
		seg.LineStyle.Width = vg.Points(edgeWidth)
		if e.Kind == metro.EdgeLine {
			seg.LineStyle.Color = colorOrFallback(e.F.Color)
		} else {
			seg.LineStyle.Color = accessEdgeColor
		}
		p.Add(seg)
	}

	nodes := g.Nodes()
	if len(nodes) > 0 {
		xys := make(plotter.XYs, len(nodes))
		styles := make([]draw.GlyphStyle, len(nodes))
		for i, n := range nodes {
			xys[i] = plotter.XY{X: n.Position.X(), Y: n.Position.Y()}
			radius := stationRadius
			if n.Kind == metro.KindAccess {
				radius = accessRadius
			}
			styles[i] = draw.GlyphStyle{
				Color:  colorOrFallback(n.Color),
				Radius: vg.Points(float64(radius)),
				Shape:  draw.CircleGlyph{},
			}
		}

		dots, err := plotter.NewScatter(xys)
		if err != nil {
			return fmt.Errorf("nodes: %w", err)
		}
		dots.GlyphStyleFunc = func(i int) draw.GlyphStyle { return styles[i] }
		p.Add(dots)
	}

	wt, err := p.WriterTo(o.Width, o.Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
