// Package render turns a finished metro graph into images and interchange formats.
// Renderers only read the graph.
package render

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
)

// Format names an output encoding
type Format string

const (
	FormatPNG     Format = "png"
	FormatSVG     Format = "svg"
	FormatDOT     Format = "dot"
	FormatGeoJSON Format = "geojson"
	FormatProto   Format = "pb"
)

// ErrUnknownFormat is returned for extensions and format names with no renderer
var ErrUnknownFormat = errors.New("unknown output format")

// Options controls image size. Only PNG and SVG use it.
type Options struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions matches the size of a landscape A4 sheet
var DefaultOptions = Options{
	Width:  29.7 * vg.Centimeter,
	Height: 21 * vg.Centimeter,
}

// ParseFormat accepts a format name or file extension, with or without the dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "png":
		return FormatPNG, nil
	case "svg":
		return FormatSVG, nil
	case "dot", "gv":
		return FormatDOT, nil
	case "geojson", "json":
		return FormatGeoJSON, nil
	case "pb", "binpb":
		return FormatProto, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath picks the format from the file extension of p
func FormatFromPath(p string) (Format, error) {
	ext := filepath.Ext(p)
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, p)
	}
	return ParseFormat(ext)
}

// Render writes g to w in the given format using DefaultOptions.
func Render(w io.Writer, format Format, g *metro.Graph) error {
	return DefaultOptions.Render(w, format, g)
}

// RenderFile writes g to path, choosing the format from its extension.
func RenderFile(path string, g *metro.Graph) error {
	return DefaultOptions.RenderFile(path, g)
}

// Render writes g to w in the given format.
func (o Options) Render(w io.Writer, format Format, g *metro.Graph) error {
	switch format {
	case FormatPNG, FormatSVG:
		return writePlot(w, string(format), g, o)
	case FormatDOT:
		return writeDOT(w, g)
	case FormatGeoJSON:
		return writeGeoJSON(w, g)
	case FormatProto:
		return writeProto(w, g)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// RenderFile writes g to path. A failed render leaves no partial file behind.
func (o Options) RenderFile(path string, g *metro.Graph) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := o.Render(tmp, format, g); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to render %s: %w", format, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}

	log.Printf("Render: wrote %s (%d nodes, %d edges)", path, g.Len(), g.EdgeCount())
	return nil
}
