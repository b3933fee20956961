package metro

import "fmt"

// AccessColor is the fixed colour of every access node
const AccessColor = "blue"

const fallbackLineColor = "#888888"

// LineColorMap contains official TMB Metro colors
var LineColorMap = map[string]string{
	"L1":   "#CE1126",
	"L2":   "#9B3A97",
	"L3":   "#1EB53A",
	"L4":   "#F9B233",
	"L5":   "#0078C6",
	"L9N":  "#F58220",
	"L9S":  "#F58220",
	"L10N": "#00A9E0",
	"L10S": "#00A9E0",
	"L11":  "#A5D867",
	"FM":   "#A5D867", // Funicular de Montjuïc
}

// Colorer assigns a colour to the station at row index i serving line.
type Colorer func(i int, line string) string

// Colour schemes accepted by ColorerFor
const (
	SchemeLine  = "line"
	SchemeIndex = "index"
)

// indexBreakpoints is the legacy row-range colouring of the 2022 estacions_linia.csv
// export. It depends on the file's row layout, not on the line.
var indexBreakpoints = []struct {
	below int
	color string
}{
	{30, "red"},
	{48, "cyan"},
	{74, "green"},
	{96, "black"},
	{123, "purple"},
	{132, "grey"},
	{147, "orange"},
	{153, "brown"},
	{164, "yellow"},
	{169, "black"},
}

// IndexColor returns the legacy breakpoint colour for row i. The line is ignored.
func IndexColor(i int, _ string) string {
	for _, bp := range indexBreakpoints {
		if i < bp.below {
			return bp.color
		}
	}
	return "pink"
}

// LineColor returns the official colour of line, or a neutral grey when unknown.
func LineColor(_ int, line string) string {
	if c, ok := LineColorMap[line]; ok {
		return c
	}
	return fallbackLineColor
}

// ColorerFor maps a scheme name to its Colorer
func ColorerFor(scheme string) (Colorer, error) {
	switch scheme {
	case SchemeLine, "":
		return LineColor, nil
	case SchemeIndex:
		return IndexColor, nil
	}
	return nil, fmt.Errorf("unknown color scheme %q", scheme)
}
