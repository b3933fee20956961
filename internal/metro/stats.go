package metro

import "github.com/mini-rodalies-3d/metrograph/internal/metrics"

// Stats summarises a built graph
type Stats struct {
	Nodes            int         `json:"nodes"`
	Edges            int         `json:"edges"`
	Stations         int         `json:"stations"`
	Accesses         int         `json:"accesses"`
	LineEdges        int         `json:"lineEdges"`
	AccessEdges      int         `json:"accessEdges"`
	StationNames     int         `json:"stationNames"`
	IsolatedAccesses int         `json:"isolatedAccesses"`
	Lines            []LineStats `json:"lines"`
	MeanDegree       float64     `json:"meanDegree"`
	DegreeStdDev     float64     `json:"degreeStdDev"`
}

// LineStats counts the stations and line edges of a single line
type LineStats struct {
	Line     string `json:"line"`
	Stations int    `json:"stations"`
	Edges    int    `json:"edges"`
}

// Summarize computes Stats for g in one pass over nodes and edges.
func Summarize(g *Graph) Stats {
	st := Stats{
		Nodes:        g.Len(),
		Edges:        g.EdgeCount(),
		Stations:     g.StationCount(),
		Accesses:     g.AccessCount(),
		StationNames: g.index.Len(),
	}

	perLine := make(map[string]*LineStats, len(g.lines))
	for _, line := range g.lines {
		ls := &LineStats{Line: line}
		perLine[line] = ls
	}

	var degrees metrics.WelfordState
	for _, n := range g.nodes {
		d := g.Degree(n.id)
		degrees.Update(float64(d))

		switch n.Kind {
		case KindStation:
			perLine[n.Line].Stations++
		case KindAccess:
			if d == 0 {
				st.IsolatedAccesses++
			}
		}
	}

	for _, e := range g.Edges() {
		if e.Kind == EdgeAccess {
			st.AccessEdges++
			continue
		}
		st.LineEdges++
		perLine[e.Line].Edges++
	}

	st.Lines = make([]LineStats, 0, len(g.lines))
	for _, line := range g.lines {
		st.Lines = append(st.Lines, *perLine[line])
	}
	st.MeanDegree = degrees.Mean
	st.DegreeStdDev = degrees.StdDev()

	return st
}
