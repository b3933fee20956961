package metro

import (
	"fmt"
	"log"
	"sort"
)

// UnresolvedPolicy selects what happens when an access names an unknown station
type UnresolvedPolicy int

const (
	// FailFast aborts the build with an *UnresolvedReferenceError
	FailFast UnresolvedPolicy = iota
	// SkipUnresolved keeps the access node without station edges and logs a warning
	SkipUnresolved
)

// ParseUnresolvedPolicy maps "fail" / "skip" to a policy
func ParseUnresolvedPolicy(s string) (UnresolvedPolicy, error) {
	switch s {
	case "fail", "":
		return FailFast, nil
	case "skip":
		return SkipUnresolved, nil
	}
	return FailFast, fmt.Errorf("unknown unresolved policy %q", s)
}

// AdjacencyMode selects how line-adjacency edges are derived
type AdjacencyMode int

const (
	// LoadOrder links consecutive rows that share a line. The station file must
	// already be sorted by line and order.
	LoadOrder AdjacencyMode = iota
	// StationOrder groups stations by line and links them in Order sequence,
	// regardless of row layout.
	StationOrder
)

// ParseAdjacencyMode maps "load_order" / "station_order" to a mode
func ParseAdjacencyMode(s string) (AdjacencyMode, error) {
	switch s {
	case "load_order", "":
		return LoadOrder, nil
	case "station_order":
		return StationOrder, nil
	}
	return LoadOrder, fmt.Errorf("unknown adjacency mode %q", s)
}

// Options tune a single Build call. The zero value is fail-fast, load-order.
type Options struct {
	OnUnresolved UnresolvedPolicy
	Adjacency    AdjacencyMode
}

type buildState int

const (
	stateUninitialized buildState = iota
	stateStationsLoaded
	stateComplete
	stateFailed
)

// builder owns the graph and identity index for exactly one Build call
type builder struct {
	opts  Options
	state buildState
	index *Index
	graph *Graph
}

// Build assembles the metro graph from station and access records.
//
// Station i becomes node i. Access j becomes node len(stations)+j with key
// AccessKey(name, j). Consecutive stations on the same line are linked, and every
// access is linked to all stations sharing its station name. On error no graph is
// returned.
func Build(stations []Station, accesses []Access, opts Options) (*Graph, error) {
	b := &builder{
		opts:  opts,
		index: NewIndex(),
		graph: newGraph(len(stations) + len(accesses)),
	}
	b.graph.index = b.index

	b.addStations(stations)

	if err := b.addAccesses(accesses); err != nil {
		b.state = stateFailed
		return nil, err
	}

	b.state = stateComplete
	return b.graph, nil
}

func (b *builder) addStations(stations []Station) {
	if b.state != stateUninitialized {
		panic("metro: stations already loaded")
	}

	seenLine := make(map[string]bool)
	for i, s := range stations {
		b.graph.addNode(&Node{
			Kind:        KindStation,
			Index:       i,
			Name:        s.Name,
			StationName: s.Name,
			Line:        s.Line,
			Order:       s.Order,
			Position:    s.Position,
			Color:       s.Color,
		})
		b.index.Record(s.Name, int64(i))

		if !seenLine[s.Line] {
			seenLine[s.Line] = true
			b.graph.lines = append(b.graph.lines, s.Line)
		}

		// Crossing from the last stop of one line to the first of the next
		// must not produce an edge.
		if b.opts.Adjacency == LoadOrder && i > 0 && stations[i-1].Line == s.Line {
			b.graph.setEdge(int64(i-1), int64(i), EdgeLine, s.Line)
		}
	}

	if b.opts.Adjacency == StationOrder {
		b.linkByStationOrder(stations)
	}

	b.index.Seal()
	b.state = stateStationsLoaded
}

func (b *builder) linkByStationOrder(stations []Station) {
	members := make(map[string][]int)
	for i, s := range stations {
		members[s.Line] = append(members[s.Line], i)
	}

	for _, line := range b.graph.lines {
		idx := members[line]
		sort.SliceStable(idx, func(a, c int) bool {
			return stations[idx[a]].Order < stations[idx[c]].Order
		})
		for k := 1; k < len(idx); k++ {
			b.graph.setEdge(int64(idx[k-1]), int64(idx[k]), EdgeLine, line)
		}
	}
}

func (b *builder) addAccesses(accesses []Access) error {
	if b.state != stateStationsLoaded {
		panic("metro: accesses added before stations were loaded")
	}

	base := len(b.graph.nodes)
	for j, a := range accesses {
		b.graph.addNode(&Node{
			Kind:          KindAccess,
			Index:         j,
			Name:          a.Name,
			StationName:   a.StationName,
			Line:          a.Line,
			Accessibility: a.Accessibility,
			Position:      a.Position,
			Color:         a.Color,
		})
		id := int64(base + j)

		targets, err := b.index.Lookup(a.StationName)
		if err != nil {
			unresolved := UnresolvedReferenceError{Access: a.Name, AccessIndex: j, Station: a.StationName}
			if b.opts.OnUnresolved == FailFast {
				return &unresolved
			}
			log.Printf("Builder: warning: %v, access kept without edges", &unresolved)
			b.graph.unresolved = append(b.graph.unresolved, unresolved)
			continue
		}

		for _, t := range targets {
			b.graph.setEdge(t, id, EdgeAccess, "")
		}
	}

	return nil
}
