package metro

import (
	"slices"
	"sort"
)

// Index maps a station name to the ids of every station node sharing that name,
// one per line serving the station. Ids keep insertion order.
//
// An Index belongs to a single build: it is filled while station nodes are inserted,
// sealed, and only read afterwards.
type Index struct {
	ids    map[string][]int64
	sealed bool
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{ids: make(map[string][]int64)}
}

// Record adds id to the set of nodes named name.
func (x *Index) Record(name string, id int64) {
	if x.sealed {
		panic("metro: Record called on sealed index")
	}
	x.ids[name] = append(x.ids[name], id)
}

// Seal freezes the index; further Record calls panic.
func (x *Index) Seal() {
	x.sealed = true
}

// Lookup returns the ids recorded under name, in insertion order. A name that was
// never recorded yields an *UnresolvedReferenceError.
func (x *Index) Lookup(name string) ([]int64, error) {
	ids, ok := x.ids[name]
	if !ok {
		return nil, &UnresolvedReferenceError{Station: name}
	}
	return slices.Clone(ids), nil
}

// Len returns the number of distinct names
func (x *Index) Len() int {
	return len(x.ids)
}

// Names returns the recorded names sorted alphabetically
func (x *Index) Names() []string {
	names := make([]string, 0, len(x.ids))
	for name := range x.ids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
