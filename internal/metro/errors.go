package metro

import (
	"errors"
	"fmt"
)

// ErrUnresolvedReference is matched by every *UnresolvedReferenceError
var ErrUnresolvedReference = errors.New("unresolved station reference")

// UnresolvedReferenceError reports an access whose station name matches no station
// record. This is a data-consistency fault between the two datasets.
type UnresolvedReferenceError struct {
	Access      string
	AccessIndex int
	Station     string
}

func (e *UnresolvedReferenceError) Error() string {
	if e.Access == "" {
		return fmt.Sprintf("station %q not found in station dataset", e.Station)
	}
	return fmt.Sprintf("access %q (row %d) references station %q not found in station dataset",
		e.Access, e.AccessIndex, e.Station)
}

func (e *UnresolvedReferenceError) Unwrap() error {
	return ErrUnresolvedReference
}
