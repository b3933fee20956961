package record

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
	"github.com/mini-rodalies-3d/metrograph/internal/source"
)

// Column names of the TMB open data exports
const (
	colStationName   = "NOM_ESTACIO"
	colLineName      = "NOM_LINIA"
	colStationOrder  = "ORDRE_ESTACIO"
	colGeometry      = "GEOMETRY"
	colAccessName    = "NOM_ACCES"
	colAccessibility = "NOM_TIPUS_ACCESSIBILITAT"
)

var (
	stationColumns = []string{colStationName, colLineName, colStationOrder, colGeometry}
	accessColumns  = []string{colAccessName, colStationName, colLineName, colAccessibility, colGeometry}
)

// ErrDataFormat is matched by every *DataFormatError
var ErrDataFormat = errors.New("malformed record")

var errMissingColumn = errors.New("missing column")

// DataFormatError reports a field that could not be parsed. Row is the 1-based data
// row; row 0 is the header.
type DataFormatError struct {
	File   string
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *DataFormatError) Error() string {
	var sb strings.Builder
	if e.File != "" {
		sb.WriteString(e.File)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "row %d", e.Row)
	if e.Column != "" {
		fmt.Fprintf(&sb, ", column %s", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&sb, ", value %q", e.Value)
	}
	fmt.Fprintf(&sb, ": %v", e.Err)
	return sb.String()
}

func (e *DataFormatError) Unwrap() []error {
	return []error{ErrDataFormat, e.Err}
}

// LoadStations reads estacions_linia.csv from path.
func LoadStations(path string, color metro.Colorer) ([]metro.Station, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &source.ResourceError{Location: path, Err: err}
	}
	defer f.Close()

	stations, err := ReadStations(f, color)
	if err != nil {
		return nil, withFile(err, path)
	}
	log.Printf("Records: loaded %d stations from %s", len(stations), path)
	return stations, nil
}

// LoadAccesses reads accessos_estacio_linia.csv from path.
func LoadAccesses(path string) ([]metro.Access, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &source.ResourceError{Location: path, Err: err}
	}
	defer f.Close()

	accesses, err := ReadAccesses(f)
	if err != nil {
		return nil, withFile(err, path)
	}
	log.Printf("Records: loaded %d accesses from %s", len(accesses), path)
	return accesses, nil
}

// ReadStations parses station records in row order. color is consulted once per
// row with the 0-based row index and the row's line.
func ReadStations(r io.Reader, color metro.Colorer) ([]metro.Station, error) {
	var stations []metro.Station

	err := readRows(r, stationColumns, func(row int, get func(string) string) error {
		orderText := get(colStationOrder)
		order, err := strconv.Atoi(orderText)
		if err != nil {
			return &DataFormatError{Row: row, Column: colStationOrder, Value: orderText, Err: err}
		}

		pos, err := parsePointField(row, get(colGeometry))
		if err != nil {
			return err
		}

		i := len(stations)
		line := get(colLineName)
		stations = append(stations, metro.Station{
			Name:     get(colStationName),
			Line:     line,
			Order:    order,
			Position: pos,
			Color:    color(i, line),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stations, nil
}

// ReadAccesses parses access records in row order.
func ReadAccesses(r io.Reader) ([]metro.Access, error) {
	var accesses []metro.Access

	err := readRows(r, accessColumns, func(row int, get func(string) string) error {
		pos, err := parsePointField(row, get(colGeometry))
		if err != nil {
			return err
		}

		accesses = append(accesses, metro.Access{
			Name:          get(colAccessName),
			StationName:   get(colStationName),
			Line:          get(colLineName),
			Accessibility: get(colAccessibility),
			Position:      pos,
			Color:         metro.AccessColor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return accesses, nil
}

// readRows validates the header against required and calls fn for each data row.
func readRows(r io.Reader, required []string, fn func(row int, get func(string) string) error) error {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return &DataFormatError{Row: 0, Err: errors.New("empty file")}
	}
	if err != nil {
		return &DataFormatError{Row: 0, Err: err}
	}

	idx := makeIndex(header)
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return &DataFormatError{Row: 0, Column: col, Err: errMissingColumn}
		}
	}

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &DataFormatError{Row: row, Err: err}
		}

		get := func(field string) string { return getField(record, idx, field) }
		if err := fn(row, get); err != nil {
			return err
		}
	}
}

func parsePointField(row int, text string) (metro.Position, error) {
	p, err := ParsePoint(text)
	if err != nil {
		return metro.Position{}, &DataFormatError{Row: row, Column: colGeometry, Value: text, Err: err}
	}
	return p, nil
}

// ParsePoint parses "POINT (x y)" / "POINT(x y)" into a position.
func ParsePoint(text string) (metro.Position, error) {
	s := strings.TrimSpace(text)
	if len(s) < len("POINT") || !strings.EqualFold(s[:len("POINT")], "POINT") {
		return metro.Position{}, errors.New("not a POINT")
	}

	body := strings.TrimSpace(s[len("POINT"):])
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return metro.Position{}, errors.New("POINT without coordinates")
	}
	coords := strings.Fields(body[1 : len(body)-1])
	if len(coords) != 2 {
		return metro.Position{}, fmt.Errorf("expected 2 coordinates, got %d", len(coords))
	}

	p, err := wkt.UnmarshalPoint("POINT(" + coords[0] + " " + coords[1] + ")")
	if err != nil {
		return metro.Position{}, err
	}
	if math.IsNaN(p.X()) || math.IsNaN(p.Y()) || math.IsInf(p.X(), 0) || math.IsInf(p.Y(), 0) {
		return metro.Position{}, errors.New("non-finite coordinate")
	}
	return p, nil
}

func makeIndex(header []string) map[string]int {
	idx := make(map[string]int)
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func getField(record []string, idx map[string]int, field string) string {
	if i, ok := idx[field]; ok && i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}

func withFile(err error, path string) error {
	var dfe *DataFormatError
	if errors.As(err, &dfe) {
		dfe.File = path
		return dfe
	}
	return err
}
