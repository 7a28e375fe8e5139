package import_pkg

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/namelink/internal/debug"
)

// ErrFieldCount is wrapped by a ParseError for a row with the wrong number of fields.
var ErrFieldCount = errors.New("wrong number of fields")

// ParseError reports a malformed input row. Records read before the row are
// still returned alongside it.
type ParseError struct {
	Source string
	Row    int
	Fields int
	Want   int
	Err    error
}

func (e *ParseError) Error() string {
	if errors.Is(e.Err, ErrFieldCount) {
		return fmt.Sprintf("%s: row %d: %v: got %d, want %d", e.Source, e.Row, e.Err, e.Fields, e.Want)
	}
	return fmt.Sprintf("%s: row %d: %v", e.Source, e.Row, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Layout maps logical columns onto CSV field positions. Year holds a
// confirmed birth year for reference files and a milestone date for query
// files; City holds a city or a "City, Region" locality respectively.
// Escape treats a backslash as an escape character, so `\,` and `\"` are
// literal.
type Layout struct {
	Fields int  `yaml:"fields"`
	ID     int  `yaml:"id"`
	First  int  `yaml:"first"`
	Last   int  `yaml:"last"`
	City   int  `yaml:"city"`
	Year   int  `yaml:"year"`
	Escape bool `yaml:"escape"`
}

// DefaultReferenceLayout is id,first,last,city,birth_year,gender.
func DefaultReferenceLayout() Layout {
	return Layout{Fields: 6, ID: 0, First: 1, Last: 2, City: 3, Year: 4}
}

// DefaultQueryLayout is id,first,last,degree,degree_start,local_region.
func DefaultQueryLayout() Layout {
	return Layout{Fields: 6, ID: 0, First: 1, Last: 2, City: 5, Year: 4, Escape: true}
}

func (l Layout) validate() error {
	for _, col := range []int{l.ID, l.First, l.Last, l.City, l.Year} {
		if col < 0 || col >= l.Fields {
			return fmt.Errorf("layout column %d outside %d fields", col, l.Fields)
		}
	}
	return nil
}

// readRows feeds every data row after the header to fn. Row numbers count
// the header as row 1. Reading stops at the first malformed row.
func readRows(localDebug bool, r io.Reader, source string, layout Layout, fn func(row int, fields []string) error) error {
	want := layout.Fields
	if layout.Escape {
		r = newEscapeReader(r)
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = layout.Escape

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil
		}
		return &ParseError{Source: source, Row: 1, Err: fmt.Errorf("failed to read header: %w", err)}
	}

	row := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return &ParseError{Source: source, Row: row, Err: err}
		}
		if layout.Escape {
			unescape(fields)
		}
		if len(fields) != want {
			return &ParseError{Source: source, Row: row, Fields: len(fields), Want: want, Err: ErrFieldCount}
		}
		if err := fn(row, fields); err != nil {
			return &ParseError{Source: source, Row: row, Fields: len(fields), Want: want, Err: err}
		}

		if (row-1)%10000 == 0 {
			debug.DebugOutput(localDebug, "Read %d rows from %s...", row-1, source)
		}
	}

	debug.DebugOutput(localDebug, "Read complete: %d rows from %s", row-1, source)
	return nil
}

func openFile(filename string) (*os.File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filename, err)
	}
	return file, nil
}

func field(fields []string, i int) string {
	return strings.TrimSpace(fields[i])
}
