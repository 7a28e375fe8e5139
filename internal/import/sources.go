package import_pkg

import (
	"io"

	"github.com/namelink/internal/match"
	"github.com/namelink/internal/normalize"
)

// CSVReader loads reference and query records from CSV files
type CSVReader struct {
	Reference       Layout
	Query           Layout
	BirthYearOffset int
	Debug           bool
}

// NewCSVReader creates a reader with the default column layouts
func NewCSVReader() *CSVReader {
	return &CSVReader{
		Reference:       DefaultReferenceLayout(),
		Query:           DefaultQueryLayout(),
		BirthYearOffset: normalize.DefaultBirthYearOffset,
	}
}

// ReadReferences parses reference records. The birth year column must be
// empty or a year.
func (cr *CSVReader) ReadReferences(r io.Reader, source string) ([]match.Record, error) {
	layout := cr.Reference
	if err := layout.validate(); err != nil {
		return nil, err
	}

	var records []match.Record
	err := readRows(cr.Debug, r, source, layout, func(row int, fields []string) error {
		birth, err := normalize.ParseYear(fields[layout.Year])
		if err != nil {
			return err
		}
		records = append(records, match.Record{
			ID:        field(fields, layout.ID),
			Name:      normalize.CanonicalName(fields[layout.First], fields[layout.Last]),
			City:      field(fields, layout.City),
			BirthYear: birth,
			Kind:      match.KindReference,
		})
		return nil
	})
	return records, err
}

// ReadQueries parses query records. The city is taken from the locality
// before its first comma and the birth year is estimated from the
// milestone date.
func (cr *CSVReader) ReadQueries(r io.Reader, source string) ([]match.Record, error) {
	layout := cr.Query
	if err := layout.validate(); err != nil {
		return nil, err
	}

	var records []match.Record
	err := readRows(cr.Debug, r, source, layout, func(row int, fields []string) error {
		birth, err := normalize.EstimateBirthYear(fields[layout.Year], cr.BirthYearOffset)
		if err != nil {
			return err
		}
		records = append(records, match.Record{
			ID:        field(fields, layout.ID),
			Name:      normalize.CanonicalName(fields[layout.First], fields[layout.Last]),
			City:      normalize.RegionCity(fields[layout.City]),
			BirthYear: birth,
			Kind:      match.KindQuery,
		})
		return nil
	})
	return records, err
}

// ReadReferenceFile opens filename and reads reference records from it
func (cr *CSVReader) ReadReferenceFile(filename string) ([]match.Record, error) {
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return cr.ReadReferences(file, filename)
}

// ReadQueryFile opens filename and reads query records from it
func (cr *CSVReader) ReadQueryFile(filename string) ([]match.Record, error) {
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return cr.ReadQueries(file, filename)
}
