package import_pkg

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelink/internal/match"
)

const referenceCSV = `id,first,last,city,birth_year,gender
p1,Jane,Doe,Boston,1975,F
p2,John,"Smith, Jr.",Denver,1985,M
p3,Mary-Kate,O'Neil,Austin,,F
`

const queryCSV = `id,first,last,degree,degree_start,local_region
r1,Jon,Smith,BSc,1997-09-01,"Denver, Colorado"
r2,Jane,Doe,MA,,Boston Area
`

func TestReadReferences(t *testing.T) {
	records, err := NewCSVReader().ReadReferences(strings.NewReader(referenceCSV), "reference.csv")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "p1", records[0].ID)
	assert.Equal(t, "Jane Doe", records[0].Name)
	assert.Equal(t, "Boston", records[0].City)
	require.NotNil(t, records[0].BirthYear)
	assert.Equal(t, 1975, *records[0].BirthYear)
	assert.Equal(t, match.KindReference, records[0].Kind)

	assert.Equal(t, "John Smith", records[1].Name, "text after the comma is dropped")
	assert.Equal(t, "Mary-Kate ONeil", records[2].Name)
	assert.Nil(t, records[2].BirthYear)
}

func TestReadQueries(t *testing.T) {
	records, err := NewCSVReader().ReadQueries(strings.NewReader(queryCSV), "query.csv")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Jon Smith", records[0].Name)
	assert.Equal(t, "Denver", records[0].City)
	require.NotNil(t, records[0].BirthYear)
	assert.Equal(t, 1980, *records[0].BirthYear)
	assert.Equal(t, match.KindQuery, records[0].Kind)

	assert.Equal(t, "Boston Area", records[1].City)
	assert.Nil(t, records[1].BirthYear)
}

const escapedQueryCSV = `id,first,last,degree,degree_start,local_region
r1,Jon,Smith,BSc,1997,Denver
r2,Ann,O\"Neil,BA,2001,Reno
r3,Bo,Lee\, Jr,MA,1990,"Austin\, Texas"
r4,Cy,Back\\slash,BA,,Boston
`

func TestReadQueriesWithBackslashEscapes(t *testing.T) {
	records, err := NewCSVReader().ReadQueries(strings.NewReader(escapedQueryCSV), "query.csv")
	require.NoError(t, err)
	require.Len(t, records, 4, "rows after an escaped one are still read")

	assert.Equal(t, "Ann ONeil", records[1].Name)
	assert.Equal(t, "Reno", records[1].City)
	assert.Equal(t, "Bo Lee", records[2].Name, "escaped comma stays in the last name field")
	assert.Equal(t, "Austin", records[2].City)
	require.NotNil(t, records[2].BirthYear)
	assert.Equal(t, 1973, *records[2].BirthYear)
	assert.Equal(t, "r4", records[3].ID)
	assert.Equal(t, "Cy Backslash", records[3].Name)
}

func TestEscapedFieldsAreLiteral(t *testing.T) {
	var got [][]string
	err := readRows(false, strings.NewReader(escapedQueryCSV), "query.csv", DefaultQueryLayout(), func(row int, fields []string) error {
		got = append(got, fields)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, `O"Neil`, got[1][2])
	assert.Equal(t, "Lee, Jr", got[2][2])
	assert.Equal(t, "Austin, Texas", got[2][5])
	assert.Equal(t, `Back\slash`, got[3][2])
}

func TestReferenceSourceKeepsBackslashes(t *testing.T) {
	input := "id,first,last,city,birth_year,gender\np1,Ann,Back\\slash,Reno,1960,F\n"

	var got []string
	err := readRows(false, strings.NewReader(input), "reference.csv", DefaultReferenceLayout(), func(row int, fields []string) error {
		got = fields
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, `Back\slash`, got[2])
}

func TestEscapeReader(t *testing.T) {
	input := "a\\,b\\\"c\\\\d\\\ne\\xé\\"
	want := "a\uE000b\uE001c\uE002d\uE003exé\\"
	require.NoError(t, iotest.TestReader(newEscapeReader(strings.NewReader(input)), []byte(want)))
}

func TestMalformedRowKeepsEarlierRecords(t *testing.T) {
	input := referenceCSV + "p4,Too,Few,Fields\np5,Never,Read,Reno,1990,M\n"

	records, err := NewCSVReader().ReadReferences(strings.NewReader(input), "reference.csv")
	require.Error(t, err)
	assert.Len(t, records, 3)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "reference.csv", perr.Source)
	assert.Equal(t, 5, perr.Row)
	assert.Equal(t, 4, perr.Fields)
	assert.Equal(t, 6, perr.Want)
	assert.ErrorIs(t, err, ErrFieldCount)
}

func TestUnparsableYear(t *testing.T) {
	input := "id,first,last,degree,degree_start,local_region\nr1,Ann,Lee,BA,autumn,Reno\n"

	records, err := NewCSVReader().ReadQueries(strings.NewReader(input), "query.csv")
	assert.Empty(t, records)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Row)
	assert.Contains(t, err.Error(), "invalid year")
}

func TestCustomLayout(t *testing.T) {
	reader := NewCSVReader()
	reader.Reference = Layout{Fields: 5, ID: 4, First: 0, Last: 1, City: 2, Year: 3}

	records, err := reader.ReadReferences(strings.NewReader("first,last,city,year,id\nAnn,Lee,Reno,1960,x9\n"), "custom.csv")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "x9", records[0].ID)
	assert.Equal(t, "Ann Lee", records[0].Name)
	assert.Equal(t, "Reno", records[0].City)

	reader.Reference = Layout{Fields: 2, ID: 5}
	_, err = reader.ReadReferences(strings.NewReader(""), "bad-layout.csv")
	assert.Error(t, err)
}

func TestEmptyInput(t *testing.T) {
	records, err := NewCSVReader().ReadReferences(strings.NewReader(""), "empty.csv")
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "reference.csv")
	require.NoError(t, os.WriteFile(ref, []byte(referenceCSV), 0o644))

	records, err := NewCSVReader().ReadReferenceFile(ref)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = NewCSVReader().ReadQueryFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorContains(t, err, "failed to open file")
}
