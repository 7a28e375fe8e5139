package import_pkg

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/namelink/internal/match"
)

// ReadWordList reads one word per line. Blank lines are skipped.
func ReadWordList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return words, fmt.Errorf("failed to read word list: %w", err)
	}
	return words, nil
}

// ReadWordListFile opens filename and reads a word list from it
func ReadWordListFile(filename string) ([]string, error) {
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadWordList(file)
}

// ReadWordPairs reads correct,misspelling rows. There is no header.
func ReadWordPairs(r io.Reader, source string) ([]match.WordPair, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var pairs []match.WordPair
	row := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return pairs, &ParseError{Source: source, Row: row, Err: err}
		}
		if len(fields) != 2 {
			return pairs, &ParseError{Source: source, Row: row, Fields: len(fields), Want: 2, Err: ErrFieldCount}
		}
		pairs = append(pairs, match.WordPair{
			Correct:     strings.TrimSpace(fields[0]),
			Misspelling: strings.TrimSpace(fields[1]),
		})
	}
	return pairs, nil
}

// ReadWordPairsFile opens filename and reads word pairs from it
func ReadWordPairsFile(filename string) ([]match.WordPair, error) {
	file, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadWordPairs(file, filename)
}
