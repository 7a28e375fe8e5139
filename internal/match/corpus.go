package match

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrEmptyCorpus is returned when no reference record has a usable name.
	ErrEmptyCorpus = errors.New("corpus has no named records")
	// ErrUnsortedCorpus is returned when a supplied name list is not sorted.
	ErrUnsortedCorpus = errors.New("corpus names are not sorted")
)

// Corpus is the sorted reference name list with the records behind each name.
// It is read-only once built.
type Corpus struct {
	names   []string
	records map[string][]Record
	size    int
}

// NewCorpus groups reference records by canonical name and sorts the names.
// Records with an empty name cannot be reached by any query and are skipped.
func NewCorpus(records []Record) (*Corpus, error) {
	c := &Corpus{records: make(map[string][]Record)}
	for _, r := range records {
		if r.Name == "" {
			continue
		}
		r.Kind = KindReference
		if _, ok := c.records[r.Name]; !ok {
			c.names = append(c.names, r.Name)
		}
		c.records[r.Name] = append(c.records[r.Name], r)
		c.size++
	}
	if len(c.names) == 0 {
		return nil, ErrEmptyCorpus
	}
	sort.Strings(c.names)
	return c, nil
}

// Validate checks the sortedness and distinctness invariants.
func (c *Corpus) Validate() error {
	for i := 1; i < len(c.names); i++ {
		if c.names[i-1] >= c.names[i] {
			return fmt.Errorf("%w: %q before %q at %d", ErrUnsortedCorpus, c.names[i-1], c.names[i], i)
		}
	}
	return nil
}

// Names returns the sorted distinct names. Callers must not modify the slice.
func (c *Corpus) Names() []string {
	return c.names
}

// Records returns the reference records sharing name, in load order.
func (c *Corpus) Records(name string) []Record {
	return c.records[name]
}

// Has reports whether name is an exact key of the corpus.
func (c *Corpus) Has(name string) bool {
	_, ok := c.records[name]
	return ok
}

// Len returns the number of distinct names.
func (c *Corpus) Len() int {
	return len(c.names)
}

// Size returns the number of reference records.
func (c *Corpus) Size() int {
	return c.size
}
