package match

import (
	"github.com/namelink/internal/debug"
	"github.com/namelink/internal/index"
)

// Block half-widths. The wide window is used for name resolution, the
// narrow one for diagnostic word lookup.
const (
	ResolutionWindow = 100
	LookupWindow     = 50
)

// Window returns names[max(0,p-width) : min(len,p+width)]. Without a
// position the window is empty: a query whose first character is unknown to
// the index gets no candidates at all.
func Window(names []string, position int, ok bool, width int) []string {
	if !ok || width <= 0 || len(names) == 0 {
		return nil
	}
	lo := position - width
	if lo < 0 {
		lo = 0
	}
	hi := position + width
	if hi > len(names) {
		hi = len(names)
	}
	if lo >= hi {
		return nil
	}
	return names[lo:hi]
}

// Generator turns a query name into a bounded block of corpus names
type Generator struct {
	index *index.PrefixIndex
	names []string
	width int
}

// NewGenerator creates a block generator over a sorted name list and its index
func NewGenerator(idx *index.PrefixIndex, names []string, width int) *Generator {
	return &Generator{index: idx, names: names, width: width}
}

// Block returns the candidate window for query.
func (g *Generator) Block(localDebug bool, query string) []string {
	pos, ok := g.index.Find(query)
	block := Window(g.names, pos, ok, g.width)
	debug.DebugOutput(localDebug, "Block for %q: position=%d found=%v size=%d", query, pos, ok, len(block))
	return block
}

// Width returns the block half-width.
func (g *Generator) Width() int {
	return g.width
}
