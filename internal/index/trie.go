// Package index implements the prefix index used to seed candidate blocks.
//
// The index is a character trie over a lexicographically sorted name list.
// Every node remembers the first list position that passed through it, so a
// lookup answers "where in the sorted list do strings sharing this prefix
// start", not "is this word present". Membership is available separately via
// Contains but is not needed for blocking.
//
// Nodes live in a flat slice addressed by id. After construction the index is
// never mutated and can be shared by any number of concurrent readers.
package index

import (
	"strings"
	"unicode"
)

type nodeID int32

const rootID nodeID = 0

// node is a single trie vertex. pos is assigned once, when the node is
// created, and is never written again.
type node struct {
	char     rune
	children map[rune]nodeID
	pos      int
	hasPos   bool
	terminal bool
}

// PrefixIndex maps name prefixes to approximate sorted-order positions.
type PrefixIndex struct {
	nodes []node
	words int
}

// New creates an empty index holding only the root node.
func New() *PrefixIndex {
	return &PrefixIndex{
		nodes: []node{{children: make(map[rune]nodeID)}},
	}
}

// Build creates an index from a sorted word list, using each word's slice
// index as its position.
func Build(words []string) *PrefixIndex {
	idx := New()
	for i, w := range words {
		idx.Add(w, i)
	}
	return idx
}

// Add inserts word with the given position. Nodes created along the way take
// position as their approximate position; nodes that already exist keep the
// position they were created with.
func (p *PrefixIndex) Add(word string, position int) {
	word = stripSpace(word)
	if word == "" {
		return
	}

	cur := rootID
	for _, ch := range word {
		next, ok := p.nodes[cur].children[ch]
		if !ok {
			next = nodeID(len(p.nodes))
			p.nodes = append(p.nodes, node{
				char:     ch,
				children: make(map[rune]nodeID),
				pos:      position,
				hasPos:   true,
			})
			p.nodes[cur].children[ch] = next
		}
		cur = next
	}

	if !p.nodes[cur].terminal {
		p.words++
	}
	p.nodes[cur].terminal = true
}

// Find walks prefix through the trie and returns the position recorded at the
// deepest matched node. The walk stops at the first character with no
// matching child. ok is false when the index is empty or when not even the
// first character matched.
func (p *PrefixIndex) Find(prefix string) (position int, ok bool) {
	if len(p.nodes[rootID].children) == 0 {
		return 0, false
	}

	cur := rootID
	for _, ch := range stripSpace(prefix) {
		next, found := p.nodes[cur].children[ch]
		if !found {
			break
		}
		cur = next
	}

	n := p.nodes[cur]
	return n.pos, n.hasPos
}

// Path returns the characters of the nodes visited by Find for prefix.
func (p *PrefixIndex) Path(prefix string) string {
	var b strings.Builder
	cur := rootID
	for _, ch := range stripSpace(prefix) {
		next, found := p.nodes[cur].children[ch]
		if !found {
			break
		}
		b.WriteRune(p.nodes[next].char)
		cur = next
	}
	return b.String()
}

// Contains reports whether word was added as a complete entry.
func (p *PrefixIndex) Contains(word string) bool {
	word = stripSpace(word)
	if word == "" {
		return false
	}

	cur := rootID
	for _, ch := range word {
		next, found := p.nodes[cur].children[ch]
		if !found {
			return false
		}
		cur = next
	}
	return p.nodes[cur].terminal
}

// Len returns the number of distinct words in the index.
func (p *PrefixIndex) Len() int {
	return p.words
}

// NodeCount returns the number of nodes, root included.
func (p *PrefixIndex) NodeCount() int {
	return len(p.nodes)
}

// stripSpace removes every whitespace character, including internal ones.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
