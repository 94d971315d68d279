// Package nametrie implements the 48-way name trie (spec §4.3, C4): a
// case-folded character-code trie mapping a name (or name suffix window)
// to the list of OSM elements that carry it.
package nametrie

import (
	"strings"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/model"
)

// alphabetSize is the fixed branching factor: codes 0..47 (0 unused).
const alphabetSize = 48

// CharCode maps a folded rune to its trie alphabet code (spec §4.3).
func CharCode(r rune) int {
	switch {
	case r >= 'a' && r <= 'z':
		return 1 + int(r-'a')
	case r >= '0' && r <= '9':
		return 27 + int(r-'0')
	case r == 'å':
		return 37
	case r == 'ä':
		return 38
	case r == 'ö':
		return 39
	case r == 'é':
		return 40
	case r == 'ü':
		return 41
	case r == 'ø':
		return 42
	case r == '-':
		return 45
	case r == ' ':
		return 46
	default:
		return 47
	}
}

type node struct {
	children [alphabetSize]*node
	elements []model.OSMElement
}

// Trie is the name-prefix search structure. Zero value is not usable; use
// New.
type Trie struct {
	root *node
}

// New creates an empty Trie.
func New() *Trie {
	return &Trie{root: &node{}}
}

func codesOf(s string) []int {
	folded := NormalizeAndFold(s)
	codes := make([]int, len(folded))
	for i, r := range folded {
		codes[i] = CharCode(r)
	}
	return codes
}

// Insert tokenizes name on whitespace and, for each suffix window of the
// token list whose length is >= max(1, n-2) (n = total token count), joins
// the window with single spaces and inserts it as a key mapping to element.
// Duplicate (Kind,ID) within the same leaf's element list is never added
// twice (spec §4.3, invariant in spec §3).
func (t *Trie) Insert(name string, element model.OSMElement) {
	tokens := strings.Fields(name)
	n := len(tokens)
	if n == 0 {
		return
	}
	minLen := n - 2
	if minLen < 1 {
		minLen = 1
	}
	for length := minLen; length <= n; length++ {
		window := strings.Join(tokens[n-length:], " ")
		t.insertKey(window, element)
	}
}

func (t *Trie) insertKey(key string, element model.OSMElement) {
	cur := t.root
	for _, code := range codesOf(key) {
		if cur.children[code] == nil {
			cur.children[code] = &node{}
		}
		cur = cur.children[code]
	}
	for _, existing := range cur.elements {
		if existing.Equal(element) {
			return
		}
	}
	cur.elements = append(cur.elements, element)
}

// Retrieve returns the elements stored under nameQuery, or an empty slice
// if any prefix of the folded query has no matching child (spec §4.3).
func (t *Trie) Retrieve(nameQuery string) []model.OSMElement {
	cur := t.root
	for _, code := range codesOf(nameQuery) {
		cur = cur.children[code]
		if cur == nil {
			return nil
		}
	}
	return cur.elements
}
