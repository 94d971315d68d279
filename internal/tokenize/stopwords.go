package tokenize

import (
	"bufio"
	"os"
	"sort"
)

// Stopwords is a sorted word list loaded from a plain-text file, one word
// per line, blank lines and `#`-comments skipped (spec §4.8, grounded on
// original_source/tokenizer.cpp's load_stopwords/is_stopword).
type Stopwords struct {
	sorted []string
}

// LoadStopwords reads path and returns a Stopwords ready for lookup. The
// file need not already be sorted; LoadStopwords sorts on load so
// Contains can binary-search, mirroring the original's documented
// requirement ("has to be sorted with LC_ALL=C sort -u") without making
// callers responsible for pre-sorting the file themselves.
func LoadStopwords(path string) (*Stopwords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Strings(words)
	return &Stopwords{sorted: words}, nil
}

// Contains reports whether word is a stopword.
func (s *Stopwords) Contains(word string) bool {
	if s == nil {
		return false
	}
	i := sort.SearchStrings(s.sorted, word)
	return i < len(s.sorted) && s.sorted[i] == word
}
