// Package tokenize implements query-text tokenization and n-gram/
// morphological-variant generation (spec §4.8, C9), grounded on
// original_source/tokenizer.cpp's tokenize_input and
// generate_word_combinations.
package tokenize

import (
	"strings"

	"github.com/thomasfischer-his/pbflookup-sub000/internal/nametrie"
)

// gapChars is the character set that splits words apart (spec §4.8).
const gapChars = " ?!\"'#%*&()=,;._\n\r\t/"

func isGap(r rune) bool {
	return strings.ContainsRune(gapChars, r)
}

// isExcludedSingleChar reports whether a single-character ASCII rune falls
// in one of the printable-punctuation ranges the original tokenizer drops
// (spec §4.8: "discard single-character ASCII tokens that are not
// letter/digit"), grounded on tokenizer.cpp's exact four byte ranges.
func isExcludedSingleChar(r rune) bool {
	return (r >= 0x21 && r <= 0x2f) ||
		(r >= 0x3a && r <= 0x40) ||
		(r >= 0x5b && r <= 0x60) ||
		(r >= 0x7b && r <= 0x7e)
}

// Tokenize splits text into folded words, dropping gap characters,
// excluded single-character punctuation, and stopwords (spec §4.8). When
// unique is true, duplicate words after the first occurrence are dropped
// (tokenizer.cpp's Multiplicity::Unique); otherwise every occurrence is
// kept.
//
// Unlike the original's manual byte-by-byte UTF-8 state machine, this
// walks Go's native rune iteration, which already treats a multi-byte
// sequence as one rune; the gap set only ever matches single-byte
// characters, so the original's "never split a two-byte sequence" rule
// falls out for free here.
func Tokenize(text string, stopwords *Stopwords, unique bool) []string {
	folded := foldString(text)

	var words []string
	seen := make(map[string]bool)

	var current strings.Builder
	flush := func() {
		if current.Len() == 0 {
			return
		}
		word := current.String()
		current.Reset()

		runes := []rune(word)
		if len(runes) == 1 && isExcludedSingleChar(runes[0]) {
			return
		}
		if stopwords.Contains(word) {
			return
		}
		if unique {
			if seen[word] {
				return
			}
			seen[word] = true
		}
		words = append(words, word)
	}

	for _, r := range folded {
		if isGap(r) {
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()

	return words
}

func foldString(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range nametrie.NormalizeAndFold(s) {
		b.WriteRune(r)
	}
	return b.String()
}

// meaninglessAlone is the hand-curated set of words that are common
// components of valid names but cause too many false hits when matched
// alone (spec §4.8), transcribed verbatim from
// original_source/tokenizer.cpp's blacklistedSingleWords.
var meaninglessAlone = map[string]bool{
	"ny": true, "nya": true, "nytt": true, "gammal": true, "gamla": true, "gammalt": true,
	"västra": true, "östra": true, "norra": true, "södra": true,
	"väster": true, "öster": true, "norr": true, "söder": true,
	"inre": true, "yttre": true,
	"lilla": true, "stora": true,
	"nästa": true, "förre": true,
	"vita": true, "gröna": true, "röda": true, "blåa": true, "svarta": true,
	"pappa": true, "mamma": true, "son": true, "dotter": true,
	"bil": true, "bo": true, "bron": true, "bruk": true, "både": true, "by": true,
	"center": true, "centrala": true, "centrum": true, "city": true,
	"dahl": true, "daglig": true,
	"gård": true, "göta": true,
	"hamn": true, "halv": true, "hitta": true, "hos": true, "hus": true, "höjd": true,
	"kl": true, "km": true, "kommun": true, "kyrka": true,
	"län": true,
	"män": true,
	"nära": true,
	"plats": true, "platsen": true, "pris": true,
	"region": true, "regionens": true, "runt": true, "rör": true,
	"sankt": true, "s:t": true, "ser": true, "slott": true, "spår": true, "stad": true,
	"staden": true, "station": true, "svea": true, "sverige": true, "såg": true,
	"tf": true, "tid": true, "tillfällig": true, "torg": true, "torget": true,
	"vi": true, "via": true, "väg": true, "vägen": true,
	"år": true,
	"ö": true, "ön": true,
}

// noSingleLetterTrim forbids the single-letter morphological trim for
// words where it would produce nonsense (spec §4.8), verbatim from
// tokenizer.cpp's words_with_double_letter_endings.
var noSingleLetterTrim = map[string]bool{
	"året": true, "åren": true,
}

// morphologicalVariants returns word plus its generated alternates (spec
// §4.8). The byte length threshold (not rune count) matches the original's
// `len() > 4` check on a UTF-8-encoded std::string.
func morphologicalVariants(word string) []string {
	variants := []string{word}
	if len(word) <= 4 {
		return variants
	}

	runes := []rune(word)
	n := len(runes)
	last := runes[n-1]
	secondLast := runes[n-2]

	if (last == 't' || last == 'n') && (secondLast == 'a' || secondLast == 'e') {
		if !noSingleLetterTrim[word] {
			variants = append(variants, string(runes[:n-1]))
		}
		variants = append(variants, string(runes[:n-2]))
	} else if last == 's' {
		variants = append(variants, string(runes[:n-1]))
	}

	return variants
}

// isFreestandingNumber reports whether word consists entirely of ASCII
// digits.
func isFreestandingNumber(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isSingleLowercaseLetter reports whether word is a single Swedish a-z
// letter, excluded from word-combination generation entirely because it
// can never be a valid Swedish sentence fragment on its own (spec §4.8,
// tokenizer.cpp's `word[1]=='\0' && word[0]>='a'&&word[0]<='z'` check).
func isSingleLowercaseLetter(word string) bool {
	runes := []rune(word)
	return len(runes) == 1 && runes[0] >= 'a' && runes[0] <= 'z'
}

// GenerateCombinations builds every sliding window of length s in
// [minLen,maxLen] over tokens, joined with single spaces, with
// morphological variants generated for the window's last word only
// (spec §4.8). The result is deduplicated; length-1 windows whose sole
// token is in meaninglessAlone are excluded.
func GenerateCombinations(tokens []string, maxLen, minLen int) []string {
	filtered := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if isSingleLowercaseLetter(t) || isFreestandingNumber(t) {
			continue
		}
		filtered = append(filtered, t)
	}
	if len(filtered) == 0 {
		return nil
	}

	alternatives := make([][]string, len(filtered))
	for i, t := range filtered {
		alternatives[i] = morphologicalVariants(t)
	}

	if maxLen > len(filtered) {
		maxLen = len(filtered)
	}
	if maxLen < 1 {
		maxLen = 1
	}
	if minLen < 1 {
		minLen = 1
	}

	seen := make(map[string]bool)
	var out []string

	for s := maxLen; s >= minLen; s-- {
		for i := 0; i+s <= len(filtered); i++ {
			var prefix strings.Builder
			for k := 0; k < s-1; k++ {
				prefix.WriteString(alternatives[i+k][0])
				prefix.WriteByte(' ')
			}
			prefixStr := prefix.String()

			for _, lastAlt := range alternatives[i+s-1] {
				if s == 1 && meaninglessAlone[lastAlt] {
					continue
				}
				combo := prefixStr + lastAlt
				if seen[combo] {
					continue
				}
				seen[combo] = true
				out = append(out, combo)
			}
		}
	}

	return out
}
