package nametrie

// Fold case-folds and normalizes a rune the way spec §4.3 requires:
// ASCII and Latin-1-supplement uppercase letters (except the multiplication
// sign ×, which is not a letter) fold to lowercase by OR-ing 0x20; the
// corresponding Latin-Extended-A "Ā.."/"Š.." ranges are even/odd pairs and
// fold by OR-ing 0x01.
func Fold(r rune) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		return r | 0x20
	case r >= 0x00C0 && r <= 0x00DE && r != 0x00D7: // À..Þ except ×
		return r | 0x20
	case r >= 0x0100 && r <= 0x017F && r%2 == 0: // Ā.. / Š.. pairs
		return r | 0x01
	default:
		return r
	}
}

// combining marks collapsed into their precomposed Latin-1 form (spec §4.3).
const (
	combAcute    = 0x0301
	combDiaeresis = 0x0308
	combRingAbove = 0x030A
)

// precomposed maps (base rune, combining mark) to the precomposed rune for
// the Swedish letters this system cares about.
var precomposed = map[[2]rune]rune{
	{'a', combRingAbove}: 'å',
	{'a', combDiaeresis}: 'ä',
	{'o', combDiaeresis}: 'ö',
	{'e', combAcute}:     'é',
	{'u', combDiaeresis}: 'ü',
	{'A', combRingAbove}: 'å',
	{'A', combDiaeresis}: 'ä',
	{'O', combDiaeresis}: 'ö',
	{'E', combAcute}:     'é',
	{'U', combDiaeresis}: 'ü',
}

// NormalizeAndFold composes base-letter + combining-mark sequences into
// their precomposed form, then case-folds every rune, returning the resulting
// rune slice (spec §4.3).
func NormalizeAndFold(s string) []rune {
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if i+1 < len(runes) {
			if composed, ok := precomposed[[2]rune{r, runes[i+1]}]; ok {
				out = append(out, Fold(composed))
				i++
				continue
			}
		}
		out = append(out, Fold(r))
	}
	return out
}
