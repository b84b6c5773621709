package search

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizer folds text into the form used for comparison. Not safe for concurrent use.
type normalizer struct {
	strip transform.Transformer
	fold  cases.Caser
}

func newNormalizer() *normalizer {
	return &normalizer{
		strip: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		fold:  cases.Fold(),
	}
}

// normalize returns s with marks stripped, case folded and whitespace collapsed,
// split into one element per rune.
func (n *normalizer) normalize(s string) []string {
	stripped, _, err := transform.String(n.strip, s)
	if err != nil {
		stripped = s
	}
	folded := strings.Join(strings.Fields(n.fold.String(stripped)), " ")

	out := make([]string, 0, len(folded))
	for _, r := range folded {
		out = append(out, string(r))
	}
	return out
}

// Similarity returns the normalized Ratcliff/Obershelp ratio of a and b in [0,1].
func Similarity(a, b string) float64 {
	n := newNormalizer()
	return ratio(n.normalize(a), n.normalize(b))
}

func ratio(a, b []string) float64 {
	if len(a)+len(b) == 0 {
		return 1
	}
	return difflib.NewMatcher(a, b).Ratio()
}
