package matcher

import (
	"math"
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/muudzo/tally/internal/model"
)

// TextMatcher performs fuzzy string matching over transaction descriptions
// and references. Four complementary similarity measures are computed and the
// best one wins: full-string edit-distance ratio, best-substring partial
// ratio, order-independent token-sort ratio, and duplicate-tolerant token-set
// ratio.
type TextMatcher struct {
	threshold float64
}

// NewTextMatcher creates a text matcher. threshold is the minimum score for
// IsMatch to report a match.
func NewTextMatcher(threshold float64) *TextMatcher {
	return &TextMatcher{threshold: threshold}
}

// Score returns text similarity in [0,1], comparing both the description and
// reference fields. Descriptions weigh more, but a near-exact reference match
// earns a bonus.
func (m *TextMatcher) Score(txn1, txn2 model.NormalizedTransaction) float64 {
	descScore := bestSimilarity(txn1.Description, txn2.Description)
	refScore := bestSimilarity(txn1.Reference, txn2.Reference)

	if refScore > 0.95 {
		return math.Min(1.0, 0.6*descScore+0.4*refScore+0.1)
	}

	return 0.7*descScore + 0.3*refScore
}

// IsMatch reports whether the text similarity clears the threshold.
func (m *TextMatcher) IsMatch(txn1, txn2 model.NormalizedTransaction) bool {
	return m.Score(txn1, txn2) >= m.threshold
}

// bestSimilarity lower-cases and trims both strings, runs every measure, and
// returns the maximum.
func bestSimilarity(str1, str2 string) float64 {
	if str1 == "" || str2 == "" {
		return 0.0
	}

	s1 := strings.ToLower(strings.TrimSpace(str1))
	s2 := strings.ToLower(strings.TrimSpace(str2))

	scores := []float64{
		ratio(s1, s2),
		partialRatio(s1, s2),
		tokenSortRatio(s1, s2),
		tokenSetRatio(s1, s2),
	}

	best := 0.0
	for _, s := range scores {
		if s > best {
			best = s
		}
	}
	return best
}

// ratio is the normalized edit-distance similarity over the full strings.
func ratio(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	return levenshtein.RatioForStrings([]rune(s1), []rune(s2), levenshtein.DefaultOptions)
}

// partialRatio finds the best-matching contiguous fragment: the shorter
// string is slid across the longer one and the best window ratio wins.
func partialRatio(s1, s2 string) float64 {
	shorter, longer := []rune(s1), []rune(s2)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		return 0.0
	}
	if len(shorter) == len(longer) {
		return ratio(string(shorter), string(longer))
	}

	best := 0.0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		window := string(longer[i : i+len(shorter)])
		if r := ratio(string(shorter), window); r > best {
			best = r
			if best == 1.0 {
				break
			}
		}
	}
	return best
}

// tokenSortRatio compares whitespace-tokenized, alphabetically sorted word
// sequences, making the measure order-independent.
func tokenSortRatio(s1, s2 string) float64 {
	return ratio(sortedTokenString(s1), sortedTokenString(s2))
}

// tokenSetRatio compares token sets built from the shared and distinct words
// of each string, tolerating duplicated and reordered words.
func tokenSetRatio(s1, s2 string) float64 {
	set1 := tokenSet(s1)
	set2 := tokenSet(s2)

	var intersection, diff1, diff2 []string
	for tok := range set1 {
		if set2[tok] {
			intersection = append(intersection, tok)
		} else {
			diff1 = append(diff1, tok)
		}
	}
	for tok := range set2 {
		if !set1[tok] {
			diff2 = append(diff2, tok)
		}
	}
	sort.Strings(intersection)
	sort.Strings(diff1)
	sort.Strings(diff2)

	base := strings.Join(intersection, " ")
	combined1 := strings.TrimSpace(base + " " + strings.Join(diff1, " "))
	combined2 := strings.TrimSpace(base + " " + strings.Join(diff2, " "))

	best := ratio(combined1, combined2)
	if base != "" {
		if r := ratio(base, combined1); r > best {
			best = r
		}
		if r := ratio(base, combined2); r > best {
			best = r
		}
	}
	return best
}

func sortedTokenString(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}
