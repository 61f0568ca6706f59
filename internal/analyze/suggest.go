// Package analyze finds known keywords that resemble words the parser did
// not understand.
package analyze

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Suggestion pairs a known keyword with its similarity score (0-1, higher is better).
type Suggestion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// DefaultThreshold is the minimum similarity score for a suggestion to be returned.
const DefaultThreshold = 0.6

// DefaultTopN is the maximum number of suggestions returned.
const DefaultTopN = 3

// Suggest returns known keywords similar to word, ranked by similarity score.
// Only suggestions scoring at least DefaultThreshold are returned, up to DefaultTopN results.
func Suggest(word string, known []string) []Suggestion {
	return SuggestN(word, known, DefaultTopN, DefaultThreshold)
}

// SuggestN returns up to topN known keywords similar to word, with score >= threshold.
func SuggestN(word string, known []string, topN int, threshold float64) []Suggestion {
	norm := normalize(word)
	if norm == "" || len(known) == 0 {
		return nil
	}

	var results []Suggestion
	for _, k := range known {
		score := similarity(norm, normalize(k))
		if score >= threshold {
			results = append(results, Suggestion{Name: k, Score: score})
		}
	}

	sortByScore(results)

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results
}

// SuggestText compares every word of text, and every pair of adjacent
// words, against known keywords. Keywords already present verbatim are not
// suggested. Each keyword appears at most once, with its best score.
func SuggestText(text string, known []string) []Suggestion {
	words := strings.Fields(normalize(text))
	present := make(map[string]bool)
	var candidates []string
	for i, w := range words {
		candidates = append(candidates, w)
		present[w] = true
		if i+1 < len(words) {
			pair := w + " " + words[i+1]
			candidates = append(candidates, pair)
			present[pair] = true
		}
	}

	best := make(map[string]float64)
	for _, c := range candidates {
		for _, s := range SuggestN(c, known, 0, DefaultThreshold) {
			if present[normalize(s.Name)] {
				continue
			}
			if s.Score > best[s.Name] {
				best[s.Name] = s.Score
			}
		}
	}

	results := make([]Suggestion, 0, len(best))
	for name, score := range best {
		results = append(results, Suggestion{Name: name, Score: score})
	}
	sortByScore(results)
	if len(results) > DefaultTopN {
		results = results[:DefaultTopN]
	}
	return results
}

// similarity computes the overall similarity between two normalized strings.
// It combines Levenshtein distance with a shared-prefix bonus.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0.0
	}
	maxLen := max(la, lb)

	// Normalized Levenshtein: 1 - (distance / max_length).
	dist := levenshtein.ComputeDistance(a, b)
	lev := 1.0 - float64(dist)/float64(maxLen)

	// Prefix bonus: proportion of shared prefix, weighted at 0.1.
	prefixBonus := 0.1 * float64(commonPrefixLen(a, b)) / float64(maxLen)

	return min(lev+prefixBonus, 1.0)
}

// normalize lowercases s, turns underscores and hyphens into spaces and
// collapses runs of whitespace.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// commonPrefixLen returns the number of leading runes a and b share.
func commonPrefixLen(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := min(len(ra), len(rb))
	for i := 0; i < n; i++ {
		if ra[i] != rb[i] {
			return i
		}
	}
	return n
}

// sortByScore orders suggestions by score descending, then by name.
func sortByScore(s []Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].Score != s[j].Score {
			return s[i].Score > s[j].Score
		}
		return s[i].Name < s[j].Name
	})
}
