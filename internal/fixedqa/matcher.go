package fixedqa

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/xiexing/askhub/internal/model"
)

const DefaultThreshold = 0.70

// Matcher fuzzy-matches a query against the curated entries. The entry list
// is immutable after construction, so matching needs no locking and is
// deterministic: the same (query, list, threshold) always yields the same
// answer.
type Matcher struct {
	entries   []model.FixedQAEntry
	threshold float64
}

func NewMatcher(entries []model.FixedQAEntry, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{entries: entries, threshold: threshold}
}

// Match is a single fuzzy-match result.
type Match struct {
	Answer   string
	Question string
	Score    float64
}

// Match scans every question variant, tracking the best similarity between
// the normalized query and the normalized variant. Ties at the maximum keep
// the earliest entry in curated-file order. Returns ok=false when nothing
// reaches the threshold or the curated list is empty.
func (m *Matcher) Match(query string) (Match, bool) {
	cleaned := normalize(query)
	var best Match
	for _, entry := range m.entries {
		for _, question := range entry.Questions {
			score := similarity(cleaned, normalize(question))
			if score > best.Score {
				best = Match{Answer: entry.Answer, Question: question, Score: score}
			}
		}
	}
	if best.Score < m.threshold {
		return Match{}, false
	}
	return best, true
}

func (m *Matcher) Len() int {
	return len(m.entries)
}

// normalize keeps only letters and digits (any script: CJK characters are
// letter-class) and lower-cases, so punctuation and whitespace differences
// never affect matching.
func normalize(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

// similarity is a normalized edit-distance ratio in [0,1].
func similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	if la == 0 && lb == 0 {
		return 1
	}
	longest := la
	if lb > longest {
		longest = lb
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
