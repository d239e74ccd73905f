package analysis

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/climatestory/storyboard/internal/convo"
)

// stopWords are particles and filler common in the students' Korean chat
// turns, excluded from keyword counts.
var stopWords = map[string]struct{}{
	"그": {}, "이": {}, "저": {}, "것": {}, "수": {}, "를": {}, "에": {},
	"은": {}, "는": {}, "가": {}, "와": {}, "과": {}, "어떻게": {}, "어떤": {},
	"했": {}, "있": {}, "있는": {}, "한": {},
}

// KeywordCount is one keyword with its frequency across user turns.
type KeywordCount struct {
	Word  string
	Count int
}

// TopKeywords extracts the n most frequent keywords from the user turns of
// the given records. Words are lowercased, stripped of punctuation, and
// dropped when shorter than two runes or in the stop-word set. Ties break
// alphabetically so the ranking is stable across runs.
func TopKeywords(records []*convo.Record, n int) []KeywordCount {
	freq := make(map[string]int)

	for _, rec := range records {
		for _, turn := range rec.Messages {
			if turn.Role != convo.RoleUser {
				continue
			}
			for _, word := range strings.Fields(normalize(turn.Content)) {
				if utf8.RuneCountInString(word) < 2 {
					continue
				}
				if _, stop := stopWords[word]; stop {
					continue
				}
				freq[word]++
			}
		}
	}

	counts := make([]KeywordCount, 0, len(freq))
	for word, count := range freq {
		counts = append(counts, KeywordCount{Word: word, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Word < counts[j].Word
	})

	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// normalize lowercases text and replaces punctuation with spaces, keeping
// letters (Hangul included), digits, and underscores.
func normalize(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return ' '
		}
	}, text)
}
