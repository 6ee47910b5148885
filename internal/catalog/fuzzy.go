package catalog

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Match is one scored candidate from a fuzzy search.
type Match struct {
	Descriptor ResourceDescriptor
	Score      int
}

// fuzzySource adapts a []ResourceDescriptor into sahilm/fuzzy's Source interface so
// its position-weighted contiguous-run scoring (the same substrate behind the
// bubbles list/filter widgets this repo's TUI uses) can be applied to one string per
// descriptor.
type fuzzySource []string

func (s fuzzySource) String(i int) string { return s[i] }
func (s fuzzySource) Len() int            { return len(s) }

// Search implements the fuzzy picker: for each descriptor, the
// best of {match against key, match against display_name} contributes its score, with
// a bonus for prefix matches, then results are sorted by score desc, key length asc,
// key lexicographically.
func (r *Registry) Search(query string) []Match {
	all := r.All()
	if query == "" {
		out := make([]Match, len(all))
		for i, d := range all {
			out[i] = Match{Descriptor: d, Score: 0}
		}
		sort.SliceStable(out, func(i, j int) bool {
			return tieBreakLess(out[i].Descriptor, out[j].Descriptor)
		})
		return out
	}

	lowerQuery := strings.ToLower(query)

	keys := make(fuzzySource, len(all))
	names := make(fuzzySource, len(all))
	for i, d := range all {
		keys[i] = strings.ToLower(d.Key)
		names[i] = strings.ToLower(d.DisplayName)
	}

	keyMatches := fuzzy.FindFrom(lowerQuery, keys)
	nameMatches := fuzzy.FindFrom(lowerQuery, names)

	bestScore := make(map[int]int, len(all))
	for _, m := range keyMatches {
		bestScore[m.Index] = scoreWithPrefixBonus(m.Score, keys[m.Index], lowerQuery)
	}
	for _, m := range nameMatches {
		s := scoreWithPrefixBonus(m.Score, names[m.Index], lowerQuery)
		if s > bestScore[m.Index] {
			bestScore[m.Index] = s
		}
	}

	matches := make([]Match, 0, len(bestScore))
	for idx, score := range bestScore {
		matches = append(matches, Match{Descriptor: all[idx], Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return tieBreakLess(matches[i].Descriptor, matches[j].Descriptor)
	})

	return matches
}

// tieBreakLess orders by shorter key, then lexicographic key.
func tieBreakLess(a, b ResourceDescriptor) bool {
	if len(a.Key) != len(b.Key) {
		return len(a.Key) < len(b.Key)
	}
	return a.Key < b.Key
}

// scoreWithPrefixBonus favors prefix matches.
func scoreWithPrefixBonus(base int, candidate, query string) int {
	if strings.HasPrefix(candidate, query) {
		return base + len(query)*10
	}
	return base
}
