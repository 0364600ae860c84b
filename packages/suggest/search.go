package suggest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// scoreFloor discards matches too weak to be useful.
const scoreFloor = 0.2

// Match is one fuzzy-search hit. Highlighted wraps the matched substring in
// <mark> tags for the editor UI.
type Match struct {
	Name            string  `json:"name"`
	Score           float64 `json:"score"`
	DataType        string  `json:"dataType"`
	SourceStepIndex int     `json:"sourceStepIndex"`
	Preview         string  `json:"preview"`
	Highlighted     string  `json:"highlighted"`
}

// Search scores every visible variable name against query and returns the
// strongest matches, capped at limit. stepIndex applies the same temporal
// visibility rule as ListSuggestions (AllSteps for none).
func (s *Service) Search(query string, limit int, stepIndex int) ([]*Match, error) {
	key := fmt.Sprintf("search:%s:%d:%d", query, limit, stepIndex)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*Match), nil
	}

	vars, err := s.visibleVariables(stepIndex)
	if err != nil {
		return nil, err
	}

	matches := make([]*Match, 0, len(vars))
	for _, v := range vars {
		score := scoreName(v.Name, query)
		if score < scoreFloor {
			continue
		}
		matches = append(matches, &Match{
			Name:            v.Name,
			Score:           score,
			DataType:        v.DataType,
			SourceStepIndex: v.SourceStepIndex,
			Preview:         Preview(v.Value),
			Highlighted:     highlight(v.Name, query),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Name < matches[j].Name
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	s.cache.Add(key, matches)
	return matches, nil
}

// scoreName combines a normalized edit-similarity ratio with bonuses for
// exact, prefix, substring and underscore-token-prefix matches.
func scoreName(name, query string) float64 {
	n := strings.ToLower(name)
	q := strings.ToLower(query)
	if q == "" {
		return 0
	}

	dist := levenshtein.ComputeDistance(n, q)
	longest := len([]rune(n))
	if l := len([]rune(q)); l > longest {
		longest = l
	}
	score := 1.0 - float64(dist)/float64(longest)

	switch {
	case n == q:
		score += 0.5
	case strings.HasPrefix(n, q):
		score += 0.3
	case strings.Contains(n, q):
		score += 0.2
	}

	for _, token := range strings.Split(n, "_") {
		if token != n && strings.HasPrefix(token, q) {
			score += 0.15
			break
		}
	}
	return score
}

// highlight wraps the first occurrence of query (case-insensitive) in
// <mark> tags. Names matched purely by edit distance come back unmarked.
func highlight(name, query string) string {
	if query == "" {
		return name
	}
	idx := strings.Index(strings.ToLower(name), strings.ToLower(query))
	if idx < 0 {
		return name
	}
	end := idx + len(query)
	return name[:idx] + "<mark>" + name[idx:end] + "</mark>" + name[end:]
}
