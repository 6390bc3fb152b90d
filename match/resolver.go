// Package match resolves free-text entity names against the current board.
// Names coming back from the intent source are fuzzy: truncated, aliased,
// or indexed ("Skeleton#2"). Resolution never guesses silently — every
// verdict carries a kind and a confidence, and misses report alternatives.
package match

import (
	"sort"
	"strconv"
	"strings"
)

// Kind describes how a query matched.
type Kind string

const (
	MatchExact Kind = "exact" // bare-name match against the base name
	MatchLabel Kind = "label" // decorated-label or indexed match
	MatchAlias Kind = "alias" // via the alias registry
	MatchFuzzy Kind = "fuzzy" // edit-distance fallback
	MatchNone  Kind = "none"
)

// DefaultFuzzyFloor is the minimum score a fuzzy match must clear.
const DefaultFuzzyFloor = 0.6

// Candidate is one resolvable entity: a unit or a hand card. Label is the
// decorated name ("Tryx", "Skeleton#2"); Name is the bare base name.
type Candidate struct {
	ID    int
	Name  string
	Label string
}

// Verdict is the resolution result. On a miss, Alternatives lists labels
// the caller can surface ("did you mean…").
type Verdict struct {
	Matched      bool
	Kind         Kind
	Confidence   float64
	Candidate    Candidate
	Alternatives []string
}

// Resolver matches queries against candidate pools. The alias registry is
// injected so game-content knowledge stays configuration, not code.
type Resolver struct {
	Aliases    *AliasRegistry
	FuzzyFloor float64
}

func NewResolver(aliases *AliasRegistry) *Resolver {
	if aliases == nil {
		aliases = NewAliasRegistry(nil)
	}
	return &Resolver{Aliases: aliases, FuzzyFloor: DefaultFuzzyFloor}
}

// Resolve matches query against pool, in strict priority order:
// decorated-label match, bare-name match, indexed pick, alias, fuzzy.
// Ties break on input order.
func (r *Resolver) Resolve(query string, pool []Candidate) Verdict {
	query = strings.TrimSpace(query)
	if query == "" || len(pool) == 0 {
		return miss(nil)
	}
	base, index := splitIndex(query)
	lowerQuery := strings.ToLower(query)
	lowerBase := strings.ToLower(base)

	// Exact decorated-label match.
	for _, c := range pool {
		if strings.ToLower(c.Label) == lowerQuery {
			return Verdict{Matched: true, Kind: MatchLabel, Confidence: 1.0, Candidate: c}
		}
	}

	group := sameNamed(pool, lowerBase)

	// Exact bare-name match, only when no index was requested. With several
	// same-named candidates the lowest-ID one wins.
	if index == 0 {
		for _, c := range pool {
			if strings.ToLower(c.Name) == lowerBase {
				return Verdict{Matched: true, Kind: MatchExact, Confidence: 0.95, Candidate: c}
			}
		}
	}

	// Indexed pick: Nth same-named candidate in stable-ID order.
	if index > 0 {
		if index <= len(group) {
			return Verdict{Matched: true, Kind: MatchLabel, Confidence: 0.95, Candidate: group[index-1]}
		}
		return miss(group) // out-of-range: report the whole group
	}

	// Alias table.
	if canonical, ok := r.Aliases.Canonical(lowerBase); ok {
		for _, c := range pool {
			if strings.ToLower(c.Name) == canonical {
				return Verdict{Matched: true, Kind: MatchAlias, Confidence: 0.85, Candidate: c}
			}
		}
	}

	// Fuzzy fallback: containment bonus + normalized edit distance.
	floor := r.FuzzyFloor
	if floor <= 0 {
		floor = DefaultFuzzyFloor
	}
	best := -1
	bestScore := 0.0
	for i, c := range pool {
		score := fuzzyScore(lowerBase, strings.ToLower(c.Name))
		if score > bestScore { // strict: ties keep the earlier candidate
			bestScore = score
			best = i
		}
	}
	if best >= 0 && bestScore >= floor {
		return Verdict{Matched: true, Kind: MatchFuzzy, Confidence: bestScore, Candidate: pool[best]}
	}

	return miss(pool)
}

func miss(alternatives []Candidate) Verdict {
	v := Verdict{Kind: MatchNone}
	for _, c := range alternatives {
		v.Alternatives = append(v.Alternatives, c.Label)
	}
	return v
}

// splitIndex parses an optional "#N" suffix. "Skeleton#2" → ("Skeleton", 2).
// A malformed suffix is treated as part of the name.
func splitIndex(query string) (string, int) {
	hash := strings.LastIndexByte(query, '#')
	if hash <= 0 || hash == len(query)-1 {
		return query, 0
	}
	n, err := strconv.Atoi(query[hash+1:])
	if err != nil || n <= 0 {
		return query, 0
	}
	return query[:hash], n
}

func sameNamed(pool []Candidate, lowerBase string) []Candidate {
	var group []Candidate
	for _, c := range pool {
		if strings.ToLower(c.Name) == lowerBase {
			group = append(group, c)
		}
	}
	sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	return group
}

// fuzzyScore combines a containment bonus with normalized edit-distance
// similarity, capped at 1.
func fuzzyScore(query, name string) float64 {
	if query == "" || name == "" {
		return 0
	}
	maxLen := len(query)
	if len(name) > maxLen {
		maxLen = len(name)
	}
	score := 1.0 - float64(levenshtein(query, name))/float64(maxLen)
	if strings.Contains(name, query) || strings.Contains(query, name) {
		score += 0.25
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
