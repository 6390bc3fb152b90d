package match

import "strings"

// AliasRegistry maps canonical names to their known aliases. It is small,
// injectable and symmetric: "Ash" resolves "Ashbringer" and vice versa.
// Game-content aliases ship in the yaml config, not in code.
type AliasRegistry struct {
	byAlias map[string]string // lowercase alias → lowercase canonical
}

// NewAliasRegistry builds a registry from canonical → alias-list pairs.
func NewAliasRegistry(table map[string][]string) *AliasRegistry {
	r := &AliasRegistry{byAlias: make(map[string]string)}
	for canonical, aliases := range table {
		lc := strings.ToLower(canonical)
		r.byAlias[lc] = lc
		for _, a := range aliases {
			r.byAlias[strings.ToLower(a)] = lc
		}
	}
	return r
}

// Canonical resolves a query to a canonical name. Besides exact alias hits
// it accepts symmetric containment, so "the ashbringer" still finds "ash".
func (r *AliasRegistry) Canonical(query string) (string, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return "", false
	}
	if c, ok := r.byAlias[query]; ok {
		return c, true
	}
	for alias, canonical := range r.byAlias {
		if strings.Contains(query, alias) || strings.Contains(alias, query) {
			return canonical, true
		}
	}
	return "", false
}
