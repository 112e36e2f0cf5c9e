package tree

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Search modes accepted by MatcherFor.
const (
	MatchSubstring = "substring"
	MatchFuzzy     = "fuzzy"
)

// Matcher decides whether a label satisfies a non-empty query.
type Matcher func(label, query string) bool

// SubstringMatcher matches case-insensitive substrings.
func SubstringMatcher(label, query string) bool {
	return strings.Contains(strings.ToLower(label), strings.ToLower(query))
}

// FuzzyMatcher matches when the query characters appear in order within the
// label, ignoring case and diacritics.
func FuzzyMatcher(label, query string) bool {
	return fuzzy.MatchNormalizedFold(query, label)
}

// MatcherFor resolves a matcher by name; unknown names fall back to substring.
func MatcherFor(mode string) Matcher {
	if strings.EqualFold(strings.TrimSpace(mode), MatchFuzzy) {
		return FuzzyMatcher
	}
	return SubstringMatcher
}

// SearchVisible returns every node whose label matches query together with
// all of its ancestors. An empty query yields an empty set.
func SearchVisible(store Store, query string, match Matcher) map[string]struct{} {
	visible := map[string]struct{}{}
	if query == "" {
		return visible
	}
	if match == nil {
		match = SubstringMatcher
	}
	store.Walk(func(n Node, _ int) {
		if !match(n.Label, query) {
			return
		}
		visible[n.ID] = struct{}{}
		for _, ancestor := range store.Ancestors(n.ID) {
			if _, seen := visible[ancestor]; seen {
				break
			}
			visible[ancestor] = struct{}{}
		}
	})
	return visible
}

// Visible flattens the store into the ordered list of displayed identifiers.
// Without a query only expanded nodes are descended into. With a query only
// search-visible nodes are listed, and each of them is descended into as if
// it were expanded.
func Visible(store Store, expanded Expansion, query string, match Matcher) []string {
	searching := query != ""
	searchVisible := SearchVisible(store, query, match)
	out := make([]string, 0, len(store.childrenOf(RootKey)))
	var walk func(key string)
	walk = func(key string) {
		for _, n := range store.childrenOf(key) {
			_, inSearch := searchVisible[n.ID]
			if searching && !inSearch {
				continue
			}
			out = append(out, n.ID)
			if expanded.Has(n.ID) || inSearch {
				walk(n.ID)
			}
		}
	}
	walk(RootKey)
	return out
}
