// Package vocabulary reconciles the free-text country lists of the mission table
// with a canonical reference vocabulary of country names.
//
// Detection and repair are separate steps: Check reports names that have no
// literal match in the reference set, Apply rewrites names through a fixed
// substitution table. Neither blocks the pipeline. Running Check again after
// Apply to confirm convergence is the caller's decision.
package vocabulary

import (
	"slices"
	"strings"

	"github.com/agentstation/peacekeeping/pkg/constants"
)

// ReferenceSet is an immutable set of canonical country names.
type ReferenceSet struct {
	names map[string]struct{}
}

// NewReferenceSet folds names into a set. Empty names are ignored.
func NewReferenceSet(names []string) *ReferenceSet {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return &ReferenceSet{names: set}
}

// Contains reports whether name is a canonical name. The match is literal.
func (s *ReferenceSet) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.names[name]
	return ok
}

// Len returns the number of distinct canonical names.
func (s *ReferenceSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns the canonical names in sorted order.
func (s *ReferenceSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// SplitCountries splits a country list on commas and trims every token.
// Empty tokens are kept so a rejoin preserves their position.
func SplitCountries(list string) []string {
	parts := strings.Split(list, constants.CountrySeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// JoinCountries joins tokens with a comma and a single space.
func JoinCountries(tokens []string) string {
	return strings.Join(tokens, constants.CountryJoiner)
}
