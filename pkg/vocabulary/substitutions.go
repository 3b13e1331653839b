package vocabulary

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/peacekeeping/pkg/errors"
)

// Substitutions maps locally used country names to canonical reference names.
type Substitutions map[string]string

// DefaultSubstitutions returns the built-in table: long-form names mapped to
// the abbreviated labels of the reference geometry dataset.
func DefaultSubstitutions() Substitutions {
	return Substitutions{
		"Bosnia and Herzegovina":           "Bosnia and Herz.",
		"Central African Republic":         "Central African Rep.",
		"Democratic Republic of the Congo": "Dem. Rep. Congo",
		"East Timor":                       "Timor-Leste",
		"North Macedonia":                  "Macedonia",
		"South Sudan":                      "S. Sudan",
		"The Gambia":                       "Gambia",
		"Western Sahara":                   "W. Sahara",
	}
}

// Lookup returns the canonical name for token, or token itself when the
// table has no entry. A missing entry is not an error.
func (s Substitutions) Lookup(token string) string {
	if canonical, ok := s[token]; ok {
		return canonical
	}
	return token
}

// ApplyList substitutes every token of a country list independently and
// rejoins them in order. A nil list stays nil.
func (s Substitutions) ApplyList(list *string) *string {
	if list == nil {
		return nil
	}
	tokens := SplitCountries(*list)
	for i, t := range tokens {
		tokens[i] = s.Lookup(t)
	}
	joined := JoinCountries(tokens)
	return &joined
}

// Merge returns a copy of s overridden by other.
func (s Substitutions) Merge(other Substitutions) Substitutions {
	merged := maps.Clone(s)
	if merged == nil {
		merged = Substitutions{}
	}
	maps.Copy(merged, other)
	return merged
}

// Validate rejects empty names and chains. A chain (a target that is itself
// a source of a different substitution) would make a second pass change
// names again.
func (s Substitutions) Validate() error {
	for _, from := range slices.Sorted(maps.Keys(s)) {
		to := s[from]
		if from == "" || to == "" {
			return &errors.ValidationError{
				Field:   "substitutions",
				Value:   from,
				Message: "country names cannot be empty",
			}
		}
		if next, ok := s[to]; ok && next != to {
			return &errors.ValidationError{
				Field:   "substitutions",
				Value:   from,
				Message: fmt.Sprintf("%q maps to %q, which is itself substituted by %q", from, to, next),
			}
		}
	}
	return nil
}

// substitutionsFile is the YAML layout of a substitution table file.
type substitutionsFile struct {
	// Replace discards the built-in table instead of extending it.
	Replace       bool              `yaml:"replace"`
	Substitutions map[string]string `yaml:"substitutions"`
}

// ParseSubstitutions decodes a YAML substitution table and combines it with
// the built-in one.
func ParseSubstitutions(data []byte) (Substitutions, error) {
	var file substitutionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", "", err)
	}

	var subs Substitutions
	if file.Replace {
		subs = Substitutions(file.Substitutions)
		if subs == nil {
			subs = Substitutions{}
		}
	} else {
		subs = DefaultSubstitutions().Merge(file.Substitutions)
	}

	if err := subs.Validate(); err != nil {
		return nil, err
	}
	return subs, nil
}

// LoadSubstitutions reads a YAML substitution table file.
func LoadSubstitutions(path string) (Substitutions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	subs, err := ParseSubstitutions(data)
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) {
			perr.File = path
		}
		return nil, err
	}
	return subs, nil
}
