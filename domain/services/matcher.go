package services

import (
	"strings"

	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/domain/ports"
)

// SubstringMatcher matches a fragment anywhere in the line. It is the
// permissive default: vendor phrasing may vary, at the cost of false
// positives on lines that merely mention the fragment.
type SubstringMatcher struct{}

// Matches reports whether line contains fragment.
func (SubstringMatcher) Matches(line, fragment string) bool {
	if fragment == "" {
		return false
	}
	return strings.Contains(line, fragment)
}

// PrefixMatcher matches only lines that start with the fragment, so a
// description mentioning "speed" no longer counts as a speed override.
type PrefixMatcher struct{}

// Matches reports whether line starts with fragment.
func (PrefixMatcher) Matches(line, fragment string) bool {
	if fragment == "" {
		return false
	}
	return strings.HasPrefix(line, fragment)
}

// MatcherFor returns the matcher for a profile match mode.
func MatcherFor(mode string) ports.LineMatcher {
	if strings.EqualFold(strings.TrimSpace(mode), entities.MatchPrefix) {
		return PrefixMatcher{}
	}
	return SubstringMatcher{}
}
