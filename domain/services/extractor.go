package services

import (
	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/domain/ports"
)

const (
	descriptionFragment = "description"
	vlanFragment        = "vlan"
	maximumFragment     = "maximum"
)

// Extractor pulls the attributes that must survive a reconfiguration out of
// an interface configuration.
type Extractor struct {
	matcher ports.LineMatcher
}

// NewExtractor creates an extractor; a nil matcher means substring matching.
func NewExtractor(matcher ports.LineMatcher) *Extractor {
	if matcher == nil {
		matcher = SubstringMatcher{}
	}
	return &Extractor{matcher: matcher}
}

// Extract scans every line once. When several lines carry the same
// attribute the last one wins. Missing attributes stay absent.
func (e *Extractor) Extract(lines entities.ConfigLineSet) entities.PersistentAttributes {
	var attrs entities.PersistentAttributes
	for _, line := range lines {
		if e.matcher.Matches(line, descriptionFragment) {
			attrs.Description = entities.Captured(line)
		}
		if e.matcher.Matches(line, vlanFragment) {
			if token := entities.LastToken(line); token != "" {
				attrs.VlanID = entities.Captured(token)
			}
		}
		if e.matcher.Matches(line, maximumFragment) {
			if token := entities.LastToken(line); token != "" {
				attrs.MaxMAC = entities.Captured(token)
			}
		}
	}
	return attrs
}
