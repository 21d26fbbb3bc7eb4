package services

import (
	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/domain/ports"
)

// Checker audits interface configurations against a baseline profile. The
// profile is shared read-only by every check of a run.
type Checker struct {
	profile entities.BaselineProfile
	matcher ports.LineMatcher
}

// NewChecker builds a checker using the matcher selected by the profile.
func NewChecker(profile entities.BaselineProfile) *Checker {
	profile = profile.WithDefaults()
	return NewCheckerWithMatcher(profile, MatcherFor(profile.MatchMode))
}

// NewCheckerWithMatcher builds a checker with an explicit matching strategy.
func NewCheckerWithMatcher(profile entities.BaselineProfile, matcher ports.LineMatcher) *Checker {
	if matcher == nil {
		matcher = SubstringMatcher{}
	}
	return &Checker{profile: profile.WithDefaults(), matcher: matcher}
}

// Profile returns the profile the checker enforces.
func (c *Checker) Profile() entities.BaselineProfile {
	return c.profile
}

// Check returns the verdict for one interface. Required fragments may be
// satisfied by any line in any order; a single forbidden fragment anywhere
// makes the interface non-compliant.
func (c *Checker) Check(lines entities.ConfigLineSet) entities.ComplianceVerdict {
	var verdict entities.ComplianceVerdict

	for _, fragment := range c.profile.Required {
		if !c.anyLine(lines, fragment) {
			verdict.Missing = append(verdict.Missing, fragment)
		}
	}
	for _, fragment := range c.profile.Forbidden {
		if c.anyLine(lines, fragment) {
			verdict.Violations = append(verdict.Violations, fragment)
		}
	}
	verdict.Compliant = len(verdict.Missing) == 0 && len(verdict.Violations) == 0

	verdict.VlanID = c.firstLastToken(lines, c.profile.VLANFragment)
	verdict.TemplateName = c.firstLastToken(lines, c.profile.TemplateFragment)
	return verdict
}

// CheckRecord runs Check and attaches switch and interface identity.
func (c *Checker) CheckRecord(switchID, interfaceID string, lines entities.ConfigLineSet) entities.ComplianceRecord {
	return c.Check(lines).Record(switchID, interfaceID)
}

func (c *Checker) anyLine(lines entities.ConfigLineSet, fragment string) bool {
	for _, line := range lines {
		if c.matcher.Matches(line, fragment) {
			return true
		}
	}
	return false
}

func (c *Checker) firstLastToken(lines entities.ConfigLineSet, fragment string) entities.Token {
	for _, line := range lines {
		if c.matcher.Matches(line, fragment) {
			if token := entities.LastToken(line); token != "" {
				return entities.Captured(token)
			}
			return entities.Token{}
		}
	}
	return entities.Token{}
}
