package transport

import (
	"regexp"
	"strings"
)

var (
	// hostnamePrompt finds the device prompt at the end of login output,
	// e.g. "sw1#", "sw1>" or "sw1(config-if)#".
	hostnamePrompt = regexp.MustCompile(`(?:^|\n)([^\s#>()]+)(?:\([^)]*\))?[#>]\s*$`)
	// anyPrivilegedPrompt is used until the hostname is known.
	anyPrivilegedPrompt = regexp.MustCompile(`(?:^|\n)[^\s#>]+(?:\([^)]*\))?#\s*$`)
)

// promptTracker recognizes the end of command output. Only a prompt at the
// very end of the buffer counts, so a "#" inside output never ends a read.
type promptTracker struct {
	hostname string
	command  *regexp.Regexp
}

func newPromptTracker() *promptTracker {
	return &promptTracker{command: anyPrivilegedPrompt}
}

// learn records the hostname from output ending in a prompt.
func (p *promptTracker) learn(output string) {
	m := hostnamePrompt.FindStringSubmatch(normalizeNewlines(output))
	if m == nil {
		return
	}
	p.hostname = m[1]
	p.command = regexp.MustCompile(`(?:^|\n)` + regexp.QuoteMeta(m[1]) + `(?:\([^)]*\))?#\s*$`)
}

// commandDone reports whether output ends with the privileged prompt.
func (p *promptTracker) commandDone(output string) bool {
	return p.command.MatchString(normalizeNewlines(output))
}

// endsWith reports whether output, ignoring trailing blanks, ends with token.
// Login prompts ("Username:", "Password:", ">") are matched this way.
func endsWith(output, token string) bool {
	return strings.HasSuffix(strings.TrimRight(output, " \t\r\n\x00"), token)
}

// waitFor matches a login prompt at the end of output.
func waitFor(token string) func(string) bool {
	return func(buf string) bool { return endsWith(buf, token) }
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r", "")
}
