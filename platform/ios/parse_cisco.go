package ios

import (
	"regexp"
	"strings"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

var (
	vlanRowRegex    = regexp.MustCompile(`^(\d{1,4})\s+(\S+)\s+(\S+)\s*(.*)$`)
	interfaceRegex  = regexp.MustCompile(`^[A-Za-z]+\d+(?:/\d+){0,2}$`)
	commandErrHints = []string{
		"invalid input",
		"unknown command",
		"incomplete command",
		"ambiguous command",
		"unrecognized command",
		"invalid command",
		"syntax error",
		"cannot find command",
	}
)

// parseIOSVLANMembers returns, in output order, the ports of every VLAN
// whose name matches pattern. Port lists wrap onto indented continuation
// lines.
func parseIOSVLANMembers(output string, pattern *regexp.Regexp) []string {
	var members []string
	seen := make(map[string]bool)
	selected := false

	add := func(field string) {
		for _, token := range strings.Split(field, ",") {
			port := strings.TrimSpace(token)
			if port == "" || !interfaceRegex.MatchString(port) || seen[port] {
				continue
			}
			seen[port] = true
			members = append(members, port)
		}
	}

	for _, line := range strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" || isSeparatorLine(line) {
			continue
		}
		startsIndented := line[0] == ' ' || line[0] == '\t'
		if startsIndented {
			if selected {
				add(line)
			}
			continue
		}
		match := vlanRowRegex.FindStringSubmatch(strings.TrimSpace(line))
		if len(match) < 5 {
			selected = false
			continue
		}
		selected = pattern.MatchString(match[2])
		if selected {
			add(match[4])
		}
	}
	return members
}

func parseIOSTrunks(output string) map[string]bool {
	trunks := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isSeparatorLine(trimmed) {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) == 0 {
			continue
		}
		candidate := fields[0]
		if interfaceRegex.MatchString(candidate) {
			trunks[strings.ToLower(candidate)] = true
		}
	}
	return trunks
}

// parseIOSRunningInterface returns every line of the output, banner and
// separators included.
func parseIOSRunningInterface(output string) entities.ConfigLineSet {
	return entities.ParseConfigLines(output)
}

func isIOSCommandError(output string) bool {
	lower := strings.ToLower(output)
	for _, keyword := range commandErrHints {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func isSeparatorLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if len(trimmed) < 3 {
		return false
	}
	for _, ch := range trimmed {
		if ch != '-' && ch != '=' && ch != '+' && ch != '*' {
			return false
		}
	}
	return true
}
