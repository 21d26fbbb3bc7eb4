package entities

import "strings"

// ConfigLineSet holds the running configuration of one interface, one entry
// per line, in the order the device emitted it.
type ConfigLineSet []string

// ParseConfigLines splits raw command output into a ConfigLineSet. Every line
// is trimmed; blank lines are kept so positions stay meaningful.
func ParseConfigLines(raw string) ConfigLineSet {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	parts := strings.Split(raw, "\n")
	lines := make(ConfigLineSet, len(parts))
	for i, part := range parts {
		lines[i] = strings.TrimSpace(part)
	}
	return lines
}

// LastToken returns the final whitespace-delimited token of line.
func LastToken(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
