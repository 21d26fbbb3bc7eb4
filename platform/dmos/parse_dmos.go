package dmos

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

var (
	// "VLAN 10 [WKSTN-2F]: static, active"
	vlanHeaderRegex = regexp.MustCompile(`(?i)^VLAN\s+(\d+)\s*(?:\[(.*?)\])?:\s*`)
	dmosPortRegex   = regexp.MustCompile(`(?i)(?:ethernet|eth)\s+\d+/\d+(?:/\d+)?`)
	cmdErrorHints   = []string{"unknown command", "invalid", "incomplete", "syntax error"}
)

// parseDmOSVLANMembers collects untagged ports listed under every VLAN whose
// bracketed name matches pattern. Tagged members are trunks and skipped.
func parseDmOSVLANMembers(output string, pattern *regexp.Regexp) []string {
	seen := make(map[string]bool)
	var members []string
	selected := false

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isSeparatorLine(trimmed) {
			continue
		}
		if match := vlanHeaderRegex.FindStringSubmatch(trimmed); len(match) >= 3 {
			selected = match[2] != "" && pattern.MatchString(match[2])
			continue
		}
		lower := strings.ToLower(trimmed)
		if !selected || (strings.Contains(lower, "tagged") && !strings.Contains(lower, "untagged")) {
			continue
		}
		for _, raw := range dmosPortRegex.FindAllString(trimmed, -1) {
			port := normalizePort(raw)
			if seen[port] {
				continue
			}
			seen[port] = true
			members = append(members, port)
		}
	}
	sort.SliceStable(members, func(i, j int) bool {
		return compareInterfaceNames(members[i], members[j])
	})
	return members
}

// parseDmOSRunningInterface returns every line of one port block.
func parseDmOSRunningInterface(output string) entities.ConfigLineSet {
	return entities.ParseConfigLines(output)
}

func compareInterfaceNames(a, b string) bool {
	// "ethernet 1/4" -> [1, 4]
	extractNumbers := func(s string) []int {
		parts := strings.Fields(s)
		if len(parts) < 2 {
			return []int{}
		}
		nums := strings.Split(parts[1], "/")
		if len(nums) != 2 {
			return []int{}
		}
		var result []int
		for _, n := range nums {
			num := 0
			fmt.Sscanf(n, "%d", &num)
			result = append(result, num)
		}
		return result
	}

	aNums := extractNumbers(a)
	bNums := extractNumbers(b)

	if len(aNums) != 2 || len(bNums) != 2 {
		return a < b
	}
	if aNums[0] != bNums[0] {
		return aNums[0] < bNums[0]
	}
	return aNums[1] < bNums[1]
}

func isDmOSCommandError(output string) bool {
	lower := strings.ToLower(output)
	for _, keyword := range cmdErrorHints {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// normalizePort maps "Eth 1/4", "1/4" or "ethernet 1/4" to "ethernet 1/4".
func normalizePort(iface string) string {
	fields := strings.Fields(strings.ToLower(iface))
	if len(fields) == 0 {
		return ""
	}
	if fields[0] == "ethernet" || fields[0] == "eth" {
		fields = fields[1:]
	}
	return "ethernet " + strings.Join(fields, " ")
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
