package ports

// LineMatcher decides whether a configuration line carries a fragment.
// Extraction and compliance checking only ever ask this question, so a
// structured parser can replace substring matching behind it.
type LineMatcher interface {
	Matches(line, fragment string) bool
}

// CommandDialect renders the interface-level commands a reconfiguration
// plan is built from.
type CommandDialect interface {
	InterfaceSelector(iface string) string
	AccessVLANCommand(vlan int) string
	PortSecurityMaximumCommand(max int) string
}
