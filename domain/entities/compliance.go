package entities

// ComplianceRecord is the audit verdict for one interface on one switch.
type ComplianceRecord struct {
	SwitchID     string
	InterfaceID  string
	VlanID       Token
	TemplateName Token
	Compliant    bool
	// Missing lists required fragments no line satisfied.
	Missing []string
	// Violations lists forbidden fragments found on some line.
	Violations []string
}

// ComplianceVerdict is the checker output before switch/interface identity
// is attached.
type ComplianceVerdict struct {
	Compliant    bool
	VlanID       Token
	TemplateName Token
	Missing      []string
	Violations   []string
}

// Record attaches identifiers to a verdict.
func (v ComplianceVerdict) Record(switchID, interfaceID string) ComplianceRecord {
	return ComplianceRecord{
		SwitchID:     switchID,
		InterfaceID:  interfaceID,
		VlanID:       v.VlanID,
		TemplateName: v.TemplateName,
		Compliant:    v.Compliant,
		Missing:      v.Missing,
		Violations:   v.Violations,
	}
}
