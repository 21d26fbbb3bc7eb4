package entities

// Fragment matching modes understood by the baseline checker.
const (
	MatchSubstring = "substring"
	MatchPrefix    = "prefix"
)

const (
	// DefaultVLANFragment is the required fragment whose line yields the
	// reported VLAN id.
	DefaultVLANFragment = "switchport access vlan"
	// DefaultTemplateFragment is the required fragment whose line yields the
	// reported template name.
	DefaultTemplateFragment = "source template"
)

// BaselineProfile describes a correctly configured access interface.
type BaselineProfile struct {
	Required         []string `yaml:"required"`
	Forbidden        []string `yaml:"forbidden"`
	VLANFragment     string   `yaml:"vlan_fragment"`
	TemplateFragment string   `yaml:"template_fragment"`
	MatchMode        string   `yaml:"match_mode"`
}

// DefaultBaselineProfile returns the workstation-port baseline.
func DefaultBaselineProfile() BaselineProfile {
	return BaselineProfile{
		Required: []string{
			"description",
			"switchport access vlan",
			"switchport port-security maximum",
			"no logging event link-status",
			"source template",
			"spanning-tree portfast",
		},
		Forbidden:        []string{"speed", "duplex"},
		VLANFragment:     DefaultVLANFragment,
		TemplateFragment: DefaultTemplateFragment,
		MatchMode:        MatchSubstring,
	}
}

// WithDefaults fills empty reporting fragments and match mode.
func (p BaselineProfile) WithDefaults() BaselineProfile {
	if p.VLANFragment == "" {
		p.VLANFragment = DefaultVLANFragment
	}
	if p.TemplateFragment == "" {
		p.TemplateFragment = DefaultTemplateFragment
	}
	if p.MatchMode == "" {
		p.MatchMode = MatchSubstring
	}
	return p
}
