package entities

const (
	// DefaultVLAN is the access VLAN assumed when an interface reports none.
	DefaultVLAN = 1
	// DefaultMaxMAC is the port-security maximum assumed when none is set.
	DefaultMaxMAC = 1
)

// PersistentAttributes are the values carried across a reconfiguration.
type PersistentAttributes struct {
	Description Token // entire description line, verbatim
	VlanID      Token
	MaxMAC      Token
}

// HasDescription reports whether the interface had a description line.
func (a PersistentAttributes) HasDescription() bool {
	return a.Description.Present && a.Description.Value != ""
}

// EffectiveVLAN returns the access VLAN to re-apply.
func (a PersistentAttributes) EffectiveVLAN() int {
	return a.VlanID.Int(DefaultVLAN)
}

// EffectiveMaxMAC returns the port-security maximum to re-apply, before any
// increment.
func (a PersistentAttributes) EffectiveMaxMAC() int {
	return a.MaxMAC.Int(DefaultMaxMAC)
}
