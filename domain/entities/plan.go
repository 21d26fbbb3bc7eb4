package entities

// ReconfigurationPlan is the ordered command list that rebuilds one
// interface. Commands[0] is always the interface selector.
type ReconfigurationPlan struct {
	Interface string
	Commands  []string
}

// RunMode selects whether plans reach the device.
type RunMode int

const (
	// ModeSimulate computes and logs plans without sending them.
	ModeSimulate RunMode = iota
	// ModeApply pushes plans and saves the device configuration.
	ModeApply
)

func (m RunMode) String() string {
	if m == ModeApply {
		return "apply"
	}
	return "simulate"
}

// IsSandbox reports whether nothing may be sent to a device.
func (m RunMode) IsSandbox() bool {
	return m != ModeApply
}
