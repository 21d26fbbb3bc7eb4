package services

import (
	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/domain/ports"
)

// Synthesizer builds reconfiguration plans. It never talks to a device;
// the same inputs always give the same plan.
type Synthesizer struct {
	dialect ports.CommandDialect
}

// NewSynthesizer creates a synthesizer rendering commands with dialect.
func NewSynthesizer(dialect ports.CommandDialect) *Synthesizer {
	return &Synthesizer{dialect: dialect}
}

// Synthesize returns the plan for iface: selector, template lines as given,
// the preserved description (only if there was one), the VLAN line and the
// port-security maximum raised by increment.
func (s *Synthesizer) Synthesize(iface string, template []string, attrs entities.PersistentAttributes, increment int) entities.ReconfigurationPlan {
	commands := make([]string, 0, len(template)+4)
	commands = append(commands, s.dialect.InterfaceSelector(iface))
	commands = append(commands, template...)
	if attrs.HasDescription() {
		commands = append(commands, attrs.Description.Value)
	}
	commands = append(commands, s.dialect.AccessVLANCommand(attrs.EffectiveVLAN()))
	commands = append(commands, s.dialect.PortSecurityMaximumCommand(attrs.EffectiveMaxMAC()+increment))
	return entities.ReconfigurationPlan{Interface: iface, Commands: commands}
}
