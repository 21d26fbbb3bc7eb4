package dmos

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/domain/ports"
)

const driverName = "dmos"

var log = logrus.WithField("platform", driverName)

// Driver implements SwitchDriver semantics for Datacom DmOS switches.
type Driver struct{}

// New creates a new DmOS driver.
func New() *Driver {
	return &Driver{}
}

// Name returns the canonical platform identifier.
func (d *Driver) Name() string {
	return driverName
}

// Detect determines if the connected device is running DmOS.
func (d *Driver) Detect(ctx context.Context, repo ports.SwitchRepository) (bool, error) {
	if !repo.IsConnected() {
		if err := repo.Connect(ctx); err != nil {
			return false, err
		}
	}
	output, err := repo.ExecuteCommand(ctx, "show version")
	if err != nil {
		return false, err
	}
	lower := strings.ToLower(output)
	return strings.Contains(lower, "dmos") || strings.Contains(lower, "datacom"), nil
}

// GetAuthenticationSequence returns the DmOS login dialogue. DmOS lands in
// privileged mode directly after login.
func (d *Driver) GetAuthenticationSequence(username, password, enablePassword string) []entities.AuthPrompt {
	return []entities.AuthPrompt{
		{WaitFor: "login:", SendCmd: username + "\n"},
		{WaitFor: "Password:", SendCmd: password + "\n"},
		{WaitFor: "#", SendCmd: "terminal length 0\n"},
		{WaitFor: "#", SendCmd: ""},
	}
}

// ReadInterfaceConfig fetches the running configuration of one port.
func (d *Driver) ReadInterfaceConfig(ctx context.Context, repo ports.SwitchRepository, cfg entities.SwitchConfig, iface string) (entities.ConfigLineSet, error) {
	cmd := fmt.Sprintf("show running-config interface %s", normalizePort(iface))
	output, err := repo.ExecuteCommand(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration of %s: %w", iface, err)
	}
	if cfg.IsRawOutputEnabled() {
		log.WithField("command", cmd).Debugf("raw output:\n%s", output)
	}
	if isDmOSCommandError(output) {
		return nil, fmt.Errorf("command '%s' rejected by switch", cmd)
	}
	return parseDmOSRunningInterface(output), nil
}

// DiscoverAccessInterfaces lists untagged members of matching VLANs from
// "show vlan".
func (d *Driver) DiscoverAccessInterfaces(ctx context.Context, repo ports.SwitchRepository, cfg entities.SwitchConfig, pattern *regexp.Regexp) ([]string, error) {
	output, err := repo.ExecuteCommand(ctx, "show vlan")
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve VLAN membership: %w", err)
	}
	if cfg.IsRawOutputEnabled() {
		log.WithField("command", "show vlan").Debugf("raw output:\n%s", output)
	}
	if isDmOSCommandError(output) {
		return nil, fmt.Errorf("command 'show vlan' unsupported by switch")
	}
	interfaces := parseDmOSVLANMembers(output, pattern)
	if cfg.IsDebugEnabled() {
		log.Debugf("discovered %d access interfaces matching %q: %v", len(interfaces), pattern.String(), interfaces)
	}
	return interfaces, nil
}

// CommandRejected reports whether output carries a DmOS command error.
func (d *Driver) CommandRejected(output string) bool {
	return isDmOSCommandError(output)
}

// InterfaceSelector enters port configuration mode.
func (d *Driver) InterfaceSelector(iface string) string {
	return fmt.Sprintf("interface %s", normalizePort(iface))
}

// AccessVLANCommand sets the untagged (native) VLAN.
func (d *Driver) AccessVLANCommand(vlan int) string {
	return fmt.Sprintf("switchport native vlan %d", vlan)
}

// PortSecurityMaximumCommand limits learned MAC addresses on the port.
func (d *Driver) PortSecurityMaximumCommand(max int) string {
	return fmt.Sprintf("mac-address-table learning limit maximum %d", max)
}

// EnterConfigCommands opens configuration mode.
func (d *Driver) EnterConfigCommands() []string {
	return []string{"configure terminal"}
}

// ExitConfigCommands leaves configuration mode.
func (d *Driver) ExitConfigCommands() []string {
	return []string{"end"}
}

// SaveCommands persists the running configuration.
func (d *Driver) SaveCommands() []string {
	return []string{"copy running-config startup-config", "save"}
}
