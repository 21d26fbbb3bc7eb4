package ios

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/domain/ports"
)

const driverName = "ios"

var log = logrus.WithField("platform", driverName)

// Driver implements the SwitchDriver behaviour for Cisco IOS switches.
type Driver struct{}

// New creates a new IOS driver instance.
func New() *Driver {
	return &Driver{}
}

// Name returns the canonical platform identifier.
func (d *Driver) Name() string {
	return driverName
}

// Detect inspects the device to determine whether it is running IOS.
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
	return strings.Contains(strings.ToLower(output), "cisco ios"), nil
}

// GetAuthenticationSequence returns the telnet login dialogue for IOS.
func (d *Driver) GetAuthenticationSequence(username, password, enablePassword string) []entities.AuthPrompt {
	return []entities.AuthPrompt{
		{WaitFor: "Username:", SendCmd: username + "\n"},
		{WaitFor: "Password:", SendCmd: password + "\n"},
		{WaitFor: ">", SendCmd: "enable\n"},
		{WaitFor: "Password:", SendCmd: enablePassword + "\n"},
		{WaitFor: "#", SendCmd: "terminal length 0\n"},
		{WaitFor: "#", SendCmd: ""},
	}
}

// ReadInterfaceConfig fetches "show running-config interface" for iface.
func (d *Driver) ReadInterfaceConfig(ctx context.Context, repo ports.SwitchRepository, cfg entities.SwitchConfig, iface string) (entities.ConfigLineSet, error) {
	cmd := fmt.Sprintf("show running-config interface %s", iface)
	output, err := repo.ExecuteCommand(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration of %s: %w", iface, err)
	}
	if cfg.IsRawOutputEnabled() {
		log.WithField("command", cmd).Debugf("raw output:\n%s", output)
	}
	if isIOSCommandError(output) {
		return nil, fmt.Errorf("command '%s' rejected by switch", cmd)
	}
	return parseIOSRunningInterface(output), nil
}

// DiscoverAccessInterfaces lists member ports of matching VLANs from
// "show vlan brief", leaving out trunks.
func (d *Driver) DiscoverAccessInterfaces(ctx context.Context, repo ports.SwitchRepository, cfg entities.SwitchConfig, pattern *regexp.Regexp) ([]string, error) {
	output, err := repo.ExecuteCommand(ctx, "show vlan brief")
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve VLAN membership: %w", err)
	}
	if cfg.IsRawOutputEnabled() {
		log.WithField("command", "show vlan brief").Debugf("raw output:\n%s", output)
	}
	if isIOSCommandError(output) {
		return nil, fmt.Errorf("command 'show vlan brief' unsupported by switch")
	}
	members := parseIOSVLANMembers(output, pattern)

	trunks := map[string]bool{}
	if trunkOutput, err := repo.ExecuteCommand(ctx, "show interfaces trunk"); err == nil && !isIOSCommandError(trunkOutput) {
		trunks = parseIOSTrunks(trunkOutput)
	} else if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	interfaces := make([]string, 0, len(members))
	for _, iface := range members {
		if trunks[strings.ToLower(iface)] {
			continue
		}
		interfaces = append(interfaces, iface)
	}
	if cfg.IsDebugEnabled() {
		log.Debugf("discovered %d access interfaces matching %q: %v", len(interfaces), pattern.String(), interfaces)
	}
	return interfaces, nil
}

// CommandRejected reports whether output carries an IOS command error.
func (d *Driver) CommandRejected(output string) bool {
	return isIOSCommandError(output)
}

// InterfaceSelector enters interface configuration mode.
func (d *Driver) InterfaceSelector(iface string) string {
	return fmt.Sprintf("interface %s", iface)
}

// AccessVLANCommand sets the access VLAN.
func (d *Driver) AccessVLANCommand(vlan int) string {
	return fmt.Sprintf("switchport access vlan %d", vlan)
}

// PortSecurityMaximumCommand sets the port-security MAC limit.
func (d *Driver) PortSecurityMaximumCommand(max int) string {
	return fmt.Sprintf("switchport port-security maximum %d", max)
}

// EnterConfigCommands opens global configuration mode.
func (d *Driver) EnterConfigCommands() []string {
	return []string{"configure terminal"}
}

// ExitConfigCommands returns to privileged mode.
func (d *Driver) ExitConfigCommands() []string {
	return []string{"end"}
}

// SaveCommands returns commands that persist the running configuration.
func (d *Driver) SaveCommands() []string {
	return []string{"write memory"}
}
