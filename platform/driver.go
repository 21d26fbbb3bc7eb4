package platform

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/domain/ports"
	"github.com/carlosrabelo/portkeeper/platform/dmos"
	"github.com/carlosrabelo/portkeeper/platform/ios"
)

// DefaultWorkstationVLANPattern selects the VLANs whose member ports are
// audited or rebuilt when no explicit interface list is given.
const DefaultWorkstationVLANPattern = `W-I|WKSTN|WKST`

// SwitchDriver defines the behaviour required to support a switching platform.
type SwitchDriver interface {
	ports.CommandDialect

	Name() string
	Detect(ctx context.Context, repo ports.SwitchRepository) (bool, error)

	// GetAuthenticationSequence returns the login sequence for this platform
	GetAuthenticationSequence(username, password, enablePassword string) []entities.AuthPrompt

	// ReadInterfaceConfig returns the running configuration of one interface.
	ReadInterfaceConfig(ctx context.Context, repo ports.SwitchRepository, cfg entities.SwitchConfig, iface string) (entities.ConfigLineSet, error)
	// DiscoverAccessInterfaces lists non-trunk member ports of VLANs whose
	// name matches pattern.
	DiscoverAccessInterfaces(ctx context.Context, repo ports.SwitchRepository, cfg entities.SwitchConfig, pattern *regexp.Regexp) ([]string, error)
	// CommandRejected reports whether device output signals a refused command.
	CommandRejected(output string) bool

	EnterConfigCommands() []string
	ExitConfigCommands() []string
	SaveCommands() []string
}

var registry = []SwitchDriver{
	ios.New(),
	dmos.New(),
}

// Get returns a driver by normalized platform name.
func Get(name string) (SwitchDriver, error) {
	normalized := normalizeName(name)
	for _, driver := range registry {
		if driver.Name() == normalized {
			return driver, nil
		}
	}
	return nil, fmt.Errorf("unknown switch platform: %s", name)
}

// Available returns all registered drivers.
func Available() []SwitchDriver {
	out := make([]SwitchDriver, len(registry))
	copy(out, registry)
	return out
}

// Detect tries all registered drivers until one matches.
func Detect(ctx context.Context, repo ports.SwitchRepository) (SwitchDriver, error) {
	var lastErr error
	for _, driver := range registry {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		matched, err := driver.Detect(ctx, repo)
		if err != nil {
			lastErr = err
			continue
		}
		if matched {
			return driver, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to detect switch platform")
}

// Resolve returns the driver configured for sw, detecting it on the live
// session when the platform is "auto".
func Resolve(ctx context.Context, sw entities.SwitchConfig, repo ports.SwitchRepository) (SwitchDriver, error) {
	if sw.PlatformID() == "auto" {
		return Detect(ctx, repo)
	}
	return Get(sw.PlatformID())
}

// CompilePattern compiles a VLAN name pattern, falling back to the
// workstation default when empty.
func CompilePattern(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		expr = DefaultWorkstationVLANPattern
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid interface pattern %q: %w", expr, err)
	}
	return re, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
