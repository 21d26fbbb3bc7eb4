package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/infrastructure/logging"
	"github.com/carlosrabelo/portkeeper/infrastructure/mailer"
)

const (
	// DefaultWorkers keeps switches sequential unless configured otherwise.
	DefaultWorkers = 1
	// MaxWorkers caps concurrent switch sessions.
	MaxWorkers = 16
	// DefaultTimeout bounds the whole session with one switch.
	DefaultTimeout = 2 * time.Minute
	// DefaultIncrement is added to the preserved port-security maximum.
	DefaultIncrement = 1
	// FileName is the configuration file looked up in the search path.
	FileName = "portkeeper.yaml"
)

// ReportConfig locates compliance report files.
type ReportConfig struct {
	Dir string `yaml:"dir"`
}

// HistoryConfig enables the run history database when Path is set.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Config defines the global configuration
type Config struct {
	Platform         string                    `yaml:"platform"`
	Transport        string                    `yaml:"transport"`
	Username         string                    `yaml:"username"`
	Password         string                    `yaml:"password"`
	EnablePassword   string                    `yaml:"enable_password"`
	InterfacePattern string                    `yaml:"interface_pattern"`
	Workers          int                       `yaml:"workers"`
	Timeout          time.Duration             `yaml:"timeout"`
	Increment        *int                      `yaml:"increment"`
	Baseline         *entities.BaselineProfile `yaml:"baseline"`
	Log              logging.Config            `yaml:"log"`
	Report           ReportConfig              `yaml:"report"`
	Mail             mailer.Config             `yaml:"mail"`
	History          HistoryConfig             `yaml:"history"`
	Switches         []entities.SwitchConfig   `yaml:"switches"`

	verbosity int
}

// Profile returns the configured baseline, or the workstation default.
func (c *Config) Profile() entities.BaselineProfile {
	if c.Baseline == nil {
		return entities.DefaultBaselineProfile()
	}
	return c.Baseline.WithDefaults()
}

// MaxMACIncrement returns the configured increment, defaulting to 1.
func (c *Config) MaxMACIncrement() int {
	if c.Increment == nil {
		return DefaultIncrement
	}
	return *c.Increment
}

// SearchPaths lists the locations tried when no explicit file is given.
func SearchPaths() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "portkeeper", FileName))
	}
	return append(paths, filepath.Join("/etc/portkeeper", FileName))
}

// Locate returns explicit when set, otherwise the first existing file in
// SearchPaths. An empty result means no file was found.
func Locate(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, path := range SearchPaths() {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func validatePlatform(platform string) error {
	switch platform {
	case "ios", "dmos", "auto":
		return nil
	default:
		return fmt.Errorf("platform %s is invalid, must be 'ios', 'dmos', or 'auto'", platform)
	}
}

func validateTransport(transport string) error {
	if transport != "telnet" && transport != "ssh" {
		return fmt.Errorf("transport %s is invalid, must be 'telnet' or 'ssh'", transport)
	}
	return nil
}

// Load reads and validates the YAML file at yamlFile. An empty path yields
// the defaults. Credentials may still be blank afterwards; see
// ResolveCredentials.
func Load(yamlFile string, verbosityLevel int) (*Config, error) {
	var cfg Config
	if yamlFile != "" {
		data, err := os.ReadFile(yamlFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read YAML file %s: %v", yamlFile, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %v", err)
		}
	}
	if err := cfg.normalize(verbosityLevel); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize(verbosityLevel int) error {
	debug := verbosityLevel == 1 || verbosityLevel == 3
	c.verbosity = verbosityLevel
	var problems []string

	c.Platform = strings.ToLower(strings.TrimSpace(c.Platform))
	if c.Platform == "" {
		c.Platform = "ios"
	}
	if err := validatePlatform(c.Platform); err != nil {
		problems = append(problems, err.Error())
	}

	c.Transport = strings.ToLower(strings.TrimSpace(c.Transport))
	if c.Transport == "" {
		c.Transport = "telnet"
	}
	if err := validateTransport(c.Transport); err != nil {
		problems = append(problems, err.Error())
	}

	switch {
	case c.Workers == 0:
		c.Workers = DefaultWorkers
	case c.Workers < 0:
		problems = append(problems, fmt.Sprintf("workers must be positive, got %d", c.Workers))
	case c.Workers > MaxWorkers:
		logrus.Warnf("workers %d capped at %d", c.Workers, MaxWorkers)
		c.Workers = MaxWorkers
	}

	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	} else if c.Timeout < 0 {
		problems = append(problems, fmt.Sprintf("timeout must be positive, got %s", c.Timeout))
	}

	if c.Increment != nil && *c.Increment < 0 {
		problems = append(problems, fmt.Sprintf("increment must not be negative, got %d", *c.Increment))
	}

	if c.InterfacePattern != "" {
		if _, err := regexp.Compile(c.InterfacePattern); err != nil {
			problems = append(problems, fmt.Sprintf("interface_pattern %q does not compile: %v", c.InterfacePattern, err))
		}
	}

	problems = append(problems, validateProfile(c.Profile())...)

	seen := make(map[string]bool)
	for i, sw := range c.Switches {
		sw.Target = strings.TrimSpace(sw.Target)
		if sw.Target == "" {
			problems = append(problems, fmt.Sprintf("target is required for switch %d", i))
			continue
		}
		if seen[sw.Target] {
			problems = append(problems, fmt.Sprintf("switch %s is defined more than once", sw.Target))
		}
		seen[sw.Target] = true

		sw = c.inherit(sw, debug)
		if err := validateTransport(sw.Transport); err != nil {
			problems = append(problems, fmt.Sprintf("switch %s: %v", sw.Target, err))
		}
		if err := validatePlatform(sw.Platform); err != nil {
			problems = append(problems, fmt.Sprintf("switch %s: %v", sw.Target, err))
		}
		if sw.InterfacePattern != "" {
			if _, err := regexp.Compile(sw.InterfacePattern); err != nil {
				problems = append(problems, fmt.Sprintf("switch %s: interface_pattern does not compile: %v", sw.Target, err))
			}
		}
		sw.VerbosityLevel = verbosityLevel
		c.Switches[i] = sw
	}

	if debug {
		logrus.Debugf("global values: platform=%s transport=%s workers=%d timeout=%s switches=%d",
			c.Platform, c.Transport, c.Workers, c.Timeout, len(c.Switches))
	}

	if len(problems) > 0 {
		return entities.NewValidationError(problems...)
	}
	return nil
}

// inherit fills blank per-switch settings from the globals.
func (c *Config) inherit(sw entities.SwitchConfig, debug bool) entities.SwitchConfig {
	log := logrus.WithField("switch", sw.Target)

	sw.Transport = strings.ToLower(strings.TrimSpace(sw.Transport))
	if sw.Transport == "" {
		sw.Transport = c.Transport
		if debug {
			log.Debugf("no transport defined, using global %s", c.Transport)
		}
	}
	sw.Platform = strings.ToLower(strings.TrimSpace(sw.Platform))
	if sw.Platform == "" {
		sw.Platform = c.Platform
		if debug {
			log.Debugf("no platform defined, using global %s", c.Platform)
		}
	}
	if sw.Username == "" {
		sw.Username = c.Username
	}
	if sw.Password == "" {
		sw.Password = c.Password
	}
	if sw.EnablePassword == "" {
		sw.EnablePassword = c.EnablePassword
	}
	if sw.InterfacePattern == "" {
		sw.InterfacePattern = c.InterfacePattern
	}
	return sw
}

func validateProfile(p entities.BaselineProfile) []string {
	var problems []string
	if len(p.Required) == 0 {
		problems = append(problems, "baseline.required must list at least one fragment")
	}
	for i, f := range p.Required {
		if strings.TrimSpace(f) == "" {
			problems = append(problems, fmt.Sprintf("baseline.required[%d] is empty", i))
		}
	}
	for i, f := range p.Forbidden {
		if strings.TrimSpace(f) == "" {
			problems = append(problems, fmt.Sprintf("baseline.forbidden[%d] is empty", i))
		}
	}
	if p.MatchMode != entities.MatchSubstring && p.MatchMode != entities.MatchPrefix {
		problems = append(problems, fmt.Sprintf("baseline.match_mode %q is invalid, must be 'substring' or 'prefix'", p.MatchMode))
	}
	return problems
}

// Select returns the switches to process. With no names every configured
// switch is returned. Names missing from the file become switches that
// inherit all globals. Repeated names keep their first position.
func (c *Config) Select(names []string) []entities.SwitchConfig {
	if len(names) == 0 {
		out := make([]entities.SwitchConfig, len(c.Switches))
		copy(out, c.Switches)
		return out
	}
	byTarget := make(map[string]entities.SwitchConfig, len(c.Switches))
	for _, sw := range c.Switches {
		byTarget[sw.Target] = sw
	}
	out := make([]entities.SwitchConfig, 0, len(names))
	picked := make(map[string]bool, len(names))
	for _, name := range names {
		if picked[name] {
			continue
		}
		picked[name] = true
		if sw, ok := byTarget[name]; ok {
			out = append(out, sw)
			continue
		}
		sw := c.inherit(entities.SwitchConfig{Target: name}, false)
		sw.VerbosityLevel = c.verbosity
		out = append(out, sw)
	}
	return out
}
