package entities

import "strings"

// AuthPrompt represents a prompt-response pair during authentication
type AuthPrompt struct {
	WaitFor string // prompt to wait for
	SendCmd string // command to send (empty means just wait)
}

// SwitchConfig defines the connection settings for a single switch
type SwitchConfig struct {
	Target           string `yaml:"target"`
	Platform         string `yaml:"platform"`
	Transport        string `yaml:"transport"`
	Port             int    `yaml:"port"`
	Username         string `yaml:"username"`
	Password         string `yaml:"password"`
	EnablePassword   string `yaml:"enable_password"`
	InterfacePattern string `yaml:"interface_pattern"`
	VerbosityLevel   int    `yaml:"-"`
}

// IsDebugEnabled returns true if debug logs are enabled
func (sc SwitchConfig) IsDebugEnabled() bool {
	return sc.VerbosityLevel == 1 || sc.VerbosityLevel == 3
}

// IsRawOutputEnabled returns true if raw switch output is enabled
func (sc SwitchConfig) IsRawOutputEnabled() bool {
	return sc.VerbosityLevel == 2 || sc.VerbosityLevel == 3
}

// PlatformID returns the normalized platform name, defaulting to ios.
func (sc SwitchConfig) PlatformID() string {
	platform := strings.ToLower(strings.TrimSpace(sc.Platform))
	if platform == "" {
		return "ios"
	}
	return platform
}

// TransportPort returns the TCP port for the configured transport.
func (sc SwitchConfig) TransportPort() int {
	if sc.Port > 0 {
		return sc.Port
	}
	if sc.Transport == "ssh" {
		return 22
	}
	return 23
}
