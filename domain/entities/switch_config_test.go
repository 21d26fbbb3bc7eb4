package entities

import (
	"testing"
)

func TestSwitchConfig_IsDebugEnabled(t *testing.T) {
	tests := []struct {
		name           string
		verbosityLevel int
		expected       bool
	}{
		{name: "verbosity level 0", verbosityLevel: 0, expected: false},
		{name: "verbosity level 1", verbosityLevel: 1, expected: true},
		{name: "verbosity level 2", verbosityLevel: 2, expected: false},
		{name: "verbosity level 3", verbosityLevel: 3, expected: true},
		{name: "verbosity level 4", verbosityLevel: 4, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := SwitchConfig{VerbosityLevel: tt.verbosityLevel}
			if got := config.IsDebugEnabled(); got != tt.expected {
				t.Errorf("IsDebugEnabled() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSwitchConfig_IsRawOutputEnabled(t *testing.T) {
	tests := []struct {
		name           string
		verbosityLevel int
		expected       bool
	}{
		{name: "verbosity level 0", verbosityLevel: 0, expected: false},
		{name: "verbosity level 1", verbosityLevel: 1, expected: false},
		{name: "verbosity level 2", verbosityLevel: 2, expected: true},
		{name: "verbosity level 3", verbosityLevel: 3, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := SwitchConfig{VerbosityLevel: tt.verbosityLevel}
			if got := config.IsRawOutputEnabled(); got != tt.expected {
				t.Errorf("IsRawOutputEnabled() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSwitchConfig_PlatformID(t *testing.T) {
	tests := []struct {
		name     string
		platform string
		expected string
	}{
		{name: "ios platform", platform: "ios", expected: "ios"},
		{name: "dmos platform", platform: "dmos", expected: "dmos"},
		{name: "uppercase platform", platform: "IOS", expected: "ios"},
		{name: "platform with spaces", platform: "  dmos  ", expected: "dmos"},
		{name: "empty platform", platform: "", expected: "ios"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := SwitchConfig{Platform: tt.platform}
			if got := config.PlatformID(); got != tt.expected {
				t.Errorf("PlatformID() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSwitchConfig_TransportPort(t *testing.T) {
	tests := []struct {
		name     string
		config   SwitchConfig
		expected int
	}{
		{name: "telnet default", config: SwitchConfig{Transport: "telnet"}, expected: 23},
		{name: "ssh default", config: SwitchConfig{Transport: "ssh"}, expected: 22},
		{name: "explicit port", config: SwitchConfig{Transport: "ssh", Port: 2222}, expected: 2222},
		{name: "empty transport", config: SwitchConfig{}, expected: 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.TransportPort(); got != tt.expected {
				t.Errorf("TransportPort() = %d, want %d", got, tt.expected)
			}
		})
	}
}
