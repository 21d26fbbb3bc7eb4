package entities

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseConfigLines(t *testing.T) {
	raw := "interface Gi1/0/1\r\n description Printer-3F \n\n switchport access vlan 50\n"
	lines := ParseConfigLines(raw)

	assert.Equal(t, ConfigLineSet{
		"interface Gi1/0/1",
		"description Printer-3F",
		"",
		"switchport access vlan 50",
		"",
	}, lines)
}

func TestParseConfigLines_Empty(t *testing.T) {
	assert.Equal(t, ConfigLineSet{""}, ParseConfigLines(""))
}

func TestLastToken(t *testing.T) {
	assert.Equal(t, "50", LastToken("switchport access vlan 50"))
	assert.Equal(t, "50", LastToken("switchport access vlan   50  "))
	assert.Equal(t, "", LastToken("   "))
}

func TestToken(t *testing.T) {
	var absent Token
	assert.Equal(t, "x", absent.Or("x"))
	assert.Equal(t, 1, absent.Int(1))

	present := Captured("20")
	assert.Equal(t, "20", present.Or("x"))
	assert.Equal(t, 20, present.Int(1))

	assert.Equal(t, 1, Captured("abc").Int(1))
	assert.Equal(t, 1, Captured("0").Int(1))
	assert.Equal(t, 1, Captured("-4").Int(1))
}

func TestPersistentAttributes_Defaults(t *testing.T) {
	var attrs PersistentAttributes

	assert.False(t, attrs.HasDescription())
	assert.Equal(t, DefaultVLAN, attrs.EffectiveVLAN())
	assert.Equal(t, DefaultMaxMAC, attrs.EffectiveMaxMAC())
}

func TestPersistentAttributes_GenuineVLANOneIsPresent(t *testing.T) {
	attrs := PersistentAttributes{VlanID: Captured("1")}

	assert.True(t, attrs.VlanID.Present)
	assert.Equal(t, 1, attrs.EffectiveVLAN())
}

func TestBaselineProfile_WithDefaults(t *testing.T) {
	profile := BaselineProfile{Required: []string{"spanning-tree portfast"}}.WithDefaults()

	assert.Equal(t, DefaultVLANFragment, profile.VLANFragment)
	assert.Equal(t, DefaultTemplateFragment, profile.TemplateFragment)
	assert.Equal(t, MatchSubstring, profile.MatchMode)
	assert.Equal(t, []string{"spanning-tree portfast"}, profile.Required)
}

func TestDefaultBaselineProfile_LinkStatusSyntax(t *testing.T) {
	required := DefaultBaselineProfile().Required
	assert.Contains(t, required, "no logging event link-status")
	assert.NotContains(t, required, "no logging event link status")
}

func TestRunMode(t *testing.T) {
	assert.True(t, ModeSimulate.IsSandbox())
	assert.False(t, ModeApply.IsSandbox())
	assert.Equal(t, "simulate", ModeSimulate.String())
	assert.Equal(t, "apply", ModeApply.String())
}

func TestComplianceVerdict_Record(t *testing.T) {
	verdict := ComplianceVerdict{Compliant: true, VlanID: Captured("50")}
	record := verdict.Record("sw1", "Gi1/0/1")

	assert.Equal(t, "sw1", record.SwitchID)
	assert.Equal(t, "Gi1/0/1", record.InterfaceID)
	assert.True(t, record.Compliant)
	assert.Equal(t, "50", record.VlanID.Value)
	assert.False(t, record.TemplateName.Present)
}

func TestTargetErrorWrapping(t *testing.T) {
	err := NewTargetError("sw1", "Gi1/0/5", StageRead, fmt.Errorf("%w: read error", ErrSession))
	assert.True(t, errors.Is(err, ErrSession))
	assert.Equal(t, "sw1 Gi1/0/5: read failed: session failed: read error", err.Error())

	var target *TargetError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Equal(t, "sw1", target.Switch)
}

func TestValidationError(t *testing.T) {
	single := NewValidationError("workers must be positive")
	assert.Equal(t, "validation failed: workers must be positive", single.Error())
	assert.True(t, errors.Is(single, ErrValidationFailed))

	multi := NewValidationError("a", "b")
	assert.Contains(t, multi.Error(), "\n  - a\n  - b")
}
