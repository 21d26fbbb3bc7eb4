package dmos

import (
	"context"
	"reflect"
	"regexp"
	"testing"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

const showVLAN = `VLAN 1 [DefaultVlan]: static, active
   Untagged Ports: ethernet 1/1 ethernet 1/2
VLAN 50 [WKSTN-2F]: static, active
   Tagged Ports:   ethernet 1/24
   Untagged Ports: ethernet 1/10 ethernet 1/4
VLAN 60 [W-I-LAB]: static, active
   Untagged Ports: Eth 1/12
VLAN 70: static, active
   Untagged Ports: ethernet 1/20
`

func TestParseDmOSVLANMembers(t *testing.T) {
	got := parseDmOSVLANMembers(showVLAN, regexp.MustCompile(`W-I|WKSTN|WKST`))
	expected := []string{"ethernet 1/4", "ethernet 1/10", "ethernet 1/12"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected members: %v", got)
	}
}

func TestParseDmOSRunningInterface(t *testing.T) {
	output := "interface ethernet 1/4\n description PRINTER\n switchport native vlan 50\n exit\n!\n"
	got := parseDmOSRunningInterface(output)
	expected := entities.ConfigLineSet{"interface ethernet 1/4", "description PRINTER", "switchport native vlan 50", "exit", "!", ""}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestNormalizePort(t *testing.T) {
	tests := map[string]string{
		"1/4":           "ethernet 1/4",
		"Eth 1/25":      "ethernet 1/25",
		"ethernet  1/3": "ethernet 1/3",
		"":              "",
	}
	for in, want := range tests {
		if got := normalizePort(in); got != want {
			t.Errorf("normalizePort(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompareInterfaceNames(t *testing.T) {
	if !compareInterfaceNames("ethernet 1/4", "ethernet 1/25") {
		t.Error("ethernet 1/4 should sort before ethernet 1/25")
	}
	if compareInterfaceNames("ethernet 2/1", "ethernet 1/9") {
		t.Error("unit 2 should sort after unit 1")
	}
}

type stubRepo struct {
	responses map[string]string
}

func (s *stubRepo) Connect(ctx context.Context) error { return nil }
func (s *stubRepo) Disconnect()                       {}
func (s *stubRepo) IsConnected() bool                 { return true }
func (s *stubRepo) ExecuteCommand(ctx context.Context, cmd string) (string, error) {
	return s.responses[cmd], nil
}

func TestReadInterfaceConfigNormalizesPort(t *testing.T) {
	repo := &stubRepo{responses: map[string]string{
		"show running-config interface ethernet 1/4": "interface ethernet 1/4\n switchport native vlan 50\n",
	}}
	lines, err := New().ReadInterfaceConfig(context.Background(), repo, entities.SwitchConfig{}, "1/4")
	if err != nil {
		t.Fatalf("ReadInterfaceConfig() error = %v", err)
	}
	if len(lines) != 3 || lines[1] != "switchport native vlan 50" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestDetect(t *testing.T) {
	repo := &stubRepo{responses: map[string]string{"show version": "DATACOM DmSwitch 3000"}}
	ok, err := New().Detect(context.Background(), repo)
	if err != nil || !ok {
		t.Fatalf("Detect() = %v, %v", ok, err)
	}
}

func TestDialect(t *testing.T) {
	d := New()
	if got := d.InterfaceSelector("Eth 1/4"); got != "interface ethernet 1/4" {
		t.Errorf("InterfaceSelector() = %q", got)
	}
	if got := d.AccessVLANCommand(50); got != "switchport native vlan 50" {
		t.Errorf("AccessVLANCommand() = %q", got)
	}
	if !reflect.DeepEqual(d.SaveCommands(), []string{"copy running-config startup-config", "save"}) {
		t.Errorf("SaveCommands() = %v", d.SaveCommands())
	}
}
