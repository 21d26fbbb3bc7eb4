package ios

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

var workstationPattern = regexp.MustCompile(`W-I|WKSTN|WKST`)

const vlanBrief = `VLAN Name                             Status    Ports
---- -------------------------------- --------- -------------------------------
1    default                          active    Gi1/0/47, Gi1/0/48
20   SERVERS                          active    Gi1/0/20
50   WKSTN-2F                         active    Gi1/0/1, Gi1/0/2, Gi1/0/3, Gi1/0/4
                                                Gi1/0/5, Gi1/0/24
60   W-I-LAB                          active    Gi1/0/30
1002 fddi-default                     act/unsup
`

func TestParseIOSVLANMembers(t *testing.T) {
	got := parseIOSVLANMembers(vlanBrief, workstationPattern)
	expected := []string{"Gi1/0/1", "Gi1/0/2", "Gi1/0/3", "Gi1/0/4", "Gi1/0/5", "Gi1/0/24", "Gi1/0/30"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected members: %v", got)
	}
}

func TestParseIOSVLANMembersNoMatch(t *testing.T) {
	got := parseIOSVLANMembers(vlanBrief, regexp.MustCompile(`PRINTERS`))
	if len(got) != 0 {
		t.Fatalf("expected no members, got %v", got)
	}
}

func TestParseIOSTrunks(t *testing.T) {
	output := `Port        Mode         Encapsulation  Status        Native vlan
Gi1/0/24    on           802.1q         trunking      10
Po1         on           802.1q         trunking      1
`
	got := parseIOSTrunks(output)
	expected := map[string]bool{"gi1/0/24": true, "po1": true}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected trunk map: %v", got)
	}
}

func TestParseIOSRunningInterface(t *testing.T) {
	output := "Building configuration...\r\n\r\nCurrent configuration : 312 bytes\r\n!\r\ninterface GigabitEthernet1/0/5\r\n description PRINTER-2F\r\n switchport access vlan 50\r\n spanning-tree portfast\r\nend\r\n"
	got := parseIOSRunningInterface(output)
	expected := entities.ConfigLineSet{
		"Building configuration...",
		"",
		"Current configuration : 312 bytes",
		"!",
		"interface GigabitEthernet1/0/5",
		"description PRINTER-2F",
		"switchport access vlan 50",
		"spanning-tree portfast",
		"end",
		"",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected config lines: %q", got)
	}
}

type fakeRepo struct {
	responses map[string]string
	errs      map[string]error
	executed  []string
}

func (f *fakeRepo) Connect(ctx context.Context) error { return nil }
func (f *fakeRepo) Disconnect()                       {}
func (f *fakeRepo) IsConnected() bool                 { return true }
func (f *fakeRepo) ExecuteCommand(ctx context.Context, cmd string) (string, error) {
	f.executed = append(f.executed, cmd)
	if err, ok := f.errs[cmd]; ok {
		return "", err
	}
	return f.responses[cmd], nil
}

func TestDiscoverAccessInterfacesSkipsTrunks(t *testing.T) {
	repo := &fakeRepo{responses: map[string]string{
		"show vlan brief":       vlanBrief,
		"show interfaces trunk": "Port        Mode\nGi1/0/24    on\n",
	}}
	got, err := New().DiscoverAccessInterfaces(context.Background(), repo, entities.SwitchConfig{}, workstationPattern)
	if err != nil {
		t.Fatalf("DiscoverAccessInterfaces() error = %v", err)
	}
	expected := []string{"Gi1/0/1", "Gi1/0/2", "Gi1/0/3", "Gi1/0/4", "Gi1/0/5", "Gi1/0/30"}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("unexpected interfaces: %v", got)
	}
}

func TestDiscoverAccessInterfacesError(t *testing.T) {
	repo := &fakeRepo{errs: map[string]error{"show vlan brief": errors.New("read error")}}
	if _, err := New().DiscoverAccessInterfaces(context.Background(), repo, entities.SwitchConfig{}, workstationPattern); err == nil {
		t.Fatal("expected error")
	}
}

func TestReadInterfaceConfigRejected(t *testing.T) {
	repo := &fakeRepo{responses: map[string]string{
		"show running-config interface Gi9/9/9": "% Invalid input detected at '^' marker.",
	}}
	if _, err := New().ReadInterfaceConfig(context.Background(), repo, entities.SwitchConfig{}, "Gi9/9/9"); err == nil {
		t.Fatal("expected rejection error")
	}
}

func TestDialect(t *testing.T) {
	d := New()
	if got := d.InterfaceSelector("Gi1/0/5"); got != "interface Gi1/0/5" {
		t.Errorf("InterfaceSelector() = %q", got)
	}
	if got := d.AccessVLANCommand(50); got != "switchport access vlan 50" {
		t.Errorf("AccessVLANCommand() = %q", got)
	}
	if got := d.PortSecurityMaximumCommand(3); got != "switchport port-security maximum 3" {
		t.Errorf("PortSecurityMaximumCommand() = %q", got)
	}
	if !reflect.DeepEqual(d.SaveCommands(), []string{"write memory"}) {
		t.Errorf("SaveCommands() = %v", d.SaveCommands())
	}
	if !d.CommandRejected("% Incomplete command.") || d.CommandRejected("Gi1/0/5 configured") {
		t.Error("CommandRejected() misclassified output")
	}
}

func TestAuthenticationSequence(t *testing.T) {
	seq := New().GetAuthenticationSequence("admin", "secret", "enable")
	if len(seq) != 6 {
		t.Fatalf("expected 6 prompts, got %d", len(seq))
	}
	if seq[0].WaitFor != "Username:" || seq[0].SendCmd != "admin\n" {
		t.Errorf("unexpected first prompt: %+v", seq[0])
	}
	if seq[3].SendCmd != "enable\n" {
		t.Errorf("unexpected enable password prompt: %+v", seq[3])
	}
}
