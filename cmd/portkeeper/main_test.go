package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosrabelo/portkeeper/application/services"
	"github.com/carlosrabelo/portkeeper/domain/entities"
	"github.com/carlosrabelo/portkeeper/infrastructure/report"
)

type noPrompter struct{}

func (noPrompter) Prompt(label string, secret bool) (string, error) {
	return "", errors.New("no terminal")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// execute runs the CLI against a temporary configuration file.
func execute(t *testing.T, configYAML string, args ...string) (string, error) {
	t.Helper()
	path := writeFile(t, t.TempDir(), "portkeeper.yaml", configYAML)

	var out bytes.Buffer
	a := &app{
		out:    &out,
		getenv: func(string) string { return "" },
		prompt: noPrompter{},
	}
	root := newRootCmd(a)
	root.SetArgs(append([]string{"--config", path}, args...))
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "portkeeper dev")
	assert.Contains(t, out, "platforms: ios, dmos")
}

func TestVerbosityValidation(t *testing.T) {
	for _, level := range []string{"-1", "4", "5"} {
		t.Run(level, func(t *testing.T) {
			_, err := execute(t, "", "history", "--verbose", level)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--verbose must be 0, 1, 2, or 3")
		})
	}
}

func TestInvalidConfiguration(t *testing.T) {
	_, err := execute(t, "platform: juniper\n", "history")
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrValidationFailed)
	assert.Contains(t, err.Error(), "platform juniper is invalid")
}

func TestModifyFlagValidation(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.txt", "# nothing here\n\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing flags", []string{"modify"}, "required flag"},
		{"negative increment", []string{"modify", "-s", "sw1", "-t", empty, "--increment", "-1"}, "--increment must not be negative"},
		{"empty template", []string{"modify", "-s", "sw1", "-t", empty}, "has no commands"},
		{"missing template", []string{"modify", "-s", "sw1", "-t", filepath.Join(dir, "absent.txt")}, "absent.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "username: admin\npassword: secret\n", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAuditWithoutSwitches(t *testing.T) {
	_, err := execute(t, "username: admin\npassword: secret\n", "audit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no switches to audit")
}

func TestAuditMissingCredentials(t *testing.T) {
	_, err := execute(t, "switches:\n  - target: 192.0.2.10\n", "audit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no terminal")
}

func TestHistoryNotConfigured(t *testing.T) {
	_, err := execute(t, "", "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history.path is not configured")
}

func TestHistoryListsRuns(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	h, err := report.OpenHistory(dbPath)
	require.NoError(t, err)
	started := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	run := report.NewRun("audit", entities.ModeSimulate, started, started.Add(time.Minute), 2, 1,
		[]entities.ComplianceRecord{
			{SwitchID: "sw1", InterfaceID: "Gi1/0/1", VlanID: entities.Captured("50"), Compliant: true},
			{SwitchID: "sw1", InterfaceID: "Gi1/0/2", Compliant: false},
		})
	require.NoError(t, h.Save(context.Background(), run))
	require.NoError(t, h.Close())

	cfg := "history:\n  path: " + dbPath + "\n"

	out, err := execute(t, cfg, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, run.ID)
	assert.Contains(t, out, "2024-03-01 08:00:00")
	assert.Contains(t, out, "simulate")

	out, err = execute(t, cfg, "history", "--run", run.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Gi1/0/1")
	assert.Contains(t, out, "Gi1/0/2")
	assert.Contains(t, out, "non-compliant")
}

func TestPrintAudit(t *testing.T) {
	result := &services.BatchResult{
		Workflow: services.WorkflowAudit,
		Switches: []services.SwitchResult{
			{Switch: "sw1", Records: []entities.ComplianceRecord{
				{SwitchID: "sw1", InterfaceID: "Gi1/0/1", VlanID: entities.Captured("50"), TemplateName: entities.Captured("WORKSTATION"), Compliant: true},
				{SwitchID: "sw1", InterfaceID: "Gi1/0/2", Compliant: false},
			}},
			{Switch: "sw2", Err: entities.NewTargetError("sw2", "", entities.StageResolve, entities.ErrUnreachable)},
		},
	}

	var out bytes.Buffer
	printAudit(&out, result, "reports/interface-check_2024-03-01_08-00-00.csv")

	text := out.String()
	assert.Contains(t, text, "WORKSTATION")
	assert.Contains(t, text, "Gi1/0/2")
	assert.Contains(t, text, "sw2: resolve failed")
	assert.Contains(t, text, "2 switches (1 failed), 2 interfaces")
	assert.Contains(t, text, "1 compliant")
	assert.Contains(t, text, "1 non-compliant")
	assert.Contains(t, text, "Report: reports/interface-check_2024-03-01_08-00-00.csv")
}

func TestPrintReconfigure(t *testing.T) {
	plan := entities.ReconfigurationPlan{
		Interface: "Gi1/0/1",
		Commands:  []string{"interface Gi1/0/1", "switchport access vlan 50"},
	}

	var out bytes.Buffer
	printReconfigure(&out, &services.BatchResult{
		Mode:     entities.ModeSimulate,
		Switches: []services.SwitchResult{{Switch: "sw1", Plans: []entities.ReconfigurationPlan{plan}}},
	})
	assert.Contains(t, out.String(), "  switchport access vlan 50")
	assert.Contains(t, out.String(), "1 plans simulated")

	out.Reset()
	printReconfigure(&out, &services.BatchResult{
		Mode:     entities.ModeApply,
		Switches: []services.SwitchResult{{Switch: "sw1", Plans: []entities.ReconfigurationPlan{plan}, Applied: 1, Saved: true}},
	})
	assert.Contains(t, out.String(), "1 of 1 plans applied")
	assert.Contains(t, out.String(), "configuration saved on sw1")
}

func TestPrintRunsAlignsColoredRows(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = noColor })

	started := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	printRuns(&out, []report.Run{
		{ID: "run-a", StartedAt: started, Workflow: "audit", Mode: "simulate", Switches: 3, Failed: 1, Interfaces: 12, Compliant: 10, NonCompliant: 2},
		{ID: "run-b", StartedAt: started, Workflow: "audit", Mode: "simulate", Switches: 2, Failed: 0, Interfaces: 7, Compliant: 7},
	})

	ansi := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	assert.True(t, ansi.MatchString(out.String()), "expected colored output")

	lines := strings.Split(strings.TrimRight(ansi.ReplaceAllString(out.String(), ""), "\n"), "\n")
	require.Len(t, lines, 3)
	col := strings.Index(lines[0], "INTERFACES")
	require.Positive(t, col)
	for i, want := range []string{"12", "7"} {
		row := lines[i+1]
		require.Greater(t, len(row), col)
		assert.Equal(t, byte(' '), row[col-1], "row %d misaligned: %q", i, row)
		assert.Equal(t, want, strings.Fields(row[col:])[0], "row %d misaligned: %q", i, row)
	}
	assert.True(t, strings.HasSuffix(lines[1], "degraded"))
	assert.True(t, strings.HasSuffix(lines[2], "ok"))
}
