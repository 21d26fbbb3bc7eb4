package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

func sampleRecords() []entities.ComplianceRecord {
	return []entities.ComplianceRecord{
		{
			SwitchID:     "sw1",
			InterfaceID:  "Gi1/0/5",
			VlanID:       entities.Captured("50"),
			TemplateName: entities.Captured("WORKSTATION"),
			Compliant:    true,
		},
		{
			SwitchID:    "sw1",
			InterfaceID: "Gi1/0/7",
			Compliant:   false,
		},
	}
}

func TestCSVSinkRows(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewCSVSink(&buf, nil)
	require.NoError(t, err)

	for _, rec := range sampleRecords() {
		require.NoError(t, sink.Record(rec))
	}
	require.NoError(t, sink.Close())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"switch", "interface", "vlan", "template", "compliant"},
		{"sw1", "Gi1/0/5", "50", "WORKSTATION", "true"},
		{"sw1", "Gi1/0/7", "x", "x", "false"},
	}, rows)
}

func TestCSVSinkGenuineVLANOne(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewCSVSink(&buf, nil)
	require.NoError(t, err)
	require.NoError(t, sink.Record(entities.ComplianceRecord{SwitchID: "sw1", InterfaceID: "Gi1/0/1", VlanID: entities.Captured("1")}))

	assert.Contains(t, buf.String(), "sw1,Gi1/0/1,1,x,false")
}

func TestNewCSVFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	started := time.Date(2026, 3, 4, 5, 6, 7, 0, time.Local)

	sink, err := NewCSVFile(dir, started, nil)
	require.NoError(t, err)
	require.NoError(t, sink.Record(sampleRecords()[0]))
	require.NoError(t, sink.Close())

	assert.Equal(t, filepath.Join(dir, "interface-check_2026-03-04_05-06-07.csv"), sink.Path())
	data, err := os.ReadFile(sink.Path())
	require.NoError(t, err)
	assert.Equal(t, "switch,interface,vlan,template,compliant\nsw1,Gi1/0/5,50,WORKSTATION,true\n", string(data))
}

func TestNewRunCounts(t *testing.T) {
	start := time.Now()
	run := NewRun("audit", entities.ModeSimulate, start, start.Add(time.Minute), 2, 1, sampleRecords())

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "simulate", run.Mode)
	assert.Equal(t, 2, run.Interfaces)
	assert.Equal(t, 1, run.Compliant)
	assert.Equal(t, 1, run.NonCompliant)
	require.Len(t, run.Records, 2)
	assert.Equal(t, "x", run.Records[1].VLAN)
	assert.Equal(t, run.ID, run.Records[0].RunID)
}

func TestHistorySaveAndRecent(t *testing.T) {
	ctx := context.Background()
	history, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer history.Close()

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	older := NewRun("audit", entities.ModeSimulate, base, base.Add(time.Minute), 1, 0, sampleRecords())
	newer := NewRun("audit", entities.ModeSimulate, base.Add(time.Hour), base.Add(2*time.Hour), 3, 1, sampleRecords()[:1])

	require.NoError(t, history.Save(ctx, older))
	require.NoError(t, history.Save(ctx, newer))

	runs, err := history.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Equal(t, 3, runs[0].Switches)

	runs, err = history.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	records, err := history.Records(ctx, older.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Gi1/0/5", records[0].Interface)
	assert.True(t, records[0].Compliant)
}
