package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

const (
	// AbsentValue stands in for a VLAN or template no line carried.
	AbsentValue = "x"
	// FilePrefix starts every compliance report file name.
	FilePrefix = "interface-check_"
	// FileTimeLayout stamps report file names.
	FileTimeLayout = "2006-01-02_15-04-05"
)

// Header is the first row of every compliance report.
var Header = []string{"switch", "interface", "vlan", "template", "compliant"}

// CSVSink writes compliance records as CSV rows and forwards log entries to
// the run log.
type CSVSink struct {
	mu     sync.Mutex
	writer *csv.Writer
	closer io.Closer
	path   string
	log    logrus.FieldLogger
}

// FileName returns the report name for a run started at t.
func FileName(t time.Time) string {
	return FilePrefix + t.Format(FileTimeLayout) + ".csv"
}

// NewCSVFile creates the report file for a run started at t inside dir.
func NewCSVFile(dir string, t time.Time, log logrus.FieldLogger) (*CSVSink, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(t))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report %s: %w", path, err)
	}
	sink, err := NewCSVSink(f, log)
	if err != nil {
		f.Close()
		return nil, err
	}
	sink.closer = f
	sink.path = path
	return sink, nil
}

// NewCSVSink writes the header to w and returns a sink appending to it.
func NewCSVSink(w io.Writer, log logrus.FieldLogger) (*CSVSink, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	sink := &CSVSink{writer: csv.NewWriter(w), log: log}
	if err := sink.writer.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write report header: %w", err)
	}
	sink.writer.Flush()
	return sink, sink.writer.Error()
}

// Record appends one row. Absent VLAN or template values are written as "x".
func (s *CSVSink) Record(record entities.ComplianceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := []string{
		record.SwitchID,
		record.InterfaceID,
		record.VlanID.Or(AbsentValue),
		record.TemplateName.Or(AbsentValue),
		strconv.FormatBool(record.Compliant),
	}
	if err := s.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write report row: %w", err)
	}
	s.writer.Flush()
	return s.writer.Error()
}

// Log writes entry to the run log.
func (s *CSVSink) Log(entry string) {
	s.log.Error(entry)
}

// Path returns the report file path, empty for writer-backed sinks.
func (s *CSVSink) Path() string {
	return s.path
}

// Close flushes pending rows and closes the underlying file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writer.Flush()
	err := s.writer.Error()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
		s.closer = nil
	}
	return err
}
