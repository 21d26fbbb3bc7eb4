package ports

import "github.com/carlosrabelo/portkeeper/domain/entities"

// ReportSink receives finished compliance records and log lines. It is
// append-only; nothing is ever read back.
type ReportSink interface {
	Record(record entities.ComplianceRecord) error
	Log(entry string)
}
