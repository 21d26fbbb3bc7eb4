package services

import (
	"time"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

// Workflow names a batch operation.
type Workflow string

const (
	WorkflowAudit       Workflow = "audit"
	WorkflowReconfigure Workflow = "modify"
)

// SwitchResult is the outcome for one switch. When Err is set the switch
// failed as a whole and Records is empty.
type SwitchResult struct {
	Switch   string
	Platform string
	Records  []entities.ComplianceRecord
	Plans    []entities.ReconfigurationPlan
	// Applied counts plans pushed to the device.
	Applied int
	Saved   bool
	// InterfaceErrors are failures of single interfaces on an otherwise
	// healthy switch.
	InterfaceErrors []*entities.TargetError
	Err             *entities.TargetError
	Duration        time.Duration
}

// Failed reports whether the switch was skipped.
func (r SwitchResult) Failed() bool {
	return r.Err != nil
}

// BatchResult holds per-switch results in input order.
type BatchResult struct {
	Workflow   Workflow
	Mode       entities.RunMode
	StartedAt  time.Time
	FinishedAt time.Time
	Switches   []SwitchResult
}

// Records returns every compliance record, switch by switch in input order.
func (b *BatchResult) Records() []entities.ComplianceRecord {
	var out []entities.ComplianceRecord
	for _, sw := range b.Switches {
		out = append(out, sw.Records...)
	}
	return out
}

// Errors returns every switch and interface failure in input order.
func (b *BatchResult) Errors() []*entities.TargetError {
	var out []*entities.TargetError
	for _, sw := range b.Switches {
		if sw.Err != nil {
			out = append(out, sw.Err)
		}
		out = append(out, sw.InterfaceErrors...)
	}
	return out
}

// Summary counts a batch.
type Summary struct {
	Switches       int
	FailedSwitches int
	Interfaces     int
	Compliant      int
	NonCompliant   int
	FailedPorts    int
	Plans          int
	Applied        int
}

// Summary tallies the batch.
func (b *BatchResult) Summary() Summary {
	var s Summary
	s.Switches = len(b.Switches)
	for _, sw := range b.Switches {
		if sw.Failed() {
			s.FailedSwitches++
		}
		s.FailedPorts += len(sw.InterfaceErrors)
		s.Plans += len(sw.Plans)
		s.Applied += sw.Applied
		for _, rec := range sw.Records {
			s.Interfaces++
			if rec.Compliant {
				s.Compliant++
			} else {
				s.NonCompliant++
			}
		}
	}
	return s
}
