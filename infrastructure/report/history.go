package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/carlosrabelo/portkeeper/domain/entities"
)

// Run is one stored audit run.
type Run struct {
	ID           string    `gorm:"primaryKey;type:varchar(64)"`
	Workflow     string    `gorm:"type:varchar(16);not null"`
	Mode         string    `gorm:"type:varchar(16);not null"`
	StartedAt    time.Time `gorm:"index"`
	FinishedAt   time.Time
	Switches     int
	Failed       int
	Interfaces   int
	Compliant    int
	NonCompliant int
	ReportPath   string      `gorm:"type:text"`
	Records      []RunRecord `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// RunRecord is one compliance record of a run.
type RunRecord struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"type:varchar(64);index;not null"`
	Switch    string `gorm:"type:varchar(255)"`
	Interface string `gorm:"type:varchar(64)"`
	VLAN      string `gorm:"type:varchar(16)"`
	Template  string `gorm:"type:varchar(128)"`
	Compliant bool
}

// NewRun builds a run with a fresh id from finished compliance records.
func NewRun(workflow string, mode entities.RunMode, started, finished time.Time, switches, failed int, records []entities.ComplianceRecord) *Run {
	run := &Run{
		ID:         uuid.NewString(),
		Workflow:   workflow,
		Mode:       mode.String(),
		StartedAt:  started,
		FinishedAt: finished,
		Switches:   switches,
		Failed:     failed,
		Interfaces: len(records),
	}
	for _, rec := range records {
		if rec.Compliant {
			run.Compliant++
		} else {
			run.NonCompliant++
		}
		run.Records = append(run.Records, RunRecord{
			RunID:     run.ID,
			Switch:    rec.SwitchID,
			Interface: rec.InterfaceID,
			VLAN:      rec.VlanID.Or(AbsentValue),
			Template:  rec.TemplateName.Or(AbsentValue),
			Compliant: rec.Compliant,
		})
	}
	return run
}

// History stores audit runs in SQLite.
type History struct {
	db *gorm.DB
}

// OpenHistory opens (creating if needed) the history database at path.
func OpenHistory(path string) (*History, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
	}, &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Run{}, &RunRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return &History{db: db}, nil
}

// Save stores run and its records in one transaction.
func (h *History) Save(ctx context.Context, run *Run) error {
	return h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
}

// Recent returns up to limit runs, newest first, without their records.
func (h *History) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	var runs []Run
	err := h.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error
	return runs, err
}

// Records returns the stored records of one run in insertion order.
func (h *History) Records(ctx context.Context, runID string) ([]RunRecord, error) {
	var records []RunRecord
	err := h.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&records).Error
	return records, err
}

// Close releases the database handle.
func (h *History) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
