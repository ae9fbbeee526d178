package models

import (
	"strings"
	"time"

	"github.com/feedbridge/backend/internal/domain/order"
)

// ImportRunLogModel is the persistence model for an import run log. Outcome
// lines are stored newline-joined; only one row survives at a time.
type ImportRunLogModel struct {
	BaseModel
	FileName   string    `gorm:"type:varchar(255)"`
	DryRun     bool      `gorm:"not null;default:false"`
	RepairMode bool      `gorm:"not null;default:false"`
	Created    int       `gorm:"not null;default:0"`
	Skipped    int       `gorm:"not null;default:0"`
	Repaired   int       `gorm:"not null;default:0"`
	Failed     int       `gorm:"not null;default:0"`
	LogText    string    `gorm:"type:text"`
	StartedAt  time.Time `gorm:"not null"`
	FinishedAt time.Time
}

// TableName returns the table name for GORM
func (ImportRunLogModel) TableName() string {
	return "import_run_logs"
}

// ToDomain converts the persistence model to a domain ImportRunLog.
func (m *ImportRunLogModel) ToDomain() *order.ImportRunLog {
	log := &order.ImportRunLog{
		BaseEntity: m.BaseModel.ToDomain(),
		FileName:   m.FileName,
		DryRun:     m.DryRun,
		RepairMode: m.RepairMode,
		Created:    m.Created,
		Skipped:    m.Skipped,
		Repaired:   m.Repaired,
		Failed:     m.Failed,
		StartedAt:  m.StartedAt,
		FinishedAt: m.FinishedAt,
	}
	if m.LogText != "" {
		log.Lines = strings.Split(m.LogText, "\n")
	} else {
		log.Lines = make([]string, 0)
	}
	return log
}

// FromDomain populates the persistence model from a domain ImportRunLog.
func (m *ImportRunLogModel) FromDomain(log *order.ImportRunLog) {
	m.FromDomainBaseEntity(log.BaseEntity)
	m.FileName = log.FileName
	m.DryRun = log.DryRun
	m.RepairMode = log.RepairMode
	m.Created = log.Created
	m.Skipped = log.Skipped
	m.Repaired = log.Repaired
	m.Failed = log.Failed
	m.LogText = log.Text()
	m.StartedAt = log.StartedAt
	m.FinishedAt = log.FinishedAt
}

// ImportRunLogModelFromDomain creates a new persistence model from a domain ImportRunLog.
func ImportRunLogModelFromDomain(log *order.ImportRunLog) *ImportRunLogModel {
	m := &ImportRunLogModel{}
	m.FromDomain(log)
	return m
}
