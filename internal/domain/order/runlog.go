package order

import (
	"context"
	"strings"
	"time"

	"github.com/feedbridge/backend/internal/domain/shared"
)

// ImportRunLog is the persisted, human-readable result of one import run.
// Only the latest run is retained; each run replaces the one before it.
type ImportRunLog struct {
	shared.BaseEntity
	FileName   string
	DryRun     bool
	RepairMode bool
	Created    int
	Skipped    int
	Repaired   int
	Failed     int
	Lines      []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewImportRunLog starts a run log for the given file and flags
func NewImportRunLog(fileName string, dryRun, repairMode bool) *ImportRunLog {
	return &ImportRunLog{
		BaseEntity: shared.NewBaseEntity(),
		FileName:   fileName,
		DryRun:     dryRun,
		RepairMode: repairMode,
		Lines:      make([]string, 0),
		StartedAt:  time.Now(),
	}
}

// Append records one outcome line
func (l *ImportRunLog) Append(line string) {
	l.Lines = append(l.Lines, line)
}

// Finish stamps the completion time
func (l *ImportRunLog) Finish() {
	l.FinishedAt = time.Now()
}

// Text returns the newline-joined outcome lines
func (l *ImportRunLog) Text() string {
	return strings.Join(l.Lines, "\n")
}

// RunLogRepository stores the last import run's log
type RunLogRepository interface {
	// ReplaceLatest discards any previous run log and persists this one.
	ReplaceLatest(ctx context.Context, log *ImportRunLog) error

	// Latest returns the most recent run log, or shared.ErrNotFound if no
	// run has happened yet.
	Latest(ctx context.Context) (*ImportRunLog, error)
}
