package repository

import (
	"context"

	"github.com/benchkit/pkg/model"
)

// RunRepository persists benchmark runs together with their measurements.
type RunRepository interface {
	// SaveRun inserts the run and all of its measurements in one transaction.
	SaveRun(ctx context.Context, run *model.Run) error

	// GetRunByUUID loads a run and its measurements.
	GetRunByUUID(ctx context.Context, runUUID string) (*model.Run, error)

	// ListRuns returns the most recent runs, newest first, without
	// measurements. An empty name matches all runs.
	ListRuns(ctx context.Context, name string, limit int) ([]*model.Run, error)

	// UpdateRunStatus moves a run to the given status.
	UpdateRunStatus(ctx context.Context, runUUID string, status model.RunStatus, statusInfo string) error

	// DeleteRun removes a run and its measurements.
	DeleteRun(ctx context.Context, runUUID string) error
}
