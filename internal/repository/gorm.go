package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/benchkit/pkg/model"
)

// ErrRunNotFound is returned when no run matches the requested UUID.
var ErrRunNotFound = errors.New("benchmark run not found")

// GormRunRepository implements RunRepository on gorm.
type GormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository creates a gorm-backed run repository.
func NewGormRunRepository(db *gorm.DB) *GormRunRepository {
	return &GormRunRepository{db: db}
}

// SaveRun inserts the run and its measurements in one transaction.
func (r *GormRunRepository) SaveRun(ctx context.Context, run *model.Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.RunUUID == "" {
		return errors.New("run uuid is empty")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := runRecordFromModel(run)
		if err := tx.Create(record).Error; err != nil {
			return fmt.Errorf("insert run %s: %w", run.RunUUID, err)
		}
		run.ID = record.ID

		if len(run.Measurements) == 0 {
			return nil
		}
		records := make([]*BenchmarkMeasurement, 0, len(run.Measurements))
		for _, m := range run.Measurements {
			if m.RunUUID == "" {
				m.RunUUID = run.RunUUID
			}
			records = append(records, measurementRecordFromModel(m))
		}
		if err := tx.CreateInBatches(records, 200).Error; err != nil {
			return fmt.Errorf("insert measurements for run %s: %w", run.RunUUID, err)
		}
		for i, rec := range records {
			run.Measurements[i].ID = rec.ID
		}
		return nil
	})
}

// GetRunByUUID loads a run and its measurements.
func (r *GormRunRepository) GetRunByUUID(ctx context.Context, runUUID string) (*model.Run, error) {
	var record BenchmarkRun
	err := r.db.WithContext(ctx).Where("run_uuid = ?", runUUID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runUUID)
		}
		return nil, fmt.Errorf("query run %s: %w", runUUID, err)
	}

	var measurements []*BenchmarkMeasurement
	err = r.db.WithContext(ctx).
		Where("run_uuid = ?", runUUID).
		Order("iteration ASC, id ASC").
		Find(&measurements).Error
	if err != nil {
		return nil, fmt.Errorf("query measurements for run %s: %w", runUUID, err)
	}

	run := record.ToModel()
	run.Measurements = make([]model.Measurement, 0, len(measurements))
	for _, m := range measurements {
		run.Measurements = append(run.Measurements, m.ToModel())
	}
	return run, nil
}

// ListRuns returns the most recent runs without measurements.
func (r *GormRunRepository) ListRuns(ctx context.Context, name string, limit int) ([]*model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := r.db.WithContext(ctx).Model(&BenchmarkRun{})
	if name != "" {
		query = query.Where("name = ?", name)
	}

	var records []*BenchmarkRun
	if err := query.Order("create_time DESC, id DESC").Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]*model.Run, 0, len(records))
	for _, rec := range records {
		runs = append(runs, rec.ToModel())
	}
	return runs, nil
}

// UpdateRunStatus moves a run to the given status.
func (r *GormRunRepository) UpdateRunStatus(ctx context.Context, runUUID string, status model.RunStatus, statusInfo string) error {
	result := r.db.WithContext(ctx).
		Model(&BenchmarkRun{}).
		Where("run_uuid = ?", runUUID).
		Updates(map[string]interface{}{
			"status":      int(status),
			"status_info": statusInfo,
		})
	if result.Error != nil {
		return fmt.Errorf("update run %s status: %w", runUUID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runUUID)
	}
	return nil
}

// DeleteRun removes a run and its measurements.
func (r *GormRunRepository) DeleteRun(ctx context.Context, runUUID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_uuid = ?", runUUID).Delete(&BenchmarkMeasurement{}).Error; err != nil {
			return fmt.Errorf("delete measurements for run %s: %w", runUUID, err)
		}
		result := tx.Where("run_uuid = ?", runUUID).Delete(&BenchmarkRun{})
		if result.Error != nil {
			return fmt.Errorf("delete run %s: %w", runUUID, result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrRunNotFound, runUUID)
		}
		return nil
	})
}
