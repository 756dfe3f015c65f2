package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/benchkit/pkg/model"
)

// BenchmarkRun is the database record for a benchmark run.
type BenchmarkRun struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID    string     `gorm:"column:run_uuid;type:varchar(64);uniqueIndex"`
	Name       string     `gorm:"column:name;type:varchar(128);index"`
	Command    string     `gorm:"column:command;type:text"`
	Iterations int        `gorm:"column:iterations"`
	Status     int        `gorm:"column:status;index"`
	StatusInfo string     `gorm:"column:status_info;type:text"`
	CreateTime time.Time  `gorm:"column:create_time;autoCreateTime"`
	BeginTime  *time.Time `gorm:"column:begin_time"`
	EndTime    *time.Time `gorm:"column:end_time"`
}

// TableName sets the table name for BenchmarkRun.
func (BenchmarkRun) TableName() string {
	return "benchmark_run"
}

// ToModel converts the record to the domain model, without measurements.
func (r *BenchmarkRun) ToModel() *model.Run {
	return &model.Run{
		ID:         r.ID,
		RunUUID:    r.RunUUID,
		Name:       r.Name,
		Command:    r.Command,
		Iterations: r.Iterations,
		Status:     model.RunStatus(r.Status),
		StatusInfo: r.StatusInfo,
		CreateTime: r.CreateTime,
		BeginTime:  r.BeginTime,
		EndTime:    r.EndTime,
	}
}

func runRecordFromModel(run *model.Run) *BenchmarkRun {
	return &BenchmarkRun{
		ID:         run.ID,
		RunUUID:    run.RunUUID,
		Name:       run.Name,
		Command:    run.Command,
		Iterations: run.Iterations,
		Status:     int(run.Status),
		StatusInfo: run.StatusInfo,
		CreateTime: run.CreateTime,
		BeginTime:  run.BeginTime,
		EndTime:    run.EndTime,
	}
}

// BenchmarkMeasurement is the database record for a single finished span.
type BenchmarkMeasurement struct {
	ID          int64  `gorm:"column:id;primaryKey;autoIncrement"`
	RunUUID     string `gorm:"column:run_uuid;type:varchar(64);index"`
	Label       string `gorm:"column:label;type:varchar(128)"`
	Iteration   int    `gorm:"column:iteration"`
	SpanToken   uint64 `gorm:"column:span_token"`
	ElapsedNs   int64  `gorm:"column:elapsed_ns"`
	MemoryBytes int64  `gorm:"column:memory_bytes"`
}

// TableName sets the table name for BenchmarkMeasurement.
func (BenchmarkMeasurement) TableName() string {
	return "benchmark_measurement"
}

// ToModel converts the record to the domain model. The derived
// millisecond and megabyte views are recomputed from the stored values.
func (m *BenchmarkMeasurement) ToModel() model.Measurement {
	return model.Measurement{
		ID:          m.ID,
		RunUUID:     m.RunUUID,
		Label:       m.Label,
		Iteration:   m.Iteration,
		SpanToken:   m.SpanToken,
		ElapsedNs:   m.ElapsedNs,
		MemoryBytes: m.MemoryBytes,
		TimeMillis:  float64(m.ElapsedNs) / 1e6,
		MemoryMB:    float64(m.MemoryBytes) / 1e6,
	}
}

func measurementRecordFromModel(m model.Measurement) *BenchmarkMeasurement {
	return &BenchmarkMeasurement{
		ID:          m.ID,
		RunUUID:     m.RunUUID,
		Label:       m.Label,
		Iteration:   m.Iteration,
		SpanToken:   m.SpanToken,
		ElapsedNs:   m.ElapsedNs,
		MemoryBytes: m.MemoryBytes,
	}
}

// AutoMigrate creates or updates the benchmark tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&BenchmarkRun{}, &BenchmarkMeasurement{})
}
