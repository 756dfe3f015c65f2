// Package model defines the core data structures used throughout the application.
package model

import (
	"time"

	"github.com/benchkit/pkg/benchmark"
)

// RunStatus represents the status of a benchmark run.
type RunStatus int

const (
	RunStatusPending   RunStatus = 0 // Created, not started
	RunStatusRunning   RunStatus = 1 // Measuring
	RunStatusCompleted RunStatus = 2 // All iterations finished
	RunStatusFailed    RunStatus = 3 // Aborted by an error
)

// String returns the string representation of RunStatus.
func (s RunStatus) String() string {
	switch s {
	case RunStatusPending:
		return "pending"
	case RunStatusRunning:
		return "running"
	case RunStatusCompleted:
		return "completed"
	case RunStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Run represents one benchmark run: a named command measured for a number
// of iterations.
type Run struct {
	ID           int64         `json:"id"`
	RunUUID      string        `json:"uuid"`
	Name         string        `json:"name"`
	Command      string        `json:"command"`
	Iterations   int           `json:"iterations"`
	Status       RunStatus     `json:"status"`
	StatusInfo   string        `json:"status_info,omitempty"`
	Measurements []Measurement `json:"measurements,omitempty"`
	CreateTime   time.Time     `json:"create_time"`
	BeginTime    *time.Time    `json:"begin_time,omitempty"`
	EndTime      *time.Time    `json:"end_time,omitempty"`
}

// Measurement is the recorded result of a single finalized span within a run.
type Measurement struct {
	ID          int64   `json:"id"`
	RunUUID     string  `json:"uuid"`
	Label       string  `json:"label"`
	Iteration   int     `json:"iteration"`
	SpanToken   uint64  `json:"span_token"`
	ElapsedNs   int64   `json:"elapsed_ns"`
	MemoryBytes int64   `json:"memory_bytes"`
	TimeMillis  float64 `json:"time_ms"`
	MemoryMB    float64 `json:"memory_mb"`
}

// NewMeasurement builds a Measurement from a finalized snapshot.
func NewMeasurement(runUUID, label string, iteration int, snap benchmark.Snapshot) Measurement {
	return Measurement{
		RunUUID:     runUUID,
		Label:       label,
		Iteration:   iteration,
		SpanToken:   uint64(snap.Token()),
		ElapsedNs:   snap.Elapsed().Nanoseconds(),
		MemoryBytes: snap.MemoryBytes(),
		TimeMillis:  snap.TimeMillis(),
		MemoryMB:    snap.MemoryMB(),
	}
}

// TotalElapsedNs returns the sum of elapsed time across all measurements.
func (r *Run) TotalElapsedNs() int64 {
	var total int64
	for _, m := range r.Measurements {
		total += m.ElapsedNs
	}
	return total
}

// MeanTimeMillis returns the mean elapsed time per measurement in
// milliseconds, or 0 for a run without measurements.
func (r *Run) MeanTimeMillis() float64 {
	if len(r.Measurements) == 0 {
		return 0
	}
	return float64(r.TotalElapsedNs()) / 1e6 / float64(len(r.Measurements))
}

// MaxMemoryMB returns the largest memory delta recorded by any measurement.
func (r *Run) MaxMemoryMB() float64 {
	var max float64
	for i, m := range r.Measurements {
		if i == 0 || m.MemoryMB > max {
			max = m.MemoryMB
		}
	}
	return max
}
