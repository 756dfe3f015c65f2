package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchkit/pkg/benchmark"
	"github.com/benchkit/pkg/utils"
)

func TestRunStatusString(t *testing.T) {
	assert.Equal(t, "pending", RunStatusPending.String())
	assert.Equal(t, "running", RunStatusRunning.String())
	assert.Equal(t, "completed", RunStatusCompleted.String())
	assert.Equal(t, "failed", RunStatusFailed.String())
	assert.Equal(t, "unknown", RunStatus(42).String())
}

func TestNewMeasurement(t *testing.T) {
	clock := utils.NewMockClock(time.Unix(0, 0))
	stack := benchmark.New(benchmark.WithClock(clock), benchmark.WithMemSampler(fixedSampler(0)))

	tok, err := stack.Begin()
	require.NoError(t, err)
	clock.Advance(1500 * time.Millisecond)
	snap, err := stack.End()
	require.NoError(t, err)

	m := NewMeasurement("run-1", "iteration", 3, snap)

	assert.Equal(t, "run-1", m.RunUUID)
	assert.Equal(t, "iteration", m.Label)
	assert.Equal(t, 3, m.Iteration)
	assert.Equal(t, uint64(tok), m.SpanToken)
	assert.Equal(t, int64(1_500_000_000), m.ElapsedNs)
	assert.InDelta(t, 1500.0, m.TimeMillis, 0.001)
}

type fixedSampler int64

func (s fixedSampler) UsedBytes() int64 {
	return int64(s)
}

func TestRunAggregates(t *testing.T) {
	run := &Run{
		Measurements: []Measurement{
			{ElapsedNs: 1_000_000, MemoryMB: -2.0},
			{ElapsedNs: 3_000_000, MemoryMB: 5.5},
			{ElapsedNs: 2_000_000, MemoryMB: 1.0},
		},
	}

	assert.Equal(t, int64(6_000_000), run.TotalElapsedNs())
	assert.InDelta(t, 2.0, run.MeanTimeMillis(), 0.0001)
	assert.InDelta(t, 5.5, run.MaxMemoryMB(), 0.0001)
}

func TestRunAggregatesEmpty(t *testing.T) {
	run := &Run{}

	assert.Equal(t, int64(0), run.TotalElapsedNs())
	assert.Equal(t, 0.0, run.MeanTimeMillis())
	assert.Equal(t, 0.0, run.MaxMemoryMB())
}
