package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClockNow(t *testing.T) {
	clock := NewRealClock()

	before := time.Now()
	now := clock.Now()
	after := time.Now()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
}

func TestRealClockSince(t *testing.T) {
	clock := NewRealClock()

	start := clock.Now()
	elapsed := clock.Since(start)

	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
	assert.Less(t, elapsed, time.Second)
}

func TestMockClockAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	assert.Equal(t, start, clock.Now())

	clock.Advance(5 * time.Second)
	assert.Equal(t, start.Add(5*time.Second), clock.Now())
	assert.Equal(t, 5*time.Second, clock.Since(start))
}

func TestMockClockSleep(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	// Sleep must not block, only advance.
	done := make(chan struct{})
	go func() {
		clock.Sleep(time.Hour)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("MockClock.Sleep blocked")
	}
	assert.Equal(t, time.Hour, clock.Since(start))
}

func TestMockClockSet(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))

	target := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(target)
	assert.Equal(t, target, clock.Now())
}
