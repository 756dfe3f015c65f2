package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotConversions(t *testing.T) {
	snap := Snapshot{token: 7, elapsed: 1_500_000, memBytes: 2_500_000}

	assert.Equal(t, Token(7), snap.Token())
	assert.InDelta(t, 1.5, snap.TimeMillis(), 0.0001)
	assert.InDelta(t, 2.5, snap.MemoryMB(), 0.0001)
	assert.Equal(t, int64(2_500_000), snap.MemoryBytes())
}

func TestSnapshotAdd(t *testing.T) {
	a := Snapshot{token: 1, elapsed: 100, memBytes: -50}
	b := Snapshot{token: 2, elapsed: 40, memBytes: 30}

	sum := a.Add(b)

	assert.Equal(t, Token(1), sum.Token())
	assert.Equal(t, int64(140), sum.Elapsed().Nanoseconds())
	assert.Equal(t, int64(-20), sum.MemoryBytes())

	// Operands are untouched.
	assert.Equal(t, int64(100), a.Elapsed().Nanoseconds())
	assert.Equal(t, int64(40), b.Elapsed().Nanoseconds())
}

func TestSnapshotString(t *testing.T) {
	snap := Snapshot{token: 3, elapsed: 2_000_000, memBytes: -1_000_000}

	s := snap.String()
	assert.Contains(t, s, "span 3")
	assert.Contains(t, s, "2.000ms")
	assert.Contains(t, s, "-1.000MB")
}
