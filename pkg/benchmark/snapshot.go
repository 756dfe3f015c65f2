package benchmark

import (
	"fmt"
	"time"
)

// Token identifies a measurement span. It is handed out by Begin/BeginN and
// echoed on the Snapshot returned by the matching End/EndN, so callers can
// correlate results without ever holding the mutable span itself. A token is
// stable for the span's lifetime and carries no measurement data.
type Token uint64

// Snapshot is the finalized, immutable result of a measurement span: the
// wall-clock time it accumulated while running and the net change in used
// memory over that period. Memory may be negative when the span freed more
// than it allocated.
type Snapshot struct {
	token    Token
	elapsed  int64 // nanoseconds
	memBytes int64
}

// Token returns the correlation token issued by the Begin that opened the
// span this snapshot finalizes.
func (s Snapshot) Token() Token {
	return s.token
}

// Elapsed returns the accumulated running time.
func (s Snapshot) Elapsed() time.Duration {
	return time.Duration(s.elapsed)
}

// TimeMillis returns the accumulated running time in milliseconds.
func (s Snapshot) TimeMillis() float64 {
	return float64(s.elapsed) / 1e6
}

// MemoryBytes returns the net memory delta in bytes.
func (s Snapshot) MemoryBytes() int64 {
	return s.memBytes
}

// MemoryMB returns the net memory delta in megabytes.
func (s Snapshot) MemoryMB() float64 {
	return float64(s.memBytes) / 1e6
}

// Add returns a snapshot combining the receiver's totals with other's.
// The result keeps the receiver's token.
func (s Snapshot) Add(other Snapshot) Snapshot {
	return Snapshot{
		token:    s.token,
		elapsed:  s.elapsed + other.elapsed,
		memBytes: s.memBytes + other.memBytes,
	}
}

// String returns a human-readable summary of the snapshot.
func (s Snapshot) String() string {
	return fmt.Sprintf("span %d: time %.3fms mem %.3fMB", s.token, s.TimeMillis(), s.MemoryMB())
}

// spanState is the state of an open measurement span.
type spanState int

const (
	stateRunning spanState = iota
	statePaused
)

// span is an open measurement span on the stack. While running, timeNS and
// memBytes hold the start baselines offset by previously accumulated totals
// (baseline = now - accumulated); while paused, they hold the accumulated
// totals themselves. The toggle arithmetic `stored = now - stored` converts
// between the two representations in both directions.
type span struct {
	token    Token
	state    spanState
	timeNS   int64
	memBytes int64
}

// finalize freezes the span's accumulated values into a Snapshot.
// Only valid while the span is paused.
func (sp *span) finalize() Snapshot {
	return Snapshot{
		token:    sp.token,
		elapsed:  sp.timeNS,
		memBytes: sp.memBytes,
	}
}
