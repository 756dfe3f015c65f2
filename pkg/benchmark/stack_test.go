package benchmark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benchkit/pkg/utils"
)

// stubSampler reports a fixed used-memory value that tests adjust between
// operations to simulate allocation and deallocation.
type stubSampler struct {
	used int64
}

func (s *stubSampler) UsedBytes() int64 {
	return s.used
}

func newTestStack() (*Stack, *utils.MockClock, *stubSampler) {
	clock := utils.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sampler := &stubSampler{}
	stack := New(WithClock(clock), WithMemSampler(sampler))
	return stack, clock, sampler
}

func TestNestingLaw(t *testing.T) {
	stack, clock, _ := newTestStack()
	t1 := 100 * time.Millisecond
	t2 := 250 * time.Millisecond
	t3 := 70 * time.Millisecond

	outerTok, err := stack.Begin()
	require.NoError(t, err)
	clock.Advance(t1)

	innerTok, err := stack.Begin()
	require.NoError(t, err)
	clock.Advance(t2)

	inner, err := stack.End()
	require.NoError(t, err)
	clock.Advance(t3)

	outer, err := stack.End()
	require.NoError(t, err)

	assert.Equal(t, innerTok, inner.Token())
	assert.Equal(t, outerTok, outer.Token())
	assert.Equal(t, t2, inner.Elapsed())
	assert.Equal(t, t1+t2+t3, outer.Elapsed())
	assert.Equal(t, 0, stack.Depth())
}

func TestBeginNEndNPairwiseEqual(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4} {
		stack, clock, _ := newTestStack()

		tokens, err := stack.BeginN(n)
		require.NoError(t, err)
		require.Len(t, tokens, n)

		clock.Advance(time.Second)

		snaps, err := stack.EndN(n)
		require.NoError(t, err)
		require.Len(t, snaps, n)

		for i, snap := range snaps {
			assert.Equal(t, tokens[i], snap.Token())
			assert.Equal(t, time.Second, snap.Elapsed())
		}
		assert.Equal(t, 0, stack.Depth())
	}
}

func TestPauseResumeExcludesInterval(t *testing.T) {
	stack, clock, _ := newTestStack()

	_, err := stack.Begin()
	require.NoError(t, err)
	clock.Advance(time.Second)

	require.NoError(t, stack.Pause())
	clock.Advance(10 * time.Second) // excluded
	require.NoError(t, stack.Resume())

	clock.Advance(time.Second)
	snap, err := stack.End()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, snap.Elapsed())
}

func TestRepeatedPauseResumeAccumulates(t *testing.T) {
	stack, clock, _ := newTestStack()

	_, err := stack.Begin()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		require.NoError(t, stack.Pause())
		clock.Advance(time.Minute)
		require.NoError(t, stack.Resume())
	}

	snap, err := stack.End()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, snap.Elapsed())
}

func TestDoublePauseFails(t *testing.T) {
	stack, _, _ := newTestStack()

	_, err := stack.Begin()
	require.NoError(t, err)

	require.NoError(t, stack.Pause())
	err = stack.Pause()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorContains(t, err, "already paused")
}

func TestDoubleResumeFails(t *testing.T) {
	stack, _, _ := newTestStack()

	_, err := stack.Begin()
	require.NoError(t, err)

	err = stack.Resume()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorContains(t, err, "already running")
}

func TestEmptyStackErrors(t *testing.T) {
	stack, _, _ := newTestStack()

	err := stack.Pause()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorContains(t, err, "no span to pause")

	err = stack.Resume()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorContains(t, err, "no span to resume")

	_, err = stack.Snap()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorContains(t, err, "no span to snapshot")

	_, err = stack.End()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorContains(t, err, "no span to end")

	_, err = stack.TopPaused()
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBeginOnPausedSpanFails(t *testing.T) {
	stack, _, _ := newTestStack()

	_, err := stack.Begin()
	require.NoError(t, err)
	require.NoError(t, stack.Pause())

	_, err = stack.Begin()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorContains(t, err, "begin on paused span")

	_, err = stack.BeginN(2)
	assert.ErrorIs(t, err, ErrInvalidState)

	// The failed begins must not have grown the stack.
	assert.Equal(t, 1, stack.Depth())
}

func TestEndOnPausedSpanFails(t *testing.T) {
	stack, _, _ := newTestStack()

	_, err := stack.Begin()
	require.NoError(t, err)
	require.NoError(t, stack.Pause())

	_, err = stack.End()
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = stack.Snap()
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.Equal(t, 1, stack.Depth())
}

func TestInvalidSpanCounts(t *testing.T) {
	stack, _, _ := newTestStack()

	for _, n := range []int{0, -1} {
		_, err := stack.BeginN(n)
		assert.ErrorIs(t, err, ErrInvalidArgument)

		_, err = stack.EndN(n)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	}
}

func TestEndNInsufficientDepth(t *testing.T) {
	stack, _, _ := newTestStack()

	_, err := stack.Begin()
	require.NoError(t, err)
	_, err = stack.Begin()
	require.NoError(t, err)

	_, err = stack.EndN(3)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.ErrorContains(t, err, "2 open spans, cannot end 3")

	// The failed call must leave the stack intact and the top running.
	assert.Equal(t, 2, stack.Depth())
	paused, err := stack.TopPaused()
	require.NoError(t, err)
	assert.False(t, paused)
}

func TestResetClearsStack(t *testing.T) {
	stack, _, _ := newTestStack()

	_, err := stack.Begin()
	require.NoError(t, err)
	_, err = stack.BeginN(3)
	require.NoError(t, err)
	require.NoError(t, stack.Pause())

	stack.Reset()
	assert.Equal(t, 0, stack.Depth())

	// The stack must be usable again after a reset.
	_, err = stack.Begin()
	require.NoError(t, err)
	_, err = stack.End()
	require.NoError(t, err)
}

func TestSplitBeginSingleEnds(t *testing.T) {
	stack, clock, _ := newTestStack()
	step := time.Second

	tokens, err := stack.BeginN(4)
	require.NoError(t, err)

	var snaps []Snapshot
	for i := 0; i < 4; i++ {
		clock.Advance(step)
		snap, err := stack.End()
		require.NoError(t, err)
		snaps = append(snaps, snap)
	}

	// Ends pop innermost first, so tokens come back in reverse order and
	// each wider span absorbs everything measured inside it.
	for i, snap := range snaps {
		assert.Equal(t, tokens[3-i], snap.Token())
		assert.Equal(t, time.Duration(i+1)*step, snap.Elapsed())
	}
	assert.Equal(t, 0, stack.Depth())
}

func TestSplitBeginsSingleEndN(t *testing.T) {
	stack, clock, _ := newTestStack()
	step := time.Second

	tok1, err := stack.Begin()
	require.NoError(t, err)
	clock.Advance(step)

	tokens, err := stack.BeginN(2)
	require.NoError(t, err)
	clock.Advance(step)

	tok2, err := stack.Begin()
	require.NoError(t, err)
	clock.Advance(step)

	snaps, err := stack.EndN(4)
	require.NoError(t, err)
	require.Len(t, snaps, 4)

	assert.Equal(t, tok1, snaps[0].Token())
	assert.Equal(t, tokens[0], snaps[1].Token())
	assert.Equal(t, tokens[1], snaps[2].Token())
	assert.Equal(t, tok2, snaps[3].Token())

	assert.Equal(t, 3*step, snaps[0].Elapsed())
	assert.Equal(t, 2*step, snaps[1].Elapsed())
	assert.Equal(t, 2*step, snaps[2].Elapsed())
	assert.Equal(t, 1*step, snaps[3].Elapsed())
}

func TestSnapIntermediateReadings(t *testing.T) {
	stack, clock, _ := newTestStack()

	tok, err := stack.Begin()
	require.NoError(t, err)

	clock.Advance(time.Second)
	snap, err := stack.Snap()
	require.NoError(t, err)
	assert.Equal(t, tok, snap.Token())
	assert.Equal(t, time.Second, snap.Elapsed())

	clock.Advance(time.Second)
	snap, err = stack.Snap()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, snap.Elapsed())

	clock.Advance(time.Second)
	final, err := stack.End()
	require.NoError(t, err)
	assert.Equal(t, tok, final.Token())
	assert.Equal(t, 3*time.Second, final.Elapsed())
}

func TestTopPaused(t *testing.T) {
	stack, _, _ := newTestStack()

	_, err := stack.Begin()
	require.NoError(t, err)

	paused, err := stack.TopPaused()
	require.NoError(t, err)
	assert.False(t, paused)

	require.NoError(t, stack.Pause())
	paused, err = stack.TopPaused()
	require.NoError(t, err)
	assert.True(t, paused)
}

func TestMemoryAccumulation(t *testing.T) {
	stack, _, sampler := newTestStack()

	sampler.used = 100
	_, err := stack.Begin()
	require.NoError(t, err)

	sampler.used = 300
	require.NoError(t, stack.Pause())

	// Memory movement while paused is not attributed to the span.
	sampler.used = 350
	require.NoError(t, stack.Resume())

	sampler.used = 400
	snap, err := stack.End()
	require.NoError(t, err)

	assert.Equal(t, int64(250), snap.MemoryBytes())
}

func TestMemoryDeltaMayBeNegative(t *testing.T) {
	stack, _, sampler := newTestStack()

	sampler.used = 5_000_000
	_, err := stack.Begin()
	require.NoError(t, err)

	sampler.used = 2_000_000
	snap, err := stack.End()
	require.NoError(t, err)

	assert.Equal(t, int64(-3_000_000), snap.MemoryBytes())
	assert.InDelta(t, -3.0, snap.MemoryMB(), 0.001)
}

func TestNestedMemoryAbsorbedByOuter(t *testing.T) {
	stack, _, sampler := newTestStack()

	sampler.used = 0
	_, err := stack.Begin()
	require.NoError(t, err)

	_, err = stack.Begin()
	require.NoError(t, err)

	sampler.used = 500
	inner, err := stack.End()
	require.NoError(t, err)

	outer, err := stack.End()
	require.NoError(t, err)

	assert.Equal(t, int64(500), inner.MemoryBytes())
	assert.Equal(t, int64(500), outer.MemoryBytes())
}

func TestTokensAreUniqueAndStable(t *testing.T) {
	stack, _, _ := newTestStack()

	seen := make(map[Token]bool)
	tokens, err := stack.BeginN(3)
	require.NoError(t, err)
	tok, err := stack.Begin()
	require.NoError(t, err)

	for _, tk := range append(tokens, tok) {
		assert.False(t, seen[tk])
		seen[tk] = true
	}
}

func TestWallClockSmoke(t *testing.T) {
	stack := New()

	tok, err := stack.Begin()
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	snap, err := stack.End()
	require.NoError(t, err)

	assert.Equal(t, tok, snap.Token())
	assert.GreaterOrEqual(t, snap.Elapsed(), 30*time.Millisecond)
	assert.Less(t, snap.Elapsed(), 5*time.Second)
}

func TestRuntimeSamplerReportsUsage(t *testing.T) {
	sampler := NewRuntimeSampler()
	assert.Greater(t, sampler.UsedBytes(), int64(0))
}
