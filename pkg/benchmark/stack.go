// Package benchmark measures elapsed wall-clock time and memory deltas
// across nested, pausable measurement spans.
//
// Spans form a stack: Begin pauses the enclosing span before starting a new
// one, so at most the innermost span is ever running and the cost of opening
// or closing a span is attributed to at most two timers. Memory is sampled
// with a forced garbage collection, which is slow; the stack samples time
// before memory when pausing and memory before time when resuming, keeping
// the sampling cost out of the measured elapsed time.
//
// A Stack is not safe for concurrent use; callers interleaving calls across
// goroutines must synchronize externally.
package benchmark

import (
	"fmt"
	"time"

	"github.com/benchkit/pkg/utils"
)

// Stack is a stack of nested measurement spans. The zero value is not
// usable; create instances with New.
type Stack struct {
	clock   utils.Clock
	sampler MemSampler
	logger  utils.Logger
	epoch   time.Time
	spans   []*span
	lastTok Token
}

// Option configures a Stack.
type Option func(*Stack)

// WithClock sets the clock used for elapsed-time measurement.
func WithClock(clock utils.Clock) Option {
	return func(s *Stack) {
		s.clock = clock
	}
}

// WithMemSampler sets the memory usage sampler.
func WithMemSampler(sampler MemSampler) Option {
	return func(s *Stack) {
		s.sampler = sampler
	}
}

// WithLogger sets the logger for span lifecycle events.
func WithLogger(logger utils.Logger) Option {
	return func(s *Stack) {
		s.logger = logger
	}
}

// New creates an empty measurement stack. By default it reads the real
// clock and samples memory from the Go runtime.
func New(opts ...Option) *Stack {
	s := &Stack{
		clock:   utils.NewRealClock(),
		sampler: NewRuntimeSampler(),
		logger:  &utils.NullLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.epoch = s.clock.Now()
	return s
}

// Begin opens a new measurement span and returns its token. If a span is
// already open it must be running; it is paused before the new span starts,
// and resumed when the new span ends.
func (s *Stack) Begin() (Token, error) {
	if top := s.top(); top != nil {
		if top.state != stateRunning {
			return 0, fmt.Errorf("%w: begin on paused span", ErrInvalidState)
		}
		s.pauseSpan(top)
	}

	sp := s.newRunningSpan()
	s.spans = append(s.spans, sp)
	s.logger.Debug("span %d started (depth %d)", sp.token, len(s.spans))
	return sp.token, nil
}

// BeginN opens n nested spans sharing a single start baseline, as if Begin
// had been called n times at the same instant. The enclosing span is paused
// once. Only the innermost new span runs; the outer n-1 start paused with
// zero accumulation. Tokens are returned outermost first.
func (s *Stack) BeginN(n int) ([]Token, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: span count must be positive, got %d", ErrInvalidArgument, n)
	}

	if top := s.top(); top != nil {
		if top.state != stateRunning {
			return nil, fmt.Errorf("%w: begin on paused span", ErrInvalidState)
		}
		s.pauseSpan(top)
	}

	mem := s.sampler.UsedBytes()
	now := s.nowNanos()

	tokens := make([]Token, n)
	for i := 0; i < n; i++ {
		sp := &span{token: s.nextToken()}
		if i == n-1 {
			sp.state = stateRunning
			sp.timeNS = now
			sp.memBytes = mem
		} else {
			sp.state = statePaused
		}
		s.spans = append(s.spans, sp)
		tokens[i] = sp.token
	}

	s.logger.Debug("%d spans started (depth %d)", n, len(s.spans))
	return tokens, nil
}

// Pause pauses the running top span.
func (s *Stack) Pause() error {
	top := s.top()
	if top == nil {
		return fmt.Errorf("%w: no span to pause", ErrInvalidState)
	}
	if top.state == statePaused {
		return fmt.Errorf("%w: tried to pause already paused span", ErrInvalidState)
	}
	s.pauseSpan(top)
	return nil
}

// Resume resumes the paused top span.
func (s *Stack) Resume() error {
	top := s.top()
	if top == nil {
		return fmt.Errorf("%w: no span to resume", ErrInvalidState)
	}
	if top.state == stateRunning {
		return fmt.Errorf("%w: tried to resume already running span", ErrInvalidState)
	}
	s.resumeSpan(top)
	return nil
}

// Snap returns an intermediate reading of the running top span without
// ending it: the span is paused, its accumulated values are copied into a
// finalized Snapshot carrying the same token, and the span resumes.
func (s *Stack) Snap() (Snapshot, error) {
	top := s.top()
	if top == nil {
		return Snapshot{}, fmt.Errorf("%w: no span to snapshot", ErrInvalidState)
	}
	if top.state == statePaused {
		return Snapshot{}, fmt.Errorf("%w: tried to pause already paused span", ErrInvalidState)
	}

	s.pauseSpan(top)
	snap := top.finalize()
	s.resumeSpan(top)
	return snap, nil
}

// End closes the running top span and returns its finalized snapshot. The
// snapshot's totals are folded into the enclosing span, which then resumes,
// so an enclosing span's final elapsed time covers the whole nested period.
func (s *Stack) End() (Snapshot, error) {
	snaps, err := s.EndN(1)
	if err != nil {
		return Snapshot{}, err
	}
	return snaps[0], nil
}

// EndN closes the innermost n spans at once and returns their snapshots
// outermost first. Accumulation cascades inward-out: each returned snapshot
// absorbs the totals of every span nested more deeply than it, and the
// outermost popped total is folded into the surviving top span (if any),
// which then resumes.
func (s *Stack) EndN(n int) ([]Snapshot, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: span count must be positive, got %d", ErrInvalidArgument, n)
	}
	if len(s.spans) == 0 {
		return nil, fmt.Errorf("%w: no span to end", ErrInvalidState)
	}
	if len(s.spans) < n {
		return nil, fmt.Errorf("%w: %d open spans, cannot end %d", ErrInvalidState, len(s.spans), n)
	}
	top := s.top()
	if top.state != stateRunning {
		return nil, fmt.Errorf("%w: tried to pause already paused span", ErrInvalidState)
	}

	s.pauseSpan(top)

	popped := s.spans[len(s.spans)-n:]
	s.spans = s.spans[:len(s.spans)-n]

	snaps := make([]Snapshot, n)
	for i, sp := range popped {
		snaps[i] = sp.finalize()
	}
	for i := n - 2; i >= 0; i-- {
		snaps[i] = snaps[i].Add(snaps[i+1])
	}

	if rest := s.top(); rest != nil {
		// The new top is paused per the stack invariant, so its fields
		// hold accumulated totals and can absorb the nested result.
		rest.timeNS += snaps[0].elapsed
		rest.memBytes += snaps[0].memBytes
		s.resumeSpan(rest)
	}

	s.logger.Debug("%d spans ended (depth %d)", n, len(s.spans))
	return snaps, nil
}

// Reset clears the stack unconditionally, abandoning any open spans.
func (s *Stack) Reset() {
	s.spans = nil
}

// Depth returns the number of open spans.
func (s *Stack) Depth() int {
	return len(s.spans)
}

// TopPaused reports whether the innermost open span is paused.
func (s *Stack) TopPaused() (bool, error) {
	top := s.top()
	if top == nil {
		return false, fmt.Errorf("%w: no open span", ErrInvalidState)
	}
	return top.state == statePaused, nil
}

func (s *Stack) top() *span {
	if len(s.spans) == 0 {
		return nil
	}
	return s.spans[len(s.spans)-1]
}

func (s *Stack) nextToken() Token {
	s.lastTok++
	return s.lastTok
}

// nowNanos returns nanoseconds elapsed since the stack was created, derived
// from the clock's monotonic reading.
func (s *Stack) nowNanos() int64 {
	return s.clock.Since(s.epoch).Nanoseconds()
}

// newRunningSpan creates a running span baselined at the current instant.
// Memory is sampled before time, mirroring resumeSpan.
func (s *Stack) newRunningSpan() *span {
	mem := s.sampler.UsedBytes()
	now := s.nowNanos()
	return &span{
		token:    s.nextToken(),
		state:    stateRunning,
		timeNS:   now,
		memBytes: mem,
	}
}

// pauseSpan freezes sp's accumulated totals. Time is sampled before memory
// so the GC forced by the memory sample does not inflate the elapsed time.
// The caller has already verified sp is running.
func (s *Stack) pauseSpan(sp *span) {
	sp.timeNS = s.nowNanos() - sp.timeNS
	sp.memBytes = s.sampler.UsedBytes() - sp.memBytes
	sp.state = statePaused
}

// resumeSpan restarts sp from its accumulated totals. Memory is sampled
// before time, symmetric to pauseSpan. The caller has already verified sp
// is paused.
func (s *Stack) resumeSpan(sp *span) {
	sp.memBytes = s.sampler.UsedBytes() - sp.memBytes
	sp.timeNS = s.nowNanos() - sp.timeNS
	sp.state = stateRunning
}
