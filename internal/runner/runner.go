// Package runner executes a command repeatedly and measures each iteration
// on a benchmark stack.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/benchkit/pkg/benchmark"
	"github.com/benchkit/pkg/model"
	"github.com/benchkit/pkg/utils"
)

// LabelTotal and LabelIteration are the measurement labels the runner emits.
const (
	LabelTotal     = "total"
	LabelIteration = "iteration"
)

// ExecFunc runs the command once. The default implementation shells out.
type ExecFunc func(ctx context.Context, command string) error

// Runner measures a shell command over a number of iterations.
type Runner struct {
	clock     utils.Clock
	log       utils.Logger
	stackOpts []benchmark.Option
	execFn    ExecFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock sets the clock used for run timestamps.
func WithClock(clock utils.Clock) Option {
	return func(r *Runner) { r.clock = clock }
}

// WithLogger sets the runner's logger.
func WithLogger(log utils.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithStackOptions passes options through to the benchmark stack.
func WithStackOptions(opts ...benchmark.Option) Option {
	return func(r *Runner) { r.stackOpts = opts }
}

// WithExecFunc replaces the command executor.
func WithExecFunc(fn ExecFunc) Option {
	return func(r *Runner) { r.execFn = fn }
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		clock:  utils.NewRealClock(),
		log:    &utils.NullLogger{},
		execFn: shellExec,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the command warmup+iterations times and returns the run with
// one measurement per measured iteration plus one for the whole run. The
// returned run carries a failed status when an iteration errors; the error
// is returned alongside it.
func (r *Runner) Run(ctx context.Context, name, command string, iterations, warmup int) (*model.Run, error) {
	if command == "" {
		return nil, fmt.Errorf("command is empty")
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	if warmup < 0 {
		warmup = 0
	}

	begin := r.clock.Now()
	run := &model.Run{
		RunUUID:    newRunUUID(),
		Name:       name,
		Command:    command,
		Iterations: iterations,
		Status:     model.RunStatusRunning,
		CreateTime: begin,
		BeginTime:  &begin,
	}

	for i := 0; i < warmup; i++ {
		r.log.Debug("warmup %d/%d", i+1, warmup)
		if err := r.execFn(ctx, command); err != nil {
			return r.fail(run, fmt.Errorf("warmup %d: %w", i+1, err))
		}
	}

	stack := benchmark.New(r.stackOpts...)

	if _, err := stack.Begin(); err != nil {
		return r.fail(run, err)
	}

	for i := 0; i < iterations; i++ {
		r.log.Debug("iteration %d/%d", i+1, iterations)

		if _, err := stack.Begin(); err != nil {
			return r.fail(run, err)
		}
		execErr := r.execFn(ctx, command)
		snap, err := stack.End()
		if err != nil {
			return r.fail(run, err)
		}
		if execErr != nil {
			return r.fail(run, fmt.Errorf("iteration %d: %w", i+1, execErr))
		}

		run.Measurements = append(run.Measurements,
			model.NewMeasurement(run.RunUUID, LabelIteration, i, snap))
	}

	total, err := stack.End()
	if err != nil {
		return r.fail(run, err)
	}
	run.Measurements = append(run.Measurements,
		model.NewMeasurement(run.RunUUID, LabelTotal, 0, total))

	end := r.clock.Now()
	run.EndTime = &end
	run.Status = model.RunStatusCompleted
	return run, nil
}

func (r *Runner) fail(run *model.Run, err error) (*model.Run, error) {
	end := r.clock.Now()
	run.EndTime = &end
	run.Status = model.RunStatusFailed
	run.StatusInfo = err.Error()
	r.log.Error("benchmark run %s failed: %v", run.RunUUID, err)
	return run, err
}

func shellExec(ctx context.Context, command string) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run()
}

func newRunUUID() string {
	return fmt.Sprintf("run-%d-%d", time.Now().UnixNano(), os.Getpid())
}
