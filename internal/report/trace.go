package report

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/benchkit/pkg/model"
)

const tracerName = "github.com/benchkit/internal/report"

// TraceReplay exports a finished run as OpenTelemetry spans. Measurement
// timestamps are reconstructed from the run's begin time by laying the
// recorded durations out sequentially.
type TraceReplay struct {
	provider trace.TracerProvider
}

// NewTraceReplay creates a TraceReplay. A nil provider uses the global one.
func NewTraceReplay(provider trace.TracerProvider) *TraceReplay {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &TraceReplay{provider: provider}
}

// Replay emits one root span for the run and one child span per measurement.
func (r *TraceReplay) Replay(ctx context.Context, run *model.Run) error {
	if run == nil {
		return fmt.Errorf("run is nil")
	}

	start := run.CreateTime
	if run.BeginTime != nil {
		start = *run.BeginTime
	}

	tracer := r.provider.Tracer(tracerName)

	ctx, root := tracer.Start(ctx, "benchmark.run",
		trace.WithTimestamp(start),
		trace.WithAttributes(
			attribute.String("benchmark.run_uuid", run.RunUUID),
			attribute.String("benchmark.name", run.Name),
			attribute.String("benchmark.command", run.Command),
			attribute.Int("benchmark.iterations", run.Iterations),
			attribute.String("benchmark.status", run.Status.String()),
		),
	)

	cursor := start
	for _, m := range run.Measurements {
		spanEnd := cursor.Add(time.Duration(m.ElapsedNs))
		_, span := tracer.Start(ctx, "benchmark."+m.Label,
			trace.WithTimestamp(cursor),
			trace.WithAttributes(
				attribute.String("benchmark.label", m.Label),
				attribute.Int("benchmark.iteration", m.Iteration),
				attribute.Int64("benchmark.span_token", int64(m.SpanToken)),
				attribute.Int64("benchmark.elapsed_ns", m.ElapsedNs),
				attribute.Int64("benchmark.memory_bytes", m.MemoryBytes),
			),
		)
		span.End(trace.WithTimestamp(spanEnd))
		cursor = spanEnd
	}

	rootEnd := cursor
	if run.EndTime != nil && run.EndTime.After(rootEnd) {
		rootEnd = *run.EndTime
	}
	root.End(trace.WithTimestamp(rootEnd))
	return nil
}
