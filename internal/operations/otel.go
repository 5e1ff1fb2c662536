package operations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	apperrors "museumreport/internal/errors"
	"museumreport/internal/infrastructure"
	"museumreport/pkg/contracts/domain"
)

// RunTracer provides OpenTelemetry instrumentation for report runs
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.RunMetrics
}

// NewRunTracer creates a run tracer. A nil tracer or nil metrics are
// replaced by no-op implementations.
func NewRunTracer(tracer trace.Tracer, metrics *infrastructure.RunMetrics) (*RunTracer, error) {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	if metrics == nil {
		m, err := infrastructure.NewRunMetrics(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create run metrics: %w", err)
		}
		metrics = m
	}
	return &RunTracer{tracer: tracer, metrics: metrics}, nil
}

// TraceRun creates the root span of a run
func (rt *RunTracer) TraceRun(ctx context.Context, runID string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "run.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("run.id", runID)),
	)
}

// TraceStage creates a span for one run state
func (rt *RunTracer) TraceStage(ctx context.Context, stage RunState) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "run.stage."+strings.ToLower(string(stage)),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("stage", string(stage))),
	)
}

// TraceExport creates a span for one exporter
func (rt *RunTracer) TraceExport(ctx context.Context, format domain.ReportFormat, path string) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, "run.export."+string(format),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("report.format", string(format)),
			attribute.String("report.path", path),
		),
	)
}

// RecordStageCompletion ends a stage span and records its duration
func (rt *RunTracer) RecordStageCompletion(ctx context.Context, span trace.Span, stage RunState, duration time.Duration, items int, err error) {
	span.SetAttributes(
		attribute.Float64("stage.duration_seconds", duration.Seconds()),
		attribute.Int("stage.items", items),
	)
	if err != nil {
		infrastructure.RecordError(ctx, err, trace.WithAttributes(
			attribute.String("stage", string(stage)),
			attribute.String("error.kind", string(apperrors.KindOf(err))),
		))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	rt.metrics.RecordStage(ctx, string(stage), duration, err == nil)
}

// RecordExport ends an export span and records the report outcome
func (rt *RunTracer) RecordExport(ctx context.Context, span trace.Span, report domain.Report) {
	span.SetAttributes(
		attribute.String("report.status", string(report.Status)),
		attribute.Int64("report.bytes", report.FileSize),
	)
	if report.Error != "" {
		span.SetStatus(codes.Error, report.Error)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	rt.metrics.RecordReport(ctx, string(report.Format), string(report.Status), report.FileSize)
}

// RecordFetch counts a fetched record
func (rt *RunTracer) RecordFetch(ctx context.Context, objectID int) {
	rt.metrics.RecordsFetched.Add(ctx, 1)
	infrastructure.AddSpanEvent(ctx, "object.fetched", map[string]interface{}{
		"object_id": objectID,
	})
}

// RecordRetry counts a retried API call
func (rt *RunTracer) RecordRetry(ctx context.Context, attempt int, err error) {
	rt.metrics.FetchRetries.Add(ctx, 1)
	infrastructure.AddSpanEvent(ctx, "fetch.retry", map[string]interface{}{
		"attempt": attempt,
		"error":   err.Error(),
	})
}

// RecordFetchError counts an API call that failed for good
func (rt *RunTracer) RecordFetchError(ctx context.Context, kind string) {
	if kind == "" {
		kind = "other"
	}
	rt.metrics.RecordFetchError(ctx, kind)
}

// RecordRunCompletion ends the run span and records the run outcome
func (rt *RunTracer) RecordRunCompletion(ctx context.Context, span trace.Span, result *RunResult) {
	span.SetAttributes(
		attribute.String("run.state", string(result.State)),
		attribute.Int("run.records", result.RecordCount),
		attribute.Int("run.columns", result.ColumnCount),
		attribute.Int("run.reports", result.Succeeded()),
		attribute.Float64("run.duration_seconds", result.Duration().Seconds()),
	)
	if result.State == StateDone {
		span.SetStatus(codes.Ok, "run completed")
		rt.metrics.RecordSuccess(ctx, result.FinishedAt)
	} else {
		span.SetStatus(codes.Error, result.Error)
	}
	span.End()

	rt.metrics.RecordRun(ctx, string(result.State), result.Duration())
}
