package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// RunMetrics holds the report run instruments
type RunMetrics struct {
	RunsTotal      metric.Int64Counter
	RunDuration    metric.Float64Histogram
	StageDuration  metric.Float64Histogram
	RecordsFetched metric.Int64Counter
	FetchRetries   metric.Int64Counter
	FetchErrors    metric.Int64Counter
	ReportsTotal   metric.Int64Counter
	ReportSize     metric.Int64Counter
	LastSuccess    metric.Float64Gauge
}

// NewRunMetrics creates the run instruments on meter. A nil meter yields
// no-op instruments.
func NewRunMetrics(meter metric.Meter) (*RunMetrics, error) {
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(InstrumentationName)
	}

	runsTotal, err := meter.Int64Counter(
		"museum_runs",
		metric.WithDescription("Total number of report runs by final state"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"museum_run_duration",
		metric.WithDescription("Report run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"museum_stage_duration",
		metric.WithDescription("Run stage duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	recordsFetched, err := meter.Int64Counter(
		"museum_records_fetched",
		metric.WithDescription("Total number of object records fetched"),
	)
	if err != nil {
		return nil, err
	}

	fetchRetries, err := meter.Int64Counter(
		"museum_fetch_retries",
		metric.WithDescription("Total number of retried collection API calls"),
	)
	if err != nil {
		return nil, err
	}

	fetchErrors, err := meter.Int64Counter(
		"museum_fetch_errors",
		metric.WithDescription("Total number of failed collection API calls by error kind"),
	)
	if err != nil {
		return nil, err
	}

	reportsTotal, err := meter.Int64Counter(
		"museum_reports",
		metric.WithDescription("Total number of report files by format and status"),
	)
	if err != nil {
		return nil, err
	}

	reportSize, err := meter.Int64Counter(
		"museum_report_size",
		metric.WithDescription("Total bytes of report files written"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	lastSuccess, err := meter.Float64Gauge(
		"museum_last_success_timestamp",
		metric.WithDescription("Unix time of the last run that reached DONE"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &RunMetrics{
		RunsTotal:      runsTotal,
		RunDuration:    runDuration,
		StageDuration:  stageDuration,
		RecordsFetched: recordsFetched,
		FetchRetries:   fetchRetries,
		FetchErrors:    fetchErrors,
		ReportsTotal:   reportsTotal,
		ReportSize:     reportSize,
		LastSuccess:    lastSuccess,
	}, nil
}

// RecordRun records the outcome of one run
func (m *RunMetrics) RecordRun(ctx context.Context, status string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordSuccess stamps the time of a successful run
func (m *RunMetrics) RecordSuccess(ctx context.Context, at time.Time) {
	m.LastSuccess.Record(ctx, float64(at.UnixNano())/1e9)
}

// RecordStage records the duration of one run stage
func (m *RunMetrics) RecordStage(ctx context.Context, stage string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

// RecordReport records one report file outcome
func (m *RunMetrics) RecordReport(ctx context.Context, format, status string, size int64) {
	m.ReportsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", status),
	))
	if size > 0 {
		m.ReportSize.Add(ctx, size, metric.WithAttributes(attribute.String("format", format)))
	}
}

// RecordFetchError records one failed API call
func (m *RunMetrics) RecordFetchError(ctx context.Context, kind string) {
	m.FetchErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
