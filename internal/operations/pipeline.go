package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"museumreport/internal/dataprocessing"
	apperrors "museumreport/internal/errors"
	"museumreport/internal/exporter"
	"museumreport/internal/infrastructure"
	"museumreport/internal/validation"
	"museumreport/pkg/contracts/domain"
)

// Pipeline runs fetch, flatten and export for one batch of objects
type Pipeline struct {
	cfg       *Config
	source    RecordSource
	flattener *dataprocessing.Flattener
	exporters []exporter.Exporter
	retry     RetryPolicy
	notifier  Notifier
	validator *validation.FileValidator
	tracer    *RunTracer
	logger    *slog.Logger
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithExporters replaces the default exporters. They run in the given order.
func WithExporters(exporters ...exporter.Exporter) PipelineOption {
	return func(p *Pipeline) { p.exporters = exporters }
}

// WithNotifier sets the notifier used when Config.Notify is true
func WithNotifier(n Notifier) PipelineOption {
	return func(p *Pipeline) { p.notifier = n }
}

// WithTracer sets the run tracer
func WithTracer(t *RunTracer) PipelineOption {
	return func(p *Pipeline) { p.tracer = t }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

// NewPipeline creates a pipeline reading from source. Without WithExporters
// it writes CSV, XLSX, HTML and XML.
func NewPipeline(cfg *Config, source RecordSource, opts ...PipelineOption) (*Pipeline, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if source == nil {
		return nil, apperrors.NewInvalidArgumentError("source", "is nil")
	}

	p := &Pipeline{
		cfg:    cfg,
		source: source,
		retry:  NewRetryPolicy(cfg.RetryConfig),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.logger = infrastructure.WithComponent(p.logger, "pipeline")
	if p.exporters == nil {
		p.exporters = exporter.NewSet(exporter.Options{Logger: p.logger})
	}
	if p.tracer == nil {
		t, err := NewRunTracer(nil, nil)
		if err != nil {
			return nil, err
		}
		p.tracer = t
	}
	p.validator = validation.NewFileValidator(p.logger)
	p.flattener = dataprocessing.NewFlattener(cfg.RepeatedGroups,
		dataprocessing.WithStrict(cfg.StrictFlatten),
		dataprocessing.WithFlattenLogger(p.logger),
	)
	return p, nil
}

// Run executes one report run. The result is returned even when the run
// fails; the error is the cause of the failure.
//
// A run that reached DONE but whose notification failed returns its DONE
// result together with the notification error.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.RunIDFromContext(ctx)

	status := NewRunStatus()
	result := &RunResult{RunID: runID, StartedAt: time.Now()}

	ctx, span := p.tracer.TraceRun(ctx, runID)
	p.logRunStart(ctx)

	finish := func(err error) (*RunResult, error) {
		if err != nil {
			status.Fail(err)
			result.Error = err.Error()
		}
		result.State = status.Current()
		result.Transitions = status.Transitions()
		result.FinishedAt = time.Now()
		p.tracer.RecordRunCompletion(ctx, span, result)
		p.logRunComplete(ctx, result)
		return result, err
	}

	// an unwritable report directory fails before any API call
	if err := p.validator.ValidateOutputDirectory(p.cfg.ReportDir); err != nil {
		return finish(err)
	}

	records, err := p.fetchStage(ctx, status, result)
	if err != nil {
		return finish(err)
	}
	if err := p.flattenStage(ctx, status, records, result.ObjectIDs); err != nil {
		return finish(err)
	}
	if err := p.exportStage(ctx, status, records, result); err != nil {
		return finish(err)
	}
	if err := status.Advance(StateDone); err != nil {
		return finish(err)
	}

	res, _ := finish(nil)
	if err := p.notify(ctx, res); err != nil {
		res.NotifyError = err.Error()
		return res, err
	}
	return res, nil
}

// fetchStage lists ids, applies the object limit and fetches every record
func (p *Pipeline) fetchStage(ctx context.Context, status *RunStatus, result *RunResult) ([]*domain.Record, error) {
	if err := status.Advance(StateFetching); err != nil {
		return nil, err
	}
	start, _ := status.Entered(StateFetching)
	stageCtx, span := p.tracer.TraceStage(ctx, StateFetching)
	p.logStageStart(stageCtx, StateFetching)

	records, err := p.fetch(stageCtx, result)
	p.tracer.RecordStageCompletion(stageCtx, span, StateFetching, time.Since(start), len(records), err)
	if err != nil {
		p.logStageError(stageCtx, StateFetching, err)
		return nil, err
	}
	p.logStageComplete(stageCtx, StateFetching, time.Since(start), len(records))
	return records, nil
}

func (p *Pipeline) fetch(ctx context.Context, result *RunResult) ([]*domain.Record, error) {
	var ids []int
	err := p.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		ids, err = p.source.ListObjectIDs(ctx)
		return err
	}, p.onRetry(ctx, "list"))
	if err != nil {
		p.tracer.RecordFetchError(ctx, string(apperrors.KindOf(err)))
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	if limit := p.cfg.ObjectLimit; limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	result.ObjectIDs = ids
	p.logger.InfoContext(ctx, "Listed collection objects",
		slog.Int("object_count", len(ids)),
		slog.Int("object_limit", p.cfg.ObjectLimit))

	records := make([]*domain.Record, len(ids))
	progress := NewProgressTracker(StateFetching, len(ids))

	fetchOne := func(ctx context.Context, i int) error {
		id := ids[i]
		var record *domain.Record
		err := p.retry.Do(ctx, func(ctx context.Context) error {
			var err error
			record, err = p.source.GetObject(ctx, id)
			return err
		}, p.onRetry(ctx, fmt.Sprintf("object %d", id)))
		if err != nil {
			p.tracer.RecordFetchError(ctx, string(apperrors.KindOf(err)))
			return fmt.Errorf("failed to fetch object %d: %w", id, err)
		}

		records[i] = record
		p.tracer.RecordFetch(ctx, id)
		progress.Increment()
		done, total, pct := progress.GetProgress()
		p.logger.DebugContext(ctx, "Fetched object",
			slog.Int("object_id", id),
			slog.String("progress", fmt.Sprintf("%d/%d", done, total)),
			slog.Float64("percent", pct),
			slog.String("eta", progress.GetETA()))
		return nil
	}

	if p.cfg.FetchWorkers <= 1 {
		for i := range ids {
			if err := fetchOne(ctx, i); err != nil {
				return nil, err
			}
		}
		return records, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.FetchWorkers)
	for i := range ids {
		g.Go(func() error { return fetchOne(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (p *Pipeline) onRetry(ctx context.Context, what string) RetryFunc {
	return func(attempt int, delay time.Duration, err error) {
		p.tracer.RecordRetry(ctx, attempt, err)
		p.logger.WarnContext(ctx, "Retrying collection API call",
			slog.String("call", what),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
	}
}

// flattenStage flattens every record in place
func (p *Pipeline) flattenStage(ctx context.Context, status *RunStatus, records []*domain.Record, ids []int) error {
	if err := status.Advance(StateFlattening); err != nil {
		return err
	}
	start, _ := status.Entered(StateFlattening)
	stageCtx, span := p.tracer.TraceStage(ctx, StateFlattening)
	p.logStageStart(stageCtx, StateFlattening)

	var err error
	for i, record := range records {
		if _, ferr := p.flattener.Flatten(record); ferr != nil {
			var appErr *apperrors.Error
			if errors.As(ferr, &appErr) {
				appErr.With("object_id", ids[i])
			}
			err = fmt.Errorf("failed to flatten object %d: %w", ids[i], ferr)
			break
		}
	}

	p.tracer.RecordStageCompletion(stageCtx, span, StateFlattening, time.Since(start), len(records), err)
	if err != nil {
		p.logStageError(stageCtx, StateFlattening, err)
		return err
	}
	p.logStageComplete(stageCtx, StateFlattening, time.Since(start), len(records))
	return nil
}

// exportStage tabulates the records and runs every exporter in order
func (p *Pipeline) exportStage(ctx context.Context, status *RunStatus, records []*domain.Record, result *RunResult) error {
	if err := status.Advance(StateExporting); err != nil {
		return err
	}
	start, _ := status.Entered(StateExporting)
	stageCtx, span := p.tracer.TraceStage(ctx, StateExporting)
	p.logStageStart(stageCtx, StateExporting)

	err := p.export(stageCtx, records, result)
	p.tracer.RecordStageCompletion(stageCtx, span, StateExporting, time.Since(start), result.Succeeded(), err)
	if err != nil {
		p.logStageError(stageCtx, StateExporting, err)
		return err
	}
	p.logStageComplete(stageCtx, StateExporting, time.Since(start), result.Succeeded())
	return nil
}

func (p *Pipeline) export(ctx context.Context, records []*domain.Record, result *RunResult) error {
	table, err := dataprocessing.Tabulate(records)
	if err != nil {
		return fmt.Errorf("failed to tabulate records: %w", err)
	}
	result.RecordCount = table.Len()
	result.ColumnCount = len(table.Columns)

	var failures apperrors.ErrorList
	for _, e := range p.exporters {
		report, err := p.exportOne(ctx, e, table)
		result.Reports = append(result.Reports, report)
		if err == nil {
			continue
		}

		err = fmt.Errorf("%s report: %w", report.Format, err)
		if !p.cfg.ContinueOnError {
			return err
		}
		failures.Add(err)
	}

	if err := failures.ErrorOrNil(); err != nil {
		return fmt.Errorf("%d of %d reports succeeded: %w", result.Succeeded(), len(p.exporters), err)
	}
	return nil
}

func (p *Pipeline) exportOne(ctx context.Context, e exporter.Exporter, table *domain.Table) (domain.Report, error) {
	format := e.Format()
	path := filepath.Join(p.cfg.ReportDir, p.cfg.BaseName+format.Extension())
	report := domain.Report{Format: format, FilePath: path, Status: domain.ReportStatusPending}

	exportCtx, span := p.tracer.TraceExport(ctx, format, path)
	start := time.Now()
	err := e.Export(exportCtx, table, path)
	if err == nil && p.cfg.VerifyReports {
		err = p.validator.ValidateReport(path, format)
	}
	report.Duration = time.Since(start)

	if err != nil {
		report.Status = domain.ReportStatusFailed
		report.Error = err.Error()
		p.logger.ErrorContext(exportCtx, "Report export failed",
			slog.String("format", string(format)),
			slog.String("file_path", path),
			slog.String("error", err.Error()))
	} else {
		report.Status = domain.ReportStatusCompleted
		report.GeneratedAt = time.Now()
		if info, statErr := os.Stat(path); statErr == nil {
			report.FileSize = info.Size()
		}
		p.logger.InfoContext(exportCtx, "Report written",
			slog.String("format", string(format)),
			slog.String("file_path", path),
			slog.Int64("bytes", report.FileSize),
			slog.Duration("duration", report.Duration))
	}

	p.tracer.RecordExport(exportCtx, span, report)
	return report, err
}

// notify hands the written reports to the notifier
func (p *Pipeline) notify(ctx context.Context, result *RunResult) error {
	if !p.cfg.Notify || p.notifier == nil {
		return nil
	}

	n := domain.Notification{
		Subject:     p.cfg.Subject,
		Body:        p.cfg.Body,
		Attachments: result.Files(),
	}
	if err := p.notifier.Notify(ctx, n); err != nil {
		p.logger.ErrorContext(ctx, "Report notification failed",
			slog.String("error", err.Error()),
			slog.Int("attachments", len(n.Attachments)))
		if apperrors.KindOf(err) == apperrors.KindNotification {
			return err
		}
		return apperrors.NewNotificationError("failed to send report notification", err)
	}

	p.logger.InfoContext(ctx, "Report notification sent",
		slog.Int("attachments", len(n.Attachments)))
	return nil
}
