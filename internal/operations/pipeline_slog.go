package operations

import (
	"context"
	"log/slog"
	"time"

	"museumreport/internal/infrastructure"
)

// logRunStart logs the start of a run
func (p *Pipeline) logRunStart(ctx context.Context) {
	p.logger.InfoContext(ctx, "run_start",
		slog.Int("object_limit", p.cfg.ObjectLimit),
		slog.Int("fetch_workers", p.cfg.FetchWorkers),
		slog.Int("exporters", len(p.exporters)),
		slog.String("report_dir", p.cfg.ReportDir))
}

// logRunComplete logs the final state of a run
func (p *Pipeline) logRunComplete(ctx context.Context, result *RunResult) {
	attrs := []any{
		slog.String("state", string(result.State)),
		slog.Any("summary", result.Metadata()),
		slog.Int("reports_written", result.Succeeded()),
		slog.Duration("duration", result.Duration()),
	}
	if result.State == StateFailed {
		p.logger.ErrorContext(ctx, "run_failed", append(attrs, slog.String("error", result.Error))...)
		return
	}
	p.logger.InfoContext(ctx, "run_complete", attrs...)
}

// logStageStart logs the start of a state
func (p *Pipeline) logStageStart(ctx context.Context, stage RunState) {
	p.logger.InfoContext(ctx, "stage_start",
		slog.String("stage", string(stage)))
}

// logStageComplete logs the completion of a state
func (p *Pipeline) logStageComplete(ctx context.Context, stage RunState, duration time.Duration, items int) {
	p.logger.InfoContext(ctx, "stage_complete",
		slog.String("stage", string(stage)),
		slog.Int("items", items),
		slog.Duration("duration", duration))
}

// logStageError logs a state failure
func (p *Pipeline) logStageError(ctx context.Context, stage RunState, err error) {
	infrastructure.WithError(p.logger, err).ErrorContext(ctx, "stage_error",
		slog.String("stage", string(stage)))
}
