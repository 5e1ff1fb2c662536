package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"museumreport/internal/config"
	apperrors "museumreport/internal/errors"
	"museumreport/internal/exporter"
	"museumreport/internal/infrastructure"
	"museumreport/internal/museum"
	"museumreport/internal/notify"
	"museumreport/internal/operations"
)

// Exit codes
const (
	exitOK           = 0
	exitRunFailed    = 1
	exitUsage        = 2
	exitNotifyFailed = 3
)

// options holds the command line flags
type options struct {
	configPath string
	outDir     string
	limit      int
	schedule   string
	once       bool
	noPDF      bool
	noEmail    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file (defaults to config.yaml if present)")
	fs.StringVar(&opts.outDir, "out", "", "output directory for reports (overrides report.dir)")
	fs.IntVar(&opts.limit, "limit", -1, "number of objects to fetch, 0 for all (overrides api.object_limit)")
	fs.StringVar(&opts.schedule, "schedule", "", "cron expression to run on repeatedly (overrides schedule)")
	fs.BoolVar(&opts.once, "once", false, "run once even when a schedule is configured")
	fs.BoolVar(&opts.noPDF, "no-pdf", false, "skip the PDF report")
	fs.BoolVar(&opts.noEmail, "no-email", false, "do not email the reports")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

// applyFlags lays the command line over the loaded configuration
func applyFlags(cfg *config.Config, opts *options) {
	if opts.outDir != "" {
		cfg.Report.Dir = opts.outDir
	}
	if opts.limit >= 0 {
		cfg.API.ObjectLimit = opts.limit
	}
	if opts.schedule != "" {
		cfg.Schedule = opts.schedule
	}
	if opts.once {
		cfg.Schedule = ""
	}
	if opts.noPDF {
		cfg.Report.PDF = false
	}
	if opts.noEmail {
		cfg.Email.Enabled = false
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
		return exitUsage
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid configuration: %v\n", err)
		return exitUsage
	}

	paths, err := config.ResolvePaths(cfg, "")
	if err != nil {
		fmt.Fprintf(stderr, "Failed to resolve paths: %v\n", err)
		return exitUsage
	}
	cfg.Logging.FilePath = paths.LogFile

	logger, closer, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return exitUsage
	}
	defer closer.Close()

	a, err := newApp(ctx, cfg, paths, logger, stdout)
	if err != nil {
		infrastructure.WithError(logger, err).Error("Failed to initialize")
		return exitUsage
	}
	defer a.shutdown()

	if cfg.Schedule == "" {
		return a.runOnce(ctx)
	}
	return a.runScheduled(ctx)
}

// app wires the collection client, exporters, notifier and telemetry into
// one pipeline
type app struct {
	cfg      *config.Config
	paths    *config.Paths
	logger   *slog.Logger
	tel      *infrastructure.Telemetry
	pipeline *operations.Pipeline
	stdout   io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, stdout io.Writer) (*app, error) {
	tel, err := infrastructure.InitTelemetry(ctx, cfg.Tracing, logger)
	if err != nil {
		return nil, err
	}
	metrics, err := infrastructure.NewRunMetrics(tel.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create run metrics: %w", err)
	}
	tracer, err := operations.NewRunTracer(tel.Tracer, metrics)
	if err != nil {
		return nil, err
	}

	client := museum.NewClient(museum.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		UserAgent: cfg.API.UserAgent,
	}, logger)

	exportOpts := exporter.Options{
		BOMPrefix: cfg.Report.BOM,
		SheetName: cfg.Report.SheetName,
		Title:     cfg.Report.Title,
		PageSize:  exporter.PageSize{Width: cfg.Report.PageWidth, Height: cfg.Report.PageHeight},
		Logger:    logger,
	}
	if cfg.Report.PDF {
		exportOpts.Renderer = exporter.NewChromeRenderer(cfg.Report.ChromePath, cfg.Report.RenderTimeout, logger)
	}

	pipelineOpts := []operations.PipelineOption{
		operations.WithExporters(exporter.NewSet(exportOpts)...),
		operations.WithTracer(tracer),
		operations.WithLogger(logger),
	}
	if cfg.Email.Enabled {
		notifyOpts := []notify.Option{notify.WithLogger(logger)}
		if cfg.Email.Archive {
			notifyOpts = append(notifyOpts, notify.WithArchive(paths.GetArchivePath()))
		}
		notifier, err := notify.NewSMTPNotifier(cfg.Email, notifyOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create notifier: %w", err)
		}
		pipelineOpts = append(pipelineOpts, operations.WithNotifier(notifier))
	}

	pipeline, err := operations.NewPipeline(operations.ConfigFromApp(cfg, paths.ReportsDir), client, pipelineOpts...)
	if err != nil {
		tel.Shutdown(ctx)
		return nil, err
	}

	return &app{
		cfg:      cfg,
		paths:    paths,
		logger:   logger,
		tel:      tel,
		pipeline: pipeline,
		stdout:   stdout,
	}, nil
}

// runOnce runs the pipeline and maps the outcome to an exit code
func (a *app) runOnce(ctx context.Context) int {
	result, err := a.pipeline.Run(ctx)

	if werr := a.tel.WriteMetrics(a.cfg.Metrics.TextfilePath); werr != nil {
		infrastructure.WithError(a.logger, werr).Warn("Failed to write metrics")
	}

	a.printSummary(result)

	switch {
	case err == nil:
		return exitOK
	case result != nil && result.State == operations.StateDone && apperrors.KindOf(err) == apperrors.KindNotification:
		return exitNotifyFailed
	default:
		return exitRunFailed
	}
}

// runScheduled runs the pipeline on the configured schedule until ctx is done
func (a *app) runScheduled(ctx context.Context) int {
	scheduler, err := operations.NewScheduler(a.cfg.Schedule, func(ctx context.Context) {
		a.runOnce(ctx)
	}, a.logger)
	if err != nil {
		infrastructure.WithError(a.logger, err).Error("Failed to create scheduler")
		return exitUsage
	}
	if err := scheduler.Start(ctx); err != nil {
		infrastructure.WithError(a.logger, err).Error("Failed to start scheduler")
		return exitUsage
	}
	if next := scheduler.NextRun(); next != nil {
		a.logger.Info("Waiting for next run", slog.Time("next_run", *next))
	}

	<-ctx.Done()
	scheduler.Stop()
	a.logger.Info("Shutting down", slog.String("reason", context.Cause(ctx).Error()))
	return exitOK
}

func (a *app) printSummary(result *operations.RunResult) {
	if result == nil {
		return
	}
	fmt.Fprintf(a.stdout, "Run %s finished in state %s (%d records, %d columns)\n",
		result.RunID, result.State, result.RecordCount, result.ColumnCount)
	for _, report := range result.Reports {
		if report.Error != "" {
			fmt.Fprintf(a.stdout, "  %-5s FAILED  %s\n", report.Format, report.Error)
			continue
		}
		fmt.Fprintf(a.stdout, "  %-5s %7d  %s\n", report.Format, report.FileSize, report.FilePath)
	}
	if result.Error != "" {
		fmt.Fprintf(a.stdout, "Error: %s\n", result.Error)
	}
	if result.NotifyError != "" {
		fmt.Fprintf(a.stdout, "Notification failed: %s\n", result.NotifyError)
	}
}

func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownGracePeriod)
	defer cancel()
	if err := a.tel.Shutdown(ctx); err != nil {
		infrastructure.WithError(a.logger, err).Warn("Telemetry shutdown failed")
	}
}
