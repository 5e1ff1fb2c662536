// Package operations runs report generation end to end.
//
// A run moves through a fixed sequence of states:
//
//	IDLE -> FETCHING -> FLATTENING -> EXPORTING -> DONE
//
// and into FAILED from any non-terminal state. Every transition is recorded
// with its timestamp in the RunResult.
//
// Core Components:
//
// Pipeline: lists object ids from a RecordSource, fetches up to ObjectLimit
// records (sequentially, or with a bounded errgroup fan-out that keeps the
// id order), flattens their repeated groups, tabulates them and runs the
// exporters in order. With ContinueOnError every exporter runs and the run
// fails with an "N of M reports succeeded" error when any of them failed.
//
// RetryPolicy: a pure Decide function over the attempt number and error
// kind, plus a Do loop that waits between attempts and stops on context
// cancellation. Connection failures, timeouts and 5xx/429 responses are
// retried; not-found responses are not.
//
// RunTracer: OpenTelemetry spans per run, state and exporter, and the run
// metrics from the infrastructure package.
//
// Example usage:
//
//	cfg := operations.NewConfigBuilder().
//		WithObjectLimit(15).
//		WithReportDir("reports").
//		Build()
//	pipeline, err := operations.NewPipeline(cfg, client,
//		operations.WithExporters(exporter.NewSet(opts)...),
//		operations.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	result, err := pipeline.Run(ctx)
package operations
