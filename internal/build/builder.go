package build

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sourcegraph/conc/iter"

	"github.com/conneroisu/lesstask/internal/config"
	"github.com/conneroisu/lesstask/internal/logging"
	"github.com/conneroisu/lesstask/internal/metrics"
)

// Builder runs full batches: discovery followed by every directory compiler.
type Builder struct {
	env   Env
	cfg   config.Config
	debug bool
}

// NewBuilder creates a builder. debug is the effective debug mode.
func NewBuilder(env Env, cfg config.Config, debug bool) *Builder {
	return &Builder{
		env:   env.withDefaults(),
		cfg:   cfg,
		debug: debug,
	}
}

// Run discovers the matched directories and compiles all of them
// concurrently. The returned report always covers the whole batch; a
// discovery failure is logged and stored in Report.Err.
func (b *Builder) Run(ctx context.Context, trigger metrics.Trigger) Report {
	report := newReport(string(trigger))
	logger := b.env.Logger.WithComponent("batch").With("batch_id", report.BatchID)

	op := logging.StartOperation(logger, "batch")

	compilers, err := Discover(ctx, b.env, b.cfg, b.debug)
	if err != nil {
		logger.Error(ctx, err, "Discovery failed", "input", b.cfg.Input)
		report.Err = err
		report.Duration = time.Since(report.Started)
		b.record(report, trigger)
		return report
	}

	report.Directories = len(compilers)
	if len(compilers) == 0 {
		logger.Warn(ctx, nil, "No directories match the input pattern", "input", b.cfg.Input)
	}

	perDir := iter.Map(compilers, func(c **DirectoryCompiler) []Outcome {
		return (*c).Compile(ctx)
	})
	for _, outcomes := range perDir {
		report.Outcomes = append(report.Outcomes, outcomes...)
	}

	report.Duration = op.End(ctx, "Batch finished",
		"trigger", report.Trigger,
		"directories", report.Directories,
		"files", len(report.Outcomes),
		"failed", report.Failed(),
		"written", humanize.Bytes(report.Bytes()),
	)
	b.record(report, trigger)

	return report
}

func (b *Builder) record(report Report, trigger metrics.Trigger) {
	rec := b.env.Recorder
	rec.ObserveBatchDuration(trigger, report.Duration)
	rec.IncBatch(trigger, metrics.ResultOf(report.Err))

	failed := report.Failed()
	rec.AddFiles(metrics.ResultSuccess, len(report.Outcomes)-failed)
	rec.AddFiles(metrics.ResultFailed, failed)
}
