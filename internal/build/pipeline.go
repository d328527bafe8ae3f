package build

import (
	"context"
	"path/filepath"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/conneroisu/lesstask/internal/config"
	taskerrors "github.com/conneroisu/lesstask/internal/errors"
	"github.com/conneroisu/lesstask/internal/logging"
	"github.com/conneroisu/lesstask/internal/metrics"
	"github.com/conneroisu/lesstask/internal/renderer"
)

// Pipeline compiles single source files: read, render, minify unless in
// debug mode, map the output path and write.
type Pipeline struct {
	fs       afero.Fs
	render   renderer.Renderer
	minifier renderer.Minifier
	recorder metrics.Recorder
	logger   logging.Logger
	cfg      config.Config
	debug    bool
}

// NewPipeline creates a pipeline for cfg. debug is the effective debug mode.
func NewPipeline(env Env, cfg config.Config, debug bool) *Pipeline {
	env = env.withDefaults()

	return &Pipeline{
		fs:       env.Fs,
		render:   env.Renderer,
		minifier: env.Minifier,
		recorder: env.Recorder,
		logger:   env.Logger,
		cfg:      cfg,
		debug:    debug,
	}
}

// Compile turns file into its output artifact. matchedDir is the matched
// source directory that owns file. Errors are returned, never logged here.
func (p *Pipeline) Compile(ctx context.Context, matchedDir, file string) (Outcome, error) {
	outcome := Outcome{Source: file}

	var source []byte
	err := p.stage(ctx, metrics.StageRead, func() error {
		var err error
		source, err = afero.ReadFile(p.fs, file)
		if err != nil {
			return taskerrors.NewIOError(taskerrors.CodeReadFile, "reading source", err).WithPath(file)
		}
		return nil
	})
	if err != nil {
		return outcome, err
	}

	var css []byte
	err = p.stage(ctx, metrics.StageRender, func() error {
		result, err := p.render.Render(ctx, source, renderer.Options{
			Filename:        file,
			IncludePaths:    []string{filepath.Dir(file)},
			Browsers:        slices.Clone(p.cfg.Browsers),
			SourceMapInline: p.debug,
		})
		if err != nil {
			return withFile(err, file)
		}

		for _, warning := range result.Warnings {
			p.logger.Warn(ctx, nil, warning, "file", file)
		}
		css = result.CSS
		return nil
	})
	if err != nil {
		return outcome, err
	}

	if !p.debug {
		err = p.stage(ctx, metrics.StageMinify, func() error {
			minified, err := p.minifier.Minify(css)
			if err != nil {
				return withFile(err, file)
			}
			css = minified
			return nil
		})
		if err != nil {
			return outcome, err
		}
	}

	out := OutputPath(file, matchedDir, p.cfg.Output, p.cfg.NameFor)

	err = p.stage(ctx, metrics.StageWrite, func() error {
		if err := p.fs.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return taskerrors.NewIOError(taskerrors.CodeMkdir, "creating output directory", err).WithPath(filepath.Dir(out))
		}
		if err := afero.WriteFile(p.fs, out, css, 0o644); err != nil {
			return taskerrors.NewIOError(taskerrors.CodeWriteFile, "writing artifact", err).WithPath(out)
		}
		return nil
	})
	if err != nil {
		return outcome, err
	}

	outcome.Output = out
	outcome.Size = len(css)

	p.logger.Info(ctx, "Compile "+filepath.Base(file)+" -> "+filepath.Base(out),
		"output", out,
		"size", humanize.Bytes(uint64(len(css))),
	)

	return outcome, nil
}

func (p *Pipeline) stage(ctx context.Context, stage metrics.Stage, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := fn()
	p.recorder.ObserveStageDuration(stage, time.Since(start))
	p.recorder.IncStageResult(stage, metrics.ResultOf(err))

	return err
}

// withFile fills in the source path of a diagnostic the renderer or
// minifier could not attribute.
func withFile(err error, file string) error {
	if diag, ok := taskerrors.DiagnosticOf(err); ok && diag.File == "" {
		diag.File = file
	}
	return err
}
