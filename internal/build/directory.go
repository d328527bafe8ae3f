package build

import (
	"context"
	"path/filepath"

	"github.com/sourcegraph/conc/iter"
	"github.com/spf13/afero"

	"github.com/conneroisu/lesstask/internal/config"
	taskerrors "github.com/conneroisu/lesstask/internal/errors"
	"github.com/conneroisu/lesstask/internal/logging"
)

// DirectoryCompiler compiles the stylesheets directly inside one matched
// directory.
type DirectoryCompiler struct {
	dir         string
	fs          afero.Fs
	pipeline    *Pipeline
	logger      logging.Logger
	concurrency int
}

// NewDirectoryCompiler creates a compiler for dir. A concurrency of zero
// runs up to GOMAXPROCS files at once.
func NewDirectoryCompiler(dir string, env Env, pipeline *Pipeline, concurrency int) *DirectoryCompiler {
	env = env.withDefaults()

	return &DirectoryCompiler{
		dir:         dir,
		fs:          env.Fs,
		pipeline:    pipeline,
		logger:      env.Logger.WithComponent("build").With("dir", dir),
		concurrency: concurrency,
	}
}

// Dir returns the matched directory.
func (d *DirectoryCompiler) Dir() string {
	return d.dir
}

// EnumerateFiles lists the .less files directly inside the directory, sorted
// by name. Subdirectories are not descended into.
func (d *DirectoryCompiler) EnumerateFiles() ([]string, error) {
	entries, err := afero.ReadDir(d.fs, d.dir)
	if err != nil {
		return nil, taskerrors.NewIOError(taskerrors.CodeListDir, "listing directory", err).WithPath(d.dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != config.StylesheetExt {
			continue
		}
		files = append(files, filepath.Join(d.dir, entry.Name()))
	}

	return files, nil
}

// Compile runs the pipeline over every enumerated file concurrently and
// waits for all of them. Per-file failures are logged and reported as
// failed outcomes; they never stop sibling files.
func (d *DirectoryCompiler) Compile(ctx context.Context) []Outcome {
	files, err := d.EnumerateFiles()
	if err != nil {
		d.logger.Error(ctx, err, "Failed to enumerate stylesheets")
		return []Outcome{{Source: d.dir, Err: err}}
	}

	mapper := iter.Mapper[string, Outcome]{MaxGoroutines: d.concurrency}

	return mapper.Map(files, func(file *string) Outcome {
		outcome, err := d.pipeline.Compile(ctx, d.dir, *file)
		if err != nil {
			d.logFailure(ctx, *file, err)
			outcome.Err = err
		}
		return outcome
	})
}

func (d *DirectoryCompiler) logFailure(ctx context.Context, file string, err error) {
	rel, relErr := filepath.Rel(d.dir, file)
	if relErr != nil {
		rel = file
	}

	if diag, ok := taskerrors.DiagnosticOf(err); ok {
		fields := []interface{}{
			"file", rel,
			"line", diag.Line,
			"column", diag.Column,
			"kind", diag.Kind,
			"excerpt", diag.Excerpt,
		}
		if hints := taskerrors.Suggest(diag); len(hints) > 0 {
			fields = append(fields, "hint", hints[0].Title)
		}
		d.logger.Error(ctx, nil, diag.Message, fields...)
		return
	}

	d.logger.Error(ctx, err, "Failed to compile stylesheet", "file", rel)
}
