// Package build compiles matched stylesheet directories into CSS artifacts.
//
// Discovery expands the input pattern into matched directories, each owned
// by a DirectoryCompiler that fans the per-file Pipeline out over its
// direct .less children. Builder ties the two together into batches.
package build

import (
	"github.com/spf13/afero"

	"github.com/conneroisu/lesstask/internal/logging"
	"github.com/conneroisu/lesstask/internal/metrics"
	"github.com/conneroisu/lesstask/internal/renderer"
)

// Env carries the collaborators shared by every compiler of a task.
type Env struct {
	Fs       afero.Fs
	Renderer renderer.Renderer
	Minifier renderer.Minifier
	Recorder metrics.Recorder
	Logger   logging.Logger
}

func (e Env) withDefaults() Env {
	if e.Fs == nil {
		e.Fs = afero.NewOsFs()
	}
	if e.Minifier == nil {
		e.Minifier = renderer.NewCSSMinifier()
	}
	if e.Recorder == nil {
		e.Recorder = metrics.NoopRecorder{}
	}
	if e.Logger == nil {
		e.Logger = logging.NewNopLogger()
	}
	return e
}
