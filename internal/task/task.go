// Package task is the entry point of the stylesheet build: it runs one
// batch over every matched directory and, in watch mode, reruns the whole
// batch whenever a stylesheet is added or changed.
package task

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/spf13/afero"

	"github.com/conneroisu/lesstask/internal/build"
	"github.com/conneroisu/lesstask/internal/config"
	taskerrors "github.com/conneroisu/lesstask/internal/errors"
	"github.com/conneroisu/lesstask/internal/logging"
	"github.com/conneroisu/lesstask/internal/metrics"
	"github.com/conneroisu/lesstask/internal/renderer"
	"github.com/conneroisu/lesstask/internal/watcher"
)

// Mode is the ambient intent of the host. Config flags that are set take
// precedence over it.
type Mode struct {
	Debug bool
	Watch bool
}

// Func is the runnable unit handed to a host. done is called exactly once
// when the task finishes.
type Func func(done func(), mode Mode)

// Subscription is a stream of change events that can be closed.
type Subscription interface {
	Events() <-chan watcher.ChangeEvent
	Close() error
}

// WatchFunc subscribes to changes of files matching pattern.
type WatchFunc func(ctx context.Context, pattern string, opts watcher.Options) (Subscription, error)

// Notifier is told about every finished batch.
type Notifier interface {
	Notify(ctx context.Context, report build.Report)
}

// Task coordinates batches and the watch loop for one configuration.
type Task struct {
	cfg       config.Config
	env       build.Env
	logger    logging.Logger
	watch     WatchFunc
	notifiers []Notifier
	state     atomic.Int32
}

// Option configures a Task.
type Option func(*Task)

func WithLogger(logger logging.Logger) Option {
	return func(t *Task) { t.env.Logger = logger }
}

func WithFs(fs afero.Fs) Option {
	return func(t *Task) { t.env.Fs = fs }
}

// WithRenderer replaces the lessc renderer built from the configuration.
func WithRenderer(r renderer.Renderer) Option {
	return func(t *Task) { t.env.Renderer = r }
}

func WithMinifier(m renderer.Minifier) Option {
	return func(t *Task) { t.env.Minifier = m }
}

func WithRecorder(r metrics.Recorder) Option {
	return func(t *Task) { t.env.Recorder = r }
}

// WithNotifier adds n to the notifiers called after each batch.
func WithNotifier(n Notifier) Option {
	return func(t *Task) { t.notifiers = append(t.notifiers, n) }
}

func WithWatchFunc(fn WatchFunc) Option {
	return func(t *Task) { t.watch = fn }
}

// New creates a task for the resolved configuration cfg.
func New(cfg config.Config, opts ...Option) *Task {
	t := &Task{
		cfg:   cfg,
		watch: watchFiles,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.env.Logger == nil {
		t.env.Logger = logging.NewNopLogger()
	}
	t.logger = t.env.Logger.WithComponent("task")

	return t
}

func watchFiles(ctx context.Context, pattern string, opts watcher.Options) (Subscription, error) {
	return watcher.Watch(ctx, pattern, opts)
}

// State returns the current state of the task.
func (t *Task) State() State {
	return State(t.state.Load())
}

func (t *Task) setState(s State) {
	t.state.Store(int32(s))
}

// Func returns the task as a host callable. Each invocation installs a
// SIGINT/SIGTERM handler that ends the run, and calls done once the run is
// over. Failures are logged by the run itself.
func (t *Task) Func() Func {
	return func(done func(), mode Mode) {
		var once sync.Once
		defer func() {
			if done != nil {
				once.Do(done)
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_ = t.Run(ctx, mode)
	}
}

// Run executes the task until it is complete: after the first batch when
// not watching, or when ctx is cancelled while watching. Every error it
// returns has already been logged.
func (t *Task) Run(ctx context.Context, mode Mode) error {
	debug := t.cfg.DebugMode(mode.Debug)
	watch := t.cfg.WatchMode(mode.Watch)

	defer t.setState(StateClosed)

	env := t.env
	if env.Renderer == nil {
		lessc, err := renderer.NewLessc(t.cfg.Renderer.Command, t.cfg.Renderer.Timeout)
		if err != nil {
			t.logger.Error(ctx, err, "Invalid renderer")
			return err
		}
		env.Renderer = lessc
	}

	builder := build.NewBuilder(env, t.cfg, debug)

	t.logger.Debug(ctx, "Starting", "input", t.cfg.Input, "debug", debug, "watch", watch)

	if !watch {
		t.setState(StateRunning)
		return t.runBatch(ctx, builder, metrics.TriggerInitial).Err
	}

	return t.watchLoop(ctx, builder)
}

func (t *Task) runBatch(ctx context.Context, builder *build.Builder, trigger metrics.Trigger) build.Report {
	report := builder.Run(ctx, trigger)
	for _, n := range t.notifiers {
		n.Notify(ctx, report)
	}
	return report
}

// watchLoop runs the initial batch and one full batch per change. Batches
// never overlap: changes seen while a batch is running collapse into a
// single rerun that starts once it settles. A discovery failure in the
// initial batch ends the run.
func (t *Task) watchLoop(ctx context.Context, builder *build.Builder) error {
	finished := make(chan build.Report, 1)
	start := func(trigger metrics.Trigger) {
		t.setState(StateRunning)
		go func() {
			finished <- t.runBatch(ctx, builder, trigger)
		}()
	}

	start(metrics.TriggerInitial)

	pattern := t.cfg.WatchPattern()
	sub, err := t.watch(ctx, pattern, watcher.Options{
		Debounce: t.cfg.WatchDebounce,
		Logger:   t.env.Logger,
	})
	if err != nil {
		t.logger.Error(ctx, err, "Failed to watch for changes", "pattern", pattern)
		select {
		case <-finished:
		case <-ctx.Done():
		}
		return err
	}
	defer sub.Close()

	t.logger.Info(ctx, "Watching for changes", "root", t.cfg.InputBase(), "pattern", pattern)

	running, pending, initial := true, false, true
	for {
		select {
		case <-ctx.Done():
			t.logger.Info(ctx, "Stopped watching")
			return nil

		case event, ok := <-sub.Events():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				err := taskerrors.NewWatchError(taskerrors.CodeWatchStart, "change stream ended", nil)
				t.logger.Error(ctx, err, "Stopped watching")
				return err
			}

			t.logger.Info(ctx, "Change detected", "path", event.Path, "type", event.Type.String())
			if running {
				pending = true
				continue
			}
			running = true
			start(metrics.TriggerChange)

		case report := <-finished:
			running = false
			if initial {
				initial = false
				// nothing was discovered to watch over
				if taskerrors.IsDiscoveryError(report.Err) {
					t.logger.Error(ctx, report.Err, "Stopped watching")
					return report.Err
				}
			}
			if pending {
				pending = false
				running = true
				start(metrics.TriggerChange)
				continue
			}
			t.setState(StateWatching)
		}
	}
}
