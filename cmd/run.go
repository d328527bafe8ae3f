package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/lesstask/internal/config"
	"github.com/conneroisu/lesstask/internal/livereload"
	"github.com/conneroisu/lesstask/internal/logging"
	"github.com/conneroisu/lesstask/internal/metrics"
	"github.com/conneroisu/lesstask/internal/server"
	"github.com/conneroisu/lesstask/internal/task"
)

// runTask resolves the configuration and runs the task until it completes
// or the process is interrupted.
func runTask(cmd *cobra.Command, v *viper.Viper, mode task.Mode) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []task.Option{task.WithLogger(logger)}
	if cfg.WatchMode(mode.Watch) {
		endpoints, err := startEndpoints(ctx, cfg, logger)
		if err != nil {
			return err
		}
		opts = append(opts, endpoints...)
	}

	return task.New(cfg, opts...).Run(ctx, mode)
}

// startEndpoints serves live reload and metrics when their addresses are
// configured. Both share one server when the addresses are equal.
func startEndpoints(ctx context.Context, cfg config.Config, logger logging.Logger) ([]task.Option, error) {
	var opts []task.Option
	servers := map[string]*server.Server{}

	serverFor := func(addr string) *server.Server {
		if srv, ok := servers[addr]; ok {
			return srv
		}
		srv := server.New(addr, logger)
		servers[addr] = srv
		return srv
	}

	if cfg.Metrics.Addr != "" {
		reg := prom.NewRegistry()
		opts = append(opts, task.WithRecorder(metrics.NewPrometheusRecorder(reg)))
		serverFor(cfg.Metrics.Addr).Handle("/metrics", metrics.HTTPHandler(reg))
	}

	if cfg.LiveReload.Addr != "" {
		hub := livereload.NewHub(logger)
		go func() {
			<-ctx.Done()
			hub.Shutdown()
		}()
		opts = append(opts, task.WithNotifier(hub))
		serverFor(cfg.LiveReload.Addr).Handle(livereload.Path, hub)
	}

	for _, srv := range servers {
		if err := srv.Start(ctx); err != nil {
			return nil, err
		}
	}

	return opts, nil
}
