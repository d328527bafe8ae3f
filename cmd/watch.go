package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/lesstask/internal/task"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Compile, then recompile everything on each change",
		Long: `Compile every matched stylesheet, then watch the input tree and
recompile all of them whenever a .less file is added or changed. Runs until
interrupted.

Examples:
  lesstask watch
  lesstask watch --debug --livereload-addr localhost:35729
  lesstask watch --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTask(cmd, v, task.Mode{Debug: debug, Watch: true})
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&debug, "debug", "d", false, "embed inline source maps and skip minification")
	flags.Duration("debounce", 0, "collapse changes arriving within this window")
	flags.String("livereload-addr", "", "serve a live reload websocket on this address")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")

	bindFlags(v, flags, map[string]string{
		"watch_debounce":  "debounce",
		"livereload.addr": "livereload-addr",
		"metrics.addr":    "metrics-addr",
	})

	return cmd
}
