package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/lesstask/internal/task"
)

func newBuildCmd(v *viper.Viper) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "build",
		Aliases: []string{"b"},
		Short:   "Compile every matched stylesheet once",
		Long: `Compile every .less file directly inside each directory matched by the
input glob. Files that fail to compile are reported and skipped; the other
files are still written.

A "watch: true" entry in the config file turns this into a watch session.

Examples:
  lesstask build
  lesstask build --debug
  lesstask build -i "assets/*/less/" -o ../css --output-name "[name].min.css"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTask(cmd, v, task.Mode{Debug: debug})
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "embed inline source maps and skip minification")

	return cmd
}
