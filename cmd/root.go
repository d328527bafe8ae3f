// Package cmd provides the lesstask command-line interface.
//
// Configuration is read, lowest precedence first, from .lesstask.yml (or the
// file named by --config / LESSTASK_CONFIG_FILE), LESSTASK_* environment
// variables (a .env file in the working directory is loaded first) and
// command-line flags. Nested keys map to variables with "." replaced by
// "_", e.g. LESSTASK_RENDERER_COMMAND.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/conneroisu/lesstask/internal/config"
	taskerrors "github.com/conneroisu/lesstask/internal/errors"
	"github.com/conneroisu/lesstask/internal/logging"
)

const envPrefix = "LESSTASK"

// Process exit codes.
const (
	ExitFailure = 1
	ExitConfig  = 2
	ExitWatch   = 3
)

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case taskerrors.IsConfigError(err):
		return ExitConfig
	case taskerrors.IsWatchError(err):
		return ExitWatch
	default:
		return ExitFailure
	}
}

// NewRootCmd builds the command tree around a fresh Viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "lesstask",
		Short: "Compile LESS stylesheet trees into minified CSS",
		Long: `lesstask compiles every .less file found directly inside the directories
matched by an input glob into CSS, mirroring the source layout under an
output directory resolved against each matched directory.

Quick Start:
  lesstask build                  Compile once
  lesstask build --debug          Compile with inline source maps, unminified
  lesstask watch                  Compile, then recompile on every change
  lesstask config show            Print the resolved configuration`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .lesstask.yml, can also use LESSTASK_CONFIG_FILE env var)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	flags.StringP("input", "i", "", "glob matching the stylesheet source directories")
	flags.StringP("output", "o", "", "output directory, relative to each matched directory")
	flags.StringSlice("browsers", nil, "autoprefixer browser targets")
	flags.String("output-name", "", "output file name template, e.g. [name].min.css")
	flags.Int("concurrency", 0, "files compiled at once per directory (0 = GOMAXPROCS)")
	flags.String("renderer", "", "command used to render stylesheets")
	flags.Duration("renderer-timeout", 0, "per-file render timeout (0 = none)")

	bindFlags(v, flags, map[string]string{
		"log.level":        "log-level",
		"log.format":       "log-format",
		"input":            "input",
		"output":           "output",
		"browsers":         "browsers",
		"output_name":      "output-name",
		"concurrency":      "concurrency",
		"renderer.command": "renderer",
		"renderer.timeout": "renderer-timeout",
	})

	rootCmd.AddCommand(
		newBuildCmd(v),
		newWatchCmd(v),
		newConfigCmd(v),
		newVersionCmd(),
	)

	return rootCmd
}

func bindFlags(v *viper.Viper, set *pflag.FlagSet, keys map[string]string) {
	for key, flag := range keys {
		// the flags are defined right above, a lookup cannot fail
		_ = v.BindPFlag(key, set.Lookup(flag))
	}
}

// initConfig wires the configuration sources into v.
//
// Config file priority: --config, then LESSTASK_CONFIG_FILE, then
// .lesstask.yml in the working directory. A missing default file is not an
// error.
func initConfig(v *viper.Viper, cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	explicit := true
	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	case os.Getenv(envPrefix+"_CONFIG_FILE") != "":
		v.SetConfigFile(os.Getenv(envPrefix + "_CONFIG_FILE"))
	default:
		explicit = false
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".lesstask")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	return nil
}

func newLogger(cfg config.Config, cmd *cobra.Command) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	}), nil
}
