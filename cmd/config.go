package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/lesstask/internal/config"
)

const defaultConfigFile = ".lesstask.yml"

func newConfigCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage lesstask configuration",
		Long: `Show the resolved configuration or write a default config file.

Examples:
  lesstask config show
  lesstask config init
  lesstask config init --file build/lesstask.yml --force`,
	}

	cmd.AddCommand(newConfigShowCmd(v), newConfigInitCmd())

	return cmd
}

func newConfigShowCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			out, err := cfg.YAML()
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}

			if used := v.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", used)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var (
		file  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file holding the defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(file); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", file)
			}

			out, err := config.Defaults().YAML()
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}

			if err := os.WriteFile(file, out, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", file, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", defaultConfigFile, "file to write")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return cmd
}
