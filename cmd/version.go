package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/lesstask/internal/version"
)

func newVersionCmd() *cobra.Command {
	var (
		format   string
		short    bool
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version information for lesstask.

Examples:
  lesstask version              # Show version
  lesstask version --detailed   # Show detailed version info
  lesstask version --format json # Output as JSON`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case "text":
				switch {
				case short:
					fmt.Fprintln(out, info.Short())
				case detailed:
					fmt.Fprintln(out, info.String())
				default:
					fmt.Fprintf(out, "lesstask %s (%s)\n", info.Short(), info.Platform)
				}
				return nil
			default:
				return fmt.Errorf("unsupported format: %s (supported: text, json)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	cmd.Flags().BoolVar(&short, "short", false, "Show short version only")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show detailed version information")

	return cmd
}
