package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpbarto/cicd-local/internal/tui"
)

// AddVersionCommand adds the version subcommand to the root command,
// mirroring the --version flag for scripts that prefer a subcommand.
func AddVersionCommand(rootCmd *cobra.Command, flags *GlobalFlags, info BuildInfo) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.Output == OutputJSON {
				out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
				return out.JSON(map[string]string{
					"version": valueOr(info.Version, "dev"),
					"commit":  valueOr(info.Commit, "none"),
					"date":    valueOr(info.Date, "unknown"),
				})
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cicd %s\n", formatVersion(info))
			return err
		},
	}

	rootCmd.AddCommand(cmd)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
