package cli

import (
	"github.com/spf13/cobra"

	"github.com/jpbarto/cicd-local/internal/tui"
)

// defaultHistoryLimit bounds the history listing when --limit is not
// given.
const defaultHistoryLimit = 20

// AddHistoryCommand adds the history subcommand to the root command.
func AddHistoryCommand(rootCmd *cobra.Command, flags *GlobalFlags) {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded pipeline runs",
		Long: `History lists past pipeline runs from the run history database,
newest first, with their release coordinates and final status.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showHistory(cmd, flags, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "maximum number of runs to list")
	rootCmd.AddCommand(cmd)
}

// showHistory renders the recorded runs in the requested format.
func showHistory(cmd *cobra.Command, flags *GlobalFlags, limit int) error {
	tui.CheckNoColor()
	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

	history, err := openRunHistory()
	if err != nil {
		out.Error(err)
		return err
	}
	defer func() {
		_ = history.Close()
	}()

	summaries, err := history.ListRuns(cmd.Context(), limit)
	if err != nil {
		out.Error(err)
		return err
	}

	if flags.Output == OutputJSON {
		return out.JSON(summaries)
	}

	tui.RenderHistory(cmd.OutOrStdout(), summaries)
	return nil
}
