package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jpbarto/cicd-local/internal/artifact"
	"github.com/jpbarto/cicd-local/internal/contract"
	"github.com/jpbarto/cicd-local/internal/tui"
)

// AddContextCommand adds the context subcommand group to the root
// command.
func AddContextCommand(rootCmd *cobra.Command, flags *GlobalFlags) {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Inspect pipeline context artifacts",
		Long: `Context inspects the immutable JSON context artifacts that stages
exchange: delivery contexts, deployment contexts, and validation
contexts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newContextShowCmd(flags))
	rootCmd.AddCommand(cmd)
}

// newContextShowCmd creates the 'context show' subcommand.
func newContextShowCmd(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Show a context artifact's fields",
		Example: `  cicd context show delivery-context.json
  cicd context show ~/.cicd-local/runs/run-20260830-101500/deployment-context.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showContext(cmd, flags, args[0])
		},
	}
}

// showContext parses a context artifact through the same consume path
// the stages use, so a file that would be fatal to a stage is reported
// here the same way.
func showContext(cmd *cobra.Command, flags *GlobalFlags, path string) error {
	tui.CheckNoColor()
	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)

	handle, err := artifact.OpenPath(path)
	if err != nil {
		out.Error(err)
		return err
	}

	doc, err := contract.Consume(cmd.Context(), handle)
	if err != nil {
		out.Error(err)
		return err
	}

	if flags.Output == OutputJSON {
		return out.JSON(doc)
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "%s\n\n", handle.Name())
	for _, k := range keys {
		_, _ = fmt.Fprintf(w, "  %-24s %v\n", k, doc[k])
	}
	return nil
}
