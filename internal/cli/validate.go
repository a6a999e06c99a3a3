package cli

import (
	"github.com/spf13/cobra"

	"github.com/jpbarto/cicd-local/internal/constants"
)

// AddValidateCommand adds the validate subcommand to the root command.
func AddValidateCommand(rootCmd *cobra.Command, flags *GlobalFlags) {
	sf := &stageFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Probe the deployed release's health",
		Long: `Validate probes the deployed release and records the observed health
status in a validation context. When the deployment context is missing
or carries no endpoint, the stage skips rather than fails: there is
nothing to probe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSingleStage(cmd, flags, sf, constants.StageKindValidate)
		},
	}

	addStageFlags(cmd, sf)
	rootCmd.AddCommand(cmd)
}
