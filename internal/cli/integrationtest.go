package cli

import (
	"github.com/spf13/cobra"

	"github.com/jpbarto/cicd-local/internal/constants"
)

// AddIntegrationTestCommand adds the integration-test subcommand to the
// root command.
func AddIntegrationTestCommand(rootCmd *cobra.Command, flags *GlobalFlags) {
	sf := &stageFlags{}

	cmd := &cobra.Command{
		Use:   "integration-test",
		Short: "Run integration tests against the deployed release",
		Long: `Integration-test exercises the deployed release end to end. The stage
is gated on the validation context's health status: an unhealthy
deployment skips the tests, and an absent status follows the configured
unknown-status policy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSingleStage(cmd, flags, sf, constants.StageKindIntegrationTest)
		},
	}

	addStageFlags(cmd, sf)
	rootCmd.AddCommand(cmd)
}
