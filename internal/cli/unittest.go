package cli

import (
	"github.com/spf13/cobra"

	"github.com/jpbarto/cicd-local/internal/constants"
)

// AddUnitTestCommand adds the unit-test subcommand to the root command.
func AddUnitTestCommand(rootCmd *cobra.Command, flags *GlobalFlags) {
	sf := &stageFlags{}

	cmd := &cobra.Command{
		Use:   "unit-test",
		Short: "Run the service's unit tests",
		Long: `Unit-test runs the service's test suite against the build output.
An upstream build artifact can be supplied with --build-artifact when
the build stage ran in a separate invocation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSingleStage(cmd, flags, sf, constants.StageKindUnitTest)
		},
	}

	addStageFlags(cmd, sf)
	rootCmd.AddCommand(cmd)
}
