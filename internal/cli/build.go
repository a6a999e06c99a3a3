package cli

import (
	"github.com/spf13/cobra"

	"github.com/jpbarto/cicd-local/internal/constants"
)

// AddBuildCommand adds the build subcommand to the root command.
func AddBuildCommand(rootCmd *cobra.Command, flags *GlobalFlags) {
	sf := &stageFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the service from source",
		Long: `Build compiles the service from the project source directory and
stores the build output as the run's build artifact, consumed by the
unit-test and deliver stages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSingleStage(cmd, flags, sf, constants.StageKindBuild)
		},
	}

	addStageFlags(cmd, sf)
	rootCmd.AddCommand(cmd)
}
