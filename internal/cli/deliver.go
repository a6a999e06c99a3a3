package cli

import (
	"github.com/spf13/cobra"

	"github.com/jpbarto/cicd-local/internal/constants"
)

// AddDeliverCommand adds the deliver subcommand to the root command.
func AddDeliverCommand(rootCmd *cobra.Command, flags *GlobalFlags) {
	sf := &stageFlags{}

	cmd := &cobra.Command{
		Use:   "deliver",
		Short: "Publish the image and chart to their registries",
		Long: `Deliver publishes the built container image and Helm chart to the
configured repositories and writes a delivery context recording the
published coordinates. With --release-candidate the image tag carries
the -rc suffix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSingleStage(cmd, flags, sf, constants.StageKindDeliver)
		},
	}

	addStageFlags(cmd, sf)
	rootCmd.AddCommand(cmd)
}
