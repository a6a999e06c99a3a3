package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/errors"
)

// AddDeployCommand adds the deploy subcommand to the root command.
func AddDeployCommand(rootCmd *cobra.Command, flags *GlobalFlags) {
	sf := &stageFlags{}
	var yes bool

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the delivered release to the cluster",
		Long: `Deploy installs or upgrades the release on the target cluster using
the coordinates from the delivery context. The deploy touches a live
cluster, so interactive invocations confirm before proceeding; pass
--yes to skip the prompt in scripts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := confirmDeploy(cmd, flags, sf, yes); err != nil {
				return err
			}
			return runSingleStage(cmd, flags, sf, constants.StageKindDeploy)
		},
	}

	addStageFlags(cmd, sf)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the deploy confirmation prompt")
	rootCmd.AddCommand(cmd)
}

// confirmDeploy gates the deploy behind user confirmation. --yes skips
// it; without --yes a non-terminal stdin is an error rather than a
// silent deploy.
func confirmDeploy(cmd *cobra.Command, flags *GlobalFlags, sf *stageFlags, yes bool) error {
	if yes {
		return nil
	}

	if !deployTerminalCheck() {
		return fmt.Errorf("cannot deploy without confirmation: %w", errors.ErrNonInteractiveMode)
	}

	cfg, err := loadStageConfig(cmd, flags, sf)
	if err != nil {
		return err
	}

	var confirm bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Deploy release '%s' to namespace '%s'?", cfg.ReleaseName, cfg.Namespace)).
				Description("This installs or upgrades the release on the target cluster.").
				Affirmative("Yes, deploy").
				Negative("No, cancel").
				Value(&confirm),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("failed to get confirmation: %w", err)
	}

	if !confirm {
		return errors.ErrOperationCanceled
	}
	return nil
}

// deployTerminalCheck is a variable for the terminal check function,
// allowing tests to override it.
//
//nolint:gochecknoglobals // Required for test injection of terminal detection
var deployTerminalCheck = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
