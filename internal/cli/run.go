package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/jpbarto/cicd-local/internal/artifact"
	"github.com/jpbarto/cicd-local/internal/config"
	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/docker"
	"github.com/jpbarto/cicd-local/internal/pipeline"
	"github.com/jpbarto/cicd-local/internal/signal"
	"github.com/jpbarto/cicd-local/internal/stages"
	"github.com/jpbarto/cicd-local/internal/telemetry"
	"github.com/jpbarto/cicd-local/internal/tui"
)

// AddRunCommand adds the run subcommand to the root command.
func AddRunCommand(rootCmd *cobra.Command, flags *GlobalFlags) {
	sf := &stageFlags{}
	var fromStage, onlyStage string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline",
		Long: `Run executes the pipeline stages in order: build, unit-test, deliver,
deploy, validate, integration-test. Each stage hands its successor an
immutable JSON context artifact; a failed stage aborts the run, a
skipped stage does not.

Run records and context artifacts are written under ~/.cicd-local/runs
and recorded in the run history (see 'cicd history').`,
		Example: `  cicd run
  cicd run --release-candidate
  cicd run --from deploy
  cicd run --only validate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPipeline(cmd, flags, sf, fromStage, onlyStage)
		},
	}

	addStageFlags(cmd, sf)
	cmd.Flags().StringVar(&fromStage, "from", "", "start the run at this stage")
	cmd.Flags().StringVar(&onlyStage, "only", "", "run exactly one stage")
	cmd.MarkFlagsMutuallyExclusive("from", "only")
	rootCmd.AddCommand(cmd)
}

// runPipeline wires the engine's collaborators from configuration and
// executes the orchestrated run.
func runPipeline(cmd *cobra.Command, flags *GlobalFlags, sf *stageFlags, fromStage, onlyStage string) error {
	tui.CheckNoColor()
	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
	logger := GetLogger()

	cfg, err := loadStageConfig(cmd, flags, sf)
	if err != nil {
		out.Error(err)
		return err
	}

	plan, err := pipeline.SelectStages(fromStage, onlyStage)
	if err != nil {
		out.Error(err)
		return err
	}

	runsRoot, err := config.RunsPath()
	if err != nil {
		out.Error(err)
		return err
	}
	runs, err := pipeline.NewFileRunStore(runsRoot)
	if err != nil {
		out.Error(err)
		return err
	}

	client, err := docker.NewClient("")
	if err != nil {
		out.Error(err)
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn().Err(closeErr).Msg("failed to close container client")
		}
	}()

	registry := stages.NewDefaultRegistry(docker.NewRunner(client), cfg.Build.Image, cfg.Timeouts.Probe)

	opts := pipeline.EngineOptions{}
	history, err := openRunHistory()
	if err != nil {
		logger.Warn().Err(err).Msg("run history unavailable, continuing without")
	} else {
		opts.History = history
		defer func() {
			if closeErr := history.Close(); closeErr != nil {
				logger.Warn().Err(closeErr).Msg("failed to close history database")
			}
		}()
	}

	handler := signal.NewHandler(logger.WithContext(cmd.Context()))
	defer handler.Stop()
	ctx := handler.Context()

	if cfg.Telemetry.Enabled {
		tracer, shutdown, traceErr := initRunTelemetry(logger)
		if traceErr != nil {
			logger.Warn().Err(traceErr).Msg("telemetry unavailable, continuing without")
		} else {
			opts.Tracer = tracer
			defer func() {
				// The handler's context is canceled on interrupt; flush
				// spans on a fresh context so they survive Ctrl+C.
				if shutdownErr := shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
					logger.Warn().Err(shutdownErr).Msg("failed to flush telemetry")
				}
			}()
		}
	}

	engine := pipeline.NewEngine(runs, registry, opts)

	kubeconfig, err := resolveCredential(cfg.Kubeconfig, config.DefaultKubeconfigPath)
	if err != nil {
		out.Error(err)
		return err
	}
	awsconfig, err := resolveCredential(cfg.AWSConfig, config.DefaultAWSConfigPath)
	if err != nil {
		out.Error(err)
		return err
	}

	// Seed the run with any configured prior-run contexts so a subset
	// run (--from/--only) consumes them instead of defaults.
	upstream, err := openUpstreamContexts(cfg)
	if err != nil {
		out.Error(err)
		return err
	}

	run, runErr := engine.Run(ctx, &pipeline.RunRequest{
		SourceDir:           cfg.SourceDir,
		ReleaseCandidate:    cfg.ReleaseCandidate,
		ContainerRepository: cfg.ContainerRepository,
		HelmRepository:      cfg.HelmRepository,
		ReleaseName:         cfg.ReleaseName,
		Namespace:           cfg.Namespace,
		BuildImage:          cfg.Build.Image,
		UnknownStatusPolicy: cfg.Policy(),
		Stages:              plan,
		BuildArtifact:       upstream.buildArtifact,
		DeliveryContext:     upstream.deliveryContext,
		DeploymentContext:   upstream.deploymentContext,
		ValidationContext:   upstream.validationContext,
		StageTimeout:        cfg.Timeouts.Stage,
		Kubeconfig:          kubeconfig,
		AWSConfig:           awsconfig,
	})

	if run != nil {
		if flags.Output == OutputJSON {
			_ = out.JSON(run)
		} else {
			tui.RenderRunSummary(cmd.OutOrStdout(), run)
		}
	}

	if runErr != nil {
		if run == nil && flags.Output == OutputJSON {
			_ = out.JSON(map[string]string{"error": runErr.Error()})
		}
		if flags.Output != OutputJSON {
			out.Error(runErr)
		}
		return runErr
	}
	return nil
}

// openRunHistory opens the history database under the global config dir.
func openRunHistory() (*artifact.History, error) {
	dir, err := config.GlobalConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return artifact.OpenHistory(filepath.Join(dir, constants.HistoryDBFileName))
}

// traceFileName is the span output file under the logs directory.
const traceFileName = "traces.jsonl"

// initRunTelemetry wires the trace exporter to a span file under the
// logs directory, keeping span output off the terminal. The returned
// shutdown flushes the provider and closes the file.
func initRunTelemetry(logger zerolog.Logger) (trace.Tracer, telemetry.ShutdownFunc, error) {
	dir, err := config.GlobalConfigDir()
	if err != nil {
		return nil, nil, err
	}
	logsDir := filepath.Join(dir, constants.LogsDir)
	if err := os.MkdirAll(logsDir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(logsDir, traceFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace file: %w", err)
	}

	tracer, shutdown, err := telemetry.Init(f, logger)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	return tracer, func(ctx context.Context) error {
		shutdownErr := shutdown(ctx)
		if closeErr := f.Close(); closeErr != nil && shutdownErr == nil {
			shutdownErr = closeErr
		}
		return shutdownErr
	}, nil
}
