package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpbarto/cicd-local/internal/artifact"
	"github.com/jpbarto/cicd-local/internal/config"
	"github.com/jpbarto/cicd-local/internal/credential"
	"github.com/jpbarto/cicd-local/internal/docker"
	"github.com/jpbarto/cicd-local/internal/domain"
	"github.com/jpbarto/cicd-local/internal/errors"
	"github.com/jpbarto/cicd-local/internal/signal"
	"github.com/jpbarto/cicd-local/internal/stages"
	"github.com/jpbarto/cicd-local/internal/tui"
)

// stageFlags holds the per-invocation overrides shared by the stage
// subcommands. Every field mirrors a configuration key; flags win over
// config files and environment per the layered precedence rules.
type stageFlags struct {
	sourceDir           string
	releaseCandidate    bool
	containerRepository string
	helmRepository      string
	releaseName         string
	namespace           string
	kubeconfig          string
	awsconfig           string
	buildArtifact       string
	deliveryContext     string
	deploymentContext   string
	validationContext   string
	artifactsDir        string
	unknownStatusPolicy string
}

// addStageFlags registers the override flags common to all stage
// subcommands. Individual commands consume only the subset relevant to
// their stage; the rest are accepted so a shell alias can carry one flag
// set across all six.
func addStageFlags(cmd *cobra.Command, sf *stageFlags) {
	cmd.Flags().StringVar(&sf.sourceDir, "source-dir", "", "project source directory (default \".\")")
	cmd.Flags().BoolVar(&sf.releaseCandidate, "release-candidate", false, "mark outputs as pre-release (-rc image tag suffix)")
	cmd.Flags().StringVar(&sf.containerRepository, "container-repository", "", "destination registry for image pushes")
	cmd.Flags().StringVar(&sf.helmRepository, "helm-repository", "", "destination registry for chart pushes")
	cmd.Flags().StringVar(&sf.releaseName, "release-name", "", "deployment release name")
	cmd.Flags().StringVar(&sf.namespace, "namespace", "", "deployment namespace")
	cmd.Flags().StringVar(&sf.kubeconfig, "kubeconfig", "", "path to kubeconfig for cluster access")
	cmd.Flags().StringVar(&sf.awsconfig, "awsconfig", "", "path to AWS shared credentials")
	cmd.Flags().StringVar(&sf.buildArtifact, "build-artifact", "", "path to an upstream build artifact")
	cmd.Flags().StringVar(&sf.deliveryContext, "delivery-context", "", "path to an upstream delivery context")
	cmd.Flags().StringVar(&sf.deploymentContext, "deployment-context", "", "path to an upstream deployment context")
	cmd.Flags().StringVar(&sf.validationContext, "validation-context", "", "path to an upstream validation context")
	cmd.Flags().StringVar(&sf.artifactsDir, "artifacts-dir", "", "directory for produced context artifacts (write-once; defaults to the source dir)")
	cmd.Flags().StringVar(&sf.unknownStatusPolicy, "unknown-status-policy", "", "policy when upstream status is absent (skip|proceed)")
}

// loadStageConfig resolves the effective configuration for one command
// invocation: config layers first, then the command's flag overrides.
// Boolean flags are applied only when explicitly set, so a config-file
// release_candidate: true is not clobbered by the flag's false default.
func loadStageConfig(cmd *cobra.Command, flags *GlobalFlags, sf *stageFlags) (*config.Config, error) {
	ctx := cmd.Context()

	projectDir := sf.sourceDir
	if projectDir == "" {
		projectDir = "."
	}

	var (
		cfg *config.Config
		err error
	)
	if flags.Config != "" {
		globalPath, pathErr := config.GlobalConfigPath()
		if pathErr != nil {
			globalPath = ""
		}
		cfg, err = config.LoadFromPaths(ctx, flags.Config, globalPath)
	} else {
		cfg, err = config.LoadFrom(ctx, projectDir)
	}
	if err != nil {
		return nil, err
	}

	overrides := &config.Config{
		ContainerRepository: sf.containerRepository,
		HelmRepository:      sf.helmRepository,
		ReleaseName:         sf.releaseName,
		Namespace:           sf.namespace,
		Kubeconfig:          sf.kubeconfig,
		AWSConfig:           sf.awsconfig,
		SourceDir:           sf.sourceDir,
		ArtifactsDir:        sf.artifactsDir,
		UnknownStatusPolicy: sf.unknownStatusPolicy,
		BuildArtifact:       sf.buildArtifact,
		DeliveryContext:     sf.deliveryContext,
		DeploymentContext:   sf.deploymentContext,
		ValidationContext:   sf.validationContext,
	}
	if err := config.Overlay(cfg, overrides); err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("release-candidate") {
		cfg.ReleaseCandidate = sf.releaseCandidate
	}

	applyLogConfig(cfg)

	return cfg, nil
}

// resolveCredential turns a configured credential path into a handle.
// An empty path falls back to the conventional location; a missing file
// at the fallback yields a nil handle (stages that require it report
// ErrMissingCredential themselves).
func resolveCredential(path string, fallback func() (string, error)) (*credential.Handle, error) {
	if path == "" {
		p, err := fallback()
		if err != nil {
			return nil, nil //nolint:nilerr // no home dir means no conventional credential
		}
		path = p
		if _, err := os.Stat(path); err != nil {
			return nil, nil //nolint:nilerr // conventional location absent, credential optional
		}
	}
	return credential.Load(filepath.Dir(path), filepath.Base(path))
}

// openUpstream opens an optional upstream context path into a handle.
// Empty paths are the common case: the producing stage did not run and
// the consumer degrades to defaults.
func openUpstream(path string) (artifact.Handle, error) {
	if path == "" {
		return nil, nil
	}
	return artifact.OpenPath(path)
}

// upstreamContexts bundles the context handles a stage or run consumes
// from configured paths, typically artifacts of a prior invocation.
type upstreamContexts struct {
	buildArtifact     artifact.Handle
	deliveryContext   artifact.Handle
	deploymentContext artifact.Handle
	validationContext artifact.Handle
}

// openUpstreamContexts resolves each configured upstream context path
// into a handle. Unset paths yield nil handles.
func openUpstreamContexts(cfg *config.Config) (upstreamContexts, error) {
	var upstream upstreamContexts
	var err error
	if upstream.buildArtifact, err = openUpstream(cfg.BuildArtifact); err != nil {
		return upstream, errors.Wrap(err, "failed to open build artifact")
	}
	if upstream.deliveryContext, err = openUpstream(cfg.DeliveryContext); err != nil {
		return upstream, errors.Wrap(err, "failed to open delivery context")
	}
	if upstream.deploymentContext, err = openUpstream(cfg.DeploymentContext); err != nil {
		return upstream, errors.Wrap(err, "failed to open deployment context")
	}
	if upstream.validationContext, err = openUpstream(cfg.ValidationContext); err != nil {
		return upstream, errors.Wrap(err, "failed to open validation context")
	}
	return upstream, nil
}

// buildStageRequest assembles the executor request from resolved
// configuration: the artifact store for produced contexts, upstream
// handles, and credential handles.
func buildStageRequest(cfg *config.Config, store artifact.Store) (*stages.Request, error) {
	upstream, err := openUpstreamContexts(cfg)
	if err != nil {
		return nil, err
	}

	kubeconfig, err := resolveCredential(cfg.Kubeconfig, config.DefaultKubeconfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load kubeconfig credential")
	}
	awsconfig, err := resolveCredential(cfg.AWSConfig, config.DefaultAWSConfigPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS credential")
	}

	return &stages.Request{
		Store:               store,
		SourceDir:           cfg.SourceDir,
		ReleaseCandidate:    cfg.ReleaseCandidate,
		ContainerRepository: cfg.ContainerRepository,
		HelmRepository:      cfg.HelmRepository,
		ReleaseName:         cfg.ReleaseName,
		Namespace:           cfg.Namespace,
		BuildImage:          cfg.Build.Image,
		UnknownStatusPolicy: cfg.Policy(),
		BuildArtifact:       upstream.buildArtifact,
		DeliveryContext:     upstream.deliveryContext,
		DeploymentContext:   upstream.deploymentContext,
		ValidationContext:   upstream.validationContext,
		Kubeconfig:          kubeconfig,
		AWSConfig:           awsconfig,
	}, nil
}

// stageArtifactsDir is where a single-stage invocation writes its
// produced context: the configured artifacts dir when set, otherwise the
// source dir so the artifact lands next to the code it describes.
// Contexts are write-once, so repeating a stage against the same
// directory fails with ErrArtifactExists until the old context is
// removed or --artifacts-dir points somewhere fresh.
func stageArtifactsDir(cfg *config.Config) string {
	if cfg.ArtifactsDir != "" {
		return cfg.ArtifactsDir
	}
	return cfg.SourceDir
}

// runSingleStage is the shared body of the six stage subcommands: load
// config, wire the container runner, execute the one stage, and render
// its result. Skipped stages exit zero.
func runSingleStage(cmd *cobra.Command, flags *GlobalFlags, sf *stageFlags, kind domain.StageKind) error {
	tui.CheckNoColor()
	out := tui.NewOutput(cmd.OutOrStdout(), flags.Output)
	logger := GetLogger()

	cfg, err := loadStageConfig(cmd, flags, sf)
	if err != nil {
		out.Error(err)
		return err
	}

	store, err := artifact.NewFileStore(stageArtifactsDir(cfg))
	if err != nil {
		out.Error(err)
		return err
	}

	req, err := buildStageRequest(cfg, store)
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
	executor, err := registry.Get(kind)
	if err != nil {
		out.Error(err)
		return err
	}

	handler := signal.NewHandler(logger.WithContext(cmd.Context()))
	defer handler.Stop()

	ctx := handler.Context()
	if cfg.Timeouts.Stage > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeouts.Stage)
		defer cancel()
	}

	logger.Info().
		Str("stage", string(kind)).
		Str("source_dir", cfg.SourceDir).
		Msg("executing stage")

	result, execErr := executor.Execute(ctx, req)
	if execErr != nil {
		if flags.Output == OutputJSON && result != nil {
			_ = out.JSON(result)
		} else {
			out.Error(execErr)
		}
		return fmt.Errorf("%w: %s: %s", errors.ErrStageFailed, kind, execErr)
	}

	return renderStageResult(out, flags.Output, result)
}

// renderStageResult prints one stage result in the requested format.
// A skipped result is informational and returns nil: skip is not failure.
func renderStageResult(out tui.Output, format string, result *domain.StageResult) error {
	if format == OutputJSON {
		return out.JSON(result)
	}

	switch {
	case result.Skipped():
		out.Skipped(result.SkipReason)
	case result.Failed():
		err := fmt.Errorf("%w: %s: %s", errors.ErrStageFailed, result.Stage, result.Error)
		out.Error(err)
		return err
	default:
		msg := fmt.Sprintf("%s completed in %s", tui.StageDisplayName(result.Stage), tui.FormatDuration(time.Duration(result.DurationMs)*time.Millisecond))
		if result.ArtifactName != "" {
			msg += fmt.Sprintf(" (%s)", result.ArtifactName)
		}
		out.Success(msg)
	}
	return nil
}
