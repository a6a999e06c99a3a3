package stages

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/contract"
	"github.com/jpbarto/cicd-local/internal/ctxutil"
	"github.com/jpbarto/cicd-local/internal/domain"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
	"github.com/jpbarto/cicd-local/internal/version"
)

// DeployExecutor runs the deploy stage: it reads the delivery context for
// the coordinates to install, delegates the installation to the Deployer,
// and produces the deployment context consumed by validate and
// integration-test.
//
// The delivery context is optional - without one the stage falls back to
// references derived from the request's coordinates. A delivery context
// that is present but malformed is fatal. The kubeconfig credential is
// required; its absence fails the stage before any delegated work.
type DeployExecutor struct {
	deployer Deployer
}

// NewDeployExecutor creates a deploy stage executor.
func NewDeployExecutor(deployer Deployer) *DeployExecutor {
	return &DeployExecutor{deployer: deployer}
}

// Kind returns the stage kind this executor handles.
func (e *DeployExecutor) Kind() domain.StageKind {
	return constants.StageKindDeploy
}

// Execute installs the release and produces deployment-context.json.
func (e *DeployExecutor) Execute(ctx context.Context, req *Request) (*domain.StageResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	clk := req.clk()
	startTime := clk.Now().UTC()
	logger := zerolog.Ctx(ctx).With().Str("stage", string(e.Kind())).Logger()
	logger.Info().
		Str("release_name", req.ReleaseName).
		Str("namespace", req.Namespace).
		Msg("deploy stage starting")

	if req.Kubeconfig == nil {
		err := fmt.Errorf("deploy requires a kubeconfig: %w", cicderrors.ErrMissingCredential)
		logger.Error().Err(err).Msg("deploy stage failed")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	imageRef, chartRef, chartVersion, err := e.resolveCoordinates(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("deploy stage failed")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	endpoint, err := e.deployer.Install(ctx, InstallSpec{
		ChartReference: chartRef,
		ImageReference: imageRef,
		ReleaseName:    req.ReleaseName,
		Namespace:      req.Namespace,
		Kubeconfig:     req.Kubeconfig,
		AWSConfig:      req.AWSConfig,
	})
	if err != nil {
		logger.Error().Err(err).Msg("chart install failed")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	handle, err := contract.Produce(ctx, clk, req.Store, constants.DeploymentContextFileName, map[string]any{
		constants.FieldEndpoint:       endpoint,
		constants.FieldReleaseName:    req.ReleaseName,
		constants.FieldNamespace:      req.Namespace,
		constants.FieldChartVersion:   chartVersion,
		constants.FieldImageReference: imageRef,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to produce deployment context")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	output := fmt.Sprintf("installed %s as %s in %s, reachable at %s",
		chartRef, req.ReleaseName, req.Namespace, endpoint)
	result := newCompletedResult(e.Kind(), clk, startTime, output)
	result.ArtifactName = handle.Name()

	logger.Info().
		Str("endpoint", endpoint).
		Str("artifact", handle.Name()).
		Msg("deploy stage completed")

	return result, nil
}

// resolveCoordinates determines what to install. With a delivery context
// the references come from it verbatim (and a malformed context is
// fatal); without one the stage degrades to references built from the
// request's repositories and the source tree's versions.
func (e *DeployExecutor) resolveCoordinates(ctx context.Context, req *Request) (imageRef, chartRef, chartVersion string, err error) {
	if req.DeliveryContext != nil {
		doc, consumeErr := contract.Consume(ctx, req.DeliveryContext)
		if consumeErr != nil {
			return "", "", "", consumeErr
		}
		imageRef = doc.StringOr(constants.FieldImageReference, "")
		chartRef = doc.StringOr(constants.FieldChartReference, "")
	}

	info, resolveErr := version.Resolve(req.SourceDir)
	if resolveErr != nil {
		return "", "", "", resolveErr
	}
	chartVersion = info.Chart

	// Fall back per field: an older delivery context may carry only one
	// of the two references.
	if imageRef == "" {
		tag := version.Tag(info.Image, req.ReleaseCandidate)
		imageRef = fmt.Sprintf("%s/%s:%s", req.ContainerRepository, req.ReleaseName, tag)
	}
	if chartRef == "" {
		chartRef = fmt.Sprintf("%s/%s:%s", req.HelmRepository, req.ReleaseName, info.Chart)
	}

	return imageRef, chartRef, chartVersion, nil
}
