package stages

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/contract"
	"github.com/jpbarto/cicd-local/internal/ctxutil"
	"github.com/jpbarto/cicd-local/internal/domain"
	"github.com/jpbarto/cicd-local/internal/version"
)

// DeliverExecutor runs the deliver stage: it resolves the service and
// chart versions from the source tree, delegates the image and chart
// pushes to the Publisher, and produces the delivery context consumed by
// the deploy stage.
type DeliverExecutor struct {
	publisher Publisher
}

// NewDeliverExecutor creates a deliver stage executor.
func NewDeliverExecutor(publisher Publisher) *DeliverExecutor {
	return &DeliverExecutor{publisher: publisher}
}

// Kind returns the stage kind this executor handles.
func (e *DeliverExecutor) Kind() domain.StageKind {
	return constants.StageKindDeliver
}

// Execute publishes the image and chart and produces
// delivery-context.json with the resulting references.
func (e *DeliverExecutor) Execute(ctx context.Context, req *Request) (*domain.StageResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	clk := req.clk()
	startTime := clk.Now().UTC()
	logger := zerolog.Ctx(ctx).With().Str("stage", string(e.Kind())).Logger()
	logger.Info().
		Str("container_repository", req.ContainerRepository).
		Str("helm_repository", req.HelmRepository).
		Bool("release_candidate", req.ReleaseCandidate).
		Msg("deliver stage starting")

	info, err := version.Resolve(req.SourceDir)
	if err != nil {
		logger.Error().Err(err).Msg("version resolution failed")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	tag := version.Tag(info.Image, req.ReleaseCandidate)

	imageRef, err := e.publisher.PushImage(ctx, ImagePush{
		Repository: req.ContainerRepository,
		Name:       req.ReleaseName,
		Tag:        tag,
	})
	if err != nil {
		logger.Error().Err(err).Msg("image push failed")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	chartRef, err := e.publisher.PushChart(ctx, ChartPush{
		Repository: req.HelmRepository,
		Name:       req.ReleaseName,
		Version:    info.Chart,
	})
	if err != nil {
		logger.Error().Err(err).Msg("chart push failed")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	handle, err := contract.Produce(ctx, clk, req.Store, constants.DeliveryContextFileName, map[string]any{
		constants.FieldReleaseCandidate:    req.ReleaseCandidate,
		constants.FieldImageReference:      imageRef,
		constants.FieldChartReference:      chartRef,
		constants.FieldContainerRepository: req.ContainerRepository,
		constants.FieldHelmRepository:      req.HelmRepository,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to produce delivery context")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	output := fmt.Sprintf("published %s and %s", imageRef, chartRef)
	result := newCompletedResult(e.Kind(), clk, startTime, output)
	result.ArtifactName = handle.Name()

	logger.Info().
		Str("image_reference", imageRef).
		Str("chart_reference", chartRef).
		Str("artifact", handle.Name()).
		Msg("deliver stage completed")

	return result, nil
}
