package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/contract"
	"github.com/jpbarto/cicd-local/internal/ctxutil"
	"github.com/jpbarto/cicd-local/internal/domain"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// SkipUnknownStatusMessage is returned when the validation context
// carries no status field and the unknown-status policy is "skip".
const SkipUnknownStatusMessage = "skipping integration tests: deployment validation status is unknown"

// SkipMessage is the skip reason for a validation context whose status
// is anything other than "healthy".
func SkipMessage(status string) string {
	return fmt.Sprintf("skipping integration tests: deployment validation is %s", status)
}

// IntegrationTestExecutor runs the integration-test stage against a
// deployed instance. The stage is gated on the validation context's
// status field: anything other than "healthy" skips the tests with a
// descriptive message and runs nothing. The target endpoint is derived
// from the deployment context - explicit target parameters belong to a
// retired revision of the stage contract and are rejected at the
// configuration boundary.
type IntegrationTestExecutor struct {
	runner ContainerRunner
}

// NewIntegrationTestExecutor creates an integration-test stage executor.
func NewIntegrationTestExecutor(runner ContainerRunner) *IntegrationTestExecutor {
	return &IntegrationTestExecutor{runner: runner}
}

// Kind returns the stage kind this executor handles.
func (e *IntegrationTestExecutor) Kind() domain.StageKind {
	return constants.StageKindIntegrationTest
}

// Execute checks the upstream health gate, then runs the placeholder
// integration-test command against the deployment's endpoint.
func (e *IntegrationTestExecutor) Execute(ctx context.Context, req *Request) (*domain.StageResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	clk := req.clk()
	startTime := clk.Now().UTC()
	logger := zerolog.Ctx(ctx).With().Str("stage", string(e.Kind())).Logger()

	// Health gate: a validation context with a non-"healthy" status
	// short-circuits the stage before any container execution.
	if req.ValidationContext != nil {
		doc, err := contract.Consume(ctx, req.ValidationContext)
		if err != nil {
			logger.Error().Err(err).Msg("integration-test stage failed")
			return newFailedResult(e.Kind(), clk, startTime, err), err
		}

		if reason, skip := e.healthGate(doc, req.UnknownStatusPolicy); skip {
			logger.Info().Str("reason", reason).Msg("integration-test stage skipped")
			return newSkippedResult(e.Kind(), clk, startTime, reason), nil
		}
	}

	endpoint := constants.DefaultEndpoint
	if req.DeploymentContext != nil {
		doc, err := contract.Consume(ctx, req.DeploymentContext)
		if err != nil {
			logger.Error().Err(err).Msg("integration-test stage failed")
			return newFailedResult(e.Kind(), clk, startTime, err), err
		}
		endpoint = doc.StringOr(constants.FieldEndpoint, endpoint)
	}

	logger.Info().Str("endpoint", endpoint).Msg("integration-test stage starting")

	// ... real integration test logic goes here ...
	output, err := e.runner.Run(ctx, RunSpec{
		Image: req.BuildImage,
		Cmd:   []string{"echo", "running integration tests against", endpoint},
	})
	if err != nil {
		wrapped := fmt.Errorf("integration-test command: %w: %w", cicderrors.ErrDelegatedOperationFailed, err)
		logger.Error().Err(wrapped).Msg("integration-test stage failed")
		return newFailedResult(e.Kind(), clk, startTime, wrapped), wrapped
	}

	result := newCompletedResult(e.Kind(), clk, startTime, strings.TrimSpace(output))

	logger.Info().Int64("duration_ms", result.DurationMs).Msg("integration-test stage completed")

	return result, nil
}

// healthGate decides whether the stage must be skipped based on the
// validation context. A present non-"healthy" status always skips; a
// missing status defers to the configured unknown-status policy.
func (e *IntegrationTestExecutor) healthGate(doc contract.Document, policy constants.UnknownStatusPolicy) (reason string, skip bool) {
	if !doc.Has(constants.FieldStatus) {
		if policy == constants.UnknownStatusProceed {
			return "", false
		}
		return SkipUnknownStatusMessage, true
	}

	if contract.Branch(doc, constants.FieldStatus, constants.StatusHealthy) {
		return "", false
	}

	return SkipMessage(doc.StringOr(constants.FieldStatus, "not a string")), true
}
