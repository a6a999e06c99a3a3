package stages

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/contract"
	"github.com/jpbarto/cicd-local/internal/ctxutil"
	"github.com/jpbarto/cicd-local/internal/domain"
)

// healthChecks and readinessChecks name the checks the validate stage
// evaluates, in the order they are recorded in the validation context.
//
//nolint:gochecknoglobals // static check lists
var (
	healthChecks    = []string{constants.HealthCheckPodReady, constants.HealthCheckServiceAvailable}
	readinessChecks = []string{constants.ReadinessCheckHTTP, constants.ReadinessCheckMetrics}
)

// ValidateExecutor runs the validate stage: it probes the deployed
// instance's endpoint and produces the validation context whose status
// field gates the integration-test stage.
//
// The endpoint and release name come from the deployment context and are
// copied into the validation context unchanged; stages never rewrite
// fields they received. Without a deployment context the stage probes
// the configured defaults instead.
type ValidateExecutor struct {
	prober Prober
}

// NewValidateExecutor creates a validate stage executor.
func NewValidateExecutor(prober Prober) *ValidateExecutor {
	return &ValidateExecutor{prober: prober}
}

// Kind returns the stage kind this executor handles.
func (e *ValidateExecutor) Kind() domain.StageKind {
	return constants.StageKindValidate
}

// Execute probes the deployment and produces validation-context.json.
func (e *ValidateExecutor) Execute(ctx context.Context, req *Request) (*domain.StageResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	clk := req.clk()
	startTime := clk.Now().UTC()
	logger := zerolog.Ctx(ctx).With().Str("stage", string(e.Kind())).Logger()

	endpoint := constants.DefaultEndpoint
	releaseName := req.ReleaseName

	if req.DeploymentContext != nil {
		doc, err := contract.Consume(ctx, req.DeploymentContext)
		if err != nil {
			logger.Error().Err(err).Msg("validate stage failed")
			return newFailedResult(e.Kind(), clk, startTime, err), err
		}
		endpoint = doc.StringOr(constants.FieldEndpoint, endpoint)
		releaseName = doc.StringOr(constants.FieldReleaseName, releaseName)
	}

	logger.Info().
		Str("endpoint", endpoint).
		Str("release_name", releaseName).
		Msg("validate stage starting")

	healthy := true

	healthResults, err := e.prober.Probe(ctx, endpoint, healthChecks)
	if err != nil {
		logger.Error().Err(err).Msg("health probe failed")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}
	readinessResults, err := e.prober.Probe(ctx, endpoint, readinessChecks)
	if err != nil {
		logger.Error().Err(err).Msg("readiness probe failed")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	for _, r := range append(append([]CheckResult{}, healthResults...), readinessResults...) {
		if !r.Passed {
			healthy = false
			logger.Warn().Str("check", r.Name).Str("detail", r.Detail).Msg("check failed")
		}
	}

	status := constants.StatusHealthy
	if !healthy {
		status = constants.StatusUnhealthy
	}

	handle, err := contract.Produce(ctx, clk, req.Store, constants.ValidationContextFileName, map[string]any{
		constants.FieldStatus:          status,
		constants.FieldEndpoint:        endpoint,
		constants.FieldReleaseName:     releaseName,
		constants.FieldHealthChecks:    checkNames(healthResults),
		constants.FieldReadinessChecks: checkNames(readinessResults),
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to produce validation context")
		return newFailedResult(e.Kind(), clk, startTime, err), err
	}

	output := fmt.Sprintf("%d/%d checks passed, deployment is %s",
		countPassed(healthResults)+countPassed(readinessResults),
		len(healthResults)+len(readinessResults), status)
	result := newCompletedResult(e.Kind(), clk, startTime, output)
	result.ArtifactName = handle.Name()

	logger.Info().
		Str("status", status).
		Str("artifact", handle.Name()).
		Msg("validate stage completed")

	return result, nil
}

// checkNames extracts the evaluated check names, order preserved.
func checkNames(results []CheckResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	return names
}

// countPassed counts the checks that passed.
func countPassed(results []CheckResult) int {
	n := 0
	for _, r := range results {
		if r.Passed {
			n++
		}
	}
	return n
}
