// This file holds the template implementations of the collaborator
// interfaces. Each one runs a trivial container command where the real
// operation belongs and returns synthetic coordinates, so the pipeline
// exercises the full context exchange without touching a registry or a
// cluster. These are the seams a real adopter replaces.
package stages

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jpbarto/cicd-local/internal/ctxutil"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// PlaceholderPublisher stands in for a registry/chart publisher. It runs
// an echo command through the container runner and fabricates the
// reference a real push would return.
type PlaceholderPublisher struct {
	runner ContainerRunner
	image  string
}

// NewPlaceholderPublisher creates a placeholder publisher that runs its
// stand-in commands in the given base image.
func NewPlaceholderPublisher(runner ContainerRunner, image string) *PlaceholderPublisher {
	return &PlaceholderPublisher{runner: runner, image: image}
}

// PushImage pretends to push a container image.
// Real logic replaces the echo below with a registry push.
func (p *PlaceholderPublisher) PushImage(ctx context.Context, push ImagePush) (string, error) {
	ref := fmt.Sprintf("%s/%s:%s", push.Repository, push.Name, push.Tag)

	_, err := p.runner.Run(ctx, RunSpec{
		Image: p.image,
		Cmd:   []string{"echo", "pushing image", ref},
	})
	if err != nil {
		return "", fmt.Errorf("image push: %w: %w", cicderrors.ErrDelegatedOperationFailed, err)
	}

	return ref, nil
}

// PushChart pretends to push a Helm chart.
// Real logic replaces the echo below with a chart publish.
func (p *PlaceholderPublisher) PushChart(ctx context.Context, push ChartPush) (string, error) {
	ref := fmt.Sprintf("%s/%s:%s", push.Repository, push.Name, push.Version)

	_, err := p.runner.Run(ctx, RunSpec{
		Image: p.image,
		Cmd:   []string{"echo", "pushing chart", ref},
	})
	if err != nil {
		return "", fmt.Errorf("chart push: %w: %w", cicderrors.ErrDelegatedOperationFailed, err)
	}

	return ref, nil
}

// PlaceholderDeployer stands in for a cluster deployment mechanism. It
// runs an echo command and fabricates the cluster-local endpoint a real
// install would expose.
type PlaceholderDeployer struct {
	runner ContainerRunner
	image  string
}

// NewPlaceholderDeployer creates a placeholder deployer that runs its
// stand-in commands in the given base image.
func NewPlaceholderDeployer(runner ContainerRunner, image string) *PlaceholderDeployer {
	return &PlaceholderDeployer{runner: runner, image: image}
}

// Install pretends to install or upgrade a release.
// Real logic replaces the echo below with a helm install/upgrade using
// the spec's credential handles.
func (d *PlaceholderDeployer) Install(ctx context.Context, spec InstallSpec) (string, error) {
	_, err := d.runner.Run(ctx, RunSpec{
		Image: d.image,
		Cmd: []string{"echo", "installing", spec.ChartReference,
			"as", spec.ReleaseName, "in", spec.Namespace},
	})
	if err != nil {
		return "", fmt.Errorf("chart install: %w: %w", cicderrors.ErrDelegatedOperationFailed, err)
	}

	endpoint := fmt.Sprintf("http://%s.%s.svc.cluster.local:8080", spec.ReleaseName, spec.Namespace)
	return endpoint, nil
}

// PlaceholderProber stands in for a health-check prober. Each named
// check runs as one echo command; independent checks fan out
// concurrently, bounded by the per-check timeout.
type PlaceholderProber struct {
	runner  ContainerRunner
	image   string
	timeout time.Duration
}

// NewPlaceholderProber creates a placeholder prober that runs its
// stand-in commands in the given base image with a per-check timeout.
func NewPlaceholderProber(runner ContainerRunner, image string, timeout time.Duration) *PlaceholderProber {
	return &PlaceholderProber{runner: runner, image: image, timeout: timeout}
}

// Probe evaluates the named checks against the endpoint. Results come
// back in the order the checks were requested, regardless of which
// finished first. Real logic replaces the echo with an actual probe of
// the endpoint per check.
func (p *PlaceholderProber) Probe(ctx context.Context, endpoint string, checks []string) ([]CheckResult, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	results := make([]CheckResult, len(checks))

	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			checkCtx := gctx
			var cancel context.CancelFunc
			if p.timeout > 0 {
				checkCtx, cancel = context.WithTimeout(gctx, p.timeout)
				defer cancel()
			}

			output, err := p.runner.Run(checkCtx, RunSpec{
				Image: p.image,
				Cmd:   []string{"echo", "checking", check, "at", endpoint},
			})
			if err != nil {
				return fmt.Errorf("check '%s': %w: %w", check, cicderrors.ErrDelegatedOperationFailed, err)
			}

			logger.Debug().Str("check", check).Str("endpoint", endpoint).Msg("check evaluated")
			results[i] = CheckResult{Name: check, Passed: true, Detail: strings.TrimSpace(output)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
