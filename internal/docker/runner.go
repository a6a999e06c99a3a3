package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rs/zerolog"

	"github.com/jpbarto/cicd-local/internal/ctxutil"
	"github.com/jpbarto/cicd-local/internal/stages"
)

// Runner executes stage commands as short-lived containers.
// It implements the pipeline's ContainerRunner collaborator interface.
type Runner struct {
	client *Client
}

// NewRunner creates a Runner on top of the given Docker client.
func NewRunner(c *Client) *Runner {
	return &Runner{client: c}
}

// Run pulls the spec's image if absent, runs the command to completion,
// and returns the container's combined stdout. A non-zero exit status is
// an error carrying the captured stderr. The container is removed
// afterwards regardless of outcome.
func (r *Runner) Run(ctx context.Context, spec stages.RunSpec) (string, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return "", err
	}
	if spec.Image == "" {
		return "", fmt.Errorf("container image cannot be empty")
	}
	if len(spec.Cmd) == 0 {
		return "", fmt.Errorf("container command cannot be empty")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "docker").Logger()

	if err := r.ensureImage(ctx, spec.Image); err != nil {
		return "", err
	}

	created, err := r.client.inner.ContainerCreate(ctx, &container.Config{
		Image: spec.Image,
		Cmd:   spec.Cmd,
		Env:   spec.Env,
	}, &container.HostConfig{}, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("container create: %w", err)
	}

	defer func() {
		// Removal uses a fresh context so a canceled run still cleans up.
		removeCtx := context.WithoutCancel(ctx)
		if err := r.client.inner.ContainerRemove(removeCtx, created.ID, container.RemoveOptions{Force: true}); err != nil {
			logger.Warn().Err(err).Str("container_id", created.ID).Msg("failed to remove container")
		}
	}()

	if err := r.client.inner.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("container start: %w", err)
	}

	exitCode, err := r.waitForExit(ctx, created.ID)
	if err != nil {
		return "", err
	}

	stdout, stderr, err := r.captureLogs(ctx, created.ID)
	if err != nil {
		return "", err
	}

	if exitCode != 0 {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = strings.TrimSpace(stdout)
		}
		return "", fmt.Errorf("container exited with status %d: %s", exitCode, detail)
	}

	logger.Debug().
		Str("image", spec.Image).
		Strs("cmd", spec.Cmd).
		Int64("exit_code", exitCode).
		Msg("container command completed")

	return stdout, nil
}

// ensureImage pulls the image unless it is already present locally.
func (r *Runner) ensureImage(ctx context.Context, ref string) error {
	_, _, err := r.client.inner.ImageInspectWithRaw(ctx, ref)
	if err == nil {
		return nil
	}
	if !client.IsErrNotFound(err) {
		return fmt.Errorf("image inspect: %w", err)
	}

	reader, err := r.client.inner.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("image pull: %w", err)
	}
	defer func() { _ = reader.Close() }()

	// The pull completes only once its progress stream is drained.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("image pull: %w", err)
	}

	return nil
}

// waitForExit blocks until the container stops and returns its exit code.
func (r *Runner) waitForExit(ctx context.Context, containerID string) (int64, error) {
	statusCh, errCh := r.client.inner.ContainerWait(ctx, containerID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return 0, fmt.Errorf("container wait: %w", err)
	case status := <-statusCh:
		if status.Error != nil {
			return 0, fmt.Errorf("container wait: %s", status.Error.Message)
		}
		return status.StatusCode, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// captureLogs demultiplexes the container's log stream into stdout and
// stderr.
func (r *Runner) captureLogs(ctx context.Context, containerID string) (stdout, stderr string, err error) {
	reader, err := r.client.inner.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", "", fmt.Errorf("container logs: %w", err)
	}
	defer func() { _ = reader.Close() }()

	var outBuf, errBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&outBuf, &errBuf, reader); err != nil {
		return "", "", fmt.Errorf("demux container logs: %w", err)
	}

	return outBuf.String(), errBuf.String(), nil
}

// Ensure Runner satisfies the collaborator interface.
var _ stages.ContainerRunner = (*Runner)(nil)
