package stages

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jpbarto/cicd-local/internal/artifact"
	"github.com/jpbarto/cicd-local/internal/clock"
	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/contract"
	"github.com/jpbarto/cicd-local/internal/credential"
	"github.com/jpbarto/cicd-local/internal/testutil"
)

// testClock returns a deterministic clock starting at a fixed instant.
func testClock() *clock.FixedClock {
	return clock.NewFixedClock(time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC), time.Second)
}

// newTestRequest builds a Request with a memory store and defaults
// matching the template service.
func newTestRequest() *Request {
	return &Request{
		Store:               artifact.NewMemStore(),
		Clock:               testClock(),
		SourceDir:           ".",
		ContainerRepository: constants.DefaultContainerRepository,
		HelmRepository:      constants.DefaultHelmRepository,
		ReleaseName:         constants.DefaultReleaseName,
		Namespace:           constants.DefaultNamespace,
		BuildImage:          constants.DefaultBuildImage,
		UnknownStatusPolicy: constants.UnknownStatusSkip,
	}
}

// testKubeconfig writes a throwaway kubeconfig credential for deploy tests.
func testKubeconfig(t *testing.T) *credential.Handle {
	t.Helper()
	handle, err := credential.Store(t.TempDir(), constants.KubeconfigCredential, []byte("apiVersion: v1\nkind: Config\n"))
	require.NoError(t, err)
	return handle
}

// produceContext stores a context document for a test to feed downstream.
func produceContext(t *testing.T, store artifact.Store, name string, fields map[string]any) artifact.Handle {
	t.Helper()
	handle, err := contract.Produce(context.Background(), testClock(), store, name, fields)
	require.NoError(t, err)
	return handle
}

// mockRunner is a thread-safe ContainerRunner that records every RunSpec
// it receives and returns canned output or a canned error.
type mockRunner struct {
	mu     sync.Mutex
	specs  []RunSpec
	output string
	err    error
}

func (m *mockRunner) Run(ctx context.Context, spec RunSpec) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.specs = append(m.specs, spec)
	m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}
	if m.output != "" {
		return m.output, nil
	}
	return strings.Join(spec.Cmd[1:], " ") + "\n", nil
}

// calls returns a snapshot of the recorded run specs.
func (m *mockRunner) calls() []RunSpec {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RunSpec, len(m.specs))
	copy(out, m.specs)
	return out
}

// mockPublisher records pushes and returns deterministic references.
type mockPublisher struct {
	mu        sync.Mutex
	imagePush *ImagePush
	chartPush *ChartPush
	imageErr  error
	chartErr  error
}

func (m *mockPublisher) PushImage(_ context.Context, push ImagePush) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.imageErr != nil {
		return "", m.imageErr
	}
	m.imagePush = &push
	return push.Repository + "/" + push.Name + ":" + push.Tag, nil
}

func (m *mockPublisher) PushChart(_ context.Context, push ChartPush) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chartErr != nil {
		return "", m.chartErr
	}
	m.chartPush = &push
	return push.Repository + "/" + push.Name + ":" + push.Version, nil
}

// mockDeployer records the install spec and returns a fixed endpoint.
type mockDeployer struct {
	mu       sync.Mutex
	spec     *InstallSpec
	endpoint string
	err      error
}

func (m *mockDeployer) Install(_ context.Context, spec InstallSpec) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.spec = &spec
	if m.endpoint != "" {
		return m.endpoint, nil
	}
	return "http://" + spec.ReleaseName + "." + spec.Namespace + ".svc.cluster.local:8080", nil
}

// mockProber passes every check unless told to fail specific names.
type mockProber struct {
	mu        sync.Mutex
	endpoints []string
	failing   map[string]bool
	err       error
}

func (m *mockProber) Probe(_ context.Context, endpoint string, checks []string) ([]CheckResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.endpoints = append(m.endpoints, endpoint)
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = CheckResult{Name: check, Passed: !m.failing[check], Detail: "checked " + check}
	}
	return results, nil
}

// errCollaborator is the canned failure collaborators return in tests.
var errCollaborator = testutil.ErrMockDelegated
