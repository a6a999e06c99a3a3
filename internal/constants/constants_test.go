package constants

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContextFileNames(t *testing.T) {
	t.Run("context artifacts use their fixed names", func(t *testing.T) {
		assert.Equal(t, "delivery-context.json", DeliveryContextFileName)
		assert.Equal(t, "deployment-context.json", DeploymentContextFileName)
		assert.Equal(t, "validation-context.json", ValidationContextFileName)
	})

	t.Run("all context artifacts are JSON files", func(t *testing.T) {
		for _, name := range []string{
			DeliveryContextFileName,
			DeploymentContextFileName,
			ValidationContextFileName,
		} {
			assert.True(t, strings.HasSuffix(name, ".json"), "%s should be a .json file", name)
		}
	})
}

func TestDefaultCoordinates(t *testing.T) {
	t.Run("registries point at the public scratch registry", func(t *testing.T) {
		assert.Equal(t, "ttl.sh", DefaultContainerRepository)
		assert.Equal(t, "oci://ttl.sh", DefaultHelmRepository)
	})

	t.Run("deployment identity defaults", func(t *testing.T) {
		assert.Equal(t, "goserv", DefaultReleaseName)
		assert.Equal(t, "default", DefaultNamespace)
	})

	t.Run("default endpoint is composed from the default identity", func(t *testing.T) {
		assert.Contains(t, DefaultEndpoint, DefaultReleaseName)
		assert.Contains(t, DefaultEndpoint, DefaultNamespace)
	})
}

func TestVersionDefaults(t *testing.T) {
	assert.Equal(t, "1.0.0", DefaultImageVersion)
	assert.Equal(t, "0.1.0", DefaultChartVersion)
	assert.Equal(t, "-rc", ReleaseCandidateSuffix)
}

func TestTimeouts(t *testing.T) {
	t.Run("stage timeout covers slow registry pushes", func(t *testing.T) {
		assert.Equal(t, 15*time.Minute, DefaultStageTimeout)
		assert.Greater(t, DefaultStageTimeout, time.Minute)
	})

	t.Run("probe timeout bounds a single check", func(t *testing.T) {
		assert.Equal(t, 30*time.Second, DefaultProbeTimeout)
		assert.Less(t, DefaultProbeTimeout, DefaultStageTimeout)
	})
}

func TestSupersededConfigKeys(t *testing.T) {
	// The three retired test-target keys and nothing else.
	assert.ElementsMatch(t,
		[]string{"target_host", "target_port", "target_url"},
		SupersededConfigKeys)
}
