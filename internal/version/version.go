// Package version resolves release versions from a project source tree.
// The service version comes from a VERSION file at the source root and
// the chart version from Chart.yaml; both fall back to fixed defaults so
// a bare project can still move through the pipeline.
package version

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jpbarto/cicd-local/internal/constants"
)

// Info holds the versions resolved for one run.
type Info struct {
	// Image is the service version used for image tags (from VERSION).
	Image string `json:"image"`

	// Chart is the Helm chart version (from Chart.yaml).
	Chart string `json:"chart"`
}

// chartManifest is the subset of Chart.yaml the resolver reads.
type chartManifest struct {
	Version string `yaml:"version"`
}

// Resolve reads version information from sourceDir. A missing VERSION
// file or Chart.yaml falls back to the defaults; a Chart.yaml that is
// present but unparseable is an error, matching the protocol's stance
// that corrupt input fails loudly while absent input degrades.
func Resolve(sourceDir string) (Info, error) {
	info := Info{
		Image: constants.DefaultImageVersion,
		Chart: constants.DefaultChartVersion,
	}

	if raw, err := os.ReadFile(filepath.Join(sourceDir, constants.VersionFileName)); err == nil { //#nosec G304 -- path is constructed from the caller's source dir
		if v := strings.TrimSpace(string(raw)); v != "" {
			info.Image = v
		}
	}

	chartPath := filepath.Join(sourceDir, constants.ChartFileName)
	raw, err := os.ReadFile(chartPath) //#nosec G304 -- path is constructed from the caller's source dir
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return Info{}, fmt.Errorf("failed to read %s: %w", constants.ChartFileName, err)
	}

	var manifest chartManifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return Info{}, fmt.Errorf("failed to parse %s: %w", constants.ChartFileName, err)
	}
	if v := strings.TrimSpace(manifest.Version); v != "" {
		info.Chart = v
	}

	return info, nil
}

// Tag derives the image tag for a version: release-candidate runs get
// the "-rc" suffix, releases use the version as-is.
func Tag(version string, releaseCandidate bool) string {
	if releaseCandidate {
		return version + constants.ReleaseCandidateSuffix
	}
	return version
}
