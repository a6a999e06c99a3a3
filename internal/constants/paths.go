package constants

// Log file names and patterns.
const (
	// CLILogFileName is the name of the global CLI log file for host operations.
	// This file is located in ~/.cicd-local/logs/cicd.log
	CLILogFileName = "cicd.log"

	// StageLogFileName is the name of the per-run log file that captures
	// stage execution output.
	StageLogFileName = "stages.log"
)

// Log rotation settings for the global CLI log file.
const (
	// LogMaxSizeMB is the maximum size in megabytes before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated files to retain.
	LogMaxBackups = 5

	// LogMaxAgeDays is the maximum age in days before rotated files are deleted.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated files.
	LogCompress = true
)

// Configuration file names.
const (
	// GlobalConfigName is the name of the global cicd-local configuration file.
	// This file is located in the cicd-local home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigName is the name of the project-specific configuration file.
	// This file is located in the project root directory.
	ProjectConfigName = ".cicd.yaml"

	// EnvFileName is the optional dotenv file in the project root carrying
	// registry overrides (CICD_CONTAINER_REPOSITORY, CICD_HELM_REPOSITORY).
	EnvFileName = "local_cicd.env"
)

// Configuration keys retired by contract revisions. The integration-test
// target is derived from the deployment context instead of being passed
// explicitly, so these keys are rejected rather than silently ignored.
//
//nolint:gochecknoglobals // static key list
var SupersededConfigKeys = []string{
	"target_host",
	"target_port",
	"target_url",
}
