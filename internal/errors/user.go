package errors

import "errors"

// ErrorInfo holds user-facing message and suggested action for an error.
type ErrorInfo struct {
	// Message is the user-friendly error description.
	Message string
	// Action is a suggested action to resolve the issue (empty if none).
	Action string
}

// errorEntry pairs a sentinel error with its user-facing info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the pre-built mapping of sentinel errors to their user-facing messages.
// This single source of truth ensures UserMessage and Actionable stay in sync.
// Using a slice (not a map) because errors.Is() requires proper error chain traversal.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	// ===================
	// Stage contract
	// ===================
	{
		err: ErrMalformedContext,
		info: ErrorInfo{
			Message: "The upstream context artifact is not a valid JSON object.",
			Action:  "Inspect the artifact with 'cicd context show <file>' and re-run the producing stage.",
		},
	},
	{
		err: ErrMissingCredential,
		info: ErrorInfo{
			Message: "A required credential was not supplied.",
			Action:  "Set the kubeconfig/awsconfig paths in .cicd.yaml or pass --kubeconfig/--awsconfig.",
		},
	},
	{
		err: ErrDelegatedOperationFailed,
		info: ErrorInfo{
			Message: "An external operation (container run, publish, deploy, or probe) failed.",
			Action:  "Check the wrapped error and the stage log for the underlying cause.",
		},
	},
	{
		err: ErrStageFailed,
		info: ErrorInfo{
			Message: "A pipeline stage failed; the run was aborted at that stage.",
			Action:  "Run 'cicd history' to see the failing stage, fix the cause, and re-run.",
		},
	},

	// ===================
	// Artifacts
	// ===================
	{
		err: ErrArtifactExists,
		info: ErrorInfo{
			Message: "An artifact with this name was already produced. Context artifacts are write-once.",
			Action:  "Write into a fresh directory with --artifacts-dir, or remove the existing context file first.",
		},
	},
	{
		err: ErrArtifactNotFound,
		info: ErrorInfo{
			Message: "The requested artifact was not found.",
			Action:  "Check the artifact name or re-run the stage that produces it.",
		},
	},
	{
		err: ErrInvalidArtifactName,
		info: ErrorInfo{
			Message: "The artifact name contains invalid characters.",
			Action:  "Use alphanumerics, dash, underscore, and dot only.",
		},
	},
	{
		err: ErrPathTraversal,
		info: ErrorInfo{
			Message: "The name contains path separators or traversal sequences.",
			Action:  "Use a bare file name, not a path.",
		},
	},

	// ===================
	// Pipeline runs
	// ===================
	{
		err: ErrRunExists,
		info: ErrorInfo{
			Message: "A pipeline run with this ID already exists.",
			Action:  "Let the run ID be generated, or pick an unused one.",
		},
	},
	{
		err: ErrRunNotFound,
		info: ErrorInfo{
			Message: "The specified pipeline run was not found.",
			Action:  "Run 'cicd history' to see recorded runs.",
		},
	},
	{
		err: ErrRunCorrupted,
		info: ErrorInfo{
			Message: "The pipeline run record is corrupted.",
			Action:  "Delete the run directory under ~/.cicd-local/runs and start a new run.",
		},
	},
	{
		err: ErrInvalidTransition,
		info: ErrorInfo{
			Message: "Cannot transition the stage to this status.",
			Action:  "This indicates a bug in stage sequencing; please report it.",
		},
	},
	{
		err: ErrLockTimeout,
		info: ErrorInfo{
			Message: "Could not acquire lock. Another process may be using the resource.",
			Action:  "Wait and try again, or check for stuck processes.",
		},
	},

	// ===================
	// Configuration
	// ===================
	{
		err: ErrConfigNotFound,
		info: ErrorInfo{
			Message: "Configuration file not found.",
			Action:  "Create a .cicd.yaml file in your project or ~/.cicd-local/config.yaml.",
		},
	},
	{
		err: ErrConfigNil,
		info: ErrorInfo{
			Message: "Configuration is not loaded.",
			Action:  "Ensure the configuration file exists and is valid YAML.",
		},
	},
	{
		err: ErrInvalidConfig,
		info: ErrorInfo{
			Message: "A configuration value failed validation.",
			Action:  "Check the named key in your configuration file.",
		},
	},
	{
		err: ErrSupersededParameter,
		info: ErrorInfo{
			Message: "This configuration key belongs to a retired revision of the stage contract.",
			Action:  "Remove the key; the integration-test target is derived from the deployment context.",
		},
	},
	{
		err: ErrEmptyValue,
		info: ErrorInfo{
			Message: "A required value was not provided.",
			Action:  "Provide the required value and try again.",
		},
	},
	{
		err: ErrValueOutOfRange,
		info: ErrorInfo{
			Message: "Value is outside the allowed range.",
			Action:  "Check the documentation for valid value ranges.",
		},
	},

	// ===================
	// User interaction
	// ===================
	{
		err: ErrOperationCanceled,
		info: ErrorInfo{
			Message: "Operation was canceled.",
			Action:  "",
		},
	},
	{
		err: ErrNonInteractiveMode,
		info: ErrorInfo{
			Message: "This operation requires confirmation in non-interactive mode.",
			Action:  "Use the --yes flag to skip confirmation.",
		},
	},
	{
		err: ErrInvalidOutputFormat,
		info: ErrorInfo{
			Message: "An invalid output format was specified.",
			Action:  "Use --output text or --output json.",
		},
	},
}

// errorInfoMap provides O(1) lookup for direct sentinel error matches.
// Built once from errorInfoEntries during package initialization.
//
//nolint:gochecknoglobals // Pre-built mapping for O(1) lookup performance
var errorInfoMap = buildErrorInfoMap()

// buildErrorInfoMap creates a map from the errorInfoEntries slice.
// This is called once during package init for O(1) direct lookups.
func buildErrorInfoMap() map[error]ErrorInfo {
	m := make(map[error]ErrorInfo, len(errorInfoEntries))
	for _, entry := range errorInfoEntries {
		m[entry.err] = entry.info
	}
	return m
}

// getErrorInfo looks up the ErrorInfo for a given error.
// It first tries O(1) direct map lookup for unwrapped sentinel errors,
// then falls back to errors.Is() traversal for wrapped errors.
// Returns an ErrorInfo with the original error message if not found.
func getErrorInfo(err error) ErrorInfo {
	// Fast path: O(1) lookup for direct sentinel errors
	if info, ok := errorInfoMap[err]; ok {
		return info
	}

	// Slow path: errors.Is() for wrapped errors
	for _, entry := range errorInfoEntries {
		if errors.Is(err, entry.err) {
			return entry.info
		}
	}

	return ErrorInfo{Message: err.Error()}
}

// UserMessage returns a user-friendly message for common errors.
// This function maps sentinel errors to helpful, actionable messages
// that are suitable for display to end users.
//
// For unrecognized errors, it returns the error's original message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return getErrorInfo(err).Message
}

// Actionable returns a user-friendly error message along with a suggested
// action the user can take to resolve or work around the issue.
//
// For errors that are not recoverable or have no clear action, the action
// string will be empty.
func Actionable(err error) (message, action string) {
	if err == nil {
		return "", ""
	}
	info := getErrorInfo(err)
	return info.Message, info.Action
}
