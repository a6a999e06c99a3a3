package pipeline

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// runIDTimeFormat lays out run IDs as run-YYYYMMDD-HHMMSS.
const runIDTimeFormat = "20060102-150405"

// validRunIDRegex matches run IDs, with an optional uniquifying suffix
// for runs started within the same second.
var validRunIDRegex = regexp.MustCompile(`^run-\d{8}-\d{6}(-[0-9a-f]{8})?$`)

// NewRunID derives a run identifier from the given start time.
func NewRunID(at time.Time) string {
	return "run-" + at.UTC().Format(runIDTimeFormat)
}

// UniquifyRunID appends a random suffix to an ID that collided with an
// existing run, keeping the timestamp prefix intact.
func UniquifyRunID(id string) string {
	return fmt.Sprintf("%s-%s", id, uuid.NewString()[:8])
}

// ValidRunID reports whether id is a well-formed run identifier.
func ValidRunID(id string) bool {
	return validRunIDRegex.MatchString(id)
}
