package pipeline

import (
	"fmt"

	"github.com/jpbarto/cicd-local/internal/clock"
	"github.com/jpbarto/cicd-local/internal/domain"
	cicderrors "github.com/jpbarto/cicd-local/internal/errors"
)

// validTransitions encodes the stage state machine:
//
//	not_started → running
//	running     → completed | skipped | failed
//
// Terminal states have no outgoing edges. Every status change a run
// record ever sees goes through Advance, so an out-of-order update is a
// bug surfaced as ErrInvalidTransition rather than silently recorded.
//
//nolint:gochecknoglobals // Read-only transition table
var validTransitions = map[domain.StageStatus][]domain.StageStatus{
	domain.StageStatusNotStarted: {domain.StageStatusRunning},
	domain.StageStatusRunning: {
		domain.StageStatusCompleted,
		domain.StageStatusSkipped,
		domain.StageStatusFailed,
	},
	domain.StageStatusCompleted: {},
	domain.StageStatusSkipped:   {},
	domain.StageStatusFailed:    {},
}

// CanTransition reports whether the stage state machine permits moving
// from one status to another.
func CanTransition(from, to domain.StageStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Advance moves a stage record to a new status, appending the change to
// the record's audit trail. Timestamps and duration are maintained as a
// side effect: entering running sets StartedAt, reaching a terminal
// status sets CompletedAt and DurationMs.
func Advance(record *domain.StageRecord, to domain.StageStatus, reason string, clk clock.Clock) error {
	if record == nil {
		return fmt.Errorf("cannot advance stage: record %w", cicderrors.ErrEmptyValue)
	}
	if !CanTransition(record.Status, to) {
		return fmt.Errorf("%w: %s cannot move from %s to %s",
			cicderrors.ErrInvalidTransition, record.Kind, record.Status, to)
	}

	now := clk.Now().UTC()
	record.Transitions = append(record.Transitions, domain.Transition{
		FromStatus: record.Status,
		ToStatus:   to,
		Timestamp:  now,
		Reason:     reason,
	})
	record.Status = to

	switch to {
	case domain.StageStatusRunning:
		record.StartedAt = &now
	case domain.StageStatusCompleted, domain.StageStatusSkipped, domain.StageStatusFailed:
		record.CompletedAt = &now
		if record.StartedAt != nil {
			record.DurationMs = now.Sub(*record.StartedAt).Milliseconds()
		}
	}

	return nil
}
