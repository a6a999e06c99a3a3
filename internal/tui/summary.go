package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jpbarto/cicd-local/internal/artifact"
	"github.com/jpbarto/cicd-local/internal/constants"
	"github.com/jpbarto/cicd-local/internal/domain"
)

// StageDisplayName renders a stage kind for human display:
// "integration-test" becomes "Integration Test".
func StageDisplayName(kind domain.StageKind) string {
	name := strings.ReplaceAll(kind.String(), "-", " ")
	return cases.Title(language.English).String(name)
}

// RenderRunSummary writes the per-stage outcome table for a finished
// (or aborted) run.
func RenderRunSummary(w io.Writer, run *domain.PipelineRun) {
	if run == nil {
		return
	}

	styles := NewTableStyles()
	_, _ = fmt.Fprintf(w, "Run %s", run.ID)
	if run.ReleaseCandidate {
		_, _ = fmt.Fprint(w, " (release candidate)")
	}
	_, _ = fmt.Fprintln(w)

	table := NewTable(w, []TableColumn{
		{Name: "STAGE", Width: 18},
		{Name: "STATUS", Width: 12},
		{Name: "DURATION", Width: 9, Align: AlignRight},
		{Name: "DETAIL", Width: 48},
	})
	table.WriteHeader()

	for i := range run.Stages {
		record := &run.Stages[i]

		detail := record.ArtifactName
		switch record.Status {
		case constants.StageStatusSkipped:
			detail = record.SkipReason
		case constants.StageStatusFailed:
			detail = record.Error
		}

		duration := ""
		if record.DurationMs > 0 {
			duration = FormatDuration(time.Duration(record.DurationMs) * time.Millisecond)
		}

		plain := StageStatusIcon(record.Status) + " " + record.Status.String()
		style := styles.Cell
		if color, ok := styles.StatusColors[record.Status]; ok {
			style = style.Foreground(color)
		}

		table.WriteStyledRow(
			[]string{StageDisplayName(record.Kind), plain, duration, detail},
			1, style.Render(plain), plain)
	}
}

// RenderHistory writes the run history table.
func RenderHistory(w io.Writer, summaries []artifact.RunSummary) {
	if len(summaries) == 0 {
		_, _ = fmt.Fprintln(w, "No pipeline runs recorded yet.")
		return
	}

	table := NewTable(w, []TableColumn{
		{Name: "RUN", Width: 28},
		{Name: "RELEASE", Width: 12},
		{Name: "NAMESPACE", Width: 12},
		{Name: "RC", Width: 3},
		{Name: "STATUS", Width: 10},
		{Name: "STARTED", Width: 16},
	})
	table.WriteHeader()

	for _, s := range summaries {
		rc := ""
		if s.ReleaseCandidate {
			rc = "yes"
		}
		table.WriteRow(s.ID, s.ReleaseName, s.Namespace, rc, s.Status, RelativeTime(s.CreatedAt))
	}
}
