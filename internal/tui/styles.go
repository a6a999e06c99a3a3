// Package tui provides terminal output components for cicd-local.
//
// The package centralizes Lip Gloss styling so every command renders
// status the same way. All colors use AdaptiveColor for light/dark
// terminal support, and status displays keep triple redundancy:
// icon + color + text.
//
// Call CheckNoColor() at the start of commands that output styled text
// to respect the NO_COLOR environment variable.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jpbarto/cicd-local/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for active states and primary output.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for completed stages and healthy deployments.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for skipped stages and degraded states.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failed stages.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for not-started stages and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// StageStatusColors returns the semantic color for each stage status.
func StageStatusColors() map[constants.StageStatus]lipgloss.AdaptiveColor {
	return map[constants.StageStatus]lipgloss.AdaptiveColor{
		constants.StageStatusNotStarted: ColorMuted,
		constants.StageStatusRunning:    ColorPrimary,
		constants.StageStatusCompleted:  ColorSuccess,
		constants.StageStatusSkipped:    ColorWarning,
		constants.StageStatusFailed:     ColorError,
	}
}

// StageStatusIcon returns the icon for a given stage status.
func StageStatusIcon(status constants.StageStatus) string {
	icons := map[constants.StageStatus]string{
		constants.StageStatusNotStarted: "○",
		constants.StageStatusRunning:    "●",
		constants.StageStatusCompleted:  "✓",
		constants.StageStatusSkipped:    "↷",
		constants.StageStatusFailed:     "✗",
	}
	if icon, ok := icons[status]; ok {
		return icon
	}
	return "?"
}

// HealthStatusIcon returns the icon for a deployment health status.
func HealthStatusIcon(status string) string {
	switch status {
	case constants.StatusHealthy:
		return "✓"
	case constants.StatusUnhealthy:
		return "✗"
	default:
		return "?"
	}
}

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header       lipgloss.Style
	Cell         lipgloss.Style
	Dim          lipgloss.Style
	StatusColors map[constants.StageStatus]lipgloss.AdaptiveColor
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		StatusColors: StageStatusColors(),
	}
}

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles using AdaptiveColor for
// light/dark terminal support.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning),
		Info: lipgloss.NewStyle().
			Foreground(ColorPrimary),
		Dim: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// CheckNoColor respects the NO_COLOR environment variable.
// Call this at the start of commands that output styled text.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string) or
// TERM=dumb. This follows the NO_COLOR standard: https://no-color.org/
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}
