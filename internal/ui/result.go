package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Outcome is how a command ended
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeFailure
	OutcomeWarning
)

// Result is the closing box of a command: what happened, its details and,
// for failures, the error and what to check next.
type Result struct {
	Outcome Outcome
	Title   string
	Details map[string]string
	Err     error
	Tips    []string
	Width   int
}

// Success reports a completed command, e.g. the created order number
func Success(title string, details map[string]string) *Result {
	return &Result{Outcome: OutcomeSuccess, Title: title, Details: details, Width: TerminalWidth()}
}

// Failure reports a failed command with troubleshooting tips
func Failure(title string, err error, tips []string) *Result {
	return &Result{Outcome: OutcomeFailure, Title: title, Err: err, Tips: tips, Width: TerminalWidth()}
}

// Warning reports a command that finished without the expected outcome
func Warning(title string, details map[string]string) *Result {
	return &Result{Outcome: OutcomeWarning, Title: title, Details: details, Width: TerminalWidth()}
}

// SetWidth overrides the detected terminal width
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	color, marker, label := SuccessColor, SuccessMarker, "SUCCESS"
	switch r.Outcome {
	case OutcomeFailure:
		color, marker, label = ErrorColor, FailureMarker, "FAILED"
	case OutcomeWarning:
		color, marker, label = WarningColor, WarningMarker, "WARNING"
	}

	titleStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	lines := []string{"", titleStyle.Render(fmt.Sprintf("   %s  %s  ─  %s", marker, label, r.Title)), ""}

	if r.Err != nil {
		lines = append(lines, lipgloss.NewStyle().Foreground(ErrorColor).Render("   Error: "+r.Err.Error()), "")
	}
	for _, key := range sortedKeys(r.Details) {
		lines = append(lines, ResultKeyStyle.Render("   "+key+":")+" "+ResultValueStyle.Render(r.Details[key]))
	}
	if len(r.Details) > 0 {
		lines = append(lines, "")
	}
	if len(r.Tips) > 0 {
		lines = append(lines, r.renderTroubleshooting(), "")
	}

	return outcomeBox(color, r.Width).Render(strings.Join(lines, "\n"))
}

// renderTroubleshooting renders the tips as an inner box
func (r *Result) renderTroubleshooting() string {
	lines := []string{mutedStyle.Bold(true).Render("Troubleshooting:"), ""}
	for _, tip := range r.Tips {
		lines = append(lines, mutedStyle.Render("  • "+tip))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(max(r.Width-12, 40)).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}
