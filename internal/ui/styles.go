package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette shared by the commands and the interactive screens
var (
	PrimaryColor = lipgloss.Color("#7D56F4")
	SuccessColor = lipgloss.Color("#43BF6D")
	ErrorColor   = lipgloss.Color("#FF5555")
	WarningColor = lipgloss.Color("#FFA500")
	MutedColor   = lipgloss.Color("#626262")
	TextColor    = lipgloss.Color("#FFFFFF")
)

// Outcome markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	WarningMarker = "⚠"
)

// Output width bounds
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

var (
	mutedStyle = lipgloss.NewStyle().Foreground(MutedColor)
	textStyle  = lipgloss.NewStyle().Foreground(TextColor)

	// StepNoteStyle renders notes next to steps and link targets
	StepNoteStyle = mutedStyle.Italic(true)

	// ErrorTitleStyle renders failed step markers and failure titles
	ErrorTitleStyle = lipgloss.NewStyle().Foreground(ErrorColor).Bold(true)

	// ResultKeyStyle and ResultValueStyle render label/value lines in result
	// boxes and record sections
	ResultKeyStyle   = mutedStyle.Width(15)
	ResultValueStyle = textStyle

	// SectionTitleStyle renders record field group titles
	SectionTitleStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true).PaddingLeft(2)

	// LinkStyle renders mailto:, tel: and https: values
	LinkStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Underline(true)

	tableHeaderStyle = lipgloss.NewStyle().Foreground(PrimaryColor).Bold(true).Padding(0, 1)
	tableCellStyle   = textStyle.Padding(0, 1)
)

// TerminalWidth returns the width of stdout clamped to the output bounds
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return min(max(width, MinTerminalWidth), MaxContentWidth)
}

// outcomeBox is the double-bordered box used for results and confirmations
func outcomeBox(color lipgloss.Color, width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(color).
		Width(max(width, MinTerminalWidth) - 2).
		Padding(0, 2)
}
