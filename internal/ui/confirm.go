package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm displays a warning box listing what is about to happen and asks
// the user to answer "y" or "yes". Any other answer, or a read error,
// cancels.
func Confirm(in io.Reader, out io.Writer, title string, items []string) bool {
	warn := lipgloss.NewStyle().Foreground(WarningColor).Bold(true)

	lines := []string{"", warn.Render(fmt.Sprintf("   %s  CONFIRM  ─  %s", WarningMarker, title)), ""}
	for _, item := range items {
		lines = append(lines, textStyle.Render("   • "+item))
	}
	lines = append(lines, "")

	_, _ = fmt.Fprintln(out, outcomeBox(WarningColor, TerminalWidth()).Render(strings.Join(lines, "\n")))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, warn.Render("Proceed? [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		_, _ = fmt.Fprintln(out)
		return true
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, mutedStyle.Render("  Operation cancelled."))
	return false
}
