package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerTitleStyle   = textStyle.Bold(true).PaddingLeft(2)
	headerCommandStyle = mutedStyle.PaddingLeft(2)
)

// Header represents a command header with title, command, and parameters.
type Header struct {
	Title   string            // e.g., "PRODUCT SEARCH"
	Command string            // e.g., "orderdesk products"
	Params  map[string]string // e.g., {"Platform": "http://localhost:8080"}
	Width   int               // Terminal width for responsive rendering
}

// NewHeader creates a new header with the given values
func NewHeader(title, command string, params map[string]string) *Header {
	return &Header{
		Title:   title,
		Command: command,
		Params:  params,
		Width:   TerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := h.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2)

	top := lipgloss.JoinVertical(lipgloss.Left,
		headerTitleStyle.Render(strings.ToUpper(h.Title)),
		headerCommandStyle.Render(h.Command),
	)
	if len(h.Params) == 0 {
		return border.Render(top)
	}

	divider := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Render(strings.Repeat("─", max(width-6, 10)))

	params := make([]string, 0, len(h.Params))
	for _, key := range sortedKeys(h.Params) {
		params = append(params, headerCommandStyle.Render(key+":")+" "+textStyle.Render(h.Params[key]))
	}

	return border.Render(lipgloss.JoinVertical(lipgloss.Left, top, divider, strings.Join(params, "\n")))
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
