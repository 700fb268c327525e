package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/orderdesk/internal/order"
	"github.com/muurk/orderdesk/internal/ui"
	"github.com/muurk/orderdesk/internal/version"
)

// Table widths are clamped to these bounds
const (
	MinTerminalWidth = 72
	MaxContentWidth  = 120
)

// Colors shared with the non-interactive commands
var (
	accentColor = ui.PrimaryColor
	mutedColor  = ui.MutedColor
	barColor    = lipgloss.Color("#1A1A1A")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(1, 0).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Background(barColor).
			Padding(0, 1)

	spinnerStyle = lipgloss.NewStyle().Foreground(accentColor)

	searchFocusedStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	searchBlurredStyle = lipgloss.NewStyle().Foreground(mutedColor)

	// Record tabs
	tabStyle       = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 2)
	activeTabStyle = lipgloss.NewStyle().
			Foreground(ui.SuccessColor).
			Bold(true).
			Underline(true).
			Padding(0, 2)

	fieldLabelStyle = lipgloss.NewStyle().Foreground(mutedColor).Width(28)
	fieldLinkStyle  = ui.LinkStyle

	editorStyle = lipgloss.NewStyle().
			Border(lipgloss.Border{Top: "━", Bottom: "━", Left: "┃", Right: "┃"}).
			BorderForeground(accentColor).
			Padding(0, 1)

	helpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accentColor).
			Padding(1, 2)
)

// outcomeBox frames the result of a record load or an order submission
func outcomeBox(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color)
}

// noticeMarkers pairs each notification variant with its marker and color
var noticeMarkers = map[order.Variant]struct {
	marker string
	color  lipgloss.Color
}{
	order.VariantError:   {ui.FailureMarker, ui.ErrorColor},
	order.VariantWarning: {"⚠", ui.WarningColor},
	order.VariantSuccess: {ui.SuccessMarker, ui.SuccessColor},
}

// renderNotice renders one wizard notification. Info notices are a muted
// line; the others are boxed in their variant's color.
func renderNotice(n order.Notification) string {
	text := n.Title + ": " + n.Message
	m, ok := noticeMarkers[n.Variant]
	if !ok {
		return subtitleStyle.Render("ℹ " + text)
	}
	return outcomeBox(m.color).Render(m.marker + " " + text)
}

func renderNotices(notices []order.Notification) string {
	lines := make([]string, 0, len(notices))
	for _, n := range notices {
		lines = append(lines, renderNotice(n))
	}
	return strings.Join(lines, "\n")
}

// renderTabs renders the record's field group names on one line
func renderTabs(names []string, active int) string {
	tabs := make([]string, 0, len(names))
	for i, name := range names {
		if i == active {
			tabs = append(tabs, activeTabStyle.Render(name))
			continue
		}
		tabs = append(tabs, tabStyle.Render(name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// tableStyles styles the product and review tables
func tableStyles() table.Styles {
	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(accentColor).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(ui.TextColor).
		Background(accentColor).
		Bold(false)
	return st
}

// contentWidth clamps a terminal width to the table bounds
func contentWidth(terminalWidth int) int {
	return min(max(terminalWidth, MinTerminalWidth), MaxContentWidth)
}

// frame is one full screen: a header naming what is open, the body and a
// footer with the key help
type frame struct {
	Context string // e.g. "Record 00Q1" or "Order for 00Q1 · 2 selected"
	Body    string
	Footer  string
	Width   int
	Height  int
}

// Render draws the frame over the whole terminal. The footer is pinned to
// the bottom border.
func (f frame) Render() string {
	inner := f.Width - 4
	rule := func(b lipgloss.Border) lipgloss.Style {
		return lipgloss.NewStyle().
			BorderStyle(b).
			BorderForeground(accentColor).
			Width(inner).
			Padding(0, 1)
	}

	app := lipgloss.NewStyle().Foreground(ui.TextColor).Bold(true).
		Render("ORDERDESK v" + version.Version)
	ctx := lipgloss.NewStyle().Foreground(mutedColor).Render(f.Context)
	gap := inner - 2 - lipgloss.Width(app) - lipgloss.Width(ctx)
	header := app + strings.Repeat(" ", max(gap, 1)) + ctx

	body := lipgloss.JoinVertical(lipgloss.Left,
		rule(lipgloss.Border{Bottom: "─"}).Render(header),
		lipgloss.NewStyle().Width(inner).Render(f.Body),
		rule(lipgloss.Border{Top: "─"}).Render(lipgloss.NewStyle().Foreground(mutedColor).Render(f.Footer)),
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(accentColor).
		Width(f.Width - 2).
		Height(f.Height - 2).
		AlignVertical(lipgloss.Top).
		Render(body)

	return lipgloss.Place(f.Width, f.Height, lipgloss.Left, lipgloss.Top, bordered)
}

// renderModal centers a box of at most width columns over a dimmed screen
func renderModal(content string, width, terminalWidth, terminalHeight int) string {
	box := helpBoxStyle.Width(min(width, max(terminalWidth-4, 40))).Render(content)
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}
