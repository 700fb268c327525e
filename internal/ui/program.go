package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Printer writes the styled output of the non-interactive commands:
// record sections, product tables and result boxes.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: TerminalWidth(),
	}
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
	p.Newline()
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(Failure(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details map[string]string) {
	p.Println(Warning(title, details).SetWidth(p.width).Render())
}

// PrintTable prints rows under the given column headers
func (p *Printer) PrintTable(headers []string, rows [][]string) {
	p.Println(RenderTable(headers, rows, p.width))
}

// PrintSection prints a titled list of label/value pairs
func (p *Printer) PrintSection(title string, fields []KeyValue) {
	p.Println(RenderSection(title, fields, p.width))
	p.Newline()
}

// RenderTable renders a bordered table no wider than width
func RenderTable(headers []string, rows [][]string, width int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(MutedColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	if width > 0 {
		t = t.Width(width)
	}
	return t.Render()
}

// KeyValue is a labelled value. Link values are underlined and followed by
// their target when it differs from the text.
type KeyValue struct {
	Key    string
	Value  string
	Target string
}

// RenderSection renders a titled block of aligned label/value lines
func RenderSection(title string, fields []KeyValue, width int) string {
	keyWidth := 0
	for _, f := range fields {
		if w := lipgloss.Width(f.Key); w > keyWidth {
			keyWidth = w
		}
	}

	keyStyle := ResultKeyStyle.Width(keyWidth + 5)
	lines := []string{SectionTitleStyle.Render(title)}
	for _, f := range fields {
		value := ResultValueStyle.Render(f.Value)
		if f.Target != "" {
			value = LinkStyle.Render(f.Value)
			if f.Target != f.Value {
				value += " " + StepNoteStyle.Render("<"+f.Target+">")
			}
		}
		lines = append(lines, keyStyle.Render("   "+f.Key+":")+" "+value)
	}

	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(lines, "\n"))
}
