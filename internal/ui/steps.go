package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus is the state of one step of a command
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

func (s StepStatus) finished() bool {
	return s == StepComplete || s == StepFailed || s == StepSkipped
}

func (s StepStatus) marker() (string, lipgloss.Style) {
	switch s {
	case StepRunning:
		return "●", lipgloss.NewStyle().Foreground(WarningColor)
	case StepComplete:
		return SuccessMarker, lipgloss.NewStyle().Foreground(SuccessColor)
	case StepFailed:
		return FailureMarker, ErrorTitleStyle
	case StepSkipped:
		return "⊘", lipgloss.NewStyle().Foreground(MutedColor)
	}
	return "·", lipgloss.NewStyle().Foreground(MutedColor)
}

// StepCallback reports a status change of step n (1-based). A non-empty name
// renames the step; note is shown next to it, e.g. an order number or the
// short form of an error.
type StepCallback func(n int, name string, status StepStatus, note string)

// Step is one remote call made by a command
type Step struct {
	Name    string
	Status  StepStatus
	Note    string
	Elapsed time.Duration // set once the step finishes

	started time.Time
}

// StepLog tracks the steps of a command and renders them one line each
type StepLog struct {
	Steps []Step
	Width int

	now func() time.Time
}

// NewStepLog creates a log with one pending step per name
func NewStepLog(names []string, width int) *StepLog {
	steps := make([]Step, len(names))
	for i, name := range names {
		steps[i].Name = name
	}
	return &StepLog{Steps: steps, Width: width, now: time.Now}
}

// Update applies a status change to step n. It reports false when n is out
// of range.
func (l *StepLog) Update(n int, name string, status StepStatus, note string) bool {
	if n < 1 || n > len(l.Steps) {
		return false
	}
	s := &l.Steps[n-1]
	if name != "" {
		s.Name = name
	}
	switch {
	case status == StepRunning:
		s.started = l.now()
		s.Elapsed = 0
	case status.finished() && !s.started.IsZero():
		s.Elapsed = l.now().Sub(s.started)
	}
	s.Status, s.Note = status, note
	return true
}

// Completed returns how many steps completed or were skipped
func (l *StepLog) Completed() int {
	n := 0
	for _, s := range l.Steps {
		if s.Status == StepComplete || s.Status == StepSkipped {
			n++
		}
	}
	return n
}

// Failed reports whether any step failed
func (l *StepLog) Failed() bool {
	for _, s := range l.Steps {
		if s.Status == StepFailed {
			return true
		}
	}
	return false
}

// Line renders step n as "  [1/2] Create order   ✓  ORD-000001 (120ms)"
func (l *StepLog) Line(n int) string {
	if n < 1 || n > len(l.Steps) {
		return ""
	}
	s := l.Steps[n-1]
	marker, style := s.Status.marker()

	nameWidth := 0
	for _, other := range l.Steps {
		nameWidth = max(nameWidth, lipgloss.Width(other.Name))
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("  [%d/%d] ", n, len(l.Steps)))
	b.WriteString(style.Render(s.Name))
	b.WriteString(strings.Repeat(" ", nameWidth-lipgloss.Width(s.Name)+3))
	b.WriteString(style.Render(marker))

	note := s.Note
	if s.Status.finished() && s.Elapsed > 0 {
		took := s.Elapsed.Round(time.Millisecond).String()
		if note == "" {
			note = took
		} else {
			note += " (" + took + ")"
		}
	}
	if note != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render(note))
	}
	return b.String()
}

// Summary renders a bar over all steps followed by the completed count. The
// bar turns red once a step failed.
func (l *StepLog) Summary() string {
	total := len(l.Steps)
	if total == 0 {
		return ""
	}
	fill := SuccessColor
	if l.Failed() {
		fill = ErrorColor
	}
	bar := progress.New(
		progress.WithSolidFill(string(fill)),
		progress.WithoutPercentage(),
		progress.WithWidth(min(max(l.Width-24, 20), 50)),
	)
	done := l.Completed()
	return fmt.Sprintf("  %s  %d/%d steps", bar.ViewAs(float64(done)/float64(total)), done, total)
}
