package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a multi-step command
type RunnerConfig struct {
	Title           string            // Command title (e.g., "Order Creation")
	Command         string            // Full command (e.g., "orderdesk order create")
	Params          map[string]string // Parameters to display in header
	StepNames       []string          // Names for each step
	Troubleshooting []string          // Tips shown when the operation fails
	Output          io.Writer         // Output writer (default: os.Stdout)
	Width           int               // Rendering width (default: terminal width)
}

// Runner orchestrates the header → steps → result flow of a command
type Runner struct {
	config    RunnerConfig
	header    *Header
	steps     *StepLog
	output    io.Writer
	startTime time.Time
	width     int
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	width := config.Width
	if width <= 0 {
		width = TerminalWidth()
	}

	header := NewHeader(config.Title, config.Command, config.Params)
	header.SetWidth(width)

	return &Runner{
		config: config,
		header: header,
		steps:  NewStepLog(config.StepNames, width),
		output: config.Output,
		width:  width,
	}
}

// Operation is the work a Runner executes. It reports progress through
// onStep and returns the details shown in the success box.
type Operation func(ctx context.Context, onStep StepCallback) (map[string]string, error)

// Run prints the header, executes the operation and prints the result
func (r *Runner) Run(ctx context.Context, operation Operation) (map[string]string, error) {
	r.startTime = time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := operation(ctx, r.createStepCallback())
	duration := time.Since(r.startTime)

	if summary := r.steps.Summary(); summary != "" {
		_, _ = fmt.Fprintln(r.output)
		_, _ = fmt.Fprintln(r.output, summary)
	}

	if err != nil {
		r.printFailure(err)
	} else {
		r.printSuccess(details, duration)
	}

	return details, err
}

// createStepCallback creates the step callback function
func (r *Runner) createStepCallback() StepCallback {
	return func(n int, name string, status StepStatus, note string) {
		if !r.steps.Update(n, name, status, note) {
			return
		}
		switch {
		case status.finished():
			_, _ = fmt.Fprintln(r.output, r.steps.Line(n))
		case status == StepRunning:
			// Overwritten when the step finishes
			_, _ = fmt.Fprint(r.output, r.steps.Line(n)+"\r")
		}
	}
}

func (r *Runner) printSuccess(details map[string]string, duration time.Duration) {
	_, _ = fmt.Fprintln(r.output)

	if details == nil {
		details = make(map[string]string)
	}
	details["Duration"] = duration.Round(time.Millisecond).String()

	result := Success(r.config.Title+" complete", details)
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
}

func (r *Runner) printFailure(err error) {
	_, _ = fmt.Fprintln(r.output)

	result := Failure(r.config.Title+" failed", err, r.config.Troubleshooting)
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
}
