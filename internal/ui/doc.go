// Package ui provides terminal output components for the orderdesk CLI.
//
// These components use Lipgloss and Bubbles to render styled output for the
// non-interactive commands. Unlike the interactive wizard, they follow a
// "run once and exit" pattern.
//
// # Components
//
//   - Header: Command banner showing operation name and parameters
//   - StepLog: one line per remote call with its outcome and duration
//   - Result: Success/failure/warning boxes with styled information
//   - Table and Section: product listings and record field groups
//
// Multi-step commands are orchestrated by a Runner, which manages the
// header → steps → result flow:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Order Creation",
//	    Command:   "orderdesk order create",
//	    Params:    map[string]string{"Parent": "00Q000000000001"},
//	    StepNames: []string{"Reach platform", "Create order"},
//	})
//
//	details, err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) (map[string]string, error) {
//	    onStep(1, "", ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, "", ui.StepComplete, "")
//	    return map[string]string{"Order": "ORD-000001"}, nil
//	})
//
// # Logging Integration
//
// Logging is controlled via the ORDERDESK_LOG_LEVEL environment variable.
// When unset or empty, zap logging is silent, allowing the curated output
// to be displayed cleanly.
package ui
