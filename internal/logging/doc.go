// Package logging provides structured logging for orderdesk.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used by the CLI, the wizard controllers and the demo backend.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (remote call timings, websocket frames)
//   - Info: Normal operations (HTTP requests, notifications)
//   - Warn: Non-fatal issues (failed remote calls, corrected quantities)
//   - Error: Failures shown to the user as error notifications
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Order created",
//	    zap.String("parent_id", "00Q5g00000AbCdE"),
//	    zap.String("order_number", "ORD-000042"),
//	    zap.Int("lines", 3),
//	)
//
// # Configuration
//
// Logging is silent unless ORDERDESK_LOG_LEVEL is set. Interactive commands
// should also set ORDERDESK_LOG_FILE (or pass an output path) so that log lines
// do not interfere with the terminal UI:
//
//	if err := logging.InitializeWithOutput("debug", "/tmp/orderdesk.log"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap logger
// handles synchronization automatically.
package logging
