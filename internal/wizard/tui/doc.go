// Package tui implements the terminal user interface for OrderDesk.
//
// The TUI shows a platform record and lets the user build an order for it.
// Built using the Bubble Tea framework, it follows the Elm architecture with
// immutable state updates and a Model-Update-View pattern.
//
// # Architecture
//
// The TUI is organized into three screens:
//   - Record: the record header and its field groups as tabs
//   - Order: product search and review, backed by an order.Wizard
//   - Done: the created order number, or a cancellation notice
//
// All screens draw the same frame: a header naming the open record or order,
// the screen body and a footer with the screen's key help.
//
// # Usage Example
//
//	app := tui.NewAppModel(tui.Config{
//	    Fetcher:  client,
//	    Catalog:  client,
//	    RecordID: "00Q5e00000A1",
//	})
//	program := tea.NewProgram(app, tea.WithAltScreen())
//
//	if _, err := program.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Screen Flow
//
//  1. Record Screen:
//     - Loads the record once, r reloads it
//     - Tab cycles through the Person, Company and System groups
//     - o starts a new order with the record as parent
//
//  2. Order Screen (search):
//     - / edits the search term, c cycles the category filter
//     - space selects a row, e edits its quantity in place
//     - n/p turn pages, selections survive paging and new searches
//     - tab proceeds to review
//
//  3. Order Screen (review):
//     - +/- or e change quantities, d removes a product
//     - b returns to search, s creates the order
//
// # Concurrency
//
// Every remote call runs in a tea.Cmd with a timeout. The wizard is safe for
// concurrent use and discards stale responses itself; the models only re-read
// its Snapshot when a call returns. Notifications are queued by the notifier
// and drained on the event loop, since the wizard invokes the notifier with
// its lock held.
package tui
