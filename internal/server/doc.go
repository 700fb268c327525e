// Package server implements the OrderDesk demo backend.
//
// The server exposes the record, product and order contracts over a small
// JSON API backed by the SQLite store:
//
//	GET  /api/health
//	GET  /api/records/{id}?fields=Lead.Name,Lead.Email
//	GET  /api/products?term=&family=&offset=&limit=
//	GET  /api/products/count?term=&family=
//	GET  /api/products/categories
//	POST /api/orders
//	GET  /api/orders/{number}
//	GET  /api/events
//
// Every route except /api/health requires "Authorization: Bearer <token>"
// when a token is configured.
//
// # Events
//
// /api/events upgrades to a websocket. Each created order is pushed to all
// subscribers as a JSON order.Event. Subscribers that fall behind are
// disconnected.
//
// # TLS
//
// TLS is off by default. Provide CertPath and KeyPath, or set GenerateCert
// to serve with an in-memory self-signed certificate.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{Port: 8080, DBPath: "orderdesk.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Start blocks until SIGINT/SIGTERM or a serve error
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Shutdown disconnects event subscribers, drains in-flight requests and
// closes the store.
package server
