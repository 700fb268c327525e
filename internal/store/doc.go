// Package store keeps the demo backend's data in SQLite.
//
// It holds products, records with their fields, and orders with their lines.
// Orders are created in a single transaction and numbered ORD-000001,
// ORD-000002 and so on. An empty store is populated from a YAML seed; an
// embedded default seed ships with the package.
package store
