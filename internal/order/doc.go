// Package order implements the product order wizard.
//
// A Wizard walks the user through two screens. On the search screen products
// are searched by term and category, paged, and checked into a SelectionSet
// that survives page changes and new searches. On the review screen the
// selected products' quantities can be edited or removed before the order is
// submitted through a Catalog.
//
// The Wizard performs remote calls without holding its lock and drops any
// response that was superseded by a newer request of the same kind, so a view
// may call it from any goroutine.
package order
