package order

import (
	"strconv"
	"strings"
)

// DefaultQuantity is used for new selections and for any quantity input that
// is not a positive integer.
const DefaultQuantity = 1

// Entry is a selected product with the quantity that will be ordered
type Entry struct {
	ID       string
	Name     string
	Code     string
	Quantity int
}

// Line is a single item of an order submission
type Line struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// ParseQuantity parses raw user input as a quantity.
// Empty, non-numeric, zero and negative input yields (DefaultQuantity, false).
func ParseQuantity(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return DefaultQuantity, false
	}
	return n, true
}

// normalizeQuantity coerces an integer quantity to a positive value
func normalizeQuantity(q int) int {
	if q < 1 {
		return DefaultQuantity
	}
	return q
}

// SelectionSet holds the products chosen across all pages and searches,
// keyed by product id. The insertion order is kept only so that projections
// are deterministic.
//
// SelectionSet is not safe for concurrent use; the Wizard serializes access.
type SelectionSet struct {
	entries map[string]*Entry
	order   []string
}

// NewSelectionSet creates an empty selection set
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{
		entries: make(map[string]*Entry),
	}
}

// Len returns the number of selected products
func (s *SelectionSet) Len() int {
	return len(s.entries)
}

// Has reports whether id is selected
func (s *SelectionSet) Has(id string) bool {
	_, ok := s.entries[id]
	return ok
}

// Get returns a copy of the entry for id
func (s *SelectionSet) Get(id string) (Entry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Quantity returns the stored quantity for id, or DefaultQuantity if id is
// not selected
func (s *SelectionSet) Quantity(id string) int {
	if e, ok := s.entries[id]; ok {
		return e.Quantity
	}
	return DefaultQuantity
}

// Add inserts an entry. An id that is already present keeps its existing
// entry and Add returns false.
func (s *SelectionSet) Add(e Entry) bool {
	if _, ok := s.entries[e.ID]; ok {
		return false
	}
	e.Quantity = normalizeQuantity(e.Quantity)
	s.entries[e.ID] = &e
	s.order = append(s.order, e.ID)
	return true
}

// Remove deletes id from the set and reports whether it was present
func (s *SelectionSet) Remove(id string) bool {
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// SetQuantity updates the quantity of a selected product.
// Non-positive values are stored as DefaultQuantity.
func (s *SelectionSet) SetQuantity(id string, q int) bool {
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.Quantity = normalizeQuantity(q)
	return true
}

// Clear removes every entry
func (s *SelectionSet) Clear() {
	s.entries = make(map[string]*Entry)
	s.order = nil
}

// Entries projects the set into a fresh slice. Mutating the slice does not
// affect the set.
func (s *SelectionSet) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.entries[id])
	}
	return out
}

// IDs returns the selected ids in projection order
func (s *SelectionSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Lines builds the order submission payload
func (s *SelectionSet) Lines() []Line {
	lines := make([]Line, 0, len(s.order))
	for _, id := range s.order {
		lines = append(lines, Line{ProductID: id, Quantity: s.entries[id].Quantity})
	}
	return lines
}
