package order

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  int
		valid bool
	}{
		{"positive", "5", 5, true},
		{"padded", " 12 ", 12, true},
		{"zero", "0", 1, false},
		{"negative", "-3", 1, false},
		{"empty", "", 1, false},
		{"text", "abc", 1, false},
		{"decimal", "2.5", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, valid := ParseQuantity(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, valid)
		})
	}
}

func TestSelectionSet_AddKeepsExisting(t *testing.T) {
	s := NewSelectionSet()

	require.True(t, s.Add(Entry{ID: "p1", Name: "Widget", Quantity: 3}))
	assert.False(t, s.Add(Entry{ID: "p1", Name: "Widget", Quantity: 9}))
	assert.Equal(t, 3, s.Quantity("p1"))
	assert.Equal(t, 1, s.Len())
}

func TestSelectionSet_NormalizesQuantity(t *testing.T) {
	s := NewSelectionSet()
	s.Add(Entry{ID: "p1", Quantity: 0})
	assert.Equal(t, DefaultQuantity, s.Quantity("p1"))

	assert.True(t, s.SetQuantity("p1", -4))
	assert.Equal(t, DefaultQuantity, s.Quantity("p1"))

	assert.False(t, s.SetQuantity("missing", 2))
	assert.Equal(t, DefaultQuantity, s.Quantity("missing"))
}

func TestSelectionSet_RemoveAndOrder(t *testing.T) {
	s := NewSelectionSet()
	for _, id := range []string{"a", "b", "c"} {
		s.Add(Entry{ID: id, Quantity: 1})
	}

	assert.True(t, s.Remove("b"))
	assert.False(t, s.Remove("b"))

	if diff := cmp.Diff([]string{"a", "c"}, s.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}

	s.SetQuantity("c", 4)
	want := []Line{{ProductID: "a", Quantity: 1}, {ProductID: "c", Quantity: 4}}
	if diff := cmp.Diff(want, s.Lines()); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionSet_EntriesIsCopy(t *testing.T) {
	s := NewSelectionSet()
	s.Add(Entry{ID: "a", Quantity: 2})

	entries := s.Entries()
	entries[0].Quantity = 99

	assert.Equal(t, 2, s.Quantity("a"))
}

func TestSelectionSet_Clear(t *testing.T) {
	s := NewSelectionSet()
	s.Add(Entry{ID: "a"})
	s.Clear()

	assert.Zero(t, s.Len())
	assert.Empty(t, s.Entries())
	assert.True(t, s.Add(Entry{ID: "a"}))
}
