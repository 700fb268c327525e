package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(strings.NewReader(tt.input), &out, "Create order", []string{"3 lines"})
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Create order")
			if !tt.want {
				assert.Contains(t, out.String(), "Operation cancelled.")
			}
		})
	}
}

func TestHeader_SortedParams(t *testing.T) {
	out := NewHeader("Product Search", "orderdesk products", map[string]string{
		"Term":     "cable",
		"Category": "Accessories",
	}).SetWidth(80).Render()

	assert.Contains(t, out, "PRODUCT SEARCH")
	assert.Less(t, strings.Index(out, "Category:"), strings.Index(out, "Term:"))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"Name", "Code"}, [][]string{
		{"USB-C Cable", "AC-0200"},
		{"HDMI Cable", "AC-0210"},
	}, 80)

	for _, s := range []string{"Name", "Code", "USB-C Cable", "AC-0210"} {
		assert.Contains(t, out, s)
	}
}

func TestRenderSection(t *testing.T) {
	out := RenderSection("Person Information", []KeyValue{
		{Key: "Name", Value: "Ada Lovelace"},
		{Key: "Email", Value: "ada@example.com", Target: "mailto:ada@example.com"},
	}, 100)

	assert.Contains(t, out, "Person Information")
	assert.Contains(t, out, "Ada Lovelace")
	assert.Contains(t, out, "<mailto:ada@example.com>")
}

func TestStepLog(t *testing.T) {
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewStepLog([]string{"Reach platform", "Create order"}, 80)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Update(1, "", StepRunning, ""))
	clock = clock.Add(120 * time.Millisecond)
	assert.True(t, l.Update(1, "", StepComplete, "http://localhost:8080"))
	assert.False(t, l.Update(3, "", StepComplete, ""))

	assert.Equal(t, 120*time.Millisecond, l.Steps[0].Elapsed)
	assert.Equal(t, 1, l.Completed())
	assert.False(t, l.Failed())

	line := l.Line(1)
	assert.Contains(t, line, "[1/2]")
	assert.Contains(t, line, "Reach platform")
	assert.Contains(t, line, "http://localhost:8080 (120ms)")
	assert.Contains(t, l.Summary(), "1/2 steps")

	l.Update(2, "Create order ORD-1", StepFailed, "Quantity must be positive")
	assert.True(t, l.Failed())
	assert.Contains(t, l.Line(2), "Create order ORD-1")
	assert.Contains(t, l.Line(2), FailureMarker)
	assert.Contains(t, l.Summary(), "1/2 steps")
	assert.Empty(t, l.Line(0))
}

func TestRunner(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerConfig{
			Title:     "Order Creation",
			Command:   "orderdesk order create",
			StepNames: []string{"Creating order"},
			Output:    &out,
			Width:     80,
		})

		details, err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) (map[string]string, error) {
			onStep(1, "", StepRunning, "")
			onStep(1, "", StepComplete, "ORD-000001")
			return map[string]string{"Order": "ORD-000001"}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ORD-000001", details["Order"])
		assert.Contains(t, out.String(), "1/1 steps")
		assert.Contains(t, details, "Duration")
		assert.Contains(t, out.String(), "Order Creation complete")
	})

	t.Run("failure", func(t *testing.T) {
		var out bytes.Buffer
		r := NewRunner(RunnerConfig{
			Title:           "Order Creation",
			Output:          &out,
			Width:           80,
			Troubleshooting: []string{"Check the platform URL"},
		})

		_, err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) (map[string]string, error) {
			onStep(1, "ignored without steps", StepRunning, "")
			return nil, errors.New("boom")
		})
		require.Error(t, err)
		assert.Contains(t, out.String(), "Order Creation failed")
		assert.Contains(t, out.String(), "boom")
		assert.Contains(t, out.String(), "Check the platform URL")
	})
}

func TestResult_Render(t *testing.T) {
	out := Warning("No backends found", map[string]string{"Timeout": "3s"}).SetWidth(80).Render()
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "No backends found")
	assert.Contains(t, out, "Timeout:")

	out = Failure("Order Creation failed", errors.New("Quantity must be positive"), []string{"Check the quantities"}).
		SetWidth(80).Render()
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "Error: Quantity must be positive")
	assert.Contains(t, out, "Troubleshooting:")
	assert.Contains(t, out, "Check the quantities")
}
