package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/orderdesk/internal/order"
)

// reviewKeyMap defines key bindings for the review screen
type reviewKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Inc    key.Binding
	Dec    key.Binding
	Edit   key.Binding
	Remove key.Binding
	Back   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k reviewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Inc, k.Dec, k.Remove, k.Back, k.Submit, k.Cancel, helpKey}
}

// FullHelp returns keybindings for the expanded help view
func (k reviewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Inc, k.Dec, k.Edit},
		{k.Remove, k.Back, k.Submit, k.Cancel},
	}
}

func newReviewKeyMap() reviewKeyMap {
	return reviewKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Inc: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "more"),
		),
		Dec: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "less"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "quantity"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "shift+tab"),
			key.WithHelp("b", "back"),
		),
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "create order"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel order"),
		),
	}
}

func (m OrderModel) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	w := m.wizard
	switch {
	case key.Matches(msg, m.ReviewKeys.Cancel):
		return m.cancel()

	case key.Matches(msg, m.ReviewKeys.Inc), key.Matches(msg, m.ReviewKeys.Dec):
		id := m.cursorID()
		if id == "" {
			return m, nil
		}
		q := m.entryQuantity(id)
		if key.Matches(msg, m.ReviewKeys.Inc) {
			q++
		} else {
			q--
		}
		_, err := w.EditQuantity(id, fmt.Sprintf("%d", q))
		m.refresh()
		m.setError(err)
		return m, nil

	case key.Matches(msg, m.ReviewKeys.Edit):
		return m.startEditing()

	case key.Matches(msg, m.ReviewKeys.Remove):
		id := m.cursorID()
		if id == "" {
			return m, nil
		}
		return m, m.run("remove", func(ctx context.Context) error {
			return w.Remove(ctx, id)
		})

	case key.Matches(msg, m.ReviewKeys.Back):
		return m, m.run("back", w.Back)

	case key.Matches(msg, m.ReviewKeys.Submit):
		if m.state.SelectedCount == 0 {
			return m, nil
		}
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m OrderModel) entryQuantity(id string) int {
	for _, e := range m.state.Review {
		if e.ID == id {
			return e.Quantity
		}
	}
	return order.DefaultQuantity
}

// reviewColumns sizes the review list to the terminal width
func reviewColumns(width int) []table.Column {
	width = contentWidth(width)
	name := width - 4 - 18 - 10
	if name < 16 {
		name = 16
	}
	return []table.Column{
		{Title: "Product", Width: name},
		{Title: "Code", Width: 14},
		{Title: "Qty", Width: 6},
	}
}

func reviewRows(s order.State) []table.Row {
	rows := make([]table.Row, 0, len(s.Review))
	for _, e := range s.Review {
		rows = append(rows, table.Row{e.Name, e.Code, fmt.Sprintf("%d", e.Quantity)})
	}
	return rows
}

func (m OrderModel) renderReview() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Review Order"))
	b.WriteString("\n")
	if m.state.ParentID != "" {
		b.WriteString(subtitleStyle.Render("For record " + m.state.ParentID))
		b.WriteString("\n")
	}
	b.WriteString(m.Table.View())
	b.WriteString("\n")

	total := 0
	for _, e := range m.state.Review {
		total += e.Quantity
	}
	b.WriteString(statusBarStyle.Render(fmt.Sprintf("%d products · %d items", len(m.state.Review), total)))
	return b.String()
}
