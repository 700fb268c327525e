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

// searchKeyMap defines key bindings for the product search screen
type searchKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Edit     key.Binding
	Search   key.Binding
	Category key.Binding
	Next     key.Binding
	Prev     key.Binding
	Proceed  key.Binding
	Cancel   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k searchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Edit, k.Search, k.Next, k.Prev, k.Proceed, k.Cancel, helpKey}
}

// FullHelp returns keybindings for the expanded help view
func (k searchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Edit},
		{k.Search, k.Category, k.Next, k.Prev},
		{k.Proceed, k.Cancel},
	}
}

func newSearchKeyMap() searchKeyMap {
	return searchKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "select"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "quantity"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Category: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "category"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "next page"),
		),
		Prev: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p/←", "prev page"),
		),
		Proceed: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "review"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel order"),
		),
	}
}

// editKeyMap defines key bindings for the inline quantity editor and the
// search input
type editKeyMap struct {
	Save   key.Binding
	Cancel key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k editKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Save, k.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (k editKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Save, k.Cancel}}
}

func newEditKeyMap() editKeyMap {
	return editKeyMap{
		Save: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "discard"),
		),
	}
}

func (m OrderModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchFocus {
		return m.updateSearchInput(msg)
	}

	w := m.wizard
	switch {
	case key.Matches(msg, m.SearchKeys.Cancel):
		return m.cancel()

	case key.Matches(msg, m.SearchKeys.Search):
		m.searchFocus = true
		m.SearchInput.SetValue(m.state.Term)
		m.SearchInput.CursorEnd()
		return m, m.SearchInput.Focus()

	case key.Matches(msg, m.SearchKeys.Category):
		opts := m.state.Categories
		if len(opts) == 0 {
			return m, nil
		}
		next := 0
		for i, c := range opts {
			if c.Value == m.state.Category {
				next = (i + 1) % len(opts)
				break
			}
		}
		term, category := m.state.Term, opts[next].Value
		return m, m.run("search", func(ctx context.Context) error {
			return w.Search(ctx, term, category)
		})

	case key.Matches(msg, m.SearchKeys.Toggle):
		id := m.cursorID()
		if id == "" {
			return m, nil
		}
		err := w.ToggleRow(id)
		m.refresh()
		m.setError(err)
		return m, nil

	case key.Matches(msg, m.SearchKeys.Edit):
		return m.startEditing()

	case key.Matches(msg, m.SearchKeys.Next):
		if m.state.IsLastPage {
			return m, nil
		}
		return m, m.run("next", w.NextPage)

	case key.Matches(msg, m.SearchKeys.Prev):
		if m.state.IsFirstPage {
			return m, nil
		}
		return m, m.run("prev", w.PreviousPage)

	case key.Matches(msg, m.SearchKeys.Proceed):
		err := w.Proceed()
		m.refresh()
		m.setError(err)
		if err == nil {
			m.Table.SetCursor(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m OrderModel) updateSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.EditKeys.Cancel):
		m.searchFocus = false
		m.SearchInput.Blur()
		return m, nil

	case key.Matches(msg, m.EditKeys.Save):
		m.searchFocus = false
		m.SearchInput.Blur()
		w := m.wizard
		term, category := strings.TrimSpace(m.SearchInput.Value()), m.state.Category
		m.Table.SetCursor(0)
		return m, m.run("search", func(ctx context.Context) error {
			return w.Search(ctx, term, category)
		})
	}

	var cmd tea.Cmd
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	return m, cmd
}

// searchColumns sizes the product grid to the terminal width
func searchColumns(width int) []table.Column {
	width = contentWidth(width)
	// checkbox, code, category and quantity are fixed; name takes the rest
	name := width - 4 - 14 - 14 - 8 - 14
	if name < 16 {
		name = 16
	}
	return []table.Column{
		{Title: " ", Width: 3},
		{Title: "Product", Width: name},
		{Title: "Code", Width: 14},
		{Title: "Category", Width: 14},
		{Title: "Qty", Width: 6},
	}
}

func searchRows(s order.State) []table.Row {
	rows := make([]table.Row, 0, len(s.Rows))
	for _, r := range s.Rows {
		mark := "[ ]"
		if r.Selected {
			mark = "[x]"
		}
		rows = append(rows, table.Row{mark, r.Name, r.Code, r.Category, r.DisplayQuantity()})
	}
	return rows
}

func (m OrderModel) renderSearch() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("New Order"))
	b.WriteString("\n")
	if m.state.ParentID != "" {
		b.WriteString(subtitleStyle.Render("For record " + m.state.ParentID))
		b.WriteString("\n")
	}

	if m.searchFocus {
		b.WriteString(searchFocusedStyle.Render(m.SearchInput.View()))
	} else {
		term := m.state.Term
		if term == "" {
			term = "(any)"
		}
		b.WriteString(searchBlurredStyle.Render("Search: " + term))
	}
	b.WriteString("   ")
	b.WriteString(searchBlurredStyle.Render("Category: " + categoryLabel(m.state)))
	b.WriteString("\n\n")

	if len(m.state.Rows) == 0 && !m.state.Loading {
		b.WriteString(subtitleStyle.Render("No products found."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.Table.View())
		b.WriteString("\n")
	}

	b.WriteString(statusBarStyle.Render(pageStatus(m.state)))
	return b.String()
}

func categoryLabel(s order.State) string {
	for _, c := range s.Categories {
		if c.Value == s.Category {
			return c.Label
		}
	}
	return order.AllCategories.Label
}

func pageStatus(s order.State) string {
	if s.TotalRecords == 0 {
		return fmt.Sprintf("No results · %d selected", s.SelectedCount)
	}
	return fmt.Sprintf("Page %d of %d · %d products · %d selected",
		s.Page, s.TotalPages, s.TotalRecords, s.SelectedCount)
}
