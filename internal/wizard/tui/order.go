package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/orderdesk/internal/order"
)

// DefaultRequestTimeout bounds each remote call made from the wizard screens
const DefaultRequestTimeout = 15 * time.Second

// notificationQueue collects wizard notifications. The wizard calls the
// notifier with its lock held, so the queue must never call back into it.
type notificationQueue struct {
	mu    sync.Mutex
	items []order.Notification
}

func (q *notificationQueue) push(n order.Notification) {
	q.mu.Lock()
	q.items = append(q.items, n)
	q.mu.Unlock()
}

func (q *notificationQueue) drain() []order.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

var helpKey = key.NewBinding(
	key.WithKeys("?"),
	key.WithHelp("?", "help"),
)

// Messages for async wizard operations
type wizardDoneMsg struct {
	op  string
	err error
}

type submitDoneMsg struct {
	result *order.Result
	err    error
}

// OrderClosedMsg is emitted once the wizard closes. Result is nil when the
// order was cancelled.
type OrderClosedMsg struct {
	Result *order.Result
}

// OrderModel hosts an order.Wizard: product search on the first screen and
// the review list on the second.
type OrderModel struct {
	wizard  *order.Wizard
	queue   *notificationQueue
	timeout time.Duration

	state   order.State
	notices []order.Notification

	// Search screen widgets
	Table       table.Model
	SearchInput textinput.Model
	searchFocus bool

	// Inline quantity editor (both screens)
	QtyInput textinput.Model
	editing  bool
	editID   string

	// UI state
	Width      int
	Height     int
	Spinner    spinner.Model
	Help       help.Model
	SearchKeys searchKeyMap
	ReviewKeys reviewKeyMap
	EditKeys   editKeyMap

	ShowHelp bool

	Closed bool
	Result *order.Result
}

// NewOrderModel creates the wizard screens for an order under parentID
func NewOrderModel(catalog order.Catalog, parentID string, pageSize int, timeout time.Duration) OrderModel {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	queue := &notificationQueue{}
	w := order.NewWizard(catalog, order.Options{
		ParentID: parentID,
		PageSize: pageSize,
		Notifier: queue.push,
	})

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	searchInput := textinput.New()
	searchInput.Placeholder = "name or product code"
	searchInput.Prompt = "Search: "
	searchInput.CharLimit = 80
	searchInput.Width = 40

	qtyInput := textinput.New()
	qtyInput.Prompt = "Quantity: "
	qtyInput.CharLimit = 9
	qtyInput.Width = 10

	t := table.New(
		table.WithColumns(searchColumns(MinTerminalWidth)),
		table.WithFocused(true),
		table.WithHeight(pageSizeOrDefault(pageSize)+1),
	)
	t.SetStyles(tableStyles())

	m := OrderModel{
		wizard:      w,
		queue:       queue,
		timeout:     timeout,
		Table:       t,
		SearchInput: searchInput,
		QtyInput:    qtyInput,
		Spinner:     s,
		Help:        help.New(),
		SearchKeys:  newSearchKeyMap(),
		ReviewKeys:  newReviewKeyMap(),
		EditKeys:    newEditKeyMap(),
	}
	m.state = w.Snapshot()
	return m
}

func pageSizeOrDefault(n int) int {
	if n < 1 {
		return order.DefaultPageSize
	}
	return n
}

// Wizard exposes the underlying wizard
func (m OrderModel) Wizard() *order.Wizard {
	return m.wizard
}

// Init loads categories and the unfiltered first page
func (m OrderModel) Init() tea.Cmd {
	w := m.wizard
	return tea.Batch(
		m.run("open", func(ctx context.Context) error {
			// category failures are reported through the notifier and the
			// search still works without them
			_ = w.Open(ctx)
			return w.Search(ctx, "", "")
		}),
		m.Spinner.Tick,
	)
}

// run executes a blocking wizard call off the event loop
func (m OrderModel) run(op string, f func(ctx context.Context) error) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return wizardDoneMsg{op: op, err: f(ctx)}
	}
}

func (m OrderModel) submit() tea.Cmd {
	w, timeout := m.wizard, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		res, err := w.Submit(ctx)
		return submitDoneMsg{result: res, err: err}
	}
}

// refresh pulls a new snapshot and any queued notifications
func (m *OrderModel) refresh() {
	m.state = m.wizard.Snapshot()
	if n := m.queue.drain(); len(n) > 0 {
		m.notices = n
	}
	cursor := m.Table.Cursor()
	// rows must never have more cells than there are columns
	m.Table.SetRows(nil)
	if m.state.Screen == order.ScreenSearching {
		m.Table.SetColumns(searchColumns(m.Width))
		m.Table.SetRows(searchRows(m.state))
	} else {
		m.Table.SetColumns(reviewColumns(m.Width))
		m.Table.SetRows(reviewRows(m.state))
	}
	if n := len(m.Table.Rows()); n > 0 {
		m.Table.SetCursor(min(cursor, n-1))
	}
}

// cursorID returns the product id under the table cursor
func (m OrderModel) cursorID() string {
	i := m.Table.Cursor()
	if m.state.Screen == order.ScreenSearching {
		if i >= 0 && i < len(m.state.Rows) {
			return m.state.Rows[i].ID
		}
		return ""
	}
	if i >= 0 && i < len(m.state.Review) {
		return m.state.Review[i].ID
	}
	return ""
}

// Update handles messages and updates the model
func (m OrderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.refresh()
		return m, nil

	case wizardDoneMsg:
		m.refresh()
		m.setError(msg.err)
		return m, nil

	case submitDoneMsg:
		m.refresh()
		if msg.err == nil {
			m.Closed = true
			m.Result = msg.result
			return m, closedCmd(msg.result)
		}
		m.setError(msg.err)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.Closed {
			return m, nil
		}
		m.notices = nil
		if m.ShowHelp {
			// any key closes the overlay
			m.ShowHelp = false
			return m, nil
		}
		if !m.editing && !m.searchFocus && key.Matches(msg, helpKey) {
			m.ShowHelp = true
			return m, nil
		}
		if m.editing {
			return m.updateEditor(msg)
		}
		if m.state.Screen == order.ScreenReviewing {
			return m.updateReview(msg)
		}
		return m.updateSearch(msg)
	}

	return m, nil
}

func closedCmd(res *order.Result) tea.Cmd {
	return func() tea.Msg { return OrderClosedMsg{Result: res} }
}

// cancel closes the wizard without an order
func (m OrderModel) cancel() (tea.Model, tea.Cmd) {
	m.wizard.Cancel()
	m.Closed = true
	m.refresh()
	return m, closedCmd(nil)
}

// startEditing opens the inline quantity editor for the row under the cursor
func (m OrderModel) startEditing() (tea.Model, tea.Cmd) {
	id := m.cursorID()
	if id == "" {
		return m, nil
	}
	m.editing = true
	m.editID = id
	m.QtyInput.SetValue(m.currentQuantity(id))
	m.QtyInput.CursorEnd()
	return m, m.QtyInput.Focus()
}

func (m OrderModel) currentQuantity(id string) string {
	for _, r := range m.state.Rows {
		if r.ID == id {
			return r.DisplayQuantity()
		}
	}
	for _, e := range m.state.Review {
		if e.ID == id {
			return fmt.Sprintf("%d", e.Quantity)
		}
	}
	return fmt.Sprintf("%d", order.DefaultQuantity)
}

func (m OrderModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.EditKeys.Cancel):
		m.editing = false
		m.QtyInput.Blur()
		return m, nil

	case key.Matches(msg, m.EditKeys.Save):
		raw := m.QtyInput.Value()
		var err error
		if m.state.Screen == order.ScreenSearching {
			err = m.wizard.EditDraft(m.editID, raw)
		} else {
			_, err = m.wizard.EditQuantity(m.editID, raw)
		}
		m.editing = false
		m.QtyInput.Blur()
		m.refresh()
		m.setError(err)
		return m, nil
	}

	var cmd tea.Cmd
	m.QtyInput, cmd = m.QtyInput.Update(msg)
	return m, cmd
}

// setError shows errors the wizard did not already report as a notification
func (m *OrderModel) setError(err error) {
	switch {
	case err == nil:
	case errors.Is(err, order.ErrBusy):
		m.notices = []order.Notification{{Variant: order.VariantInfo, Title: "Busy", Message: "Still loading, please wait."}}
	case errors.Is(err, order.ErrEmptySelection):
	default:
		if len(m.notices) == 0 {
			m.notices = []order.Notification{{Variant: order.VariantError, Title: "Error", Message: err.Error()}}
		}
	}
}

// View renders the active wizard screen
func (m OrderModel) View() string {
	if m.ShowHelp {
		return m.renderHelpOverlay()
	}

	var content, helpText string

	switch {
	case m.editing:
		content = m.renderBody() + "\n" + editorStyle.Render(m.QtyInput.View())
		helpText = m.Help.View(m.EditKeys)
	case m.state.Screen == order.ScreenReviewing:
		content = m.renderBody()
		helpText = m.Help.View(m.ReviewKeys)
	default:
		content = m.renderBody()
		helpText = m.Help.View(m.SearchKeys)
	}

	return frame{
		Context: m.frameContext(),
		Body:    content,
		Footer:  helpText,
		Width:   m.Width,
		Height:  m.Height,
	}.Render()
}

func (m OrderModel) frameContext() string {
	ctx := "New order"
	if m.state.ParentID != "" {
		ctx = "Order for " + m.state.ParentID
	}
	return fmt.Sprintf("%s · %d selected", ctx, m.state.SelectedCount)
}

func (m OrderModel) renderBody() string {
	var b strings.Builder

	if m.state.Screen == order.ScreenReviewing {
		b.WriteString(m.renderReview())
	} else {
		b.WriteString(m.renderSearch())
	}

	if m.state.Loading {
		b.WriteString("\n")
		b.WriteString(spinnerStyle.Render(m.Spinner.View() + " Loading..."))
	}

	if len(m.notices) > 0 {
		b.WriteString("\n")
		b.WriteString(renderNotices(m.notices))
	}
	return b.String()
}

func (m OrderModel) renderHelpOverlay() string {
	var groups [][]key.Binding
	title := "Search keys"
	if m.state.Screen == order.ScreenReviewing {
		groups = m.ReviewKeys.FullHelp()
		title = "Review keys"
	} else {
		groups = m.SearchKeys.FullHelp()
	}

	h := m.Help
	h.ShowAll = true
	content := titleStyle.Render(title) + "\n" + h.FullHelpView(groups) + "\n\n" + subtitleStyle.Render("Press any key to close")
	return renderModal(content, 64, m.Width, m.Height)
}
