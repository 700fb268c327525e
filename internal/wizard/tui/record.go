package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/orderdesk/internal/record"
	"github.com/muurk/orderdesk/internal/ui"
)

// recordKeyMap defines key bindings for the record screen
type recordKeyMap struct {
	NextTab key.Binding
	PrevTab key.Binding
	Reload  key.Binding
	Order   key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k recordKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.PrevTab, k.Reload, k.Order, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k recordKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab},
		{k.Reload, k.Order, k.Quit},
	}
}

func newRecordKeyMap() recordKeyMap {
	return recordKeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/→", "next group"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab/←", "prev group"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Order: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "new order"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// recordLoadedMsg is sent when a record fetch finishes
type recordLoadedMsg struct {
	err error
}

// OpenOrderMsg asks the application to start an order for a record
type OpenOrderMsg struct {
	ParentID string
	Label    string
}

// RecordModel shows one record grouped into tabs
type RecordModel struct {
	viewer  *record.Viewer
	timeout time.Duration

	ActiveTab int
	Width     int
	Height    int
	Spinner   spinner.Model
	Help      help.Model
	Keys      recordKeyMap
}

// NewRecordModel creates the record screen for viewer
func NewRecordModel(viewer *record.Viewer, timeout time.Duration) RecordModel {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return RecordModel{
		viewer:  viewer,
		timeout: timeout,
		Spinner: s,
		Help:    help.New(),
		Keys:    newRecordKeyMap(),
	}
}

// Init starts loading the record
func (m RecordModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(false), m.Spinner.Tick)
}

func (m RecordModel) fetch(reload bool) tea.Cmd {
	v, timeout := m.viewer, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if reload {
			return recordLoadedMsg{err: v.Reload(ctx)}
		}
		return recordLoadedMsg{err: v.Load(ctx)}
	}
}

// Update handles messages and updates the model
func (m RecordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case recordLoadedMsg:
		return m, nil

	case spinner.TickMsg:
		if !m.viewer.IsLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		groups := len(m.viewer.Groups())
		switch {
		case key.Matches(msg, m.Keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.Keys.NextTab):
			if groups > 0 {
				m.ActiveTab = (m.ActiveTab + 1) % groups
			}
			return m, nil

		case key.Matches(msg, m.Keys.PrevTab):
			if groups > 0 {
				m.ActiveTab = (m.ActiveTab + groups - 1) % groups
			}
			return m, nil

		case key.Matches(msg, m.Keys.Reload):
			return m, tea.Batch(m.fetch(true), m.Spinner.Tick)

		case key.Matches(msg, m.Keys.Order):
			if m.viewer.Record() == nil {
				return m, nil
			}
			parent := OpenOrderMsg{ParentID: m.viewer.RecordID(), Label: m.viewer.Header().Name}
			return m, func() tea.Msg { return parent }
		}
	}
	return m, nil
}

// View renders the record screen
func (m RecordModel) View() string {
	return frame{
		Context: "Record " + m.viewer.RecordID(),
		Body:    m.renderBody(),
		Footer:  m.Help.View(m.Keys),
		Width:   m.Width,
		Height:  m.Height,
	}.Render()
}

func (m RecordModel) renderBody() string {
	var b strings.Builder

	switch {
	case m.viewer.IsLoading():
		b.WriteString(spinnerStyle.Render(m.Spinner.View() + " Loading record " + m.viewer.RecordID() + "..."))
		return b.String()
	case m.viewer.Err() != nil:
		b.WriteString(outcomeBox(ui.ErrorColor).Render(ui.FailureMarker + " Failed to load record " + m.viewer.RecordID() + ": " + m.viewer.Err().Error()))
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render("Press r to try again."))
		return b.String()
	}

	b.WriteString(renderRecordHeader(m.viewer.Header()))
	b.WriteString("\n\n")

	groups := m.viewer.Groups()
	if len(groups) == 0 {
		return b.String()
	}
	if m.ActiveTab >= len(groups) {
		m.ActiveTab = 0
	}

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	b.WriteString(renderTabs(names, m.ActiveTab))
	b.WriteString("\n\n")
	b.WriteString(renderFields(groups[m.ActiveTab].Fields))
	return b.String()
}

func renderRecordHeader(h record.Header) string {
	name := h.Name
	if name == "" {
		name = "(unnamed)"
	}
	title := titleStyle.Render(name)

	var meta []string
	if h.Company != "" {
		meta = append(meta, h.Company)
	}
	if h.Status != "" {
		meta = append(meta, "Status: "+h.Status)
	}
	if h.Rating != "" {
		meta = append(meta, "Rating: "+h.Rating)
	}
	if len(meta) == 0 {
		return title
	}
	return title + "\n" + subtitleStyle.Render(strings.Join(meta, " · "))
}

func renderFields(fields []record.Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		val := f.Value.Text
		if f.Value.IsLink() {
			val = fieldLinkStyle.Render(val)
		}
		lines = append(lines, fieldLabelStyle.Render(f.Label)+val)
	}
	return strings.Join(lines, "\n")
}
