package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/orderdesk/internal/order"
	"github.com/muurk/orderdesk/internal/record"
	"github.com/muurk/orderdesk/internal/ui"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenRecord Screen = "record"
	ScreenOrder  Screen = "order"
	ScreenDone   Screen = "done"
)

// doneKeyMap defines key bindings for the result screen
type doneKeyMap struct {
	Again  key.Binding
	Record key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k doneKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Again, k.Record, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k doneKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Again, k.Record, k.Quit},
	}
}

// Config holds everything the application needs to talk to the platform
type Config struct {
	Fetcher    record.Fetcher
	Catalog    order.Catalog
	RecordID   string // record shown first; empty starts directly with an order
	ParentID   string // parent of orders when no record is shown
	PageSize   int
	DateLayout string
	Timeout    time.Duration

	// OnOrderCreated is called after every successful order
	OnOrderCreated func(parentID, label string, res *order.Result)
}

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	cfg Config

	// Current screen state
	CurrentScreen  Screen
	PreviousScreen Screen

	// Screen models
	RecordModel RecordModel
	OrderModel  OrderModel
	hasRecord   bool

	// Order state
	ParentID    string
	ParentLabel string
	LastResult  *order.Result
	Cancelled   bool

	// UI state
	Width  int
	Height int

	// Help
	Help     help.Model
	DoneKeys doneKeyMap
}

// NewAppModel creates the application. With a RecordID it starts on the
// record screen, otherwise on a new order for cfg.ParentID.
func NewAppModel(cfg Config) AppModel {
	m := AppModel{
		cfg:  cfg,
		Help: help.New(),
		DoneKeys: doneKeyMap{
			Again: key.NewBinding(
				key.WithKeys("n", "enter"),
				key.WithHelp("n", "new order"),
			),
			Record: key.NewBinding(
				key.WithKeys("r", "esc"),
				key.WithHelp("r", "back to record"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q"),
				key.WithHelp("q", "quit"),
			),
		},
	}

	if cfg.RecordID != "" && cfg.Fetcher != nil {
		viewer := record.NewViewer(cfg.Fetcher, cfg.RecordID, record.LeadLayout(), record.NewFormatter(cfg.DateLayout))
		m.RecordModel = NewRecordModel(viewer, cfg.Timeout)
		m.hasRecord = true
		m.CurrentScreen = ScreenRecord
		return m
	}

	m.ParentID = cfg.ParentID
	m.OrderModel = NewOrderModel(cfg.Catalog, cfg.ParentID, cfg.PageSize, cfg.Timeout)
	m.CurrentScreen = ScreenOrder
	return m
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	switch m.CurrentScreen {
	case ScreenRecord:
		return m.RecordModel.Init()
	case ScreenOrder:
		return m.OrderModel.Init()
	default:
		return nil
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		// Propagate to all screens
		m.RecordModel.Width = msg.Width
		m.RecordModel.Height = msg.Height
		if m.OrderModel.wizard != nil {
			updated, _ := m.OrderModel.Update(msg)
			m.OrderModel = updated.(OrderModel)
		}
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			if m.CurrentScreen == ScreenOrder && !m.OrderModel.Closed {
				m.OrderModel.Wizard().Cancel()
			}
			return m, tea.Quit
		}

	case OpenOrderMsg:
		m.ParentID = msg.ParentID
		m.ParentLabel = msg.Label
		return m.transitionTo(ScreenOrder)

	case OrderClosedMsg:
		m.LastResult = msg.Result
		m.Cancelled = msg.Result == nil
		if msg.Result != nil && m.cfg.OnOrderCreated != nil {
			m.cfg.OnOrderCreated(m.ParentID, m.ParentLabel, msg.Result)
		}
		if m.Cancelled && m.hasRecord {
			return m.transitionTo(ScreenRecord)
		}
		return m.transitionTo(ScreenDone)
	}

	return m.updateCurrentScreen(msg)
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenRecord:
		updated, c := m.RecordModel.Update(msg)
		m.RecordModel = updated.(RecordModel)
		cmd = c

	case ScreenOrder:
		updated, c := m.OrderModel.Update(msg)
		m.OrderModel = updated.(OrderModel)
		cmd = c

	case ScreenDone:
		return m.handleDoneScreen(msg)
	}

	return m, cmd
}

// handleDoneScreen handles user input on the result screen
func (m AppModel) handleDoneScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.DoneKeys.Again):
		return m.transitionTo(ScreenOrder)
	case key.Matches(keyMsg, m.DoneKeys.Record):
		if m.hasRecord {
			return m.transitionTo(ScreenRecord)
		}
		return m, tea.Quit
	case key.Matches(keyMsg, m.DoneKeys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen) (tea.Model, tea.Cmd) {
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = screen

	switch screen {
	case ScreenOrder:
		m.OrderModel = NewOrderModel(m.cfg.Catalog, m.ParentID, m.cfg.PageSize, m.cfg.Timeout)
		updated, _ := m.OrderModel.Update(tea.WindowSizeMsg{Width: m.Width, Height: m.Height})
		m.OrderModel = updated.(OrderModel)
		return m, m.OrderModel.Init()
	case ScreenRecord:
		// the record is already loaded, reload only on request
		return m, nil
	}
	return m, nil
}

// View renders the current screen. Each screen draws its own frame.
func (m AppModel) View() string {
	switch m.CurrentScreen {
	case ScreenRecord:
		return m.RecordModel.View()
	case ScreenOrder:
		return m.OrderModel.View()
	case ScreenDone:
		return frame{
			Context: m.doneContext(),
			Body:    m.buildDoneContent(),
			Footer:  m.Help.View(m.DoneKeys),
			Width:   m.Width,
			Height:  m.Height,
		}.Render()
	default:
		return "Unknown screen"
	}
}

func (m AppModel) doneContext() string {
	if m.LastResult == nil {
		return "Order cancelled"
	}
	return "Order " + m.LastResult.OrderNumber
}

// buildDoneContent builds the result screen content
func (m AppModel) buildDoneContent() string {
	var b strings.Builder

	if m.LastResult == nil {
		b.WriteString(titleStyle.Render("Order cancelled"))
		b.WriteString("\n\n")
		b.WriteString(subtitleStyle.Render("No order was created."))
		return b.String()
	}

	b.WriteString(titleStyle.Render(ui.SuccessMarker + " Order Created"))
	b.WriteString("\n\n")
	lines := []string{fmt.Sprintf("Order number: %s", m.LastResult.OrderNumber)}
	if m.LastResult.OrderID != "" {
		lines = append(lines, fmt.Sprintf("Order id:     %s", m.LastResult.OrderID))
	}
	if m.ParentID != "" {
		parent := m.ParentID
		if m.ParentLabel != "" {
			parent = fmt.Sprintf("%s (%s)", m.ParentLabel, m.ParentID)
		}
		lines = append(lines, "Record:       "+parent)
	}
	b.WriteString(outcomeBox(ui.SuccessColor).Render(strings.Join(lines, "\n")))
	return b.String()
}
