// Package tui renders the incident console as a terminal list UI.
// Fetches and status updates run as asynchronous commands; their
// results come back through the bubbletea message loop and errors are
// shown as a one-line notice in the status area.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/linnemanlabs/oncall/internal/incident"
	"github.com/linnemanlabs/oncall/internal/view"
)

// Service defines the console operations the TUI needs.
type Service interface {
	Refresh(ctx context.Context) error
	Acknowledge(ctx context.Context, id string) (incident.Incident, error)
	Resolve(ctx context.Context, id, note string) (incident.Incident, error)
}

type keyMap struct {
	Refresh     key.Binding
	Acknowledge key.Binding
	Resolve     key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Acknowledge: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "acknowledge")),
	Resolve:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "resolve")),
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	triggeredStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	acknowledgedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	resolvedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	noticeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	promptStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// item adapts an incident to the bubbles list item interface.
type item struct {
	in incident.Incident
}

func (i item) Title() string {
	return fmt.Sprintf("#%d %s %s", i.in.IncidentNumber, statusBadge(i.in.Status), i.in.Title)
}

func (i item) Description() string {
	return fmt.Sprintf("%s  %s  %s", incident.FormatCreatedAt(i.in.CreatedAt), urgencyLabel(i.in.Urgency), i.in.Summary)
}

func (i item) FilterValue() string { return i.in.Title }

func statusBadge(s incident.Status) string {
	switch s {
	case incident.StatusTriggered:
		return triggeredStyle.Render("[triggered]")
	case incident.StatusAcknowledged:
		return acknowledgedStyle.Render("[acknowledged]")
	case incident.StatusResolved:
		return resolvedStyle.Render("[resolved]")
	}
	return "[" + string(s) + "]"
}

func urgencyLabel(u string) string {
	if u == incident.UrgencyHigh {
		return triggeredStyle.Render("high")
	}
	return "low"
}

// fetchDoneMsg is sent when an asynchronous refresh completes.
type fetchDoneMsg struct {
	err error
}

// updateDoneMsg is sent when an asynchronous status update completes.
// On success the view already holds the merged canonical record.
type updateDoneMsg struct {
	id  string
	err error
}

// Model is the bubbletea model for the incident console.
type Model struct {
	list  list.Model
	note  textinput.Model
	svc   Service
	state *view.State
	keys  keyMap

	inflight  map[string]bool // incident ids with an update in flight
	notice    string
	noting    bool   // resolution note prompt active
	resolveID string // incident awaiting a resolution note
}

// NewModel creates the console model over the given service and
// caller-owned view state.
func NewModel(svc Service, state *view.State) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "PagerDuty incidents"
	l.SetShowStatusBar(false)

	note := textinput.New()
	note.Placeholder = "resolution note (enter to resolve, esc to cancel)"
	note.CharLimit = 256

	return Model{
		list:     l,
		note:     note,
		svc:      svc,
		state:    state,
		keys:     keys,
		inflight: make(map[string]bool),
	}
}

// Init triggers the initial incident fetch.
func (m Model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m Model) refreshCmd() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		return fetchDoneMsg{err: svc.Refresh(context.Background())}
	}
}

func (m Model) updateCmd(id string, target incident.Status, note string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		var err error
		switch target {
		case incident.StatusAcknowledged:
			_, err = svc.Acknowledge(context.Background(), id)
		case incident.StatusResolved:
			_, err = svc.Resolve(context.Background(), id, note)
		}
		return updateDoneMsg{id: id, err: err}
	}
}

// Update processes one message through the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case fetchDoneMsg:
		if msg.err != nil {
			// The view keeps its explicit load-error state; the list
			// stays as it was rather than going blank.
			m.notice = "failed to load incidents: " + msg.err.Error()
			return m, nil
		}
		m.notice = ""
		return m, m.list.SetItems(itemsFrom(m.state))

	case updateDoneMsg:
		delete(m.inflight, msg.id)
		if msg.err != nil {
			m.notice = msg.err.Error()
			return m, nil
		}
		m.notice = ""
		return m, m.list.SetItems(itemsFrom(m.state))

	case tea.KeyMsg:
		if m.noting {
			return m.updateNotePrompt(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refreshCmd()
		case key.Matches(msg, m.keys.Acknowledge):
			return m.startAcknowledge()
		case key.Matches(msg, m.keys.Resolve):
			return m.startResolvePrompt()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) startAcknowledge() (tea.Model, tea.Cmd) {
	sel, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.inflight[sel.ID] {
		m.notice = "update already in flight for " + sel.ID
		return m, nil
	}
	// Guard locally so an impossible action gives instant feedback
	// instead of a round trip; the service enforces the same table.
	if err := incident.CheckTransition(sel.Status, incident.StatusAcknowledged); err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.inflight[sel.ID] = true
	return m, m.updateCmd(sel.ID, incident.StatusAcknowledged, "")
}

func (m Model) startResolvePrompt() (tea.Model, tea.Cmd) {
	sel, ok := m.selected()
	if !ok {
		return m, nil
	}
	if m.inflight[sel.ID] {
		m.notice = "update already in flight for " + sel.ID
		return m, nil
	}
	if err := incident.CheckTransition(sel.Status, incident.StatusResolved); err != nil {
		m.notice = err.Error()
		return m, nil
	}
	m.noting = true
	m.resolveID = sel.ID
	m.note.SetValue("")
	m.note.Focus()
	return m, textinput.Blink
}

func (m Model) updateNotePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		id := m.resolveID
		note := m.note.Value()
		m.noting = false
		m.resolveID = ""
		m.note.Blur()
		m.inflight[id] = true
		return m, m.updateCmd(id, incident.StatusResolved, note)

	case tea.KeyEsc:
		m.noting = false
		m.resolveID = ""
		m.note.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.note, cmd = m.note.Update(msg)
	return m, cmd
}

func (m Model) selected() (incident.Incident, bool) {
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return incident.Incident{}, false
	}
	return it.in, true
}

// View renders the list plus the status area.
func (m Model) View() string {
	if m.noting {
		return m.list.View() + "\n" + promptStyle.Render("resolve "+m.resolveID) + " " + m.note.View()
	}
	s := m.list.View()
	if m.notice != "" {
		s += "\n" + noticeStyle.Render(m.notice)
	}
	return s
}

func itemsFrom(state *view.State) []list.Item {
	incidents := state.List()
	items := make([]list.Item, 0, len(incidents))
	for _, in := range incidents {
		items = append(items, item{in: in})
	}
	return items
}
