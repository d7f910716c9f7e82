package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/ftality/internal/engine"
)

// ReloadMsg delivers a rebuilt Config, typically from the rule-file
// watcher via tea.Program.Send.
type ReloadMsg struct {
	Config *engine.Config
}

// Model is the bubbletea model of the interactive screen.
//
// The session is only touched from Update, which bubbletea runs on a single
// goroutine, so reloads must arrive as ReloadMsg rather than by calling
// Session.Swap directly.
type Model struct {
	session  *engine.Session
	clock    engine.Clock
	renderer Renderer
	limit    int
	recent   []string
	width    int
	quitting bool
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithRecentLimit sets how many completed moves stay listed.
func WithRecentLimit(n int) ModelOption {
	return func(m *Model) {
		if n > 0 {
			m.limit = n
		}
	}
}

// WithRenderer adds a Renderer that is told about every consumed key, in
// addition to the screen itself.
func WithRenderer(r Renderer) ModelOption {
	return func(m *Model) {
		m.renderer = r
	}
}

// NewModel creates the interactive model over a session.
func NewModel(session *engine.Session, clock engine.Clock, opts ...ModelOption) Model {
	m := Model{
		session: session,
		clock:   clock,
		limit:   DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			return m, tea.Quit
		}
		tok, ok := KeyToken(msg)
		if !ok {
			return m, nil
		}
		outputs := m.session.Feed(tok, m.clock.Now())
		if len(outputs) > 0 {
			m.recent = pushRecent(m.recent, m.limit, outputs...)
		}
		if m.renderer != nil {
			if err := m.renderer.Render(m.session.Diagnostics(), tok, outputs); err != nil {
				return m, tea.Quit
			}
		}
		return m, nil

	case ReloadMsg:
		if msg.Config != nil {
			m.session.Swap(msg.Config)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return BuildView(m.session.Config(), m.session.State(), m.recent).Render(m.width)
}

// Recent returns the completed moves currently listed, oldest first.
func (m Model) Recent() []string {
	return append([]string(nil), m.recent...)
}
