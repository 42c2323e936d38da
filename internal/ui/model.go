package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/davidroman0O/firm-counter/internal/app"
)

// Presser receives button presses. *app.App implements it.
type Presser interface {
	Press(b app.Button)
}

// SnapshotMsg carries a new display state into the program.
type SnapshotMsg app.Snapshot

// Model renders a snapshot and forwards key presses as buttons.
type Model struct {
	presser  Presser
	snapshot app.Snapshot
	keys     keyMap
	help     help.Model
	styles   Styles
	width    int
	quitting bool
}

// New creates a model showing initial until the first SnapshotMsg arrives.
func New(presser Presser, initial app.Snapshot, styles Styles) Model {
	m := Model{
		presser: presser,
		keys:    defaultKeyMap(),
		help:    help.New(),
		styles:  styles,
	}
	m.apply(initial)
	return m
}

func (m *Model) apply(s app.Snapshot) {
	m.snapshot = s
	m.keys.Reset.SetEnabled(s.ResetVisible)
}

// Snapshot returns the state currently displayed.
func (m Model) Snapshot() app.Snapshot {
	return m.snapshot
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.apply(app.Snapshot(msg))
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Increment):
			m.presser.Press(app.IncrementButton)
		case key.Matches(msg, m.keys.Decrement):
			m.presser.Press(app.DecrementButton)
		case key.Matches(msg, m.keys.Reset):
			m.presser.Press(app.ResetButton)
		case key.Matches(msg, m.keys.Toggle):
			m.presser.Press(app.ToggleButton)
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	s := m.snapshot
	st := m.styles

	var b strings.Builder
	b.WriteString(st.Title.Render(fmt.Sprintf("Count currently at %d", s.Direct)))
	b.WriteString(" ")
	b.WriteString(st.Stream.Render(fmt.Sprintf("(stream: %d)", s.Reactive)))
	b.WriteString("\n\n")

	toggle := st.Button.Render("start auto incrementing")
	if s.Running {
		toggle = st.Running.Render("stop auto incrementing")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		toggle, "  ", st.Stream.Render("stream auto increment "+string(s.Label))))
	b.WriteString("\n")

	if s.ResetVisible {
		b.WriteString("\n")
		b.WriteString(st.Reset.Render(fmt.Sprintf("press r to reset count to %d", s.Initial)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(st.Footer.Render("Persists across restarts"))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return st.App.Render(b.String())
}
