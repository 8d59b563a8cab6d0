// Package app hosts the interactive terminal UI: a stack of screens
// framed by a header that shows the learner's hearts and streak.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguo/internal/ui/layout"
)

// Screen is one page of the terminal UI.
type Screen interface {
	// Init returns an initial command when the screen is pushed.
	Init() tea.Cmd

	// Update handles messages and returns the updated screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content, excluding header and footer.
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is implemented by screens with custom footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// PushMsg asks the model to push a screen on top of the stack.
type PushMsg struct {
	Screen Screen
}

// PopMsg asks the model to drop the top screen. The last screen is never
// popped.
type PopMsg struct{}

// Status supplies the header counters. It is called on every render and
// must not block.
type Status func() (hearts, streak int)

// Model is the root Bubble Tea model.
type Model struct {
	stack  []Screen
	status Status
	width  int
	height int
}

// NewModel creates a model showing initial. A nil status shows zeros.
func NewModel(initial Screen, status Status) *Model {
	return &Model{stack: []Screen{initial}, status: status}
}

// Active returns the top screen.
func (m *Model) Active() Screen {
	return m.stack[len(m.stack)-1]
}

// Depth returns the number of stacked screens.
func (m *Model) Depth() int {
	return len(m.stack)
}

func (m *Model) Init() tea.Cmd {
	return m.Active().Init()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case PushMsg:
		m.stack = append(m.stack, msg.Screen)
		return m, msg.Screen.Init()

	case PopMsg:
		if len(m.stack) > 1 {
			m.stack = m.stack[:len(m.stack)-1]
		}
		return m, nil
	}

	updated, cmd := m.Active().Update(msg)
	m.stack[len(m.stack)-1] = updated
	return m, cmd
}

func (m *Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

func (m *Model) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	var hearts, streak int
	if m.status != nil {
		hearts, streak = m.status()
	}

	active := m.Active()
	header := layout.RenderHeader(active.Title(), hearts, streak, m.width)

	hints := []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	if p, ok := active.(KeyHintProvider); ok {
		hints = p.KeyHints()
	}
	footer := layout.RenderFooter(hints, m.width)

	contentHeight := max(0, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
	return layout.RenderFrame(header, active.View(m.width, contentHeight), footer, m.width, m.height)
}

// Run starts the program and blocks until it exits.
func Run(initial Screen, status Status) error {
	p := tea.NewProgram(NewModel(initial, status))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
