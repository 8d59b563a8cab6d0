package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/linguo/internal/ui/theme"
)

// TextInput is a free-text answer field. After Submit it stops taking keys
// and shows a check or cross next to the answer until Reset.
type TextInput struct {
	Model textinput.Model

	graded  bool
	correct bool
}

// NewTextInput returns a focused input. A zero charLimit means no limit.
func NewTextInput(placeholder string, charLimit int) TextInput {
	m := textinput.New()
	m.Prompt = "› "
	m.Placeholder = placeholder
	m.CharLimit = charLimit
	m.Focus()
	return TextInput{Model: m}
}

func (t TextInput) Init() tea.Cmd { return t.Model.Focus() }

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.graded {
		return t, nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	if !t.graded {
		return t.Model.View()
	}
	mark := theme.Incorrect.Render("✗")
	if t.correct {
		mark = theme.Correct.Render("✓")
	}
	return t.Model.View() + " " + mark
}

func (t TextInput) Value() string { return t.Model.Value() }

// Submitted reports whether the current answer has been graded.
func (t TextInput) Submitted() bool { return t.graded }

// Submit freezes the input and records the grade shown beside it.
func (t *TextInput) Submit(correct bool) {
	t.graded, t.correct = true, correct
}

// Reset clears the answer for the next question.
func (t *TextInput) Reset() {
	t.Model.Reset()
	t.graded, t.correct = false, false
}
