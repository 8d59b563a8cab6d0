package placement

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguo/internal/app"
	pl "github.com/abhisek/linguo/internal/placement"
	"github.com/abhisek/linguo/internal/ui/layout"
	"github.com/abhisek/linguo/internal/ui/theme"
)

// ResultScreen shows the placed level and the skills it unlocked.
type ResultScreen struct {
	completion *pl.Completion
}

var _ app.Screen = (*ResultScreen)(nil)
var _ app.KeyHintProvider = (*ResultScreen)(nil)

// NewResultScreen creates the result screen.
func NewResultScreen(c *pl.Completion) *ResultScreen {
	return &ResultScreen{completion: c}
}

func (s *ResultScreen) Init() tea.Cmd {
	return nil
}

func (s *ResultScreen) Title() string {
	return "Placement Result"
}

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Enter", Description: "Done"}}
}

func (s *ResultScreen) Update(msg tea.Msg) (app.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "enter", "esc", "q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	c := s.completion
	var b strings.Builder

	b.WriteString(theme.Subtitle.Render("Your level"))
	b.WriteString("\n")
	b.WriteString(theme.Title.Render(fmt.Sprintf("%s · %s", c.Level, c.Level.DisplayName())))
	b.WriteString("\n\n")

	if len(c.Unlocked) == 0 {
		b.WriteString(theme.Hint.Render("No new skills unlocked."))
	} else {
		b.WriteString(theme.Body.Render(fmt.Sprintf("Unlocked %d skills:", len(c.Unlocked))))
		for _, id := range c.Unlocked {
			b.WriteString("\n  ")
			b.WriteString(theme.Correct.Render("✓ " + id))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Width(min(width-4, 64)).Render(b.String()))
}
