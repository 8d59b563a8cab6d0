package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

type stubScreen struct {
	title   string
	initRan bool
	got     []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd {
	s.initRan = true
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}

func (s *stubScreen) View(int, int) string { return "content of " + s.title }
func (s *stubScreen) Title() string        { return s.title }

type pingMsg struct{}

func TestPushAndPop(t *testing.T) {
	first := &stubScreen{title: "first"}
	m := NewModel(first, nil)

	second := &stubScreen{title: "second"}
	m.Update(PushMsg{Screen: second})
	if m.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", m.Depth())
	}
	if m.Active().Title() != "second" {
		t.Errorf("Active() = %q, want second", m.Active().Title())
	}
	if !second.initRan {
		t.Error("Init() did not run on pushed screen")
	}

	m.Update(PopMsg{})
	m.Update(PopMsg{})
	if m.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", m.Depth())
	}
	if m.Active().Title() != "first" {
		t.Errorf("Active() = %q, want first", m.Active().Title())
	}
}

func TestUpdateForwardsToActive(t *testing.T) {
	first := &stubScreen{title: "first"}
	second := &stubScreen{title: "second"}
	m := NewModel(first, nil)
	m.Update(PushMsg{Screen: second})

	m.Update(pingMsg{})
	if len(second.got) != 1 {
		t.Errorf("active screen got %d messages, want 1", len(second.got))
	}
	if len(first.got) != 0 {
		t.Errorf("covered screen got %d messages, want 0", len(first.got))
	}
}

func TestViewShowsStatus(t *testing.T) {
	m := NewModel(&stubScreen{title: "Placement"}, func() (int, int) { return 3, 12 })
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	out := m.render()
	for _, want := range []string{"Placement", "♥ 3", "🔥 12", "content of Placement"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestViewTooSmall(t *testing.T) {
	m := NewModel(&stubScreen{title: "x"}, nil)
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	if out := m.render(); !strings.Contains(out, "Terminal too small") {
		t.Errorf("View() = %q, want size warning", out)
	}
}
