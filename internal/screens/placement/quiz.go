// Package placement implements the interactive placement quiz screens.
package placement

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/linguo/internal/app"
	pl "github.com/abhisek/linguo/internal/placement"
	"github.com/abhisek/linguo/internal/store"
	"github.com/abhisek/linguo/internal/ui/components"
	"github.com/abhisek/linguo/internal/ui/layout"
	"github.com/abhisek/linguo/internal/ui/theme"
)

// Quiz is the placement service as seen by the screen.
type Quiz interface {
	NextQuestion(ctx context.Context, sessionID string) (*store.Question, error)
	Answer(ctx context.Context, sessionID, questionID, userAnswer string) (*pl.AnswerResult, error)
	Complete(ctx context.Context, sessionID string) (*pl.Completion, error)
}

// Phase is where the quiz screen is in its question loop.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseAsking
	PhaseFeedback
	PhaseFinishing
	PhaseError
)

// QuizScreen asks placement questions until the session ends or the
// learner finishes early.
type QuizScreen struct {
	quiz      Quiz
	sessionID string

	phase    Phase
	question *store.Question
	input    components.TextInput
	last     *pl.AnswerResult
	err      error
}

var _ app.Screen = (*QuizScreen)(nil)
var _ app.KeyHintProvider = (*QuizScreen)(nil)

// NewQuizScreen creates the quiz screen for an already started session.
func NewQuizScreen(quiz Quiz, sessionID string) *QuizScreen {
	return &QuizScreen{
		quiz:      quiz,
		sessionID: sessionID,
		input:     components.NewTextInput("Type your answer...", 120),
	}
}

// Phase returns the current phase.
func (s *QuizScreen) Phase() Phase {
	return s.phase
}

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(s.input.Init(), s.loadQuestion())
}

func (s *QuizScreen) Title() string {
	return "Placement"
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case PhaseAsking:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Finish now"},
		}
	case PhaseFeedback:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Next"},
			{Key: "Esc", Description: "Finish now"},
		}
	case PhaseError:
		return []layout.KeyHint{{Key: "Any key", Description: "Quit"}}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

func (s *QuizScreen) Update(msg tea.Msg) (app.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionLoadedMsg:
		if msg.Err != nil {
			return s.fail(msg.Err)
		}
		if msg.Question == nil {
			return s.finish()
		}
		s.question = msg.Question
		s.input.Reset()
		s.phase = PhaseAsking
		return s, nil

	case answeredMsg:
		if msg.Err != nil {
			return s.fail(msg.Err)
		}
		s.last = msg.Result
		s.input.Submit(msg.Result.Correct)
		if msg.Result.Completion != nil {
			return s, showResult(msg.Result.Completion)
		}
		s.phase = PhaseFeedback
		return s, nil

	case completedMsg:
		if msg.Err != nil {
			return s.fail(msg.Err)
		}
		return s, showResult(msg.Completion)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.phase == PhaseAsking {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (app.Screen, tea.Cmd) {
	key := msg.String()

	switch s.phase {
	case PhaseError:
		return s, tea.Quit

	case PhaseAsking:
		switch key {
		case "esc":
			return s.finish()
		case "enter":
			ans := strings.TrimSpace(s.input.Value())
			if ans == "" {
				return s, nil
			}
			s.phase = PhaseLoading
			return s, s.submit(s.question.ID, ans)
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case PhaseFeedback:
		switch key {
		case "esc":
			return s.finish()
		case "enter", " ":
			s.phase = PhaseLoading
			return s, s.loadQuestion()
		}
	}
	return s, nil
}

func (s *QuizScreen) finish() (app.Screen, tea.Cmd) {
	s.phase = PhaseFinishing
	return s, s.complete()
}

func (s *QuizScreen) fail(err error) (app.Screen, tea.Cmd) {
	s.err = err
	s.phase = PhaseError
	return s, nil
}

func (s *QuizScreen) loadQuestion() tea.Cmd {
	quiz, id := s.quiz, s.sessionID
	return func() tea.Msg {
		q, err := quiz.NextQuestion(context.Background(), id)
		return questionLoadedMsg{Question: q, Err: err}
	}
}

func (s *QuizScreen) submit(questionID, ans string) tea.Cmd {
	quiz, id := s.quiz, s.sessionID
	return func() tea.Msg {
		res, err := quiz.Answer(context.Background(), id, questionID, ans)
		return answeredMsg{Result: res, Err: err}
	}
}

func (s *QuizScreen) complete() tea.Cmd {
	quiz, id := s.quiz, s.sessionID
	return func() tea.Msg {
		c, err := quiz.Complete(context.Background(), id)
		if errors.Is(err, pl.ErrSessionCompleted) {
			err = fmt.Errorf("this placement session has already finished")
		}
		return completedMsg{Completion: c, Err: err}
	}
}

func showResult(c *pl.Completion) tea.Cmd {
	return func() tea.Msg {
		return app.PushMsg{Screen: NewResultScreen(c)}
	}
}

func (s *QuizScreen) View(width, height int) string {
	var b strings.Builder

	switch s.phase {
	case PhaseError:
		b.WriteString(theme.Incorrect.Render("Something went wrong"))
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Render(s.err.Error()))

	case PhaseLoading, PhaseFinishing:
		b.WriteString(theme.Hint.Render("One moment..."))

	default:
		if s.last != nil && s.last.Session != nil {
			sess := s.last.Session
			b.WriteString(theme.Subtitle.Render(fmt.Sprintf(
				"Question %d of at most %d  ·  %d correct", sess.TotalQuestions, pl.MaxQuestions, sess.CorrectCount)))
			b.WriteString("\n\n")
		}
		if s.question != nil {
			b.WriteString(theme.Title.Render(s.question.Prompt))
			b.WriteString("\n\n")
		}
		b.WriteString(s.input.View())

		if s.phase == PhaseFeedback && s.last != nil {
			b.WriteString("\n\n")
			if s.last.Correct {
				b.WriteString(theme.Correct.Render("Correct!"))
			} else {
				b.WriteString(theme.Incorrect.Render("Not quite. Answer: " + primaryAnswer(s.question)))
			}
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Card.Width(min(width-4, 64)).Render(b.String()))
}

// primaryAnswer returns the first accepted alternative of a question.
func primaryAnswer(q *store.Question) string {
	if q == nil {
		return ""
	}
	first, _, _ := strings.Cut(q.CorrectAnswer, "|")
	return strings.TrimSpace(first)
}
