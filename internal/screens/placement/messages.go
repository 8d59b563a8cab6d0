package placement

import (
	pl "github.com/abhisek/linguo/internal/placement"
	"github.com/abhisek/linguo/internal/store"
)

// questionLoadedMsg carries the next question. A nil Question means the
// session has nothing left to ask.
type questionLoadedMsg struct {
	Question *store.Question
	Err      error
}

// answeredMsg carries the graded result of the current question.
type answeredMsg struct {
	Result *pl.AnswerResult
	Err    error
}

// completedMsg is sent once the session has been finished and skills unlocked.
type completedMsg struct {
	Completion *pl.Completion
	Err        error
}
