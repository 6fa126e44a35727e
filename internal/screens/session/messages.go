package session

import (
	"time"

	"github.com/abhisek/cybersage/internal/training"
)

// sessionStartedMsg is sent when the question set has been fetched and the
// attempt is running.
type sessionStartedMsg struct {
	Err error
}

// timerTickMsg is sent every second to update the countdown.
type timerTickMsg time.Time

// answerResultMsg carries the result of a submitted answer.
type answerResultMsg struct {
	Feedback training.Feedback
	Err      error
}

// hintResultMsg carries the result of a hint request.
type hintResultMsg struct {
	Hint training.Hint
	Err  error
}

// sessionEndMsg is sent to trigger the finish flow.
type sessionEndMsg struct{}

// finishedMsg carries the outcome of a finished attempt.
type finishedMsg struct {
	Outcome training.Outcome
	Err     error
}
