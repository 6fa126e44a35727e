package session

import (
	"time"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/questions"
)

// View is a read-only snapshot of a session for rendering.
type View struct {
	ID         string
	State      State
	ModuleID   string
	Difficulty catalog.Difficulty

	Index int
	Total int

	// Question is nil once every question has been answered and advanced.
	Question *questions.Question
	Selected string
	Answered bool
	Last     *Answer

	HintText    string
	HintUsed    bool
	HintPending bool

	Progress float64
	Score    Score

	StartedAt time.Time
	EndedAt   time.Time
}

// Summary describes a finished session.
type Summary struct {
	SessionID  string
	ModuleID   string
	Difficulty catalog.Difficulty
	Score      Score
	Answers    []Answer
	Duration   time.Duration
}
