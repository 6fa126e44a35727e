package training

import (
	"errors"
	"time"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/progress"
	"github.com/abhisek/cybersage/internal/session"
)

var (
	// ErrModuleLocked is returned when training is started on a module whose
	// dependencies are not all completed.
	ErrModuleLocked = errors.New("training: module is locked")

	// ErrNoActiveSession is returned by operations that need a running
	// attempt.
	ErrNoActiveSession = errors.New("training: no active session")

	// ErrStale is returned when an async result arrives after the attempt
	// or question it was for has been replaced. The result was discarded.
	ErrStale = errors.New("training: result is stale")

	// ErrNoSelection is returned by Submit when no option is given or
	// staged.
	ErrNoSelection = errors.New("training: no option selected")
)

// NextAction is what the learner is offered after a finished attempt.
type NextAction string

const (
	// NextAdvanceDifficulty restarts at the next harder tier.
	NextAdvanceDifficulty NextAction = "advance-difficulty"
	// NextRetry offers another attempt at the same tier.
	NextRetry NextAction = "retry"
	// NextMastered declares the module mastered: a perfect run at the
	// hardest tier.
	NextMastered NextAction = "mastered"
)

// Feedback describes a submitted answer.
type Feedback struct {
	QuestionID    string
	Selected      string
	Correct       bool
	CorrectOption string
	Explanation   string

	// PointsDelta is the ledger change applied for this answer.
	PointsDelta int
	Balance     int

	IsLast bool
}

// Hint is the result of a hint request.
type Hint struct {
	Text string

	// Charged is true when this call paid for the hint.
	Charged bool

	// Fallback is true when the hint source failed and a canned hint was
	// used.
	Fallback bool

	// Pending is true when another request for the same question is still
	// fetching.
	Pending bool
}

// Outcome is the result of a finished attempt.
type Outcome struct {
	Summary session.Summary

	// Practice is true for cross-module practice, which records no module
	// progression.
	Practice bool

	Passed        bool
	PassThreshold int
	Certificate   *progress.Certificate
	NewlyUnlocked []string

	Advanced       bool
	NextDifficulty catalog.Difficulty
	Next           NextAction

	Balance  int
	Fallback bool
}

// View is a render snapshot of the orchestrator.
type View struct {
	session.View

	Active   bool
	Practice bool
	Fallback bool

	// ModuleName is empty for practice.
	ModuleName string

	Remaining time.Duration
	Budget    time.Duration

	Points        int
	HintCost      int
	CanAffordHint bool
}
