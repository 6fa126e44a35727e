package session

import (
	"errors"
	"fmt"
	"time"
)

// State is the lifecycle phase of a quiz session. Transitions only move
// forward: NotStarted, InProgress, Completed.
type State int

const (
	NotStarted State = iota
	InProgress
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case InProgress:
		return "in-progress"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// InvalidStateError is returned when an operation is illegal in the
// session's current state. It indicates a caller bug.
type InvalidStateError struct {
	Op     string
	State  State
	Reason string
}

func (e *InvalidStateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("session: %s not allowed while %s: %s", e.Op, e.State, e.Reason)
	}
	return fmt.Sprintf("session: %s not allowed while %s", e.Op, e.State)
}

// SequenceExhaustedError is returned when an operation targets a question
// past the end of the sequence.
type SequenceExhaustedError struct {
	Op     string
	Index  int
	Length int
}

func (e *SequenceExhaustedError) Error() string {
	return fmt.Sprintf("session: %s at index %d of %d questions", e.Op, e.Index, e.Length)
}

var (
	// ErrEmptyQuestionSet is returned by Start when no questions are given.
	ErrEmptyQuestionSet = errors.New("session: empty question set")

	// ErrHintNotAffordable is returned by RequestHint when the budget
	// check refuses.
	ErrHintNotAffordable = errors.New("session: hint not affordable")
)

// Answer is one entry of the answer log.
type Answer struct {
	QuestionID string
	Selected   string
	Correct    bool

	// TimedOut marks an entry logged by TimeExpire. Such entries are never
	// correct and are not counted as wrong.
	TimedOut bool

	HintUsed bool
	At       time.Time
	Elapsed  time.Duration
}
