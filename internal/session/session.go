package session

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/questions"
)

// Session is one quiz attempt. It is safe for concurrent use; the timer
// and async hint callbacks may touch it from other goroutines.
type Session struct {
	mu    sync.Mutex
	id    string
	clock func() time.Time

	state      State
	moduleID   string
	difficulty catalog.Difficulty
	questions  []questions.Question
	index      int
	log        []Answer
	selected   string

	hint    hintState
	hintGen uint64

	startedAt         time.Time
	endedAt           time.Time
	questionStartedAt time.Time
}

type hintState struct {
	text    string
	used    bool
	pending *HintTicket
}

// HintTicket identifies an outstanding hint fetch. A ticket goes stale
// once the question it was issued for is no longer active.
type HintTicket struct {
	index int
	gen   uint64
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.clock = now }
}

// WithID sets the session ID instead of a random UUID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// New creates a session in the NotStarted state.
func New(opts ...Option) *Session {
	s := &Session{clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ModuleID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moduleID
}

func (s *Session) Difficulty() catalog.Difficulty {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.difficulty
}

// Start begins the attempt with the given questions. An empty moduleID
// marks cross-module practice.
func (s *Session) Start(moduleID string, d catalog.Difficulty, qs []questions.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != NotStarted {
		return &InvalidStateError{Op: "start", State: s.state}
	}
	if len(qs) == 0 {
		return ErrEmptyQuestionSet
	}

	now := s.clock()
	s.moduleID = moduleID
	s.difficulty = d
	s.questions = slices.Clone(qs)
	s.index = 0
	s.log = nil
	s.selected = ""
	s.hint = hintState{}
	s.startedAt = now
	s.questionStartedAt = now
	s.state = InProgress
	return nil
}

// CurrentQuestion returns the active question. The bool is false when the
// session is not in progress or every question has been advanced past.
func (s *Session) CurrentQuestion() (questions.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.currentLocked()
	if q == nil {
		return questions.Question{}, false
	}
	return *q, true
}

func (s *Session) currentLocked() *questions.Question {
	if s.state != InProgress || s.index >= len(s.questions) {
		return nil
	}
	return &s.questions[s.index]
}

func (s *Session) answeredLocked() bool {
	return len(s.log) > s.index
}

// SelectOption stages an option for the current question. The value is
// not checked until SubmitAnswer.
func (s *Session) SelectOption(option string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentLocked() != nil && !s.answeredLocked() {
		s.selected = option
	}
}

// Selected returns the staged option.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SubmitAnswer logs option as the answer to the current question and
// reports whether it was correct.
func (s *Session) SubmitAnswer(option string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAnswerableLocked("submit"); err != nil {
		return false, err
	}

	q := &s.questions[s.index]
	correct := q.IsCorrect(option)
	s.appendLocked(Answer{QuestionID: q.ID, Selected: option, Correct: correct})
	s.selected = option
	return correct, nil
}

// TimeExpire logs a timeout for the current question. The entry is not
// correct and does not count as a wrong answer.
func (s *Session) TimeExpire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAnswerableLocked("time-expire"); err != nil {
		return err
	}
	s.appendLocked(Answer{QuestionID: s.questions[s.index].ID, TimedOut: true})
	return nil
}

func (s *Session) checkAnswerableLocked(op string) error {
	if s.state != InProgress {
		return &InvalidStateError{Op: op, State: s.state}
	}
	if s.index >= len(s.questions) {
		return &SequenceExhaustedError{Op: op, Index: s.index, Length: len(s.questions)}
	}
	if s.answeredLocked() {
		return &InvalidStateError{Op: op, State: s.state, Reason: "question already answered"}
	}
	return nil
}

func (s *Session) appendLocked(a Answer) {
	now := s.clock()
	a.HintUsed = s.hint.used
	a.At = now
	a.Elapsed = now.Sub(s.questionStartedAt)
	s.log = append(s.log, a)

	// A hint still in flight is no longer useful.
	s.hint.pending = nil
	s.hintGen++
}

// RequestHint asks for a hint on the current question. The first call
// consults authorize and, if it agrees, returns a ticket for the caller to
// fetch the text and pass to ResolveHint. Later calls for the same
// question return the resolved text (or the same pending ticket) without
// consulting authorize again.
func (s *Session) RequestHint(authorize func() bool) (string, *HintTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkAnswerableLocked("hint"); err != nil {
		return "", nil, err
	}
	if s.hint.used {
		return s.hint.text, s.hint.pending, nil
	}
	if authorize != nil && !authorize() {
		return "", nil, ErrHintNotAffordable
	}

	s.hint.used = true
	s.hint.pending = &HintTicket{index: s.index, gen: s.hintGen}
	return "", s.hint.pending, nil
}

// ResolveHint stores the fetched hint text. It returns false, leaving the
// session untouched, when the ticket is stale.
func (s *Session) ResolveHint(t *HintTicket, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t == nil || s.state != InProgress || t.index != s.index || t.gen != s.hintGen || s.hint.pending != t {
		return false
	}
	s.hint.text = text
	s.hint.pending = nil
	return true
}

// Hint returns the hint text for the current question and whether a hint
// was requested.
func (s *Session) Hint() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hint.text, s.hint.used
}

// Advance moves to the next question. The current question must have been
// answered or timed out. Reaching the end does not complete the session.
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InProgress {
		return &InvalidStateError{Op: "advance", State: s.state}
	}
	if s.index >= len(s.questions) {
		return &SequenceExhaustedError{Op: "advance", Index: s.index, Length: len(s.questions)}
	}
	if !s.answeredLocked() {
		return &InvalidStateError{Op: "advance", State: s.state, Reason: "current question not answered"}
	}

	s.index++
	s.selected = ""
	s.hint = hintState{}
	s.hintGen++
	s.questionStartedAt = s.clock()
	return nil
}

// Complete ends the attempt. Every question must have been advanced past.
func (s *Session) Complete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InProgress {
		return &InvalidStateError{Op: "complete", State: s.state}
	}
	if s.index != len(s.questions) {
		return &InvalidStateError{Op: "complete", State: s.state, Reason: "questions remain"}
	}

	s.state = Completed
	s.endedAt = s.clock()
	s.hint = hintState{}
	s.hintGen++
	return nil
}

// AtEnd reports whether every question has been advanced past.
func (s *Session) AtEnd() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == InProgress && s.index == len(s.questions)
}

// IsLastQuestion reports whether the active question is the final one.
func (s *Session) IsLastQuestion() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index == len(s.questions)-1
}

// Score derives the score from the answer log.
func (s *Session) Score() Score {
	s.mu.Lock()
	defer s.mu.Unlock()
	return scoreOf(s.log)
}

// Progress returns the share of questions advanced past, in percent.
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progressPercent(s.index, len(s.questions))
}

// Log returns a copy of the answer log.
func (s *Session) Log() []Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.log)
}

// Len returns the number of questions.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// Duration returns the time from start to completion, or to now while the
// session is in progress.
func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case NotStarted:
		return 0
	case Completed:
		return s.endedAt.Sub(s.startedAt)
	}
	return s.clock().Sub(s.startedAt)
}

// Summary returns the outcome of a completed session.
func (s *Session) Summary() (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Completed {
		return Summary{}, &InvalidStateError{Op: "summary", State: s.state}
	}
	return Summary{
		SessionID:  s.id,
		ModuleID:   s.moduleID,
		Difficulty: s.difficulty,
		Score:      scoreOf(s.log),
		Answers:    slices.Clone(s.log),
		Duration:   s.endedAt.Sub(s.startedAt),
	}, nil
}

// View returns a snapshot for rendering.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:          s.id,
		State:       s.state,
		ModuleID:    s.moduleID,
		Difficulty:  s.difficulty,
		Index:       s.index,
		Total:       len(s.questions),
		Selected:    s.selected,
		HintText:    s.hint.text,
		HintUsed:    s.hint.used,
		HintPending: s.hint.pending != nil,
		Progress:    progressPercent(s.index, len(s.questions)),
		Score:       scoreOf(s.log),
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
	}
	if q := s.currentLocked(); q != nil {
		cp := *q
		v.Question = &cp
		v.Answered = s.answeredLocked()
		if v.Answered {
			last := s.log[s.index]
			v.Last = &last
		}
	}
	return v
}
