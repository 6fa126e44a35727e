package session

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/notify"
	"github.com/abhisek/cybersage/internal/router"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/screens/summary"
	sess "github.com/abhisek/cybersage/internal/session"
	"github.com/abhisek/cybersage/internal/training"
	"github.com/abhisek/cybersage/internal/ui/components"
	"github.com/abhisek/cybersage/internal/ui/layout"
)

// SessionScreen runs one quiz attempt through the orchestrator.
type SessionScreen struct {
	orch  *training.Orchestrator
	start func(ctx context.Context) error
	title string

	view     training.View
	started  bool
	index    int
	choices  components.MultiChoice
	feedback *training.Feedback
	timedOut bool

	hintText    string
	hintLoading bool
	notice      string

	submitting         bool
	finishing          bool
	showingQuitConfirm bool
	errMsg             string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.EscapeHandler = (*SessionScreen)(nil)

// NewModule creates a screen for an attempt at moduleID on its active
// difficulty.
func NewModule(orch *training.Orchestrator, moduleID string) *SessionScreen {
	title := "Training"
	if m, err := orch.Catalog().Get(moduleID); err == nil {
		title = m.Name
	}
	return newScreen(orch, title, func(ctx context.Context) error {
		return orch.Start(ctx, moduleID)
	})
}

// NewPractice creates a screen for cross-module practice at d.
func NewPractice(orch *training.Orchestrator, d catalog.Difficulty) *SessionScreen {
	return newScreen(orch, "Practice", func(ctx context.Context) error {
		return orch.StartPractice(ctx, d)
	})
}

// newRestart creates a screen that repeats the latest attempt's target.
func newRestart(orch *training.Orchestrator, title string) *SessionScreen {
	return newScreen(orch, title, orch.Restart)
}

func newScreen(orch *training.Orchestrator, title string, start func(context.Context) error) *SessionScreen {
	return &SessionScreen{orch: orch, title: title, start: start, index: -1}
}

func (s *SessionScreen) Init() tea.Cmd {
	start := s.start
	return func() tea.Msg {
		return sessionStartedMsg{Err: start(context.Background())}
	}
}

func (s *SessionScreen) Title() string {
	return s.title
}

// HandlesEscape keeps the app from popping a running quiz.
func (s *SessionScreen) HandlesEscape() bool {
	return s.errMsg == ""
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if !s.started {
		return nil
	}
	if s.showingQuitConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Quit attempt"},
			{Key: "N", Description: "Keep going"},
		}
	}
	if s.answered() {
		return []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓/A-D", Description: "Choose"},
		{Key: "Enter", Description: "Submit"},
		{Key: "H", Description: "Hint"},
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *SessionScreen) View(width, height int) string {
	if s.errMsg != "" {
		return renderError(width, height, s.errMsg)
	}
	if !s.started {
		return renderLoading(width, height)
	}
	if s.showingQuitConfirm {
		return renderQuitConfirm(width, height)
	}
	return s.renderQuestionView(width, height)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionStartedMsg:
		return s.handleStarted(msg)

	case timerTickMsg:
		return s.handleTimerTick()

	case screen.ProgressEventMsg:
		if msg.Event.Kind == notify.Timeout {
			s.sync()
		}
		return s, nil

	case answerResultMsg:
		return s.handleAnswer(msg)

	case hintResultMsg:
		return s.handleHint(msg)

	case sessionEndMsg:
		return s.handleSessionEnd()

	case finishedMsg:
		return s.handleFinished(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleStarted(msg sessionStartedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, training.ErrStale) {
			return s, nil
		}
		s.errMsg = startErrorText(msg.Err)
		return s, nil
	}
	s.started = true
	s.sync()
	return s, tickCmd()
}

func startErrorText(err error) string {
	switch {
	case errors.Is(err, training.ErrModuleLocked):
		return "This module is locked. Complete its prerequisites first."
	case errors.Is(err, catalog.ErrNotFound):
		return "Unknown module."
	}
	return err.Error()
}

func (s *SessionScreen) handleTimerTick() (screen.Screen, tea.Cmd) {
	if !s.started || s.finishing {
		return s, nil
	}
	s.sync()
	return s, tickCmd()
}

// sync refreshes the render snapshot and resets per-question state when
// the question changes. A countdown expiry shows up as a timed-out answer.
func (s *SessionScreen) sync() {
	s.view = s.orch.View()
	if !s.view.Active {
		return
	}
	if s.view.Index != s.index && s.view.Question != nil {
		s.index = s.view.Index
		s.choices = components.NewMultiChoice(s.view.Question.Options)
		s.feedback = nil
		s.timedOut = false
		s.hintText = s.view.HintText
		s.hintLoading = false
		s.notice = ""
	}
	if s.feedback == nil && !s.timedOut && s.view.Answered && s.view.Last != nil && s.view.Last.TimedOut {
		s.timedOut = true
		if s.view.Question != nil {
			s.choices.Reveal("", s.view.Question.Correct)
		}
	}
}

// answered reports whether the current question is waiting for the
// learner to continue.
func (s *SessionScreen) answered() bool {
	return s.feedback != nil || s.timedOut
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Error state: any key goes back.
	if s.errMsg != "" {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if !s.started {
		// Leaving while questions load discards the pending fetch.
		if key == "esc" {
			s.orch.Abandon(context.Background())
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}
	if s.finishing {
		return s, nil
	}

	if s.showingQuitConfirm {
		switch key {
		case "y", "Y":
			s.showingQuitConfirm = false
			s.finishing = true
			s.orch.Abandon(context.Background())
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.showingQuitConfirm = false
		}
		return s, nil
	}

	if key == "esc" {
		s.showingQuitConfirm = true
		return s, nil
	}

	if s.answered() {
		return s.advance()
	}
	if s.submitting {
		return s, nil
	}

	switch key {
	case "enter":
		return s.submitAnswer(s.choices.Value())
	case "h", "H":
		return s.requestHint()
	}

	var cmd tea.Cmd
	s.choices, cmd = s.choices.Update(msg)
	_ = s.orch.SelectOption(s.choices.Value())
	return s, cmd
}

// submitAnswer sends option to the orchestrator.
func (s *SessionScreen) submitAnswer(option string) (screen.Screen, tea.Cmd) {
	if option == "" {
		return s, nil
	}
	s.submitting = true
	orch := s.orch
	return s, func() tea.Msg {
		fb, err := orch.Submit(context.Background(), option)
		return answerResultMsg{Feedback: fb, Err: err}
	}
}

func (s *SessionScreen) handleAnswer(msg answerResultMsg) (screen.Screen, tea.Cmd) {
	s.submitting = false
	if msg.Err != nil {
		// The countdown may have expired the question first.
		s.sync()
		if !s.answered() {
			s.notice = msg.Err.Error()
		}
		return s, nil
	}
	fb := msg.Feedback
	s.feedback = &fb
	s.choices.Reveal(fb.Selected, fb.CorrectOption)
	s.view = s.orch.View()
	return s, nil
}

func (s *SessionScreen) requestHint() (screen.Screen, tea.Cmd) {
	if s.hintLoading || s.hintText != "" {
		return s, nil
	}
	s.hintLoading = true
	s.notice = ""
	orch := s.orch
	return s, func() tea.Msg {
		h, err := orch.RequestHint(context.Background())
		return hintResultMsg{Hint: h, Err: err}
	}
}

func (s *SessionScreen) handleHint(msg hintResultMsg) (screen.Screen, tea.Cmd) {
	s.hintLoading = false
	switch {
	case errors.Is(msg.Err, training.ErrStale):
		return s, nil
	case errors.Is(msg.Err, sess.ErrHintNotAffordable):
		s.notice = notify.MsgNoHintFunds
		return s, nil
	case msg.Err != nil:
		s.notice = msg.Err.Error()
		return s, nil
	}
	if msg.Hint.Pending {
		s.hintLoading = true
		return s, nil
	}
	s.hintText = msg.Hint.Text
	s.view = s.orch.View()
	return s, nil
}

// advance moves to the next question or ends the attempt.
func (s *SessionScreen) advance() (screen.Screen, tea.Cmd) {
	if err := s.orch.Advance(); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.sync()
	if s.view.Question == nil {
		return s, func() tea.Msg { return sessionEndMsg{} }
	}
	return s, nil
}

func (s *SessionScreen) handleSessionEnd() (screen.Screen, tea.Cmd) {
	if s.finishing {
		return s, nil
	}
	s.finishing = true
	orch := s.orch
	return s, func() tea.Msg {
		out, err := orch.Finish(context.Background())
		return finishedMsg{Outcome: out, Err: err}
	}
}

func (s *SessionScreen) handleFinished(msg finishedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	orch, title := s.orch, s.title
	next := func() screen.Screen { return newRestart(orch, title) }
	sum := summary.New(msg.Outcome, orch.Catalog(), next)
	return s, func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: sum}
	}
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
