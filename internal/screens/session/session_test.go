package session

import (
	"slices"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/ledger"
	"github.com/abhisek/cybersage/internal/notify"
	"github.com/abhisek/cybersage/internal/progress"
	"github.com/abhisek/cybersage/internal/questions"
	"github.com/abhisek/cybersage/internal/router"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/screens/summary"
	sess "github.com/abhisek/cybersage/internal/session"
	"github.com/abhisek/cybersage/internal/training"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func testOrchestrator(t *testing.T) (*training.Orchestrator, *sess.ManualScheduler) {
	t.Helper()
	sched := &sess.ManualScheduler{}
	o := training.New(training.Deps{
		Tracker:   progress.NewTracker(catalog.Default(), nil),
		Ledger:    ledger.New(nil),
		Source:    questions.MustStaticBank(),
		Scheduler: sched,
	})
	return o, sched
}

// startScreen runs Init and feeds the start result back.
func startScreen(t *testing.T, s *SessionScreen) {
	t.Helper()
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("Init returned no command")
	}
	s.Update(cmd())
	if !s.started {
		t.Fatalf("start failed: %s", s.errMsg)
	}
}

// run executes cmd and feeds its message back into the screen.
func run(s *SessionScreen, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	_, next := s.Update(cmd())
	return next
}

func correctKey(t *testing.T, s *SessionScreen) rune {
	t.Helper()
	q := s.view.Question
	if q == nil {
		t.Fatal("no current question")
	}
	i := slices.Index(q.Options, q.Correct)
	if i < 0 {
		t.Fatalf("correct answer %q not among options", q.Correct)
	}
	return rune('1' + i)
}

func wrongKey(t *testing.T, s *SessionScreen) rune {
	t.Helper()
	q := s.view.Question
	for i, opt := range q.Options {
		if opt != q.Correct {
			return rune('1' + i)
		}
	}
	t.Fatal("no wrong option")
	return 0
}

func expectView(t *testing.T, view string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(view, w) {
			t.Errorf("view missing %q", w)
		}
	}
}

func expectBalance(t *testing.T, o *training.Orchestrator, want int) {
	t.Helper()
	if got := o.Ledger().Balance(); got != want {
		t.Errorf("balance = %d, want %d", got, want)
	}
}

func TestSessionScreen_StartShowsFirstQuestion(t *testing.T) {
	o, _ := testOrchestrator(t)
	s := NewModule(o, catalog.DigitalArrest)
	if s.Title() != "Digital Arrest" {
		t.Errorf("Title = %q, want Digital Arrest", s.Title())
	}

	startScreen(t, s)
	if s.index != 0 {
		t.Errorf("index = %d, want 0", s.index)
	}
	if len(s.choices.Options) == 0 {
		t.Error("no options shown")
	}

	expectView(t, s.View(100, 30), "Q 1/5", "Digital Arrest · Easy")
}

func TestSessionScreen_LockedModule(t *testing.T) {
	o, _ := testOrchestrator(t)
	s := NewModule(o, catalog.AccountSecurity)
	s.Update(s.Init()())

	if s.started {
		t.Fatal("locked module should not start")
	}
	if !strings.Contains(s.errMsg, "locked") {
		t.Errorf("errMsg = %q, want a lock message", s.errMsg)
	}

	_, cmd := s.Update(keyPress('x'))
	if cmd == nil {
		t.Fatal("any key should go back")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("got %T, want PopScreenMsg", cmd())
	}
}

func TestSessionScreen_CorrectAnswer(t *testing.T) {
	o, _ := testOrchestrator(t)
	s := NewModule(o, catalog.DigitalArrest)
	startScreen(t, s)

	s.Update(keyPress(correctKey(t, s)))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("Enter should submit")
	}
	run(s, cmd)

	if s.feedback == nil {
		t.Fatal("no feedback after submit")
	}
	if !s.feedback.Correct {
		t.Error("feedback should be correct")
	}
	if s.feedback.PointsDelta != ledger.CorrectAnswerPoints {
		t.Errorf("PointsDelta = %d, want %d", s.feedback.PointsDelta, ledger.CorrectAnswerPoints)
	}
	expectBalance(t, o, 15)
	expectView(t, s.View(100, 30), "Correct!")

	// Any key moves to the next question.
	s.Update(keyPress(' '))
	if s.feedback != nil {
		t.Error("feedback should clear on advance")
	}
	if s.index != 1 {
		t.Errorf("index = %d, want 1", s.index)
	}
}

func TestSessionScreen_WrongAnswerShowsCorrectOption(t *testing.T) {
	o, _ := testOrchestrator(t)
	s := NewModule(o, catalog.DigitalArrest)
	startScreen(t, s)

	s.Update(keyPress(wrongKey(t, s)))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	run(s, cmd)

	if s.feedback == nil {
		t.Fatal("no feedback after submit")
	}
	if s.feedback.Correct {
		t.Error("feedback should be incorrect")
	}
	expectBalance(t, o, 9)
	expectView(t, s.View(120, 30), "Not quite", "-1 point")
}

func TestSessionScreen_Timeout(t *testing.T) {
	o, sched := testOrchestrator(t)
	s := NewModule(o, catalog.DigitalArrest)
	startScreen(t, s)

	sched.Advance(catalog.Easy.TimeLimit())
	s.Update(screen.ProgressEventMsg{Event: notify.Event{Kind: notify.Timeout}})

	if !s.timedOut {
		t.Fatal("screen should show the timeout")
	}
	// Timeouts cost nothing.
	expectBalance(t, o, 10)
	expectView(t, s.View(100, 30), "Time's up!")

	// Any key moves on.
	s.Update(keyPress(' '))
	if s.timedOut {
		t.Error("timeout should clear on advance")
	}
	if s.index != 1 {
		t.Errorf("index = %d, want 1", s.index)
	}
}

func TestSessionScreen_Hint(t *testing.T) {
	o, _ := testOrchestrator(t)
	s := NewModule(o, catalog.DigitalArrest)
	startScreen(t, s)

	_, cmd := s.Update(keyPress('h'))
	if cmd == nil {
		t.Fatal("h should request a hint")
	}
	if !s.hintLoading {
		t.Error("hint should be loading")
	}
	run(s, cmd)

	if s.hintLoading {
		t.Error("hint still loading after result")
	}
	if s.hintText == "" {
		t.Error("no hint text")
	}
	expectBalance(t, o, 10-ledger.DefaultHintCost)

	// A second request for the same question is ignored.
	if _, cmd = s.Update(keyPress('h')); cmd != nil {
		t.Error("second hint request should be ignored")
	}
}

func TestSessionScreen_HintNotAffordable(t *testing.T) {
	sched := &sess.ManualScheduler{}
	o := training.New(training.Deps{
		Tracker:   progress.NewTracker(catalog.Default(), nil),
		Ledger:    ledger.New(nil, ledger.WithStartingPoints(2)),
		Source:    questions.MustStaticBank(),
		Scheduler: sched,
	})
	s := NewModule(o, catalog.DigitalArrest)
	startScreen(t, s)

	_, cmd := s.Update(keyPress('h'))
	run(s, cmd)

	if s.hintText != "" {
		t.Errorf("hintText = %q, want empty", s.hintText)
	}
	if s.notice != notify.MsgNoHintFunds {
		t.Errorf("notice = %q, want %q", s.notice, notify.MsgNoHintFunds)
	}
	expectBalance(t, o, 2)
}

func TestSessionScreen_QuitConfirm(t *testing.T) {
	o, _ := testOrchestrator(t)
	s := NewModule(o, catalog.DigitalArrest)
	startScreen(t, s)
	if !s.HandlesEscape() {
		t.Fatal("a running quiz should handle Esc")
	}

	s.Update(specialKey(tea.KeyEscape))
	if !s.showingQuitConfirm {
		t.Fatal("Esc should ask for confirmation")
	}
	expectView(t, s.View(100, 30), "Quit this attempt?")

	s.Update(keyPress('n'))
	if s.showingQuitConfirm {
		t.Error("n should dismiss the confirmation")
	}
	if !o.View().Active {
		t.Error("attempt should still be running")
	}

	s.Update(specialKey(tea.KeyEscape))
	_, cmd := s.Update(keyPress('y'))
	if cmd == nil {
		t.Fatal("y should leave the quiz")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("got %T, want PopScreenMsg", cmd())
	}
	if o.View().Active {
		t.Error("attempt should be abandoned")
	}
}

func TestSessionScreen_FinishShowsSummary(t *testing.T) {
	o, _ := testOrchestrator(t)
	s := NewModule(o, catalog.DigitalArrest)
	startScreen(t, s)

	var cmd tea.Cmd
	for i := 0; i < 5; i++ {
		s.Update(keyPress(correctKey(t, s)))
		_, submit := s.Update(specialKey(tea.KeyEnter))
		run(s, submit)
		if s.feedback == nil {
			t.Fatalf("question %d: no feedback", i)
		}
		_, cmd = s.Update(keyPress(' '))
	}

	// The last advance ends the attempt.
	if cmd == nil {
		t.Fatal("last advance should finish the attempt")
	}
	finish := run(s, cmd)
	if finish == nil {
		t.Fatal("expected the finish command")
	}
	_, replace := s.Update(finish())
	if replace == nil {
		t.Fatal("expected the summary replacement")
	}

	msg, ok := replace().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("got %T, want ReplaceScreenMsg", replace())
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("expected summary screen, got %T", msg.Screen)
	}

	done, err := o.Tracker().IsCompleted(catalog.DigitalArrest)
	if err != nil {
		t.Fatalf("IsCompleted: %v", err)
	}
	if !done {
		t.Error("module should be completed")
	}
	expectBalance(t, o, 10+5*ledger.CorrectAnswerPoints)
}

func TestSessionScreen_Practice(t *testing.T) {
	o, _ := testOrchestrator(t)
	s := NewPractice(o, catalog.Medium)
	startScreen(t, s)

	if !s.view.Practice {
		t.Error("view should be a practice attempt")
	}
	expectView(t, s.View(100, 30), "Practice · Medium")
}

func TestSessionScreen_KeyHints(t *testing.T) {
	o, _ := testOrchestrator(t)
	s := NewModule(o, catalog.DigitalArrest)
	if s.KeyHints() != nil {
		t.Error("no hints before the quiz starts")
	}

	startScreen(t, s)
	if n := len(s.KeyHints()); n != 4 {
		t.Errorf("KeyHints length = %d, want 4", n)
	}

	s.Update(specialKey(tea.KeyEscape))
	if n := len(s.KeyHints()); n != 2 {
		t.Errorf("KeyHints length = %d in the quit prompt, want 2", n)
	}
}
