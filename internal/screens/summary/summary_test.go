package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/progress"
	"github.com/abhisek/cybersage/internal/router"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/session"
	"github.com/abhisek/cybersage/internal/training"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "next" }
func (s *stubScreen) Title() string                           { return "Next" }

func testOutcome() training.Outcome {
	return training.Outcome{
		Summary: session.Summary{
			SessionID:  "s-1",
			ModuleID:   catalog.CyberAttacks,
			Difficulty: catalog.Easy,
			Duration:   3*time.Minute + 12*time.Second,
			Score: session.Score{
				Correct: 5, Total: 5, Points: 25, Accuracy: 100,
				IsPerfect: true, Completed: true,
			},
		},
		Passed:        true,
		PassThreshold: 70,
		Certificate: &progress.Certificate{
			CredentialID: "CS-1234", Recipient: "Asha", Score: 100,
		},
		NewlyUnlocked:  []string{catalog.AccountSecurity},
		Advanced:       true,
		NextDifficulty: catalog.Medium,
		Next:           training.NextAdvanceDifficulty,
		Balance:        35,
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(testOutcome(), catalog.Default(), nil)
	if s.Title() != "Results" {
		t.Errorf("Title = %q, want %q", s.Title(), "Results")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	cat := catalog.Default()
	s := New(testOutcome(), cat, func() screen.Screen { return &stubScreen{} })
	view := s.View(120, 40)

	unlocked, _ := cat.Get(catalog.AccountSecurity)
	for _, want := range []string{"Perfect score!", "Accuracy: 100%", "CS-1234", unlocked.Name, "NEXT LEVEL: MEDIUM"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_EnterStartsNextAttempt(t *testing.T) {
	s := New(testOutcome(), catalog.Default(), func() screen.Screen { return &stubScreen{} })
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if msg.Screen.Title() != "Next" {
		t.Errorf("replacement = %q, want Next", msg.Screen.Title())
	}
}

func TestSummaryScreen_HomeButton(t *testing.T) {
	s := New(testOutcome(), catalog.Default(), func() screen.Screen { return &stubScreen{} })
	s.Update(tea.KeyPressMsg{Code: tea.KeyRight})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Fatal("expected PopToRootMsg from HOME")
	}
}

func TestSummaryScreen_Navigation_Esc(t *testing.T) {
	s := New(testOutcome(), catalog.Default(), nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command on Esc")
	}
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("Esc should go home")
	}
}

func TestNextLabel(t *testing.T) {
	out := testOutcome()
	if got := NextLabel(out); got != "NEXT LEVEL: MEDIUM" {
		t.Errorf("NextLabel = %q", got)
	}
	out.Next = training.NextRetry
	if got := NextLabel(out); got != "TRY AGAIN" {
		t.Errorf("NextLabel = %q", got)
	}
	out.Next = training.NextMastered
	if got := NextLabel(out); got != "PLAY AGAIN" {
		t.Errorf("NextLabel = %q", got)
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(testOutcome(), catalog.Default(), nil)
	if len(s.KeyHints()) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(s.KeyHints()))
	}
}

func TestSummaryScreen_PerfectRunAutoAdvances(t *testing.T) {
	calls := 0
	s := New(testOutcome(), catalog.Default(), func() screen.Screen {
		calls++
		return &stubScreen{}
	})
	if s.Init() == nil {
		t.Fatal("expected a delayed restart for a perfect run")
	}
	if !strings.Contains(s.View(120, 40), "starts automatically") {
		t.Error("view should announce the automatic restart")
	}

	_, cmd := s.Update(autoAdvanceMsg{from: s})
	if cmd == nil {
		t.Fatal("expected a command when the delay elapses")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	if msg.Screen.Title() != "Next" {
		t.Errorf("replacement = %q, want Next", msg.Screen.Title())
	}
	if calls != 1 {
		t.Errorf("next called %d times, want 1", calls)
	}

	// A second tick or a late Enter must not start another attempt.
	if _, cmd := s.Update(autoAdvanceMsg{from: s}); cmd != nil {
		t.Error("repeated tick should be ignored")
	}
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("Enter after the restart should be ignored")
	}
	if calls != 1 {
		t.Errorf("next called %d times, want 1", calls)
	}
}

func TestSummaryScreen_NoAutoAdvance(t *testing.T) {
	next := func() screen.Screen { return &stubScreen{} }
	for _, kind := range []training.NextAction{training.NextRetry, training.NextMastered} {
		out := testOutcome()
		out.Next = kind
		if cmd := New(out, catalog.Default(), next).Init(); cmd != nil {
			t.Errorf("Next=%v: unexpected delayed restart", kind)
		}
	}
	if cmd := New(testOutcome(), catalog.Default(), nil).Init(); cmd != nil {
		t.Error("no restart should be scheduled without a next attempt")
	}
}

func TestSummaryScreen_EscCancelsAutoAdvance(t *testing.T) {
	calls := 0
	s := New(testOutcome(), catalog.Default(), func() screen.Screen {
		calls++
		return &stubScreen{}
	})
	s.Init()
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Fatal("Esc should go home")
	}
	if _, cmd := s.Update(autoAdvanceMsg{from: s}); cmd != nil {
		t.Error("tick after Esc should be ignored")
	}
	if calls != 0 {
		t.Errorf("next called %d times, want 0", calls)
	}
}

func TestSummaryScreen_IgnoresOtherScreensTick(t *testing.T) {
	next := func() screen.Screen { return &stubScreen{} }
	old := New(testOutcome(), catalog.Default(), next)
	s := New(testOutcome(), catalog.Default(), next)
	if _, cmd := s.Update(autoAdvanceMsg{from: old}); cmd != nil {
		t.Error("tick scheduled by another summary should be ignored")
	}
}
