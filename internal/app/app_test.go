package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/learner"
	"github.com/abhisek/cybersage/internal/notify"
	"github.com/abhisek/cybersage/internal/questions"
	"github.com/abhisek/cybersage/internal/router"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/screens/home"
	sessionscreen "github.com/abhisek/cybersage/internal/screens/session"
	"github.com/abhisek/cybersage/internal/screens/welcome"
	"github.com/abhisek/cybersage/internal/session"
	"github.com/abhisek/cybersage/internal/store"
	"github.com/abhisek/cybersage/internal/training"
)

func testOptions(t *testing.T) Options {
	t.Helper()
	st, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	profile, err := learner.Load(context.Background(), st.SnapshotRepo(), catalog.Default(), learner.Options{})
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}

	feed := NewFeed(DefaultFeedSize)
	orch := training.New(training.Deps{
		Tracker:   profile.Tracker(),
		Ledger:    profile.Ledger(),
		Source:    questions.MustStaticBank(),
		Bus:       notify.NewBus(feed, nil),
		Events:    st.EventRepo(),
		Scheduler: &session.ManualScheduler{},
	})
	return Options{
		Orchestrator: orch,
		Profile:      profile,
		EventRepo:    st.EventRepo(),
		Feed:         feed,
	}
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T, want AppModel", next)
	}
	return am, cmd
}

func expectRender(t *testing.T, m AppModel, wants ...string) {
	t.Helper()
	out := m.render()
	for _, w := range wants {
		if !strings.Contains(out, w) {
			t.Errorf("render missing %q", w)
		}
	}
}

func TestApp_StartsAtWelcome(t *testing.T) {
	m := newAppModel(testOptions(t))
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Errorf("active screen = %T, want *welcome.WelcomeScreen", m.router.Active())
	}
	if m.Init() == nil {
		t.Error("Init returned no command")
	}
}

func TestApp_StartScreenSkipsWelcome(t *testing.T) {
	opts := testOptions(t)
	opts.Start = func() screen.Screen {
		return sessionscreen.NewModule(opts.Orchestrator, catalog.DigitalArrest)
	}
	m := newAppModel(opts)

	if d := m.router.Depth(); d != 2 {
		t.Fatalf("Depth = %d, want 2", d)
	}
	s, ok := m.router.Active().(*sessionscreen.SessionScreen)
	if !ok {
		t.Fatalf("active screen = %T, want *session.SessionScreen", m.router.Active())
	}

	m, _ = update(t, m, s.Init()())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	expectRender(t, m, "Digital Arrest")

	// Esc is owned by the quiz screen, which asks before quitting.
	m, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		if _, isPop := cmd().(router.PopScreenMsg); isPop {
			t.Error("Esc during a quiz should not pop the screen")
		}
	}
	if d := m.router.Depth(); d != 2 {
		t.Errorf("Depth = %d after Esc, want 2", d)
	}
	expectRender(t, m, "Quit this attempt?")
}

func TestApp_EscPopsToHome(t *testing.T) {
	opts := testOptions(t)
	opts.Start = func() screen.Screen {
		return home.New(opts.Orchestrator, opts.Profile, nil)
	}
	m := newAppModel(opts)
	if d := m.router.Depth(); d != 2 {
		t.Fatalf("Depth = %d, want 2", d)
	}

	m, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a command on Esc")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("Esc produced %T, want PopScreenMsg", cmd())
	}

	m, _ = update(t, m, router.PopScreenMsg{})
	if d := m.router.Depth(); d != 1 {
		t.Errorf("Depth = %d after pop, want 1", d)
	}
}

func TestApp_ToastLifecycle(t *testing.T) {
	m := newAppModel(testOptions(t))

	m, cmd := update(t, m, screen.NotificationMsg{Message: "Module unlocked", Severity: notify.Success})
	if cmd == nil {
		t.Error("expected an expiry command")
	}
	if m.toast != "Module unlocked" {
		t.Errorf("toast = %q, want Module unlocked", m.toast)
	}

	// A newer toast outlives the older one's expiry.
	m, _ = update(t, m, screen.NotificationMsg{Message: "Second", Severity: notify.Info})
	m, _ = update(t, m, toastExpiredMsg{seq: 1})
	if m.toast != "Second" {
		t.Errorf("toast = %q, want Second", m.toast)
	}

	m, _ = update(t, m, toastExpiredMsg{seq: 2})
	if m.toast != "" {
		t.Errorf("toast = %q after expiry, want empty", m.toast)
	}
}

func TestApp_View(t *testing.T) {
	opts := testOptions(t)
	opts.Start = func() screen.Screen {
		return home.New(opts.Orchestrator, opts.Profile, nil)
	}
	m := newAppModel(opts)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, screen.NotificationMsg{Message: "Hello agent", Severity: notify.Info})

	expectRender(t, m, "CyberSage", "Hello agent", "Ctrl+C")
}

func TestApp_TooSmall(t *testing.T) {
	m := newAppModel(testOptions(t))
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	if m.render() == "" {
		t.Error("render should explain the terminal is too small")
	}
}
