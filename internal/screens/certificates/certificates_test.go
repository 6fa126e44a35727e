package certificates

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cybersage/internal/progress"
)

type fakeSource []progress.Certificate

func (f fakeSource) Certificates() []progress.Certificate { return f }

func load(t *testing.T, s *CertificatesScreen) {
	t.Helper()
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("Init returned no command")
	}
	s.Update(cmd())
}

func expectView(t *testing.T, view string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(view, w) {
			t.Errorf("view missing %q", w)
		}
	}
}

func TestCertificates_Empty(t *testing.T) {
	s := New(fakeSource(nil))
	expectView(t, s.View(80, 30), "Loading certificates")

	load(t, s)
	expectView(t, s.View(80, 30), "Earned: 0 certificates", "Complete a module")
}

func TestCertificates_ListAndCard(t *testing.T) {
	issued := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	s := New(fakeSource{
		{ModuleID: "digital_arrest", ModuleName: "Digital Arrest", Score: 80, IssuedAt: issued, Recipient: "Asha", CredentialID: "CS-AAAA"},
		{ModuleID: "cyber_attacks", ModuleName: "Cyber Attacks", Score: 100, IssuedAt: issued, CredentialID: "CS-BBBB"},
	})
	load(t, s)

	expectView(t, s.View(100, 40), "Earned: 2 certificates", "Digital Arrest", "Cyber Attacks", "CS-AAAA", "Asha")

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.cursor != 1 {
		t.Fatalf("cursor = %d after down, want 1", s.cursor)
	}
	// No recipient falls back to the default name.
	expectView(t, s.View(100, 40), "CS-BBBB", "Agent")

	// Cursor stops at the last certificate.
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.cursor != 1 {
		t.Errorf("cursor = %d past the end, want 1", s.cursor)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if s.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", s.cursor)
	}
}

func TestCertificates_KeyHints(t *testing.T) {
	s := New(fakeSource(nil))
	if s.Title() != "Certificates" {
		t.Errorf("Title = %q, want Certificates", s.Title())
	}
	if n := len(s.KeyHints()); n != 2 {
		t.Errorf("KeyHints length = %d, want 2", n)
	}
}
