package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/cybersage/internal/notify"
	"github.com/abhisek/cybersage/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Resumer is an optional interface for screens that refresh when they
// become active again after the screen above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

// EscapeHandler marks screens that handle Esc themselves instead of the
// app popping them.
type EscapeHandler interface {
	HandlesEscape() bool
}

// NotificationMsg carries a learner-facing notification into the UI loop.
type NotificationMsg struct {
	Message  string
	Severity notify.Severity
}

// ProgressEventMsg carries a progress event into the UI loop. Events
// emitted off the UI goroutine, such as countdown timeouts, arrive this way.
type ProgressEventMsg struct {
	Event notify.Event
}
