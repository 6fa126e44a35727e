package home

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default green
	MascotCelebrating                      // Gold, star eyes: every module complete
	MascotAlert                            // Amber, exclamation: modules ready to unlock
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ ▣ ⚿ │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ ▣ ⚿ │
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ !
│  ▽  │
│ ▣ ⚿ │
└─────┘`

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(variant ...MascotVariant) string {
	v := MascotIdle
	if len(variant) > 0 {
		v = variant[0]
	}

	var art string
	var fg = theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.ArcadeYellow
	case MascotAlert:
		art = mascotAlert
		fg = theme.Accent
	default:
		art = mascotIdle
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}

// mascotFor picks the mascot for the learner's progress.
func mascotFor(completed, total, ready int) MascotVariant {
	switch {
	case total > 0 && completed == total:
		return MascotCelebrating
	case ready > 0:
		return MascotAlert
	}
	return MascotIdle
}
