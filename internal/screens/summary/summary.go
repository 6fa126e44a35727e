package summary

import (
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/router"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/training"
	"github.com/abhisek/cybersage/internal/ui/components"
	"github.com/abhisek/cybersage/internal/ui/layout"
	"github.com/abhisek/cybersage/internal/ui/theme"
)

const buttonWidth = 28

// autoAdvanceDelay is how long a perfect run's summary stays up before the
// next difficulty starts on its own.
const autoAdvanceDelay = 2 * time.Second

// autoAdvanceMsg is addressed to the screen that scheduled it so a late tick
// cannot restart a newer summary.
type autoAdvanceMsg struct{ from *SummaryScreen }

// SummaryScreen displays the outcome of a finished attempt.
type SummaryScreen struct {
	outcome  training.Outcome
	catalog  *catalog.Catalog
	next     func() screen.Screen
	selected int // 0 = next attempt, 1 = home
	decided  bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.EscapeHandler = (*SummaryScreen)(nil)

// New creates a SummaryScreen. next builds the screen for another attempt;
// when nil only the way home is offered.
func New(out training.Outcome, cat *catalog.Catalog, next func() screen.Screen) *SummaryScreen {
	s := &SummaryScreen{outcome: out, catalog: cat, next: next}
	if next == nil {
		s.selected = 1
	}
	return s
}

func (s *SummaryScreen) Init() tea.Cmd {
	if !s.autoAdvances() {
		return nil
	}
	return tea.Tick(autoAdvanceDelay, func(time.Time) tea.Msg { return autoAdvanceMsg{from: s} })
}

func (s *SummaryScreen) autoAdvances() bool {
	return s.next != nil && s.outcome.Next == training.NextAdvanceDifficulty
}

func (s *SummaryScreen) startNext() tea.Cmd {
	s.decided = true
	nextScreen := s.next()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: nextScreen} }
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

// HandlesEscape sends Esc home instead of one screen back.
func (s *SummaryScreen) HandlesEscape() bool { return true }

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if am, ok := msg.(autoAdvanceMsg); ok {
		if am.from != s || s.decided {
			return s, nil
		}
		return s, s.startNext()
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || s.decided {
		return s, nil
	}
	switch kmsg.String() {
	case "left", "right", "up", "down", "tab", "h", "l", "k", "j":
		if s.next != nil {
			s.selected = 1 - s.selected
		}
	case "enter":
		if s.selected == 0 && s.next != nil {
			return s, s.startNext()
		}
		s.decided = true
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	case "esc":
		s.decided = true
		return s, func() tea.Msg { return router.PopToRootMsg{} }
	}
	return s, nil
}

// NextLabel names the follow-up attempt offered by the outcome.
func NextLabel(out training.Outcome) string {
	switch out.Next {
	case training.NextAdvanceDifficulty:
		return "NEXT LEVEL: " + strings.ToUpper(out.NextDifficulty.Label())
	case training.NextMastered:
		return "PLAY AGAIN"
	}
	return "TRY AGAIN"
}

func (s *SummaryScreen) moduleName(id string) string {
	if s.catalog != nil {
		if m, err := s.catalog.Get(id); err == nil {
			return m.Name
		}
	}
	return id
}

func (s *SummaryScreen) View(width, height int) string {
	out := s.outcome
	sum := out.Summary
	sc := sum.Score
	center := func(c lipgloss.Style, text string) string {
		return c.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder

	// Title.
	title := "Attempt finished"
	switch {
	case out.Next == training.NextMastered && !out.Practice:
		title = "Module mastered!"
	case sc.IsPerfect:
		title = "Perfect score!"
	case out.Passed:
		title = "Module complete!"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), title))
	b.WriteString("\n")

	subject := "Practice"
	if !out.Practice {
		subject = s.moduleName(sum.ModuleID)
	}
	mins := int(sum.Duration.Minutes())
	secs := int(sum.Duration.Seconds()) % 60
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
		fmt.Sprintf("%s · %s · %d:%02d", subject, sum.Difficulty.Label(), mins, secs)))
	b.WriteString("\n\n")

	// Stats line.
	statsLine := fmt.Sprintf("Correct: %d     Wrong: %d     Timed out: %d     Accuracy: %d%%",
		sc.Correct, sc.Wrong, sc.TimedOut, sc.Accuracy)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), statsLine))
	b.WriteString("\n")
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent),
		fmt.Sprintf("Score: %d     Balance: %d points", sc.Points, out.Balance)))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	// Progression.
	if !out.Practice {
		if out.Passed {
			b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Success),
				fmt.Sprintf("Passed (needed %d%%)", out.PassThreshold)))
		} else {
			b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
				fmt.Sprintf("Reach %d%% accuracy to earn the certificate", out.PassThreshold)))
		}
		b.WriteString("\n")
		if c := out.Certificate; c != nil {
			b.WriteString(center(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true),
				fmt.Sprintf("🏅 Certificate %s · %s · %d%%", c.CredentialID, c.Recipient, c.Score)))
			b.WriteString("\n")
		}
		if out.Advanced {
			b.WriteString(center(lipgloss.NewStyle().Foreground(theme.ArcadeCyan),
				"Level up! Next attempt is "+out.NextDifficulty.Label()))
			b.WriteString("\n")
		}
		for _, id := range out.NewlyUnlocked {
			b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Secondary),
				"🔓 Unlocked: "+s.moduleName(id)))
			b.WriteString("\n")
		}
	} else if out.Next == training.NextAdvanceDifficulty {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.ArcadeCyan),
			"Next practice round is "+out.NextDifficulty.Label()))
		b.WriteString("\n")
	}
	if out.Fallback {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Warning), "Offline questions were used"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Buttons.
	var buttons []string
	if s.next != nil {
		buttons = append(buttons, components.ArcadeButton(NextLabel(out), s.selected == 0, buttonWidth))
	}
	buttons = append(buttons, components.ArcadeButton("HOME", s.selected == 1, buttonWidth))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.JoinHorizontal(lipgloss.Top, buttons...)))
	if s.autoAdvances() && !s.decided {
		b.WriteString("\n\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
			out.NextDifficulty.Label()+" starts automatically..."))
	}

	return b.String()
}
