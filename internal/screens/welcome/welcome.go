package welcome

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/router"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/ui/components"
	"github.com/abhisek/cybersage/internal/ui/layout"
	"github.com/abhisek/cybersage/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond
	phase2End    = 1500 * time.Millisecond
	totalDur     = 4500 * time.Millisecond

	maxNameLen = 40
)

const mascotArt = `  ╭───────────╮
  │  ┌─────┐  │
  │  │ ◉ ◉ │  │
  │  │  ▽  │  │
  │  ├─────┤  │
  │  │ ▣ ⚿ │  │
  │  └─────┘  │
  ╰───────────╯`

// sparkle frames cycle around the mascot
var sparkleFrames = []string{"★", "✦"}

type tickMsg time.Time

// nameSavedMsg reports the result of storing the learner's name.
type nameSavedMsg struct {
	Err error
}

// NameStore holds the learner's display name.
type NameStore interface {
	Name() string
	SetName(ctx context.Context, name string) error
}

// WelcomeScreen shows a splash animation, asks for the learner's name on
// first run, then transitions to the home screen.
type WelcomeScreen struct {
	names        NameStore
	homeFactory  func() screen.Screen
	elapsed      time.Duration
	tickCount    int
	prompting    bool
	input        components.TextInput
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)
var _ screen.KeyHintProvider = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced by
// homeFactory. names may be nil, in which case no name is asked for.
func New(names NameStore, homeFactory func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		names:       names,
		homeFactory: homeFactory,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) KeyHints() []layout.KeyHint {
	if w.prompting {
		return []layout.KeyHint{{Key: "Enter", Description: "Save name"}}
	}
	return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tea.Tick(tickInterval, func(t time.Time) tea.Msg {
			return tickMsg(t)
		})

	case nameSavedMsg:
		if msg.Err != nil {
			w.input.SetError("Could not save name: " + msg.Err.Error())
			return w, nil
		}
		return w, w.transition()

	case tea.KeyPressMsg:
		if w.prompting {
			return w.handlePromptKey(msg)
		}
		// A key press skips the rest of the animation.
		w.elapsed = totalDur
		if w.needsName() {
			w.prompting = true
			w.input = components.NewTextInput("Your name", maxNameLen)
			return w, w.input.Init()
		}
		return w, w.transition()
	}

	if w.prompting {
		var cmd tea.Cmd
		w.input, cmd = w.input.Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w *WelcomeScreen) needsName() bool {
	return w.names != nil && strings.TrimSpace(w.names.Name()) == ""
}

func (w *WelcomeScreen) handlePromptKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		w.input, cmd = w.input.Update(msg)
		return w, cmd
	}
	name := w.input.Value()
	if name == "" {
		w.input.SetError("Please enter a name")
		return w, nil
	}
	names := w.names
	return w, func() tea.Msg {
		return nameSavedMsg{Err: names.SetName(context.Background(), name)}
	}
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	mascotStyle := lipgloss.NewStyle().Foreground(theme.Primary)

	// Phase 1+: mascot
	rendered := mascotStyle.Render(mascotArt)

	// Phase 2+: sparkles around mascot
	if w.elapsed >= phase1End {
		frame := w.tickCount % len(sparkleFrames)
		sparkle := sparkleFrames[frame]

		accentStyle := lipgloss.NewStyle().Foreground(theme.Accent)
		secondaryStyle := lipgloss.NewStyle().Foreground(theme.Secondary)

		s1 := accentStyle.Render(sparkle)
		s2 := secondaryStyle.Render(sparkle)

		lines := strings.Split(rendered, "\n")
		if len(lines) > 1 {
			lines[0] = s1 + "  " + lines[0] + "  " + s2
		}
		if len(lines) > 3 {
			lines[3] = s2 + "  " + lines[3] + "  " + s1
		}
		if len(lines) > 6 {
			lines[6] = s1 + "  " + lines[6] + "  " + s2
		}
		rendered = strings.Join(lines, "\n")
	}

	sections = append(sections, rendered)

	// Phase 3+: banner + tagline
	if w.elapsed >= phase2End {
		sections = append(sections, "")
		sections = append(sections, RenderBanner(width))
		sections = append(sections, "")

		tagline := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("Stay sharp. Stay safe online.")
		sections = append(sections, tagline)
		sections = append(sections, "")

		if w.prompting {
			sections = append(sections,
				lipgloss.NewStyle().Foreground(theme.Secondary).Render("What should we call you?"),
				w.input.View())
		} else {
			hint := lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Italic(true).
				Render("press any key to continue")
			sections = append(sections, hint)
		}
	}

	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
