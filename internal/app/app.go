package app

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/learner"
	"github.com/abhisek/cybersage/internal/logger"
	"github.com/abhisek/cybersage/internal/notify"
	"github.com/abhisek/cybersage/internal/router"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/screens/home"
	"github.com/abhisek/cybersage/internal/screens/welcome"
	"github.com/abhisek/cybersage/internal/store"
	"github.com/abhisek/cybersage/internal/training"
	"github.com/abhisek/cybersage/internal/ui/layout"
	"github.com/abhisek/cybersage/internal/ui/theme"
)

// toastDuration is how long a notification stays in the frame.
const toastDuration = 3 * time.Second

// Options holds the dependencies of the TUI.
type Options struct {
	Orchestrator *training.Orchestrator
	Profile      *learner.Profile
	EventRepo    store.EventRepo

	// Feed must be the sink of the orchestrator's bus for notifications
	// to reach the screen.
	Feed   *Feed
	Logger *logger.Logger

	// Start, when set, skips the welcome screen and opens this screen
	// above home.
	Start func() screen.Screen
}

type toastExpiredMsg struct{ seq int }

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	orch   *training.Orchestrator
	feed   *Feed
	log    *logger.Logger
	width  int
	height int

	toast         string
	toastSeverity notify.Severity
	toastSeq      int
}

// newAppModel creates a new AppModel starting at the welcome screen.
func newAppModel(opts Options) AppModel {
	homeFactory := func() screen.Screen {
		return home.New(opts.Orchestrator, opts.Profile, opts.EventRepo)
	}
	r := router.New(welcome.New(opts.Profile, homeFactory))
	if opts.Start != nil {
		r = router.New(homeFactory())
		// AppModel.Init runs the active screen's Init.
		_ = r.Push(opts.Start())
	}
	return AppModel{
		router: r,
		orch:   opts.Orchestrator,
		feed:   opts.Feed,
		log:    logger.OrNop(opts.Logger),
	}
}

func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.router.Active().Init()}
	if m.feed != nil {
		cmds = append(cmds, m.feed.Wait())
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.NotificationMsg:
		m.toastSeq++
		m.toast = msg.Message
		m.toastSeverity = msg.Severity
		seq := m.toastSeq
		expire := tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return toastExpiredMsg{seq: seq}
		})
		return m, tea.Batch(expire, m.feed.Wait())

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil

	case screen.ProgressEventMsg:
		m.log.Debug("progress event", "kind", msg.Event.Kind, "module", msg.Event.ModuleID)
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.feed.Wait())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.orch != nil {
				m.orch.Abandon(context.Background())
			}
			return m, tea.Quit
		case "esc":
			if eh, ok := m.router.Active().(screen.EscapeHandler); ok && eh.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the full frame for the current terminal size.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.headerStats(), m.width)

	var footerHints []layout.KeyHint
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = append(footerHints, hp.KeyHints()...)
		footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)
	if m.toast != "" {
		footer = layout.RenderToast(m.toast, severityColor(m.toastSeverity), m.width) + "\n" + footer
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) headerStats() layout.HeaderStats {
	if m.orch == nil {
		return layout.HeaderStats{}
	}
	return layout.HeaderStats{
		Points:    m.orch.Ledger().Balance(),
		Completed: m.orch.Tracker().CompletedCount(),
		Total:     m.orch.Catalog().Len(),
	}
}

func severityColor(s notify.Severity) color.Color {
	switch s {
	case notify.Success:
		return theme.Success
	case notify.Warning:
		return theme.Warning
	case notify.Error:
		return theme.Error
	default:
		return theme.Secondary
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Feed == nil {
		opts.Feed = NewFeed(DefaultFeedSize)
	}
	if opts.Orchestrator != nil {
		detach := opts.Feed.Attach(opts.Orchestrator.Bus())
		defer detach()
	}

	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
