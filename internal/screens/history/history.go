package history

import (
	"context"
	"fmt"
	"image/color"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/store"
	"github.com/abhisek/cybersage/internal/ui/layout"
	"github.com/abhisek/cybersage/internal/ui/theme"
)

// maxSessions bounds how many finished attempts are listed.
const maxSessions = 50

type historyLoadedMsg struct {
	Sessions []store.SessionEventRecord
	Err      error
}

type answersLoadedMsg struct {
	SessionID string
	Answers   []store.AnswerEventData
	Err       error
}

// HistoryScreen displays finished and abandoned attempts.
type HistoryScreen struct {
	eventRepo store.EventRepo
	catalog   *catalog.Catalog
	sessions  []store.SessionEventRecord
	answers   map[string][]store.AnswerEventData // sessionID → answers in order
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo, cat *catalog.Catalog) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		catalog:   cat,
		answers:   make(map[string][]store.AnswerEventData),
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		records, err := s.eventRepo.QuerySessionEvents(context.Background(), store.QueryOpts{Limit: maxSessions * 2})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}

		// Start events carry no results.
		var sessions []store.SessionEventRecord
		for _, r := range records {
			if r.Action == "start" {
				continue
			}
			sessions = append(sessions, r)
			if len(sessions) == maxSessions {
				break
			}
		}
		return historyLoadedMsg{Sessions: sessions}
	}
}

func (s *HistoryScreen) loadAnswers(sessionID string) tea.Cmd {
	return func() tea.Msg {
		records, err := s.eventRepo.Query(context.Background(), store.KindAnswer, store.QueryOpts{SessionID: sessionID})
		if err != nil {
			return answersLoadedMsg{SessionID: sessionID, Err: err}
		}
		answers := make([]store.AnswerEventData, 0, len(records))
		for _, r := range records {
			var a store.AnswerEventData
			if err := r.Decode(&a); err != nil {
				continue
			}
			answers = append(answers, a)
		}
		slices.Reverse(answers)
		return answersLoadedMsg{SessionID: sessionID, Answers: answers}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case answersLoadedMsg:
		if msg.Err == nil {
			s.answers[msg.SessionID] = msg.Answers
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			if len(s.sessions) == 0 {
				return s, nil
			}
			s.expanded[s.selected] = !s.expanded[s.selected]
			id := s.sessions[s.selected].SessionID
			if _, ok := s.answers[id]; s.expanded[s.selected] && !ok {
				return s, s.loadAnswers(id)
			}
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No attempts yet. Start training!")
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, sess := range s.sessions {
		dateStr := sess.Timestamp.Format("Jan 02, 2006")
		durationStr := fmt.Sprintf("%d:%02d", sess.DurationSecs/60, sess.DurationSecs%60)

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		status := fmt.Sprintf("%d/%d correct  %d%%", sess.Correct, sess.Questions, sess.Accuracy)
		if sess.Action == "abandon" {
			status = "abandoned"
		}

		line := fmt.Sprintf("%s%s  %-18s %-6s %s  %s",
			prefix, dateStr, s.moduleName(sess.ModuleID), difficultyLabel(sess.Difficulty), durationStr, status)

		style := lipgloss.NewStyle().Foreground(sessionColor(sess))
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			s.renderAnswers(&b, sess.SessionID, width)
		}
	}

	return b.String()
}

func (s *HistoryScreen) renderAnswers(b *strings.Builder, sessionID string, width int) {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)
	answers, ok := s.answers[sessionID]
	switch {
	case !ok:
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    Loading answers...")))
		b.WriteString("\n")
		return
	case len(answers) == 0:
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, dim.Render("    No answers recorded")))
		b.WriteString("\n")
		return
	}

	for _, a := range answers {
		mark := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		switch {
		case a.TimedOut:
			mark = lipgloss.NewStyle().Foreground(theme.Warning).Render("⏱")
		case !a.Correct:
			mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		}
		prompt := a.Prompt
		if limit := max(width-16, 20); lipgloss.Width(prompt) > limit {
			prompt = string([]rune(prompt)[:limit-1]) + "…"
		}
		hint := ""
		if a.HintUsed {
			hint = " 💡"
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			fmt.Sprintf("    %s %s%s", mark, lipgloss.NewStyle().Foreground(theme.TextDim).Render(prompt), hint)))
		b.WriteString("\n")
	}
}

func (s *HistoryScreen) moduleName(id string) string {
	if id == "" {
		return "Practice"
	}
	if s.catalog != nil {
		if m, err := s.catalog.Get(id); err == nil {
			return m.Name
		}
	}
	return id
}

func difficultyLabel(s string) string {
	d, err := catalog.ParseDifficulty(s)
	if err != nil {
		return s
	}
	return d.Label()
}

func sessionColor(sess store.SessionEventRecord) color.Color {
	switch {
	case sess.Action == "abandon":
		return theme.TextDim
	case sess.Perfect:
		return theme.ArcadeYellow
	case sess.Accuracy >= 60:
		return theme.Text
	default:
		return theme.Warning
	}
}
