package modulemap

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/progress"
	"github.com/abhisek/cybersage/internal/router"
	"github.com/abhisek/cybersage/internal/screen"
	sessionscreen "github.com/abhisek/cybersage/internal/screens/session"
	"github.com/abhisek/cybersage/internal/training"
	"github.com/abhisek/cybersage/internal/ui/layout"
	"github.com/abhisek/cybersage/internal/ui/theme"
)

// ModuleDetailScreen shows details for a single module.
type ModuleDetailScreen struct {
	orch     *training.Orchestrator
	moduleID string
	module   catalog.Module
	status   progress.Status
	records  map[catalog.Difficulty]progress.Record
	notice   string
}

var _ screen.Screen = (*ModuleDetailScreen)(nil)
var _ screen.KeyHintProvider = (*ModuleDetailScreen)(nil)
var _ screen.Resumer = (*ModuleDetailScreen)(nil)

func newModuleDetail(orch *training.Orchestrator, moduleID string) *ModuleDetailScreen {
	d := &ModuleDetailScreen{orch: orch, moduleID: moduleID}
	d.refresh()
	return d
}

func (d *ModuleDetailScreen) refresh() {
	if m, err := d.orch.Catalog().Get(d.moduleID); err == nil {
		d.module = m
	}
	if st, err := d.orch.Tracker().Status(d.moduleID); err == nil {
		d.status = st
	}
	if recs, err := d.orch.Tracker().Records(d.moduleID); err == nil {
		d.records = recs
	}
}

func (d *ModuleDetailScreen) Init() tea.Cmd { return nil }
func (d *ModuleDetailScreen) Title() string { return d.module.Name }

// Resume picks up the result of an attempt started from this screen.
func (d *ModuleDetailScreen) Resume() tea.Cmd {
	d.refresh()
	d.notice = ""
	return nil
}

func (d *ModuleDetailScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "enter" {
			return d, d.start()
		}
	}
	return d, nil
}

func (d *ModuleDetailScreen) start() tea.Cmd {
	if !d.status.Unlocked {
		d.notice = "Locked. Complete " + strings.Join(d.missing(), ", ") + " first."
		return nil
	}
	next := sessionscreen.NewModule(d.orch, d.moduleID)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: next}
	}
}

// missing returns the names of dependencies not yet completed.
func (d *ModuleDetailScreen) missing() []string {
	var names []string
	for _, dep := range d.module.Dependencies {
		done, err := d.orch.Tracker().IsCompleted(dep)
		if err != nil || done {
			continue
		}
		if m, err := d.orch.Catalog().Get(dep); err == nil {
			names = append(names, m.Name)
		}
	}
	return names
}

func (d *ModuleDetailScreen) KeyHints() []layout.KeyHint {
	if !d.status.Unlocked {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start"},
		{Key: "Esc", Description: "Back"},
	}
}

func (d *ModuleDetailScreen) badge() training.Badge {
	switch {
	case d.status.Completed:
		return training.BadgeCompleted
	case d.status.CanUnlock:
		return training.BadgeReady
	case d.status.Unlocked:
		return training.BadgeAvailable
	}
	return training.BadgeLocked
}

func (d *ModuleDetailScreen) View(width, height int) string {
	m := d.module
	contentWidth := width - 8
	if contentWidth > 70 {
		contentWidth = 70
	}

	var b strings.Builder

	// Module name + badge.
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true).
		Render(fmt.Sprintf("  %s  %s %s", BadgeIcon(d.badge()), m.Icon, m.Name)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render("  " + BadgeLabel(d.badge())))
	b.WriteString("\n\n")

	if m.Description != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(contentWidth).
			Foreground(theme.Text).
			PaddingLeft(2).
			Render(m.Description))
		b.WriteString("\n\n")
	}

	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	valStyle := lipgloss.NewStyle().Foreground(theme.Text)
	headStyle := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)

	b.WriteString(dimStyle.Render("  Level:     ") + valStyle.Render(d.status.ActiveDifficulty.Label()) + "\n")
	b.WriteString(dimStyle.Render("  Pass mark: ") + valStyle.Render(fmt.Sprintf("%d%%", d.status.PassThreshold)) + "\n")
	if d.status.HasBest {
		b.WriteString(dimStyle.Render("  Best:      ") + valStyle.Render(fmt.Sprintf("%d%%", d.status.BestScore)) + "\n")
	}
	if last := d.status.LastScore; last != nil {
		result := "not passed"
		if last.Passed {
			result = "passed"
		}
		b.WriteString(dimStyle.Render("  Last:      ") +
			valStyle.Render(fmt.Sprintf("%d%% (%s, %s)", last.Score, result, last.Date.Format("Jan 2")))+"\n")
	}
	b.WriteString("\n")

	// Per-difficulty attempt history.
	b.WriteString(headStyle.Render("  Attempts"))
	b.WriteString("\n")
	for _, diff := range catalog.AllDifficulties() {
		r := d.records[diff]
		line := fmt.Sprintf("  %-6s  %d played, %d passed, %d perfect (best streak %d)",
			diff.Label(), r.Attempts, r.Completions, r.PerfectRuns, r.BestStreak)
		b.WriteString(dimStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.Dependencies) > 0 {
		b.WriteString(headStyle.Render("  Prerequisites"))
		b.WriteString("\n")
		for _, id := range m.Dependencies {
			dep, err := d.orch.Catalog().Get(id)
			if err != nil {
				continue
			}
			icon := "○"
			style := dimStyle
			if done, _ := d.orch.Tracker().IsCompleted(id); done {
				icon = "✓"
				style = lipgloss.NewStyle().Foreground(theme.Success)
			}
			b.WriteString(style.Render(fmt.Sprintf("  %s %s", icon, dep.Name)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Dependents (what this module unlocks).
	deps := d.orch.Catalog().Dependents(m.ID)
	if len(deps) > 0 {
		b.WriteString(headStyle.Render("  Unlocks"))
		b.WriteString("\n")
		for _, dep := range deps {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  → %s", dep.Name)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if c := d.status.Certificate; c != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).
			Render(fmt.Sprintf("  🏅 Certificate %s · %d%%", c.CredentialID, c.Score)))
		b.WriteString("\n\n")
	}

	if d.notice != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Warning).Render("  " + d.notice))
		b.WriteString("\n")
	}

	return lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top,
		"\n"+b.String())
}
