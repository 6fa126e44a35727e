package modulemap

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/router"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/training"
	"github.com/abhisek/cybersage/internal/ui/layout"
	"github.com/abhisek/cybersage/internal/ui/theme"
)

type rowKind int

const (
	rowLevelHeader rowKind = iota
	rowModule
)

type row struct {
	kind  rowKind
	level int
	card  *training.ModuleCard
}

// ModuleMapScreen lists the curriculum grouped by how deep each module
// sits in the dependency graph.
type ModuleMapScreen struct {
	orch         *training.Orchestrator
	rows         []row
	cursor       int
	scrollOffset int
}

var _ screen.Screen = (*ModuleMapScreen)(nil)
var _ screen.KeyHintProvider = (*ModuleMapScreen)(nil)
var _ screen.Resumer = (*ModuleMapScreen)(nil)

// New creates a new ModuleMapScreen.
func New(orch *training.Orchestrator) *ModuleMapScreen {
	s := &ModuleMapScreen{orch: orch}
	s.load()

	// Set cursor to first module row
	for i, r := range s.rows {
		if r.kind == rowModule {
			s.cursor = i
			break
		}
	}
	return s
}

// load rebuilds the rows from the current overview.
func (s *ModuleMapScreen) load() {
	ov := s.orch.Overview()
	levels := levelsOf(ov.Modules)

	maxLevel := 0
	for _, l := range levels {
		maxLevel = max(maxLevel, l)
	}

	var rows []row
	for level := 0; level <= maxLevel; level++ {
		rows = append(rows, row{kind: rowLevelHeader, level: level})
		for i := range ov.Modules {
			if levels[ov.Modules[i].Module.ID] == level {
				rows = append(rows, row{kind: rowModule, level: level, card: &ov.Modules[i]})
			}
		}
	}
	s.rows = rows
}

// levelsOf returns each module's longest dependency chain length. cards
// must be in topological order.
func levelsOf(cards []training.ModuleCard) map[string]int {
	levels := make(map[string]int, len(cards))
	for _, c := range cards {
		l := 0
		for _, dep := range c.Module.Dependencies {
			l = max(l, levels[dep]+1)
		}
		levels[c.Module.ID] = l
	}
	return levels
}

func levelName(level int) string {
	if level == 0 {
		return "FOUNDATIONS"
	}
	return fmt.Sprintf("LEVEL %d", level+1)
}

func (s *ModuleMapScreen) Init() tea.Cmd {
	return nil
}

// Resume reloads badges after a training attempt.
func (s *ModuleMapScreen) Resume() tea.Cmd {
	var selected string
	if c := s.current(); c != nil {
		selected = c.Module.ID
	}
	s.load()
	for i, r := range s.rows {
		if r.kind == rowModule && r.card.Module.ID == selected {
			s.cursor = i
		}
	}
	return nil
}

func (s *ModuleMapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextLevel()
		case "enter":
			return s, s.selectModule()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *ModuleMapScreen) View(width, height int) string {
	if len(s.rows) == 0 {
		return ""
	}

	// Ensure cursor is visible within the scroll window
	s.adjustScroll(height)

	var lines []string
	visible := 0
	for i, r := range s.rows {
		if i < s.scrollOffset {
			continue
		}
		if visible >= height {
			break
		}

		switch r.kind {
		case rowLevelHeader:
			lines = append(lines, renderLevelHeader(r.level, width))
		case rowModule:
			lines = append(lines, renderModuleRow(r, i == s.cursor, width))
		}
		visible++
	}

	return strings.Join(lines, "\n")
}

func (s *ModuleMapScreen) Title() string {
	return "Modules"
}

// KeyHints returns the key binding hints for the footer.
func (s *ModuleMapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Level"},
		{Key: "Enter", Description: "Details"},
		{Key: "Esc", Description: "Back"},
	}
}

// moveCursor moves the cursor by delta, skipping level headers.
func (s *ModuleMapScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowModule {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextLevel jumps the cursor to the first module of the next level,
// wrapping to the top.
func (s *ModuleMapScreen) nextLevel() {
	current := s.rows[s.cursor].level
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowModule && s.rows[i].level != current {
			s.cursor = i
			return
		}
	}
	for i, r := range s.rows {
		if r.kind == rowModule {
			s.cursor = i
			return
		}
	}
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *ModuleMapScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	// Also show the level header above the cursor if possible
	headerRow := s.cursor
	for headerRow > 0 && s.rows[headerRow-1].kind == rowLevelHeader {
		headerRow--
	}

	if headerRow < s.scrollOffset {
		s.scrollOffset = headerRow
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *ModuleMapScreen) current() *training.ModuleCard {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return nil
	}
	return s.rows[s.cursor].card
}

// selectModule opens the detail screen for the current module.
func (s *ModuleMapScreen) selectModule() tea.Cmd {
	card := s.current()
	if card == nil {
		return nil
	}
	detail := newModuleDetail(s.orch, card.Module.ID)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: detail}
	}
}

// BadgeIcon returns the list icon for a badge.
func BadgeIcon(b training.Badge) string {
	switch b {
	case training.BadgeCompleted:
		return "✓"
	case training.BadgeReady:
		return "✦"
	case training.BadgeAvailable:
		return "○"
	}
	return "🔒"
}

// BadgeLabel returns the list label for a badge.
func BadgeLabel(b training.Badge) string {
	switch b {
	case training.BadgeCompleted:
		return "Completed"
	case training.BadgeReady:
		return "New!"
	case training.BadgeAvailable:
		return "Available"
	}
	return "Locked"
}

// renderLevelHeader renders a level section header.
func renderLevelHeader(level int, width int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(levelName(level))
}

// renderModuleRow renders a single module row.
func renderModuleRow(r row, selected bool, width int) string {
	card := r.card
	if card == nil {
		return ""
	}

	diff := card.Status.ActiveDifficulty.Label()
	label := BadgeLabel(card.Badge)

	// Calculate column widths
	padding := 4 // left indent
	iconWidth := 3
	diffWidth := 8
	labelWidth := 10
	spacing := 4
	nameWidth := width - padding - iconWidth - diffWidth - labelWidth - spacing
	if nameWidth < 10 {
		nameWidth = 10
	}

	name := card.Module.Icon + " " + card.Module.Name
	if lipgloss.Width(name) > nameWidth {
		name = card.Module.Name
	}

	var nameStyle, diffStyle, labelStyle lipgloss.Style
	if selected {
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		diffStyle = lipgloss.NewStyle().Foreground(theme.Primary)
		labelStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	} else {
		switch card.Badge {
		case training.BadgeCompleted:
			nameStyle = lipgloss.NewStyle().Foreground(theme.Success)
			diffStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
			labelStyle = lipgloss.NewStyle().Foreground(theme.Success)
		case training.BadgeReady:
			nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
			diffStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
			labelStyle = lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
		case training.BadgeAvailable:
			nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
			diffStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
			labelStyle = lipgloss.NewStyle().Foreground(theme.Secondary)
		default:
			nameStyle = theme.Locked
			diffStyle = theme.Locked
			labelStyle = theme.Locked
		}
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	pad := nameWidth - lipgloss.Width(name)
	if pad < 0 {
		pad = 0
	}
	return fmt.Sprintf("  %s%s %s  %s  %s",
		cursor,
		BadgeIcon(card.Badge),
		nameStyle.Render(name+strings.Repeat(" ", pad)),
		diffStyle.Render(fmt.Sprintf("%-6s", diff)),
		labelStyle.Render(fmt.Sprintf("%9s", label)),
	)
}
