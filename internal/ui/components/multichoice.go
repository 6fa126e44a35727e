package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/ui/theme"
)

// optionLabels prefix options in display order.
var optionLabels = []string{"A", "B", "C", "D", "E", "F"}

// OptionLabel returns the letter shown before option i.
func OptionLabel(i int) string {
	if i >= 0 && i < len(optionLabels) {
		return optionLabels[i]
	}
	return fmt.Sprintf("%d", i+1)
}

// MultiChoice is a multiple-choice selector. It only tracks the cursor and,
// once revealed, which option was chosen and which was correct.
type MultiChoice struct {
	Options  []string
	Selected int

	revealed bool
	chosen   string
	correct  string
}

// NewMultiChoice creates a selector with the cursor on the first option.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options}
}

// Init returns nil.
func (m MultiChoice) Init() tea.Cmd {
	return nil
}

// Update moves the cursor with arrow keys. Letter and number keys jump to
// an option. Selection is ignored once revealed.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.revealed {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
	default:
		if i, ok := m.IndexForKey(key); ok {
			m.Selected = i
		}
	}
	return m, nil
}

// IndexForKey maps "1".."n" and "a".."f" to an option index.
func (m MultiChoice) IndexForKey(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	var i int
	switch {
	case c >= '1' && c <= '9':
		i = int(c - '1')
	case c >= 'a' && c <= 'f':
		i = int(c - 'a')
	case c >= 'A' && c <= 'F':
		i = int(c - 'A')
	default:
		return 0, false
	}
	if i >= len(m.Options) {
		return 0, false
	}
	return i, true
}

// Value returns the option under the cursor.
func (m MultiChoice) Value() string {
	if m.Selected < 0 || m.Selected >= len(m.Options) {
		return ""
	}
	return m.Options[m.Selected]
}

// Reveal locks the selector and marks chosen and correct options. chosen
// is empty for a timed-out question.
func (m *MultiChoice) Reveal(chosen, correct string) {
	m.revealed = true
	m.chosen = chosen
	m.correct = correct
}

// Revealed reports whether the answer is shown.
func (m MultiChoice) Revealed() bool {
	return m.revealed
}

// View renders the options.
func (m MultiChoice) View() string {
	lines := make([]string, 0, len(m.Options))
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, OptionLabel(i), opt)

		var style lipgloss.Style
		switch {
		case m.revealed && opt == m.correct:
			style = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
			line += "  ✓"
		case m.revealed && opt == m.chosen:
			style = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
			line += "  ✗"
		case m.revealed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		default:
			style = lipgloss.NewStyle().Foreground(theme.Text)
		}
		lines = append(lines, style.Render(line))
	}
	return strings.Join(lines, "\n")
}
