package certificates

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/progress"
	"github.com/abhisek/cybersage/internal/screen"
	"github.com/abhisek/cybersage/internal/ui/layout"
	"github.com/abhisek/cybersage/internal/ui/theme"
)

// Source provides the learner's earned certificates.
type Source interface {
	Certificates() []progress.Certificate
}

type certificatesLoadedMsg struct {
	Certificates []progress.Certificate
}

// CertificatesScreen lists the certificates earned by completing modules.
type CertificatesScreen struct {
	source       Source
	certs        []progress.Certificate
	cursor       int
	scrollOffset int
	loaded       bool
}

var _ screen.Screen = (*CertificatesScreen)(nil)
var _ screen.KeyHintProvider = (*CertificatesScreen)(nil)

// New creates a new CertificatesScreen.
func New(source Source) *CertificatesScreen {
	return &CertificatesScreen{source: source}
}

func (s *CertificatesScreen) Init() tea.Cmd {
	return func() tea.Msg {
		return certificatesLoadedMsg{Certificates: s.source.Certificates()}
	}
}

func (s *CertificatesScreen) Title() string {
	return "Certificates"
}

func (s *CertificatesScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Browse"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *CertificatesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case certificatesLoadedMsg:
		s.certs = msg.Certificates
		s.loaded = true
		s.cursor = 0
		s.scrollOffset = 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.certs)-1 {
				s.cursor++
			}
		}
	}
	return s, nil
}

func (s *CertificatesScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading certificates...")
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).
		Render(fmt.Sprintf("\nEarned: %d certificates\n", len(s.certs))))
	b.WriteString("\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", max(0, min(width-8, 60))))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	if len(s.certs) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("Complete a module to earn your first certificate"))
		return b.String()
	}

	// Keep the selected certificate and its details in view.
	maxVisible := max(height-14, 3)
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+maxVisible {
		s.scrollOffset = s.cursor - maxVisible + 1
	}
	start := s.scrollOffset
	end := min(start+maxVisible, len(s.certs))

	for i := start; i < end; i++ {
		c := s.certs[i]
		cursor := "  "
		if i == s.cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s🏅 %-24s %4d%%   %s",
			cursor, c.ModuleName, c.Score, c.IssuedAt.Format("Jan 02, 2006"))

		style := lipgloss.NewStyle().Foreground(scoreColor(c.Score))
		if i == s.cursor {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	if end < len(s.certs) {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render(fmt.Sprintf("... %d more", len(s.certs)-end)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderCard(s.certs[s.cursor])))
	return b.String()
}

// renderCard renders the full certificate for c.
func renderCard(c progress.Certificate) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	val := lipgloss.NewStyle().Foreground(theme.Text)

	lines := []string{
		lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render("CERTIFICATE OF COMPLETION"),
		"",
		dim.Render("Awarded to  ") + val.Render(recipient(c)),
		dim.Render("Module      ") + val.Render(c.ModuleName),
		dim.Render("Score       ") + val.Render(fmt.Sprintf("%d%%", c.Score)),
		dim.Render("Issued      ") + val.Render(c.IssuedAt.Format("Jan 02, 2006 15:04")),
		dim.Render("Credential  ") + val.Render(c.CredentialID),
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.ArcadeYellow).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

func recipient(c progress.Certificate) string {
	if c.Recipient == "" {
		return "Agent"
	}
	return c.Recipient
}

func scoreColor(score int) color.Color {
	switch {
	case score >= 100:
		return theme.ArcadeYellow
	case score >= 90:
		return theme.Primary
	case score >= 75:
		return theme.Secondary
	default:
		return theme.Text
	}
}
