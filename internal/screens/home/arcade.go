package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/training"
	"github.com/abhisek/cybersage/internal/ui/components"
	"github.com/abhisek/cybersage/internal/ui/theme"
)

// Block-letter title (same art as welcome/banner.go).
const arcadeTitleFull = `  ██████╗██╗   ██╗██████╗ ███████╗██████╗
 ██╔════╝╚██╗ ██╔╝██╔══██╗██╔════╝██╔══██╗
 ██║      ╚████╔╝ ██████╔╝█████╗  ██████╔╝
 ██║       ╚██╔╝  ██╔══██╗██╔══╝  ██╔══██╗
 ╚██████╗   ██║   ██████╔╝███████╗██║  ██║
  ╚═════╝   ╚═╝   ╚═════╝ ╚══════╝╚═╝  ╚═╝  S A G E`

const arcadeTitleCompact = "C · Y · B · E · R · S · A · G · E"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true)

	if compact {
		return lipgloss.NewStyle().
			Width(cw).
			Align(lipgloss.Center).
			Render(style.Render(arcadeTitleCompact))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(arcadeTitleFull))
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(ov training.Overview, cw int, compact bool) string {
	doneStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	pointStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	readyStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s",
			doneStyle.Render(fmt.Sprintf("✓%d/%d", ov.Completed, ov.Total)),
			pointStyle.Render(fmt.Sprintf("◆%d", ov.Points)),
			readyText(ov.ReadyToUnlock, true, readyStyle, dimStyle),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s",
			doneStyle.Render(fmt.Sprintf("✓ %d/%d DONE", ov.Completed, ov.Total)),
			pointStyle.Render(fmt.Sprintf("◆ %d PTS", ov.Points)),
			readyText(ov.ReadyToUnlock, false, readyStyle, dimStyle),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

func readyText(ready int, compact bool, active, dim lipgloss.Style) string {
	if ready == 0 {
		if compact {
			return dim.Render("🔓0")
		}
		return dim.Render("🔓 NONE READY")
	}
	if compact {
		return active.Render(fmt.Sprintf("🔓%d", ready))
	}
	return active.Render(fmt.Sprintf("🔓 %d READY", ready))
}

// renderCompletion renders the curriculum completion bar.
func renderCompletion(ov training.Overview, cw int) string {
	bar := components.NewProgressBar("Curriculum", ov.Percent/100, true, cw-2)
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(bar.View())
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(items []string, selected int, cw int) string {
	buttons := make([]string, 0, len(items))
	for i, label := range items {
		buttons = append(buttons, components.ArcadeButton(label, i == selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as simple text lines (no borders)
// for very small terminals where bordered buttons would overflow.
func renderArcadeMenuCompact(items []string, selected int, cw int) string {
	var lines []string
	for i, label := range items {
		var line string
		if i == selected {
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render(" ▸ " + label + " ")
		} else {
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + label)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderGreeting greets the learner by name.
func renderGreeting(name string, cw int) string {
	if name == "" {
		name = "Agent"
	}
	return lipgloss.NewStyle().
		Foreground(theme.Text).
		Width(cw).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("Welcome back, %s!", name))
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
