package session

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/ui/components"
	"github.com/abhisek/cybersage/internal/ui/theme"
)

// renderQuestionView renders the active question with feedback below it
// once answered.
func (s *SessionScreen) renderQuestionView(width, height int) string {
	v := s.view
	q := v.Question
	if q == nil {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Wrapping up...")
	}

	var b strings.Builder

	// Module info line.
	name := v.ModuleName
	if v.Practice {
		name = "Practice"
	}
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  %s · %s", name, v.Difficulty.Label()))

	timerStyle := lipgloss.NewStyle().Foreground(theme.Accent)
	if v.Remaining <= 10*time.Second && !s.answered() {
		timerStyle = timerStyle.Foreground(theme.Error).Bold(true)
	}
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("Q %d/%d  %s %d  %s %s",
			v.Index+1,
			v.Total,
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			v.Score.Correct,
			lipgloss.NewStyle().Foreground(theme.Accent).Render("⏱"),
			timerStyle.Render(formatClock(v.Remaining)),
		))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}

	b.WriteString(infoLine)
	b.WriteString("\n")
	bar := components.NewProgressBar("", v.Progress/100, false, width-4)
	b.WriteString("  " + bar.View())
	b.WriteString("\n\n")

	if v.Fallback {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Warning).
			Render("Offline questions"))
		b.WriteString("\n\n")
	}

	// Question text (centered).
	questionStyle := lipgloss.NewStyle().
		Width(min(width-8, 76)).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, questionStyle.Render(q.Prompt)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choices.View()))
	b.WriteString("\n\n")

	if s.answered() {
		b.WriteString(s.renderFeedback(width))
	} else {
		b.WriteString(s.renderHintArea(width))
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Warning).
			Render(s.notice))
	}

	return b.String()
}

// renderHintArea shows the hint or how to get one.
func (s *SessionScreen) renderHintArea(width int) string {
	style := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	switch {
	case s.hintLoading:
		return style.Foreground(theme.TextDim).Render("Fetching hint...")
	case s.hintText != "":
		hint := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.ArcadeCyan).
			Render("💡 " + s.hintText)
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, hint)
	case s.view.CanAffordHint:
		return theme.Hint.Width(width).Align(lipgloss.Center).
			Render(fmt.Sprintf("Press H for a hint (-%d points)", s.view.HintCost))
	}
	return theme.Hint.Width(width).Align(lipgloss.Center).
		Render(fmt.Sprintf("Hints cost %d points", s.view.HintCost))
}

// renderFeedback renders the result of the current question.
func (s *SessionScreen) renderFeedback(width int) string {
	q := s.view.Question
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	switch {
	case s.timedOut:
		b.WriteString(center.Foreground(theme.Warning).Bold(true).Render("Time's up!"))
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.TextDim).Render("No points deducted."))
	case s.feedback.Correct:
		b.WriteString(theme.Correct.Width(width).Align(lipgloss.Center).Render("Correct!"))
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.TextDim).Render(pointsText(s.feedback.PointsDelta)))
	default:
		b.WriteString(theme.Incorrect.Width(width).Align(lipgloss.Center).Render("Not quite"))
		b.WriteString("\n")
		b.WriteString(center.Foreground(theme.TextDim).
			Render(fmt.Sprintf("Correct answer: %s  (%s)", s.feedback.CorrectOption, pointsText(s.feedback.PointsDelta))))
	}
	b.WriteString("\n\n")

	// Explanation.
	if q != nil && q.Explanation != "" {
		exp := lipgloss.NewStyle().
			Width(min(width-8, 70)).
			Foreground(theme.Text).
			Render(q.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		b.WriteString("\n\n")
	}

	b.WriteString(center.Foreground(theme.TextDim).Render("Press any key to continue..."))
	return b.String()
}

func pointsText(delta int) string {
	switch {
	case delta > 0:
		return fmt.Sprintf("+%d points", delta)
	case delta == -1:
		return "-1 point"
	case delta < 0:
		return fmt.Sprintf("%d points", delta)
	}
	return "no points"
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// renderQuitConfirm renders the quit confirmation dialog.
func renderQuitConfirm(width, height int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render("Quit this attempt?"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Points already earned are kept. The attempt will not count."))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render("[Y] Yes, quit"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Render("[N] No, keep going"))

	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Preparing your questions...")
}

// renderError renders an error message.
func renderError(width, height int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Error: %s\n\n  Press any key to go back.", errMsg))
}
