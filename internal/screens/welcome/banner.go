package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/cybersage/internal/ui/theme"
)

const bannerArt = `
  ██████╗██╗   ██╗██████╗ ███████╗██████╗ ███████╗ █████╗  ██████╗ ███████╗
 ██╔════╝╚██╗ ██╔╝██╔══██╗██╔════╝██╔══██╗██╔════╝██╔══██╗██╔════╝ ██╔════╝
 ██║      ╚████╔╝ ██████╔╝█████╗  ██████╔╝███████╗███████║██║  ███╗█████╗
 ██║       ╚██╔╝  ██╔══██╗██╔══╝  ██╔══██╗╚════██║██╔══██║██║   ██║██╔══╝
 ╚██████╗   ██║   ██████╔╝███████╗██║  ██║███████║██║  ██║╚██████╔╝███████╗
  ╚═════╝   ╚═╝   ╚═════╝ ╚══════╝╚═╝  ╚═╝╚══════╝╚═╝  ╚═╝ ╚═════╝ ╚══════╝`

const bannerCompact = "C Y B E R S A G E"

// bannerMinWidth is the narrowest terminal the full banner fits.
const bannerMinWidth = 78

// RenderBanner returns the CYBERSAGE banner styled in the primary color.
// Uses a compact fallback for narrower terminals.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
