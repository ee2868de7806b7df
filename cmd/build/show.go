package build

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lepinkainen/nyanko/internal/savefile"
)

const (
	maxShownSlots     = 14
	maxAttributeWidth = 70
	exampleGuideURL   = "https://maxroll.gg/blue-protocol/build-guides/verdant-oracle-smite-spec-guide"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("201")).
			Padding(1, 2)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("201"))

	buildTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
	dimStyle        = lipgloss.NewStyle().Faint(true)
	boldStyle       = lipgloss.NewStyle().Bold(true)
	linkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))
	valueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
)

// renderSummary draws the build summary panel for b.
func renderSummary(b savefile.Build) string {
	header := panelTitleStyle.Render(" Build Summary ")

	if !b.Imported() {
		body := dimStyle.Render("Import a Maxroll build guide to see Gearing and Food/Serum here.") + "\n\n" +
			"  Import one with:\n" +
			"  " + linkStyle.Render("nyanko import "+exampleGuideURL)
		return lipgloss.JoinVertical(lipgloss.Left, header, panelStyle.Render(body))
	}

	title := b.Title
	if title == "" {
		title = savefile.DefaultTitle
	}

	var sb strings.Builder
	sb.WriteString(buildTitleStyle.Render(title) + "\n")
	sb.WriteString(dimStyle.Render(b.GuideURL) + "\n\n")

	gearing := b.Gearing
	if gearing == "" {
		gearing = "(No attributes/legendary affix extracted.)"
	}
	sb.WriteString(boldStyle.Render("Gearing") + " (attributes + legendary affix):\n")
	sb.WriteString("  " + strings.ReplaceAll(gearing, "\n", "\n  ") + "\n")

	if b.PlannerURL != "" {
		sb.WriteString("\n" + boldStyle.Render("Planner") + " (gear name, basic & advanced attributes):\n")
		sb.WriteString("  " + linkStyle.Render(b.PlannerURL) + "\n")
	}

	switch {
	case len(b.GearSlots) > 0:
		sb.WriteString("\n" + boldStyle.Render("Gear") + ":\n")
		for i, slot := range b.GearSlots {
			if i == maxShownSlots {
				break
			}
			name := slot.Name
			if name == "" {
				name = "—"
			}
			sb.WriteString("  " + boldStyle.Render(slotLabel(slot.Slot)+":") + " " + linkStyle.Render(name) + "\n")
			if slot.BasicAttributes != "" {
				sb.WriteString("    " + dimStyle.Render("Basic:") + " " + clip(slot.BasicAttributes, maxAttributeWidth) + "\n")
			}
			if slot.AdvancedAttributes != "" {
				sb.WriteString("    " + dimStyle.Render("Advanced:") + " " + clip(slot.AdvancedAttributes, maxAttributeWidth) + "\n")
			}
		}
	case b.PlannerURL == "":
		sb.WriteString("\n" + dimStyle.Render("Gear: Open the guide in a browser; hover items for tooltips or use the planner if linked.") + "\n")
	}

	sb.WriteString("\n  " + boldStyle.Render("Food:") + "  " + valueStyle.Render(orDash(b.Food)) + "\n")
	sb.WriteString("  " + boldStyle.Render("Serum:") + " " + valueStyle.Render(orDash(b.Serum)))

	return lipgloss.JoinVertical(lipgloss.Left, header, panelStyle.Render(sb.String()))
}

// clip shortens s to width runes, marking the cut with an ellipsis.
func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width]) + "…"
}
