package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	normalColor    = lipgloss.Color("#DCDCDC")
	hitColor       = lipgloss.Color("#A0F0C8")
	bindingColor   = lipgloss.Color("#E6E6E6")
	leftTitleColor = lipgloss.Color("#C8C8FF")
	rightTitle     = lipgloss.Color("#C8FFC8")
	subtleColor    = lipgloss.Color("#C8C8C8")
	outputColor    = lipgloss.Color("#FFD782")
	recentColor    = lipgloss.Color("#FFFFA0")
	footerColor    = lipgloss.Color("#A0A0A0")
	borderColor    = lipgloss.Color("#5F5F87")
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	leftTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(leftTitleColor)
	rightTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(rightTitle)
	bindingStyle    = lipgloss.NewStyle().Foreground(bindingColor)
	comboStyle      = lipgloss.NewStyle().Foreground(normalColor)
	comboHitStyle   = lipgloss.NewStyle().Bold(true).Foreground(hitColor)
	subtleStyle     = lipgloss.NewStyle().Foreground(subtleColor)
	outputStyle     = lipgloss.NewStyle().Foreground(outputColor)
	recentStyle     = lipgloss.NewStyle().Foreground(recentColor)
	footerStyle     = lipgloss.NewStyle().Foreground(footerColor).Italic(true)
)

// Render lays the view out as two panels side by side with the footer
// underneath. width is the terminal width; zero means unknown.
func (v View) Render(width int) string {
	var left strings.Builder
	left.WriteString(leftTitleStyle.Render("Keyboard bindings:"))
	left.WriteString("\n")
	for _, b := range v.Bindings {
		left.WriteString(bindingStyle.Render(b))
		left.WriteString("\n")
	}
	left.WriteString("\n")
	left.WriteString(leftTitleStyle.Render("Available combos:"))
	for _, c := range v.Combos {
		left.WriteString("\n")
		if c.Hit {
			left.WriteString(comboHitStyle.Render(c.Text))
		} else {
			left.WriteString(comboStyle.Render(c.Text))
		}
	}

	var right strings.Builder
	right.WriteString(rightTitleStyle.Render("Automaton"))
	right.WriteString("\n")
	right.WriteString(comboStyle.Render(fmt.Sprintf("Current state: %d", v.State)))
	right.WriteString("\n")
	right.WriteString(subtleStyle.Render(fmt.Sprintf("Fail link: %d", v.Failure)))
	right.WriteString("\n")
	right.WriteString(subtleStyle.Render("Outputs at state:"))
	for _, o := range v.Outputs {
		right.WriteString("\n")
		right.WriteString(outputStyle.Render("• " + o))
	}
	right.WriteString("\n\n")
	right.WriteString(subtleStyle.Render("Recent:"))
	for _, r := range v.Recent {
		right.WriteString("\n")
		right.WriteString(recentStyle.Render(r))
	}

	leftPanel := panelStyle.Render(left.String())
	rightPanel := panelStyle.Render(right.String())
	if width > 0 {
		// Stack the panels when they do not fit side by side.
		if lipgloss.Width(leftPanel)+lipgloss.Width(rightPanel) > width {
			return lipgloss.JoinVertical(lipgloss.Left, leftPanel, rightPanel, footerStyle.Render(v.Footer))
		}
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, " ", rightPanel)
	return lipgloss.JoinVertical(lipgloss.Left, body, footerStyle.Render(v.Footer))
}
