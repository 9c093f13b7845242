package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/portsignal/internal/tui/theme"
)

// StatusInfo is what the bottom bar reports.
type StatusInfo struct {
	Source      string
	DataAge     string
	Refreshing  bool
	AutoRefresh bool
	Message     string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	left := base.Render(" [?]help  [r]efresh  [q]uit")
	if info.Message != "" {
		left += base.Render("  ") + accent.Render(info.Message)
	}

	var right []string
	if info.Refreshing {
		right = append(right, accent.Render("refreshing…"))
	} else if info.AutoRefresh {
		right = append(right, accent.Render("auto"))
	}
	if info.Source != "" {
		right = append(right, base.Render(info.Source))
	}
	if info.DataAge != "" {
		right = append(right, base.Render("loaded in "+info.DataAge))
	}
	r := strings.Join(right, base.Render("  ")) + base.Render(" ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(r), 0)
	return left + base.Render(strings.Repeat(" ", gap)) + r
}
