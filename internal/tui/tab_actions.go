package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/portsignal/internal/dispatch"
	"github.com/theirongolddev/portsignal/internal/tui/components"
	"github.com/theirongolddev/portsignal/internal/tui/theme"
)

func (a App) renderActionsTab(cw, h int) string {
	t := theme.Active
	actions := a.bundle.RecommendedActions
	rows := make([]listRow, len(actions))
	for i, act := range actions {
		rows[i] = listRow{severityOfImpact(act.Impact), fmt.Sprintf("#%d %s", act.Priority, act.Kind), act.Title}
	}

	title := fmt.Sprintf("Recommended Actions (%d)", len(actions))
	if len(actions) == 0 {
		return a.splitPanes(title, rows, "Detail", "", cw, h)
	}

	act := actions[a.cursor()]
	d := dispatch.Translate(act)
	inner := components.CardInnerWidth(components.LayoutRow(cw, 2)[1])

	affected := "-"
	if len(act.AffectedWorkItemIDs) > 0 {
		affected = strings.Join(act.AffectedWorkItemIDs, ", ")
	}

	detail := detailLines([][2]string{
		{"priority", fmt.Sprintf("%d", act.Priority)},
		{"impact", string(act.Impact)},
		{"kind", string(act.Kind)},
		{"affects", affected},
		{"", ""},
		{"", act.Description},
		{"", ""},
		{"dispatch as", string(d.Kind)},
	}, inner)

	ctx, err := json.MarshalIndent(d.Context, "", "  ")
	if err == nil {
		detail += "\n" + lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(string(ctx))
	}

	hint := "enter to dispatch"
	if a.opts.Dispatcher == nil {
		hint = "dispatch disabled (no sink)"
	}
	detail += "\n\n" + lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Render(hint)

	return a.splitPanes(title, rows, act.Title, detail, cw, h)
}
