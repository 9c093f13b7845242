// Package tui provides the interactive Bubble Tea dashboard for portsignal.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/portsignal/internal/cli"
	"github.com/theirongolddev/portsignal/internal/dispatch"
	"github.com/theirongolddev/portsignal/internal/model"
	"github.com/theirongolddev/portsignal/internal/pipeline"
	"github.com/theirongolddev/portsignal/internal/tui/components"
	"github.com/theirongolddev/portsignal/internal/tui/theme"
)

// Loader produces one analysis bundle, reporting file progress when it can.
type Loader func(ctx context.Context, progress pipeline.ProgressFunc) (model.Bundle, error)

// Options wires the dashboard to its data and dispatch collaborators.
type Options struct {
	Load            Loader
	Dispatcher      dispatch.Dispatcher // nil disables dispatch from the Actions tab
	SourceLabel     string
	RefreshInterval time.Duration
	AutoRefresh     bool
	NeedSetup       bool
}

// BundleLoadedMsg is sent when the first analysis pass finishes.
type BundleLoadedMsg struct {
	Bundle   model.Bundle
	LoadTime time.Duration
	Err      error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshMsg is sent when a background refresh completes.
type RefreshMsg struct {
	Bundle   model.Bundle
	LoadTime time.Duration
	Err      error
}

// DispatchedMsg reports the outcome of dispatching an action.
type DispatchedMsg struct {
	ActionID string
	Err      error
}

const (
	tabOverview = iota
	tabAnomalies
	tabFlags
	tabActions
)

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// App is the root Bubble Tea model.
type App struct {
	opts Options

	// Data
	bundle   model.Bundle
	loaded   bool
	loadErr  error
	loadTime time.Duration

	// Auto-refresh state
	lastRefresh time.Time
	refreshing  bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	cursors   [len(tabCursors)]int
	status    string

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues

	// Loading
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

// tabCursors lists the tabs that keep a list cursor.
var tabCursors = [...]int{tabAnomalies, tabFlags, tabActions}

// NewApp creates a new dashboard model.
func NewApp(opts Options) App {
	if opts.RefreshInterval < 10*time.Second {
		opts.RefreshInterval = 60 * time.Second
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:    opts,
		spinner: sp,
		loadSub: make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadCmd(a.opts.Load, a.loadSub),
		a.spinner.Tick,
		tickCmd(),
	)
}

func cursorSlot(tab int) int {
	for i, t := range tabCursors {
		if t == tab {
			return i
		}
	}
	return -1
}

// listLen returns the number of rows in the active tab's list.
func (a App) listLen() int {
	switch a.activeTab {
	case tabAnomalies:
		return len(a.bundle.Anomalies)
	case tabFlags:
		return len(a.bundle.RiskFlags)
	case tabActions:
		return len(a.bundle.RecommendedActions)
	}
	return 0
}

func (a *App) moveCursor(delta int) {
	slot := cursorSlot(a.activeTab)
	if slot < 0 {
		return
	}
	n := a.listLen()
	c := a.cursors[slot] + delta
	c = min(c, n-1)
	a.cursors[slot] = max(c, 0)
}

func (a App) cursor() int {
	if slot := cursorSlot(a.activeTab); slot >= 0 {
		return a.cursors[slot]
	}
	return 0
}

// clampCursors keeps every cursor inside its list after a refresh.
func (a *App) clampCursors() {
	lens := [len(tabCursors)]int{
		len(a.bundle.Anomalies),
		len(a.bundle.RiskFlags),
		len(a.bundle.RecommendedActions),
	}
	for i := range a.cursors {
		a.cursors[i] = max(min(a.cursors[i], lens[i]-1), 0)
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			a.moveCursor(1)
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case BundleLoadedMsg:
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.lastRefresh = time.Now()
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.bundle = msg.Bundle
			a.clampCursors()
		}

		if a.opts.NeedSetup {
			a.setupVals = defaultSetupValues()
			a.setupForm = newSetupForm(a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case RefreshMsg:
		a.refreshing = false
		a.lastRefresh = time.Now()
		if msg.Err != nil {
			a.status = "refresh failed: " + msg.Err.Error()
			return a, nil
		}
		a.loadErr = nil
		a.bundle = msg.Bundle
		a.loadTime = msg.LoadTime
		a.clampCursors()
		return a, nil

	case DispatchedMsg:
		if msg.Err != nil {
			a.status = fmt.Sprintf("dispatch %s failed: %v", msg.ActionID, msg.Err)
		} else {
			a.status = "dispatched " + msg.ActionID
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.opts.AutoRefresh && !a.refreshing &&
			time.Since(a.lastRefresh) >= a.opts.RefreshInterval {
			a.refreshing = true
			cmds = append(cmds, refreshCmd(a.opts.Load))
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}

	// First-run setup wizard intercepts all keys
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if !a.refreshing {
			a.refreshing = true
			a.status = ""
			return a, refreshCmd(a.opts.Load)
		}
		return a, nil
	case "R":
		a.opts.AutoRefresh = !a.opts.AutoRefresh
		return a, nil
	case "j", "down":
		a.moveCursor(1)
		return a, nil
	case "k", "up":
		a.moveCursor(-1)
		return a, nil
	case "g":
		a.moveCursor(-a.listLen())
		return a, nil
	case "G":
		a.moveCursor(a.listLen())
		return a, nil
	case "enter", "d":
		if a.activeTab == tabActions {
			return a.dispatchSelected()
		}
		return a, nil
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) dispatchSelected() (tea.Model, tea.Cmd) {
	actions := a.bundle.RecommendedActions
	if len(actions) == 0 {
		return a, nil
	}
	if a.opts.Dispatcher == nil {
		a.status = "no dispatch sink configured"
		return a, nil
	}
	action := actions[a.cursor()]
	a.status = "dispatching " + action.ID + "…"
	return a, dispatchCmd(a.opts.Dispatcher, action)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := saveSetup(a.setupVals); err != nil {
			a.status = "could not save config: " + err.Error()
		} else {
			a.status = "config saved"
		}
		a.opts.NeedSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.opts.NeedSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  portsignal needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ portsignal"))
	b.WriteString(subtitleStyle.Render(" · Portfolio Signals"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := min(max(a.width-30, 20), 40)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Parsing snapshots\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Loading work items..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"o a f c", "Jump to tab"},
			{"← → tab", "Previous / Next tab"},
			{"j k", "Move selection"},
			{"g G", "First / Last item"},
		}},
		{"Actions", [][2]string{
			{"Enter d", "Dispatch selected action"},
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, components.StatusInfo{
		Source:      a.opts.SourceLabel,
		DataAge:     fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Refreshing:  a.refreshing,
		AutoRefresh: a.opts.AutoRefresh,
		Message:     a.status,
	})

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil:
		content = a.renderError(cw)
	case a.activeTab == tabOverview:
		content = a.renderOverviewTab(cw)
	case a.activeTab == tabAnomalies:
		content = a.renderAnomaliesTab(cw, contentH)
	case a.activeTab == tabFlags:
		content = a.renderFlagsTab(cw, contentH)
	case a.activeTab == tabActions:
		content = a.renderActionsTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderError(cw int) string {
	t := theme.Active
	body := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.loadErr.Error()) +
		"\n\n" + lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("Press r to retry.")
	return components.AccentCard("Load failed", body, cw, t.Red)
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadCmd runs the loader in a background goroutine, streaming ProgressMsg
// updates and a final BundleLoadedMsg through sub.
func loadCmd(load Loader, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()

			// Non-blocking send so loader workers aren't stalled.
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}

			b, err := load(context.Background(), progressFn)
			sub <- BundleLoadedMsg{Bundle: b, LoadTime: time.Since(start), Err: err}
		}()

		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func refreshCmd(load Loader) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		b, err := load(context.Background(), nil)
		return RefreshMsg{Bundle: b, LoadTime: time.Since(start), Err: err}
	}
}

func dispatchCmd(d dispatch.Dispatcher, action model.RecommendedAction) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := d.Dispatch(ctx, dispatch.Translate(action))
		return DispatchedMsg{ActionID: action.ID, Err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
