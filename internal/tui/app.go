package tui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ratiobreaks/internal/export"
	"github.com/sadopc/ratiobreaks/internal/ratio"
	"github.com/sadopc/ratiobreaks/internal/session"
	"github.com/sadopc/ratiobreaks/internal/store"
)

// Options configures the App beyond the stored settings.
type Options struct {
	// Bell receives "\a" while the alarm is active. Nil disables it.
	Bell io.Writer
	// ExportDir is where the export picker writes. Defaults to the home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	store   *store.Store
	session *session.Session
	width   int
	height  int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	exportDir     string
	refresh       time.Duration

	timer    timerModel
	reports  reportsModel
	settings settingsModel

	help   help.Model
	status string
}

func NewApp(s *store.Store, sess *session.Session, opts Options) App {
	h := help.New()
	h.ShowAll = false

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir, _ = os.UserHomeDir()
	}

	return App{
		store:      s,
		session:    sess,
		activeView: viewTimer,
		exportDir:  exportDir,
		refresh:    refreshInterval(s.GetInt(store.KeyRefreshMS, 100)),
		timer:      newTimerModel(s, sess, opts.Bell, alertRepeatInterval(s.GetInt(store.KeyAlertRepeatS, 3))),
		reports:    newReportsModel(s),
		settings:   newSettingsModel(s, sess),
		help:       h,
	}
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(s *store.Store, sess *session.Session, opts Options) error {
	p := tea.NewProgram(NewApp(s, sess, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.timer.Init(),
		tickCmd(a.refresh),
	)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// Export picker
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, a.timer.loadData()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

		// Timer actions work from every tab.
		if a.activeView != viewTimer && isTimerKey(msg) {
			var cmd tea.Cmd
			a.timer, cmd = a.timer.update(msg)
			return a, cmd
		}

	case tickMsg:
		// Always route ticks to the timer, whatever tab is visible.
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		return a, tea.Batch(tickCmd(a.refresh), cmd)

	case statusMsg:
		a.status = msg.text
		return a, nil

	case phaseChangedMsg:
		a.status = msg.action
		if a.activeView == viewReports {
			return a, a.reports.refresh()
		}
		return a, nil

	case settingsSavedMsg:
		a.refresh = msg.refresh
		a.timer.alertRepeat = msg.alertRepeat
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil

	case timerDataMsg:
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func isTimerKey(msg tea.KeyMsg) bool {
	return key.Matches(msg, keys.Start, keys.Rest, keys.Continue, keys.Mute)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTimer:
		return a.timer.confirmReset
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTimer:
		return a.timer.loadData()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	// Show export picker overlay
	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("ratiobreaks")
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Phase indicator in footer
	phaseInfo := ""
	snap := a.timer.snap
	switch snap.Phase {
	case ratio.Working:
		phaseInfo = successStyle.Render(" ● " + snap.WorkView.String())
	case ratio.Resting:
		phaseInfo = warningStyle.Render(" ⏸ " + snap.RestView.String())
	}
	if snap.AlarmActive {
		phaseInfo = errorStyle.Render(" ! rest over")
	}

	left := footerStyle.Render(helpView)
	right := phaseInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+formatLabel(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatLabel(f export.Format) string {
	switch f {
	case export.FormatCSV:
		return "CSV"
	case export.FormatJSON:
		return "JSON"
	case export.FormatYAML:
		return "YAML"
	}
	return string(f)
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(f export.Format) tea.Cmd {
	return func() tea.Msg {
		cycles, err := a.store.ListCycles(store.CycleFilter{})
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		dateStr := time.Now().Format("2006-01-02")
		path := filepath.Join(a.exportDir, fmt.Sprintf("ratiobreaks-export-%s.%s", dateStr, f))
		if err := export.Write(f, cycles, path); err != nil {
			return statusMsg{text: fmt.Sprintf("%s error: %v", formatLabel(f), err), isError: true}
		}

		return exportDoneMsg{path: path}
	}
}
