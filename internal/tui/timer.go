package tui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ratiobreaks/internal/ratio"
	"github.com/sadopc/ratiobreaks/internal/session"
	"github.com/sadopc/ratiobreaks/internal/store"
)

// timerModel is the Timer tab. All accounting lives in the session; this
// model only reads snapshots and forwards the user's actions.
type timerModel struct {
	store   *store.Store
	session *session.Session
	width   int
	height  int

	snap         session.Snapshot
	confirmReset bool

	todayWork time.Duration
	todayRest time.Duration
	recent    []store.Cycle

	// Terminal bell while the alarm is active.
	bell        io.Writer
	alertRepeat time.Duration
	lastBell    time.Time
}

func newTimerModel(s *store.Store, sess *session.Session, bell io.Writer, alertRepeat time.Duration) timerModel {
	return timerModel{
		store:       s,
		session:     sess,
		snap:        sess.Snapshot(),
		bell:        bell,
		alertRepeat: alertRepeat,
	}
}

func (t timerModel) Init() tea.Cmd {
	return t.loadData()
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type timerDataMsg struct {
	todayWork time.Duration
	todayRest time.Duration
	recent    []store.Cycle
}

func (t timerModel) loadData() tea.Cmd {
	return func() tea.Msg {
		work, rest, err := t.store.GetTodayTotals()
		if err != nil {
			slog.Warn("load today's totals", "err", err)
		}
		recent, err := t.store.ListCycles(store.CycleFilter{Limit: 5})
		if err != nil {
			slog.Warn("load recent cycles", "err", err)
		}
		return timerDataMsg{todayWork: work, todayRest: rest, recent: recent}
	}
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case timerDataMsg:
		t.todayWork = msg.todayWork
		t.todayRest = msg.todayRest
		t.recent = msg.recent
		return t, nil

	case tickMsg:
		return t.tick(time.Time(msg))

	case tea.KeyMsg:
		if t.confirmReset {
			return t.updateConfirm(msg)
		}

		switch {
		case key.Matches(msg, keys.Start):
			if t.snap.Phase != ratio.NotStarted {
				return t, nil
			}
			t.session.Start()
			return t.afterAction("Started working")

		case key.Matches(msg, keys.Rest):
			if t.snap.Phase != ratio.Working {
				return t, nil
			}
			t.session.Rest()
			return t.afterAction("Resting")

		case key.Matches(msg, keys.Continue):
			if t.snap.Phase != ratio.Resting {
				return t, nil
			}
			t.session.ContinueWork()
			return t.afterAction("Back to work")

		case key.Matches(msg, keys.Mute):
			t.session.MuteAlarm()
			t.snap = t.session.Snapshot()
			return t, func() tea.Msg { return statusMsg{text: "Alarm muted"} }

		case key.Matches(msg, keys.Reset):
			if t.snap.Phase == ratio.NotStarted {
				return t, nil
			}
			t.confirmReset = true
			return t, nil
		}
	}
	return t, nil
}

func (t timerModel) updateConfirm(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Confirm):
		t.confirmReset = false
		t.session.Reset()
		return t.afterAction("Timer reset")
	case key.Matches(msg, keys.Back):
		t.confirmReset = false
	}
	return t, nil
}

func (t timerModel) afterAction(action string) (timerModel, tea.Cmd) {
	t.snap = t.session.Snapshot()
	t.lastBell = time.Time{}
	return t, tea.Batch(
		t.loadData(),
		func() tea.Msg { return phaseChangedMsg{action: action} },
	)
}

// tick refreshes the snapshot and rings the bell at most once per alertRepeat
// while the alarm is active.
func (t timerModel) tick(now time.Time) (timerModel, tea.Cmd) {
	t.snap = t.session.Snapshot()
	if !t.snap.AlarmActive || t.bell == nil {
		return t, nil
	}
	if !t.lastBell.IsZero() && now.Sub(t.lastBell) < t.alertRepeat {
		return t, nil
	}
	t.lastBell = now
	return t, ringBell(t.bell)
}

func ringBell(w io.Writer) tea.Cmd {
	return func() tea.Msg {
		io.WriteString(w, "\a")
		return nil
	}
}

func (t timerModel) view() string {
	if t.width < 20 {
		return "Terminal too small"
	}

	contentWidth := t.width - 4

	var panels []string
	if t.snap.AlarmActive {
		panels = append(panels, t.renderAlert(contentWidth))
	}
	panels = append(panels, t.renderTimerPanel(contentWidth))
	if t.confirmReset {
		panels = append(panels, t.renderConfirm(contentWidth))
	} else {
		panels = append(panels, t.renderSummaryPanel(contentWidth), t.renderRecentPanel(contentWidth))
	}

	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

func (t timerModel) renderAlert(w int) string {
	text := errorStyle.Bold(true).Render("Rest is over! Time to get back to work.")
	hint := mutedStyle.Render("c: continue  m: mute")
	return alertPanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, text, hint))
}

func (t timerModel) renderTimerPanel(w int) string {
	inner := w - 6

	worked := fmt.Sprintf("Worked time     %s", t.snap.WorkView)
	rest := fmt.Sprintf("Available rest  %s", t.snap.RestView)
	ratioLine := mutedStyle.Render(fmt.Sprintf("ratio %g : 1", t.snap.Ratio))

	switch t.snap.Phase {
	case ratio.Working:
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerWorkingStyle.Width(inner).Render(worked),
			timerStyle.Width(inner).Render(rest),
			successStyle.Render("●  WORKING"),
			ratioLine,
			mutedStyle.Render("Press r to take a rest"),
		)
		return activePanelStyle.Width(w).Render(content)

	case ratio.Resting:
		content := lipgloss.JoinVertical(lipgloss.Center,
			timerStyle.Width(inner).Render(worked),
			timerRestingStyle.Width(inner).Render(rest),
			warningStyle.Render("⏸  RESTING"),
			ratioLine,
			mutedStyle.Render("Press c to continue working"),
		)
		return activePanelStyle.Width(w).Render(content)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		timerStyle.Width(inner).Render(worked),
		timerStyle.Width(inner).Render(rest),
		mutedStyle.Render("■  NOT STARTED"),
		ratioLine,
		mutedStyle.Render("Press s to start working"),
	)
	return panelStyle.Width(w).Render(content)
}

func (t timerModel) renderConfirm(w int) string {
	title := accentStyle.Bold(true).Render("Are you sure?")
	body := "Resetting discards the worked time and the available rest."
	hint := mutedStyle.Render("  y: reset  esc: cancel")
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, body, "", hint))
}

func (t timerModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	if t.todayWork == 0 && t.todayRest == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No finished cycles today"),
		))
	}

	rows := []string{
		title,
		fmt.Sprintf("  %s %-8s %s", lipgloss.NewStyle().Foreground(colorPrimary).Render("●"), "Work", formatDuration(t.todayWork)),
		fmt.Sprintf("  %s %-8s %s", lipgloss.NewStyle().Foreground(colorSecondary).Render("●"), "Rest", formatDuration(t.todayRest)),
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t timerModel) renderRecentPanel(w int) string {
	title := titleStyle.Render("Recent Cycles")
	if len(t.recent) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No cycles yet"),
		))
	}

	var rows []string
	rows = append(rows, title)
	for _, c := range t.recent {
		marker := successStyle.Render("●")
		if c.Phase == ratio.Resting {
			marker = warningStyle.Render("⏸")
		}
		rows = append(rows, fmt.Sprintf("  %s %s  %-8s %s",
			marker,
			c.StartedAt.Local().Format("15:04"),
			c.Phase,
			formatDuration(c.Duration),
		))
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
