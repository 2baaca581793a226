package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ratiobreaks/internal/ratio"
	"github.com/sadopc/ratiobreaks/internal/session"
	"github.com/sadopc/ratiobreaks/internal/store"
)

type settingsModel struct {
	store   *store.Store
	session *session.Session
	width   int
	height  int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	ratio        *string
	playSound    *string
	refreshMS    *string
	alertRepeatS *string
}

func newSettingsModel(s *store.Store, sess *session.Session) settingsModel {
	r, ps, rm, ar := "", "", "", ""
	return settingsModel{
		store:        s,
		session:      sess,
		ratio:        &r,
		playSound:    &ps,
		refreshMS:    &rm,
		alertRepeatS: &ar,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		if err != nil {
			slog.Warn("load settings", "err", err)
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Enter) {
			return s.showForm()
		}
	}
	return s, nil
}

func validateRatio(v string) error {
	_, err := ratio.ParseRatio(v)
	return err
}

func validatePositiveInt(v string) error {
	_, err := parsePositiveInt(v)
	return err
}

func parsePositiveInt(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	if n <= 0 {
		return 0, errors.New("must be greater than zero")
	}
	return n, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.ratio = strconv.FormatFloat(s.session.Ratio(), 'f', -1, 64)
	*s.playSound = strconv.FormatBool(s.store.GetBool(store.KeyPlaySound, true))
	*s.refreshMS = strconv.Itoa(s.store.GetInt(store.KeyRefreshMS, 100))
	*s.alertRepeatS = strconv.Itoa(s.store.GetInt(store.KeyAlertRepeatS, 3))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work to rest ratio").
				Description("Minutes of work that earn one minute of rest").
				Value(s.ratio).
				Validate(validateRatio),
			huh.NewSelect[string]().Title("Alarm when rest runs out").
				Options(
					huh.NewOption("On", "true"),
					huh.NewOption("Off", "false"),
				).Value(s.playSound),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewInput().Title("Refresh interval (ms)").Value(s.refreshMS).Validate(validatePositiveInt),
			huh.NewInput().Title("Alarm repeat (s)").Value(s.alertRepeatS).Validate(validatePositiveInt),
		).Title("Display"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		saved, err := s.saveSettings()
		if err != nil {
			return s, tea.Batch(s.refresh(), func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Settings error: %v", err), isError: true}
			})
		}
		return s, tea.Batch(
			s.refresh(),
			func() tea.Msg { return saved },
			func() tea.Msg { return statusMsg{text: "Settings saved"} },
		)
	}

	return s, cmd
}

// saveSettings validates every form value, stores them together and then
// applies them to the live session. Nothing changes if any value is invalid.
// The new ratio only affects accrual from now on.
func (s settingsModel) saveSettings() (settingsSavedMsg, error) {
	r, err := ratio.ParseRatio(*s.ratio)
	if err != nil {
		return settingsSavedMsg{}, err
	}
	playSound, err := strconv.ParseBool(*s.playSound)
	if err != nil {
		return settingsSavedMsg{}, fmt.Errorf("alarm: %w", err)
	}
	refresh, err := parsePositiveInt(*s.refreshMS)
	if err != nil {
		return settingsSavedMsg{}, fmt.Errorf("refresh interval: %w", err)
	}
	repeat, err := parsePositiveInt(*s.alertRepeatS)
	if err != nil {
		return settingsSavedMsg{}, fmt.Errorf("alarm repeat: %w", err)
	}

	err = s.store.SetSettings(
		store.Setting{Key: store.KeyRatio, Value: strconv.FormatFloat(r, 'f', -1, 64)},
		store.Setting{Key: store.KeyPlaySound, Value: strconv.FormatBool(playSound)},
		store.Setting{Key: store.KeyRefreshMS, Value: strconv.Itoa(refresh)},
		store.Setting{Key: store.KeyAlertRepeatS, Value: strconv.Itoa(repeat)},
	)
	if err != nil {
		return settingsSavedMsg{}, err
	}

	if err := s.session.SetRatio(r); err != nil {
		return settingsSavedMsg{}, err
	}
	s.session.SetPlaySound(playSound)

	return settingsSavedMsg{
		refresh:     refreshInterval(refresh),
		alertRepeat: alertRepeatInterval(repeat),
	}, nil
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingLabel(k string) string {
	switch k {
	case store.KeyRatio:
		return "Work to rest ratio"
	case store.KeyPlaySound:
		return "Alarm"
	case store.KeyRefreshMS:
		return "Refresh interval"
	case store.KeyAlertRepeatS:
		return "Alarm repeat"
	}
	return k
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.KeyRatio:
		return v + " : 1"
	case store.KeyPlaySound:
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				return "on"
			}
			return "off"
		}
	case store.KeyRefreshMS:
		if ms, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d ms", ms)
		}
	case store.KeyAlertRepeatS:
		if secs, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("every %d s", secs)
		}
	}
	return v
}
