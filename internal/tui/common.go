package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/ratiobreaks/internal/ratio"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewReports
	viewSettings
)

var viewNames = []string{"Timer", "Reports", "Settings"}

const (
	defaultRefresh     = 100 * time.Millisecond
	minRefresh         = 10 * time.Millisecond
	defaultAlertRepeat = 3 * time.Second
)

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// phaseChangedMsg follows a user action on the session.
type phaseChangedMsg struct {
	action string
}

type settingsSavedMsg struct {
	refresh     time.Duration
	alertRepeat time.Duration
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	return ratio.NewSimpleTime(d).String()
}

func formatHours(d time.Duration) string {
	return fmt.Sprintf("%.1fh", d.Hours())
}

// refreshInterval converts a stored refresh_ms value to a tick interval.
func refreshInterval(ms int) time.Duration {
	if ms <= 0 {
		return defaultRefresh
	}
	return max(time.Duration(ms)*time.Millisecond, minRefresh)
}

func alertRepeatInterval(secs int) time.Duration {
	if secs <= 0 {
		return defaultAlertRepeat
	}
	return time.Duration(secs) * time.Second
}
