// Package session owns one ratio timer on behalf of a single user session,
// together with the alarm flags the frontend reacts to. Every call is
// serialized by one mutex, so a Session may be shared between the UI loop and
// background commands.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/ratiobreaks/internal/clock"
	"github.com/sadopc/ratiobreaks/internal/ratio"
)

// Cycle is one finished Working or Resting interval.
type Cycle struct {
	SessionID string
	Phase     ratio.Phase
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	// RestAfter is the rest budget left when the interval closed.
	RestAfter time.Duration
}

// Recorder receives cycles as they close.
type Recorder interface {
	RecordCycle(Cycle) error
}

// Alert holds the notification flags for the current rest.
type Alert struct {
	PlaySound    bool
	Muted        bool
	RestConsumed bool
}

// Config configures a new Session.
type Config struct {
	Ratio     float64 // zero means ratio.DefaultRatio
	PlaySound bool
	Clock     clock.Clock
	Recorder  Recorder
	Logger    *slog.Logger
}

// Session is the explicit per-user context that wraps a ratio.Timer.
type Session struct {
	mu       sync.Mutex
	id       string
	timer    *ratio.Timer
	alert    Alert
	recorder Recorder
	log      *slog.Logger
}

// New creates a session with a fresh NotStarted timer.
func New(cfg Config) (*Session, error) {
	opts := []ratio.Option{}
	if cfg.Ratio != 0 {
		opts = append(opts, ratio.WithRatio(cfg.Ratio))
	}
	if cfg.Clock != nil {
		opts = append(opts, ratio.WithClock(cfg.Clock))
	}
	timer, err := ratio.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create timer: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()

	return &Session{
		id:       id,
		timer:    timer,
		alert:    Alert{PlaySound: cfg.PlaySound, Muted: true},
		recorder: cfg.Recorder,
		log:      logger.With("session", id),
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transition(s.timer.Start)
}

// Rest switches to resting and re-arms the alarm if sound is enabled.
func (s *Session) Rest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer.Status() == ratio.NotStarted {
		return
	}
	s.transition(s.timer.Rest)
	s.alert.RestConsumed = false
	if s.alert.PlaySound {
		s.alert.Muted = false
	}
}

// ContinueWork returns to working and silences the alarm.
func (s *Session) ContinueWork() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transition(s.timer.ContinueWork)
	s.alert.Muted = true
}

// Reset discards the timer history. The open interval is not recorded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer.Reset()
	s.alert.Muted = true
	s.alert.RestConsumed = false
	s.log.Info("timer reset")
}

func (s *Session) MuteAlarm() {
	s.mu.Lock()
	s.alert.Muted = true
	s.mu.Unlock()
}

func (s *Session) SetPlaySound(on bool) {
	s.mu.Lock()
	s.alert.PlaySound = on
	s.mu.Unlock()
}

func (s *Session) Ratio() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Ratio()
}

// SetRatio applies r to all later accrual.
func (s *Session) SetRatio(r float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.timer.SetRatio(r); err != nil {
		return err
	}
	s.log.Info("ratio changed", "ratio", r)
	return nil
}

// SetRatioText parses and applies user-entered ratio text.
func (s *Session) SetRatioText(text string) error {
	r, err := ratio.ParseRatio(text)
	if err != nil {
		return err
	}
	return s.SetRatio(r)
}

// CheckRestConsumed latches Alert.RestConsumed once the budget runs out while
// resting, and reports whether it did so on this call.
func (s *Session) CheckRestConsumed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkRestConsumedLocked()
}

// AlarmActive reports whether the caller should be alerting the user.
func (s *Session) AlarmActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alarmActiveLocked()
}

// Snapshot is a consistent read of the session at one instant.
type Snapshot struct {
	Phase          ratio.Phase
	Ratio          float64
	Work           time.Duration
	Rest           time.Duration
	WorkView       ratio.SimpleTime
	RestView       ratio.SimpleTime
	PhaseStartedAt time.Time
	Cycles         int
	Alert          Alert
	AlarmActive    bool
}

// Snapshot reads the timer and evaluates the rest-consumed latch.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkRestConsumedLocked()
	work, rest := s.timer.WorkAndRestTime()
	return Snapshot{
		Phase:          s.timer.Status(),
		Ratio:          s.timer.Ratio(),
		Work:           work,
		Rest:           rest,
		WorkView:       ratio.NewSimpleTime(work),
		RestView:       ratio.NewSimpleTime(rest),
		PhaseStartedAt: s.timer.PhaseStartedAt(),
		Cycles:         s.timer.Cycles(),
		Alert:          s.alert,
		AlarmActive:    s.alarmActiveLocked(),
	}
}

func (s *Session) checkRestConsumedLocked() bool {
	if s.timer.Status() == ratio.Resting && s.timer.AllRestConsumed() {
		if !s.alert.RestConsumed {
			s.log.Info("rest budget consumed")
		}
		s.alert.RestConsumed = true
		return true
	}
	return false
}

func (s *Session) alarmActiveLocked() bool {
	return s.alert.RestConsumed && s.alert.PlaySound && !s.alert.Muted
}

// transition runs fn and reports the interval it closed, if any.
func (s *Session) transition(fn func()) {
	prev := s.timer.Status()
	startedAt := s.timer.PhaseStartedAt()

	fn()

	next := s.timer.Status()
	s.log.Info("phase transition", "from", prev.String(), "to", next.String())
	if prev == ratio.NotStarted || s.recorder == nil {
		return
	}

	endedAt := s.timer.PhaseStartedAt()
	c := Cycle{
		SessionID: s.id,
		Phase:     prev,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		Duration:  endedAt.Sub(startedAt),
		RestAfter: s.timer.RestTime(),
	}
	if c.Duration < 0 {
		c.Duration = 0
	}
	if err := s.recorder.RecordCycle(c); err != nil {
		s.log.Error("record cycle", "phase", prev.String(), "err", err)
	}
}
