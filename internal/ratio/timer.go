// Package ratio converts time spent working into an accruing rest budget.
//
// Work fills the budget at 1/ratio of wall time and resting drains it 1:1,
// never below zero. State is checkpointed at each phase transition and every
// query recomputes from the last checkpoint, so reads have no side effects.
//
// A Timer is not safe for concurrent use.
package ratio

import (
	"math"
	"time"

	"github.com/sadopc/ratiobreaks/internal/clock"
)

// DefaultRatio grants one unit of rest for every three units worked.
const DefaultRatio = 3.0

// Phase is the current mode of a Timer.
type Phase int

const (
	NotStarted Phase = iota
	Working
	Resting
)

var phaseNames = map[Phase]string{
	NotStarted: "Not started",
	Working:    "Working",
	Resting:    "Resting",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "Unknown"
}

// Timer tracks work intervals and the rest budget they earn.
type Timer struct {
	clock clock.Clock
	ratio float64
	phase Phase

	// timestamps holds one entry per transition; the last marks the start
	// of the current phase.
	timestamps []time.Time
	savedWork  time.Duration
	savedRest  time.Duration
}

// Option configures a Timer at construction.
type Option func(*Timer) error

// WithRatio sets the initial work:rest ratio.
func WithRatio(r float64) Option {
	return func(t *Timer) error {
		if err := ValidateRatio(r); err != nil {
			return err
		}
		t.ratio = r
		return nil
	}
}

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option {
	return func(t *Timer) error {
		t.clock = c
		return nil
	}
}

// New returns a NotStarted timer. Without options the ratio is DefaultRatio
// and time comes from clock.System.
func New(opts ...Option) (*Timer, error) {
	t := &Timer{
		clock: clock.System{},
		ratio: DefaultRatio,
		phase: NotStarted,
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Start enters the Working phase. From Resting it behaves like ContinueWork.
func (t *Timer) Start() {
	t.transition(Working)
}

// Rest folds the finished work interval into the saved totals and enters the
// Resting phase. Calling it while already Resting only re-checkpoints, which
// leaves both WorkTime and RestTime unchanged. Before any Start it is a no-op.
func (t *Timer) Rest() {
	if t.phase == NotStarted {
		return
	}
	t.transition(Resting)
}

// ContinueWork keeps whatever rest budget is left and returns to Working.
func (t *Timer) ContinueWork() {
	t.transition(Working)
}

// Reset discards all history and returns to the zeroed NotStarted state.
// The ratio is kept.
func (t *Timer) Reset() {
	t.phase = NotStarted
	t.timestamps = nil
	t.savedWork = 0
	t.savedRest = 0
}

func (t *Timer) transition(next Phase) {
	now := t.clock.Now()
	t.checkpoint(now)
	t.timestamps = append(t.timestamps, now)
	t.phase = next
}

// checkpoint folds everything elapsed in the current phase into savedWork and
// savedRest.
func (t *Timer) checkpoint(now time.Time) {
	t.savedRest = t.restAt(now)
	if t.phase == Working {
		t.savedWork = addSat(t.savedWork, t.elapsed(now))
	}
}

// Ratio returns the current work:rest ratio.
func (t *Timer) Ratio() float64 {
	return t.ratio
}

// SetRatio changes the ratio for all later accrual. Rest already saved is not
// recomputed. On error the previous ratio stays in effect.
func (t *Timer) SetRatio(r float64) error {
	if err := ValidateRatio(r); err != nil {
		return err
	}
	t.ratio = r
	return nil
}

// SetRatioText parses s with ParseRatio and applies it.
func (t *Timer) SetRatioText(s string) error {
	r, err := ParseRatio(s)
	if err != nil {
		return err
	}
	t.ratio = r
	return nil
}

// ResetRatio restores DefaultRatio.
func (t *Timer) ResetRatio() {
	t.ratio = DefaultRatio
}

// Status returns the current phase.
func (t *Timer) Status() Phase {
	return t.phase
}

// Cycles returns how many phases have been entered since the last reset.
func (t *Timer) Cycles() int {
	return len(t.timestamps)
}

// PhaseStartedAt returns when the current phase began, or the zero time if
// the timer has not started.
func (t *Timer) PhaseStartedAt() time.Time {
	if len(t.timestamps) == 0 {
		return time.Time{}
	}
	return t.timestamps[len(t.timestamps)-1]
}

// WorkTime returns all work done so far, including the running interval.
func (t *Timer) WorkTime() time.Duration {
	return t.workAt(t.clock.Now())
}

// RestTime returns the rest budget currently available.
func (t *Timer) RestTime() time.Duration {
	return t.restAt(t.clock.Now())
}

// WorkAndRestTime reads both durations against a single clock reading.
func (t *Timer) WorkAndRestTime() (work, rest time.Duration) {
	now := t.clock.Now()
	return t.workAt(now), t.restAt(now)
}

// WorkAndRestViews is WorkAndRestTime wrapped for display.
func (t *Timer) WorkAndRestViews() (work, rest SimpleTime) {
	w, r := t.WorkAndRestTime()
	return NewSimpleTime(w), NewSimpleTime(r)
}

// AllRestConsumed reports whether a cycle has ever started and the rest
// budget is now empty.
func (t *Timer) AllRestConsumed() bool {
	return len(t.timestamps) > 0 && t.RestTime() == 0
}

func (t *Timer) workAt(now time.Time) time.Duration {
	if t.phase == Working {
		return addSat(t.savedWork, t.elapsed(now))
	}
	return t.savedWork
}

func (t *Timer) restAt(now time.Time) time.Duration {
	switch t.phase {
	case Working:
		return addSat(t.savedRest, accrue(t.elapsed(now), t.ratio))
	case Resting:
		remaining := t.savedRest - t.elapsed(now)
		if remaining < 0 {
			return 0
		}
		return remaining
	}
	return t.savedRest
}

// accrue converts work into earned rest, saturating at the largest Duration.
func accrue(work time.Duration, r float64) time.Duration {
	v := float64(work) / r
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	if v <= 0 {
		return 0
	}
	return time.Duration(v)
}

// addSat adds two non-negative durations, saturating instead of wrapping.
func addSat(a, b time.Duration) time.Duration {
	if a < 0 {
		a = 0
	}
	if b < 0 {
		b = 0
	}
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// elapsed is the time spent in the current phase. A clock reading before the
// phase start counts as zero.
func (t *Timer) elapsed(now time.Time) time.Duration {
	if len(t.timestamps) == 0 {
		return 0
	}
	d := now.Sub(t.timestamps[len(t.timestamps)-1])
	if d < 0 {
		return 0
	}
	return d
}
