package ratio

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sadopc/ratiobreaks/internal/clock"
)

var epoch = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newTestTimer(t *testing.T, opts ...Option) (*Timer, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(epoch)
	tm, err := New(append([]Option{WithClock(clk)}, opts...)...)
	if err != nil {
		t.Fatalf("new timer: %v", err)
	}
	return tm, clk
}

func assertDuration(t *testing.T, name string, got, want time.Duration) {
	t.Helper()
	if got != want {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

// ============================================================
// Construction and ratio
// ============================================================

func TestNewDefaults(t *testing.T) {
	tm, _ := newTestTimer(t)

	if tm.Ratio() != DefaultRatio {
		t.Fatalf("ratio = %v, want %v", tm.Ratio(), DefaultRatio)
	}
	if tm.Status() != NotStarted {
		t.Fatalf("status = %v, want NotStarted", tm.Status())
	}
	if tm.Cycles() != 0 {
		t.Fatalf("cycles = %d, want 0", tm.Cycles())
	}
	if !tm.PhaseStartedAt().IsZero() {
		t.Fatal("PhaseStartedAt should be zero before start")
	}
	assertDuration(t, "work", tm.WorkTime(), 0)
	assertDuration(t, "rest", tm.RestTime(), 0)
	if tm.AllRestConsumed() {
		t.Fatal("rest cannot be consumed before any cycle")
	}
}

func TestNewWithRatio(t *testing.T) {
	for _, r := range []float64{5, 1.5, 0.25} {
		tm, _ := newTestTimer(t, WithRatio(r))
		if tm.Ratio() != r {
			t.Fatalf("ratio = %v, want %v", tm.Ratio(), r)
		}
	}
}

func TestNewWithInvalidRatio(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := New(WithRatio(r))
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("New(WithRatio(%v)) err = %v, want ErrInvalidArgument", r, err)
		}
	}
}

func TestNewUsesSystemClock(t *testing.T) {
	tm, err := New()
	if err != nil {
		t.Fatal(err)
	}
	tm.Start()
	if tm.WorkTime() < 0 {
		t.Fatal("work time must not be negative")
	}
}

func TestSetRatio(t *testing.T) {
	tm, _ := newTestTimer(t)

	if err := tm.SetRatio(4); err != nil {
		t.Fatal(err)
	}
	if tm.Ratio() != 4 {
		t.Fatalf("ratio = %v, want 4", tm.Ratio())
	}

	tm.ResetRatio()
	if tm.Ratio() != DefaultRatio {
		t.Fatalf("ResetRatio: ratio = %v, want %v", tm.Ratio(), DefaultRatio)
	}
}

func TestSetRatioRejectsInvalidAndKeepsPrevious(t *testing.T) {
	tm, _ := newTestTimer(t, WithRatio(2))

	for _, r := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		if err := tm.SetRatio(r); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("SetRatio(%v) err = %v, want ErrInvalidArgument", r, err)
		}
		if tm.Ratio() != 2 {
			t.Fatalf("ratio changed to %v after rejected SetRatio(%v)", tm.Ratio(), r)
		}
	}
}

func TestSetRatioTextNonNumeric(t *testing.T) {
	tm, _ := newTestTimer(t)

	err := tm.SetRatioText("abc")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if tm.Ratio() != DefaultRatio {
		t.Fatalf("ratio = %v, want unchanged %v", tm.Ratio(), DefaultRatio)
	}

	if err := tm.SetRatioText(" 1.5 "); err != nil {
		t.Fatal(err)
	}
	if tm.Ratio() != 1.5 {
		t.Fatalf("ratio = %v, want 1.5", tm.Ratio())
	}
}

func TestParseRatio(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"3", 3, false},
		{"2.5", 2.5, false},
		{"1e1", 10, false},
		{"", 0, true},
		{"abc", 0, true},
		{"0", 0, true},
		{"-2", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRatio(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("ParseRatio(%q) err = %v, want ErrInvalidArgument", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRatio(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseRatio(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPhaseString(t *testing.T) {
	tests := map[Phase]string{
		NotStarted: "Not started",
		Working:    "Working",
		Resting:    "Resting",
		Phase(42):  "Unknown",
	}
	for p, want := range tests {
		if p.String() != want {
			t.Fatalf("Phase(%d).String() = %q, want %q", int(p), p.String(), want)
		}
	}
}

// ============================================================
// Transitions
// ============================================================

func TestStartAppendsTimestamp(t *testing.T) {
	tm, clk := newTestTimer(t)

	tm.Start()
	if tm.Status() != Working {
		t.Fatalf("status = %v, want Working", tm.Status())
	}
	if tm.Cycles() != 1 || !tm.PhaseStartedAt().Equal(epoch) {
		t.Fatalf("cycles = %d, started = %v", tm.Cycles(), tm.PhaseStartedAt())
	}

	clk.Advance(time.Minute)
	tm.Rest()
	if tm.Cycles() != 2 || !tm.PhaseStartedAt().Equal(epoch.Add(time.Minute)) {
		t.Fatalf("cycles = %d, started = %v", tm.Cycles(), tm.PhaseStartedAt())
	}
}

func TestWorkTimeWhileWorking(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()

	clk.Advance(9 * time.Second)
	assertDuration(t, "work", tm.WorkTime(), 9*time.Second)
	assertDuration(t, "rest", tm.RestTime(), 3*time.Second)
}

func TestWorkTimeFrozenWhileResting(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(30 * time.Second)
	tm.Rest()

	clk.Advance(5 * time.Second)
	assertDuration(t, "work", tm.WorkTime(), 30*time.Second)
}

// Scenario A: nine units of work at ratio 3 earn three units of rest.
func TestScenarioWorkThenRest(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(9 * time.Minute)
	assertDuration(t, "work", tm.WorkTime(), 9*time.Minute)

	tm.Rest()
	if tm.Status() != Resting {
		t.Fatalf("status = %v, want Resting", tm.Status())
	}
	assertDuration(t, "rest", tm.RestTime(), 3*time.Minute)
	assertDuration(t, "work", tm.WorkTime(), 9*time.Minute)
}

// Scenario B: resting for the whole budget empties it.
func TestScenarioRestConsumed(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(9 * time.Minute)
	tm.Rest()

	clk.Advance(3 * time.Minute)
	assertDuration(t, "rest", tm.RestTime(), 0)
	if !tm.AllRestConsumed() {
		t.Fatal("rest should be consumed")
	}

	// Overrunning the budget clamps at zero.
	clk.Advance(time.Hour)
	assertDuration(t, "rest", tm.RestTime(), 0)
	if !tm.AllRestConsumed() {
		t.Fatal("rest should stay consumed")
	}
}

// Scenario C: unspent rest carries over into the next work phase.
func TestScenarioCarryOver(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(9 * time.Minute)
	tm.Rest()

	clk.Advance(time.Minute)
	assertDuration(t, "rest", tm.RestTime(), 2*time.Minute)

	tm.ContinueWork()
	if tm.Status() != Working {
		t.Fatalf("status = %v, want Working", tm.Status())
	}
	assertDuration(t, "rest after continue", tm.RestTime(), 2*time.Minute)

	clk.Advance(6 * time.Minute)
	assertDuration(t, "rest", tm.RestTime(), 4*time.Minute)
	assertDuration(t, "work", tm.WorkTime(), 15*time.Minute)

	tm.Rest()
	assertDuration(t, "rest after second rest", tm.RestTime(), 4*time.Minute)
	if tm.AllRestConsumed() {
		t.Fatal("rest should not be consumed")
	}
}

// Scenario E: a second Rest without an intervening ContinueWork is a
// re-checkpoint and changes nothing observable.
func TestRestTwice(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(9 * time.Minute)
	tm.Rest()
	clk.Advance(time.Minute)

	workBefore, restBefore := tm.WorkAndRestTime()
	tm.Rest()
	workAfter, restAfter := tm.WorkAndRestTime()

	if tm.Status() != Resting {
		t.Fatalf("status = %v, want Resting", tm.Status())
	}
	assertDuration(t, "work", workAfter, workBefore)
	assertDuration(t, "rest", restAfter, restBefore)
	assertDuration(t, "rest", restAfter, 2*time.Minute)

	// The budget keeps draining from where it was.
	clk.Advance(90 * time.Second)
	assertDuration(t, "rest", tm.RestTime(), 30*time.Second)
	clk.Advance(time.Minute)
	assertDuration(t, "rest", tm.RestTime(), 0)
}

func TestRestBeforeStartIsNoop(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Rest()
	clk.Advance(time.Minute)

	if tm.Status() != NotStarted || tm.Cycles() != 0 {
		t.Fatalf("status = %v cycles = %d, want untouched", tm.Status(), tm.Cycles())
	}
	if tm.AllRestConsumed() {
		t.Fatal("rest cannot be consumed before any cycle")
	}
}

func TestStartWhileWorkingKeepsTotals(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(6 * time.Minute)

	tm.Start()
	assertDuration(t, "work", tm.WorkTime(), 6*time.Minute)
	assertDuration(t, "rest", tm.RestTime(), 2*time.Minute)

	clk.Advance(3 * time.Minute)
	assertDuration(t, "work", tm.WorkTime(), 9*time.Minute)
	assertDuration(t, "rest", tm.RestTime(), 3*time.Minute)
}

func TestStartFromRestingMatchesContinueWork(t *testing.T) {
	a, clkA := newTestTimer(t)
	b, clkB := newTestTimer(t)
	for _, pair := range []struct {
		tm  *Timer
		clk *clock.Manual
	}{{a, clkA}, {b, clkB}} {
		pair.tm.Start()
		pair.clk.Advance(9 * time.Minute)
		pair.tm.Rest()
		pair.clk.Advance(time.Minute)
	}

	a.Start()
	b.ContinueWork()
	clkA.Advance(3 * time.Minute)
	clkB.Advance(3 * time.Minute)

	wa, ra := a.WorkAndRestTime()
	wb, rb := b.WorkAndRestTime()
	assertDuration(t, "work", wa, wb)
	assertDuration(t, "rest", ra, rb)
	assertDuration(t, "rest", ra, 3*time.Minute)
}

func TestReset(t *testing.T) {
	tm, clk := newTestTimer(t, WithRatio(2))
	tm.Start()
	clk.Advance(10 * time.Minute)
	tm.Rest()
	clk.Advance(10 * time.Minute)

	tm.Reset()
	if tm.Status() != NotStarted {
		t.Fatalf("status = %v, want NotStarted", tm.Status())
	}
	assertDuration(t, "work", tm.WorkTime(), 0)
	assertDuration(t, "rest", tm.RestTime(), 0)
	if tm.AllRestConsumed() {
		t.Fatal("AllRestConsumed should be false after reset")
	}
	if tm.Cycles() != 0 {
		t.Fatalf("cycles = %d, want 0", tm.Cycles())
	}
	if tm.Ratio() != 2 {
		t.Fatalf("reset must keep ratio, got %v", tm.Ratio())
	}

	// The timer is fully usable again.
	tm.Start()
	clk.Advance(4 * time.Minute)
	assertDuration(t, "rest", tm.RestTime(), 2*time.Minute)
}

func TestResetFromEveryPhase(t *testing.T) {
	for _, setup := range []func(*Timer){
		func(*Timer) {},
		func(tm *Timer) { tm.Start() },
		func(tm *Timer) { tm.Start(); tm.Rest() },
	} {
		tm, clk := newTestTimer(t)
		setup(tm)
		clk.Advance(time.Minute)
		tm.Reset()
		if tm.Status() != NotStarted || tm.WorkTime() != 0 || tm.RestTime() != 0 {
			t.Fatalf("reset left state %v work=%v rest=%v", tm.Status(), tm.WorkTime(), tm.RestTime())
		}
	}
}

// ============================================================
// Ratio changes mid-cycle
// ============================================================

func TestSetRatioIsNotRetroactive(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(9 * time.Minute)
	tm.Rest()
	tm.ContinueWork() // saves 3m of rest at ratio 3

	if err := tm.SetRatio(6); err != nil {
		t.Fatal(err)
	}
	assertDuration(t, "saved rest", tm.RestTime(), 3*time.Minute)

	clk.Advance(6 * time.Minute)
	assertDuration(t, "rest", tm.RestTime(), 4*time.Minute)
}

func TestSetRatioAppliesToRunningInterval(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(6 * time.Minute)

	if err := tm.SetRatio(2); err != nil {
		t.Fatal(err)
	}
	// Live computation uses the new ratio for the whole open interval.
	assertDuration(t, "rest", tm.RestTime(), 3*time.Minute)
}

// ============================================================
// Properties
// ============================================================

func TestRestNeverNegative(t *testing.T) {
	tm, clk := newTestTimer(t, WithRatio(1.7))
	steps := []time.Duration{
		7 * time.Second, 13 * time.Second, 2 * time.Second,
		time.Minute, 350 * time.Millisecond, 45 * time.Second,
	}
	actions := []func(){tm.Start, tm.Rest, tm.ContinueWork, tm.Rest, tm.Rest, tm.Start}

	for i := 0; i < 60; i++ {
		actions[i%len(actions)]()
		for j := 0; j < 3; j++ {
			clk.Advance(steps[(i+j)%len(steps)])
			if r := tm.RestTime(); r < 0 {
				t.Fatalf("step %d: rest = %v", i, r)
			}
			if w := tm.WorkTime(); w < 0 {
				t.Fatalf("step %d: work = %v", i, w)
			}
		}
	}
}

func TestRestSaturatesWithTinyRatio(t *testing.T) {
	tm, clk := newTestTimer(t, WithRatio(1e-9))
	tm.Start()
	clk.Advance(time.Hour)

	if r := tm.RestTime(); r != math.MaxInt64 {
		t.Fatalf("rest = %v, want saturated at %v", r, time.Duration(math.MaxInt64))
	}
	if tm.AllRestConsumed() {
		t.Fatal("saturated budget should not count as consumed")
	}

	// The saturated budget survives a rest and a further work interval.
	tm.Rest()
	clk.Advance(time.Minute)
	tm.ContinueWork()
	clk.Advance(time.Hour)
	if r := tm.RestTime(); r < 0 {
		t.Fatalf("rest = %v after carry-over", r)
	}
	if r := tm.RestTime(); r != math.MaxInt64 {
		t.Fatalf("rest = %v, want saturated", r)
	}
	assertDuration(t, "work", tm.WorkTime(), 2*time.Hour)
}

func TestAccrueAndAddSat(t *testing.T) {
	if got := accrue(time.Hour, 1e-12); got != math.MaxInt64 {
		t.Errorf("accrue overflow = %v", got)
	}
	if got := accrue(9*time.Minute, 3); got != 3*time.Minute {
		t.Errorf("accrue = %v, want 3m", got)
	}
	if got := addSat(math.MaxInt64-1, 2); got != math.MaxInt64 {
		t.Errorf("addSat overflow = %v", got)
	}
	if got := addSat(time.Second, time.Second); got != 2*time.Second {
		t.Errorf("addSat = %v", got)
	}
}

func TestRequeryIsStable(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(5 * time.Minute)

	for i := 0; i < 3; i++ {
		assertDuration(t, "work", tm.WorkTime(), 5*time.Minute)
		assertDuration(t, "rest", tm.RestTime(), 100*time.Second)
	}

	tm.Rest()
	clk.Advance(40 * time.Second)
	for i := 0; i < 3; i++ {
		assertDuration(t, "rest", tm.RestTime(), time.Minute)
	}
}

func TestRequeryStableWithSystemClock(t *testing.T) {
	tm, err := New()
	if err != nil {
		t.Fatal(err)
	}
	tm.Start()
	a := tm.WorkTime()
	b := tm.WorkTime()
	if diff := b - a; diff < 0 || diff > 50*time.Millisecond {
		t.Fatalf("back-to-back work times differ by %v", diff)
	}
}

func TestClockBackwardsCountsAsZero(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(3 * time.Minute)
	tm.Rest()

	clk.Set(epoch)
	assertDuration(t, "rest", tm.RestTime(), time.Minute)
	assertDuration(t, "work", tm.WorkTime(), 3*time.Minute)
}

func TestWorkAndRestViews(t *testing.T) {
	tm, clk := newTestTimer(t)
	tm.Start()
	clk.Advance(time.Hour + 30*time.Second)

	work, rest := tm.WorkAndRestViews()
	if work.String() != "01:00:30:00" {
		t.Fatalf("work view = %q", work.String())
	}
	if rest.String() != "20:10:00" {
		t.Fatalf("rest view = %q", rest.String())
	}
}
