package ratio

import (
	"math"
	"testing"
	"time"
)

func TestSimpleTimeFields(t *testing.T) {
	d := 2*day + 3*time.Hour + 4*time.Minute + 5*time.Second + 678*time.Millisecond
	st := NewSimpleTime(d)

	if st.Days() != 2 || st.Hours() != 3 || st.Minutes() != 4 {
		t.Fatalf("d/h/m = %d/%d/%d", st.Days(), st.Hours(), st.Minutes())
	}
	if st.FullSeconds() != 5 || st.CentiSeconds() != 67 {
		t.Fatalf("s/cs = %d/%d", st.FullSeconds(), st.CentiSeconds())
	}
	if math.Abs(st.Seconds()-5.67) > 1e-9 {
		t.Fatalf("seconds = %v, want 5.67", st.Seconds())
	}
	if st.Duration() != d {
		t.Fatalf("duration = %v, want %v", st.Duration(), d)
	}
}

func TestSimpleTimeString(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{5 * time.Millisecond, "00:00:00"},
		{1230 * time.Millisecond, "00:01:23"},
		{59*time.Minute + 59*time.Second + 990*time.Millisecond, "59:59:99"},
		{time.Hour, "01:00:00:00"},
		{3*time.Hour + 2*time.Minute + time.Second + 40*time.Millisecond, "03:02:01:04"},
		{23*time.Hour + 59*time.Minute, "23:59:00:00"},
		{day, "1 day 00:00:00:00"},
		{day + 90*time.Second, "1 day 00:01:30:00"},
		{2*day + 5*time.Hour, "2 days 05:00:00:00"},
		{12*day + 10*time.Hour + 11*time.Minute + 12*time.Second + 130*time.Millisecond, "12 days 10:11:12:13"},
	}
	for _, tt := range tests {
		got := NewSimpleTime(tt.d).String()
		if got != tt.want {
			t.Fatalf("NewSimpleTime(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestSimpleTimeNegativeClamps(t *testing.T) {
	st := NewSimpleTime(-time.Minute)
	if st.Duration() != 0 || st.String() != "00:00:00" {
		t.Fatalf("negative input gave %v %q", st.Duration(), st.String())
	}
}

func TestSimpleTimeRoundTrip(t *testing.T) {
	durations := []time.Duration{
		0,
		999 * time.Microsecond,
		9*time.Millisecond + 999*time.Microsecond,
		17 * time.Second,
		61*time.Minute + 333*time.Millisecond,
		day - time.Nanosecond,
		400*time.Hour + 7*time.Nanosecond,
	}
	for _, d := range durations {
		st := NewSimpleTime(d)
		back := st.Truncated()
		if diff := d - back; diff < 0 || diff >= centiSecond {
			t.Fatalf("round trip of %v gave %v (diff %v)", d, back, diff)
		}
	}
}

func TestSimpleTimeDeterministic(t *testing.T) {
	d := 3*time.Hour + 17*time.Millisecond
	a, b := NewSimpleTime(d), NewSimpleTime(d)
	if a != b || a.String() != b.String() {
		t.Fatal("identical input produced different views")
	}
}
