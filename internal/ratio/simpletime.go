package ratio

import (
	"fmt"
	"time"
)

const (
	day         = 24 * time.Hour
	centiSecond = 10 * time.Millisecond
)

// SimpleTime splits a duration into display units. Negative input is treated
// as zero. Resolution is one centisecond; anything finer is truncated.
type SimpleTime struct {
	d            time.Duration
	days         int
	hours        int
	minutes      int
	fullSeconds  int
	centiSeconds int
}

// NewSimpleTime decomposes d.
func NewSimpleTime(d time.Duration) SimpleTime {
	if d < 0 {
		d = 0
	}
	rem := d
	st := SimpleTime{d: d}

	st.days = int(rem / day)
	rem %= day
	st.hours = int(rem / time.Hour)
	rem %= time.Hour
	st.minutes = int(rem / time.Minute)
	rem %= time.Minute
	st.fullSeconds = int(rem / time.Second)
	rem %= time.Second
	st.centiSeconds = int(rem / centiSecond)
	return st
}

func (s SimpleTime) Days() int         { return s.days }
func (s SimpleTime) Hours() int        { return s.hours }
func (s SimpleTime) Minutes() int      { return s.minutes }
func (s SimpleTime) FullSeconds() int  { return s.fullSeconds }
func (s SimpleTime) CentiSeconds() int { return s.centiSeconds }

// Seconds is FullSeconds plus the centiseconds as a fraction.
func (s SimpleTime) Seconds() float64 {
	return float64(s.fullSeconds) + float64(s.centiSeconds)/100
}

// Duration returns the wrapped duration, before truncation.
func (s SimpleTime) Duration() time.Duration {
	return s.d
}

// Truncated rebuilds a duration from the displayed units.
func (s SimpleTime) Truncated() time.Duration {
	return time.Duration(s.days)*day +
		time.Duration(s.hours)*time.Hour +
		time.Duration(s.minutes)*time.Minute +
		time.Duration(s.fullSeconds)*time.Second +
		time.Duration(s.centiSeconds)*centiSecond
}

// String renders "MM:SS:CC", "HH:MM:SS:CC" once an hour has passed, and
// prefixes "1 day " or "N days " beyond that.
func (s SimpleTime) String() string {
	tail := fmt.Sprintf("%02d:%02d:%02d", s.minutes, s.fullSeconds, s.centiSeconds)
	switch {
	case s.days == 1:
		return fmt.Sprintf("1 day %02d:%s", s.hours, tail)
	case s.days > 1:
		return fmt.Sprintf("%d days %02d:%s", s.days, s.hours, tail)
	case s.hours > 0:
		return fmt.Sprintf("%02d:%s", s.hours, tail)
	}
	return tail
}
