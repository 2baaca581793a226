package store

import (
	"time"

	"github.com/sadopc/ratiobreaks/internal/ratio"
)

// Cycle is a stored Working or Resting interval.
type Cycle struct {
	ID        int64
	SessionID string
	Phase     ratio.Phase
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	RestAfter time.Duration
	CreatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

// CycleFilter is used to filter cycles in queries.
type CycleFilter struct {
	SessionID string
	Phase     *ratio.Phase
	From      *time.Time
	To        *time.Time
	Limit     int
}

// DailySummary represents aggregated work and rest per day.
type DailySummary struct {
	Date       string
	Work       time.Duration
	Rest       time.Duration
	CycleCount int
}
