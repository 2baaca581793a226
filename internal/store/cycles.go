package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sadopc/ratiobreaks/internal/ratio"
	"github.com/sadopc/ratiobreaks/internal/session"
)

var phaseKeys = map[ratio.Phase]string{
	ratio.Working: "working",
	ratio.Resting: "resting",
}

func phaseKey(p ratio.Phase) (string, error) {
	k, ok := phaseKeys[p]
	if !ok {
		return "", fmt.Errorf("phase %v cannot be stored", p)
	}
	return k, nil
}

func parsePhaseKey(k string) ratio.Phase {
	for p, key := range phaseKeys {
		if key == k {
			return p
		}
	}
	return ratio.NotStarted
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// RecordCycle stores a closed interval. It satisfies session.Recorder.
func (s *Store) RecordCycle(c session.Cycle) error {
	phase, err := phaseKey(c.Phase)
	if err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO cycles (session_id, phase, started_at, ended_at, duration_ms, rest_after_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.SessionID, phase, formatTime(c.StartedAt), formatTime(c.EndedAt),
		c.Duration.Milliseconds(), c.RestAfter.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("record cycle: %w", err)
	}
	return nil
}

func (s *Store) GetCycle(id int64) (*Cycle, error) {
	row := s.db.QueryRow(
		`SELECT id, session_id, phase, started_at, ended_at, duration_ms, rest_after_ms, created_at
		 FROM cycles WHERE id = ?`, id,
	)
	c, err := scanCycle(row)
	if err != nil {
		return nil, fmt.Errorf("get cycle %d: %w", id, err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCycle(r rowScanner) (*Cycle, error) {
	c := &Cycle{}
	var phase, startedAt, endedAt, createdAt string
	var durationMS, restMS int64
	if err := r.Scan(&c.ID, &c.SessionID, &phase, &startedAt, &endedAt, &durationMS, &restMS, &createdAt); err != nil {
		return nil, err
	}
	c.Phase = parsePhaseKey(phase)
	c.StartedAt, _ = time.Parse(timeLayout, startedAt)
	c.EndedAt, _ = time.Parse(timeLayout, endedAt)
	c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	c.Duration = time.Duration(durationMS) * time.Millisecond
	c.RestAfter = time.Duration(restMS) * time.Millisecond
	return c, nil
}

func (s *Store) ListCycles(f CycleFilter) ([]Cycle, error) {
	query := `SELECT id, session_id, phase, started_at, ended_at, duration_ms, rest_after_ms, created_at FROM cycles WHERE 1=1`
	var args []any

	if f.SessionID != "" {
		query += ` AND session_id = ?`
		args = append(args, f.SessionID)
	}
	if f.Phase != nil {
		phase, err := phaseKey(*f.Phase)
		if err != nil {
			return nil, fmt.Errorf("list cycles: %w", err)
		}
		query += ` AND phase = ?`
		args = append(args, phase)
	}
	if f.From != nil {
		query += ` AND started_at >= ?`
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		query += ` AND started_at < ?`
		args = append(args, formatTime(*f.To))
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, *c)
	}
	return cycles, rows.Err()
}

// GetDailySummary totals work and rest per UTC day for cycles starting in
// [from, to).
func (s *Store) GetDailySummary(from, to time.Time) ([]DailySummary, error) {
	rows, err := s.db.Query(`
		SELECT date(started_at) AS day,
		       COALESCE(SUM(CASE WHEN phase = 'working' THEN duration_ms ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN phase = 'resting' THEN duration_ms ELSE 0 END), 0),
		       COUNT(*)
		FROM cycles
		WHERE started_at >= ? AND started_at < ?
		GROUP BY day
		ORDER BY day`,
		formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var ds DailySummary
		var workMS, restMS int64
		if err := rows.Scan(&ds.Date, &workMS, &restMS, &ds.CycleCount); err != nil {
			return nil, err
		}
		ds.Work = time.Duration(workMS) * time.Millisecond
		ds.Rest = time.Duration(restMS) * time.Millisecond
		summaries = append(summaries, ds)
	}
	return summaries, rows.Err()
}

// GetTodayTotals returns the recorded work and rest for the current UTC day.
func (s *Store) GetTodayTotals() (work, rest time.Duration, err error) {
	today := time.Now().UTC().Format("2006-01-02")
	var workMS, restMS sql.NullInt64
	err = s.db.QueryRow(`
		SELECT COALESCE(SUM(CASE WHEN phase = 'working' THEN duration_ms ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN phase = 'resting' THEN duration_ms ELSE 0 END), 0)
		FROM cycles
		WHERE date(started_at) = ?`, today,
	).Scan(&workMS, &restMS)
	if err != nil {
		return 0, 0, fmt.Errorf("today totals: %w", err)
	}
	return time.Duration(workMS.Int64) * time.Millisecond, time.Duration(restMS.Int64) * time.Millisecond, nil
}
