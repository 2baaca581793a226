package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/ratiobreaks/internal/ratio"
)

// Setting keys seeded by the v1 migration.
const (
	KeyRatio        = "ratio"
	KeyPlaySound    = "play_sound"
	KeyRefreshMS    = "refresh_ms"
	KeyAlertRepeatS = "alert_repeat_s"
)

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// SetSettings writes all settings in one transaction. Either every value is
// stored or none is.
func (s *Store) SetSettings(settings ...Setting) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin settings update: %w", err)
	}
	defer tx.Rollback()

	for _, st := range settings {
		_, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			st.Key, st.Value,
		)
		if err != nil {
			return fmt.Errorf("set setting %q: %w", st.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit settings update: %w", err)
	}
	return nil
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// GetRatio returns the stored ratio. A missing or corrupt value yields
// ratio.DefaultRatio along with the error.
func (s *Store) GetRatio() (float64, error) {
	v, err := s.GetSetting(KeyRatio)
	if err != nil {
		return ratio.DefaultRatio, err
	}
	r, err := ratio.ParseRatio(v)
	if err != nil {
		return ratio.DefaultRatio, fmt.Errorf("stored ratio: %w", err)
	}
	return r, nil
}

// SetRatio validates r before storing it.
func (s *Store) SetRatio(r float64) error {
	text := strconv.FormatFloat(r, 'f', -1, 64)
	if _, err := ratio.ParseRatio(text); err != nil {
		return err
	}
	return s.SetSetting(KeyRatio, text)
}

// GetBool returns the boolean at key, or fallback if it is missing or unparsable.
func (s *Store) GetBool(key string, fallback bool) bool {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

// GetInt returns the integer at key, or fallback if it is missing or unparsable.
func (s *Store) GetInt(key string, fallback int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}
