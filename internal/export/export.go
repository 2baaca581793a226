// Package export writes the recorded cycle log to CSV, JSON or YAML.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/ratiobreaks/internal/ratio"
	"github.com/sadopc/ratiobreaks/internal/store"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists every supported format in display order.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

// ParseFormat accepts a format name case-insensitively. "yml" is an alias for yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Write exports cycles to path in the given format.
func Write(f Format, cycles []store.Cycle, path string) error {
	switch f {
	case FormatCSV:
		return ToCSV(cycles, path)
	case FormatJSON:
		return ToJSON(cycles, path)
	case FormatYAML:
		return ToYAML(cycles, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}

// record is the flat shape shared by the JSON and YAML encoders.
type record struct {
	ID          int64  `json:"id" yaml:"id"`
	SessionID   string `json:"session_id" yaml:"session_id"`
	Phase       string `json:"phase" yaml:"phase"`
	StartedAt   string `json:"started_at" yaml:"started_at"`
	EndedAt     string `json:"ended_at" yaml:"ended_at"`
	DurationMS  int64  `json:"duration_ms" yaml:"duration_ms"`
	Duration    string `json:"duration" yaml:"duration"`
	RestAfterMS int64  `json:"rest_after_ms" yaml:"rest_after_ms"`
	RestAfter   string `json:"rest_after" yaml:"rest_after"`
}

type document struct {
	ExportedAt string   `json:"exported_at" yaml:"exported_at"`
	Count      int      `json:"count" yaml:"count"`
	Cycles     []record `json:"cycles" yaml:"cycles"`
}

func newDocument(cycles []store.Cycle) document {
	doc := document{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(cycles),
		Cycles:     make([]record, 0, len(cycles)),
	}
	for _, c := range cycles {
		doc.Cycles = append(doc.Cycles, record{
			ID:          c.ID,
			SessionID:   c.SessionID,
			Phase:       c.Phase.String(),
			StartedAt:   c.StartedAt.Local().Format(time.RFC3339),
			EndedAt:     c.EndedAt.Local().Format(time.RFC3339),
			DurationMS:  c.Duration.Milliseconds(),
			Duration:    formatDuration(c.Duration),
			RestAfterMS: c.RestAfter.Milliseconds(),
			RestAfter:   formatDuration(c.RestAfter),
		})
	}
	return doc
}

func formatDuration(d time.Duration) string {
	return ratio.NewSimpleTime(d).String()
}
