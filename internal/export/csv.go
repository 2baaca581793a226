package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/ratiobreaks/internal/store"
)

func ToCSV(cycles []store.Cycle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	header := []string{"ID", "Session", "Phase", "Start", "End", "Duration (ms)", "Duration", "Rest After (ms)", "Rest After"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, c := range cycles {
		row := []string{
			fmt.Sprintf("%d", c.ID),
			c.SessionID,
			c.Phase.String(),
			c.StartedAt.Local().Format(time.RFC3339),
			c.EndedAt.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", c.Duration.Milliseconds()),
			formatDuration(c.Duration),
			fmt.Sprintf("%d", c.RestAfter.Milliseconds()),
			formatDuration(c.RestAfter),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
