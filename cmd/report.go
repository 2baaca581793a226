package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/ratiobreaks/internal/ratio"
	"github.com/sadopc/ratiobreaks/internal/store"
)

func newReportCmd(opts *rootOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print daily work and rest totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return fmt.Errorf("--days must be at least 1, got %d", days)
			}

			s, err := opts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			from, to := reportRange(time.Now(), days)
			summaries, err := s.GetDailySummary(from, to)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintf(out, "No cycles in the last %d days\n", days)
				return nil
			}
			fmt.Fprintln(out, renderReport(summaries))
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "number of days to include, ending today")

	return cmd
}

// reportRange returns [start of the first day, start of tomorrow) in UTC.
func reportRange(now time.Time, days int) (time.Time, time.Time) {
	now = now.UTC()
	tomorrow := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return tomorrow.AddDate(0, 0, -days), tomorrow
}

func renderReport(summaries []store.DailySummary) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Date", "Work", "Rest", "Cycles")

	var work, rest time.Duration
	var cycles int
	for _, s := range summaries {
		t.Row(s.Date, ratio.NewSimpleTime(s.Work).String(), ratio.NewSimpleTime(s.Rest).String(), fmt.Sprintf("%d", s.CycleCount))
		work += s.Work
		rest += s.Rest
		cycles += s.CycleCount
	}
	t.Row("Total", ratio.NewSimpleTime(work).String(), ratio.NewSimpleTime(rest).String(), fmt.Sprintf("%d", cycles))

	return t.String()
}
