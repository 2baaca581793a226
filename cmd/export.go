package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/ratiobreaks/internal/export"
	"github.com/sadopc/ratiobreaks/internal/store"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format    string
		out       string
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the cycle log",
		Long:  `Write every recorded work and rest cycle to a CSV, JSON or YAML file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if out == "" {
				return fmt.Errorf("--out is required")
			}

			s, err := opts.openStore()
			if err != nil {
				return err
			}
			defer s.Close()

			cycles, err := s.ListCycles(store.CycleFilter{SessionID: sessionID})
			if err != nil {
				return err
			}
			if err := export.Write(f, cycles, out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d cycles to %s\n", len(cycles), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "output format: csv, json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file path")
	cmd.Flags().StringVar(&sessionID, "session", "", "only export cycles from this session")

	return cmd
}
