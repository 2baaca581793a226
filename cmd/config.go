package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/ratiobreaks/internal/ratio"
	"github.com/sadopc/ratiobreaks/internal/store"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ratiobreaks settings",
		Long:  `Get and set the stored settings that the settings view edits.`,
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "get <key>",
			Short: "Get a setting",
			Long:  `Get a setting by key.`,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := opts.openStore()
				if err != nil {
					return err
				}
				defer s.Close()

				value, err := s.GetSetting(args[0])
				if err != nil {
					return fmt.Errorf("key '%s' not found in settings", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a setting",
			Long:  `Set a setting by key. Values are validated before they are stored.`,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := opts.openStore()
				if err != nil {
					return err
				}
				defer s.Close()

				return setSetting(s, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List all settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := opts.openStore()
				if err != nil {
					return err
				}
				defer s.Close()

				settings, err := s.GetAllSettings()
				if err != nil {
					return err
				}
				for _, st := range settings {
					fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", st.Key, st.Value)
				}
				return nil
			},
		},
	)

	return configCmd
}

// setSetting validates value for key and stores it.
func setSetting(s *store.Store, key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case store.KeyRatio:
		r, err := ratio.ParseRatio(value)
		if err != nil {
			return err
		}
		return s.SetRatio(r)
	case store.KeyPlaySound:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false: %w", key, err)
		}
		return s.SetSetting(key, strconv.FormatBool(b))
	case store.KeyRefreshMS, store.KeyAlertRepeatS:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive whole number, got %q", key, value)
		}
		return s.SetSetting(key, strconv.Itoa(n))
	}
	return fmt.Errorf("unknown setting %q", key)
}
