// Package cmd provides the command-line interface for ratiobreaks.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sadopc/ratiobreaks/internal/config"
	"github.com/sadopc/ratiobreaks/internal/logging"
	"github.com/sadopc/ratiobreaks/internal/ratio"
	"github.com/sadopc/ratiobreaks/internal/session"
	"github.com/sadopc/ratiobreaks/internal/store"
	"github.com/sadopc/ratiobreaks/internal/tui"
)

// version is set at build time with -ldflags "-X".
var version = "dev"

// rootOptions is the state shared by the root command and its children.
type rootOptions struct {
	cfgFile string
	ratio   float64
	v       *viper.Viper
	cfg     config.Config
	logs    io.Closer
}

// Execute builds the command tree and runs it. It is called by main.go.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates and returns the root command for ratiobreaks.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "ratiobreaks",
		Short: "Earn rest while you work",
		Long: `ratiobreaks is a work/rest timer. Every minute of work earns a share of
rest according to a ratio (3 by default: 9 minutes of work earn 3 of rest).
Rest you don't take carries over; rest you take drains the budget.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runUI(cmd)
		},
	}

	// Add persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default locations: $XDG_CONFIG_HOME/ratiobreaks/config.yaml, ~/.config/ratiobreaks/config.yaml, or ~/config.yaml)")
	flags.String("db", "", "database path (default $XDG_CONFIG_HOME/ratiobreaks/ratiobreaks.db)")
	flags.Float64Var(&opts.ratio, "ratio", 0, "work to rest ratio for this session (overrides the stored setting)")
	_ = opts.v.BindPFlag(config.KeyDBPath, flags.Lookup("db"))

	// Add subcommands
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newReportCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	// PersistentPreRun handles configuration initialization
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return opts.init()
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return opts.close()
	}

	return rootCmd
}

// init reads the config and installs the logger.
func (o *rootOptions) init() error {
	if err := config.Init(o.v, o.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.v)
	if err != nil {
		return err
	}
	o.cfg = cfg

	logs, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	o.logs = logs
	slog.Debug("config loaded", "db", cfg.DBPath, "config", o.v.ConfigFileUsed())
	return nil
}

func (o *rootOptions) close() error {
	if o.logs == nil {
		return nil
	}
	err := o.logs.Close()
	o.logs = nil
	return err
}

func (o *rootOptions) openStore() (*store.Store, error) {
	s, err := store.New(o.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// sessionConfig resolves the session settings. The ratio comes from the
// --ratio flag if set, then the stored setting, then the default. An explicit
// flag value must be a valid ratio; zero is not read as "use the default".
func sessionConfig(s *store.Store, ratioFlag float64, ratioSet bool) (session.Config, error) {
	cfg := session.Config{
		PlaySound: s.GetBool(store.KeyPlaySound, true),
		Recorder:  s,
		Logger:    slog.Default(),
	}
	if ratioSet {
		if err := ratio.ValidateRatio(ratioFlag); err != nil {
			return session.Config{}, fmt.Errorf("--ratio: %w", err)
		}
		cfg.Ratio = ratioFlag
		return cfg, nil
	}
	r, err := s.GetRatio()
	if err != nil {
		slog.Warn("stored ratio unusable, using default", "err", err)
	}
	cfg.Ratio = r
	return cfg, nil
}

func (o *rootOptions) runUI(cmd *cobra.Command) error {
	s, err := o.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	cfg, err := sessionConfig(s, o.ratio, cmd.Flags().Changed("ratio"))
	if err != nil {
		return err
	}
	sess, err := session.New(cfg)
	if err != nil {
		return err
	}
	slog.Info("session started", "session", sess.ID(), "ratio", sess.Ratio())

	uiOpts := tui.Options{}
	if o.cfg.NotifyBell {
		uiOpts.Bell = os.Stderr
	}
	return tui.Run(s, sess, uiOpts)
}
