// Package config provides configuration management for ratiobreaks.
//
// Process-level options (database location, logging, terminal bell) come from
// viper: a config.yaml file, RATIOBREAKS_* environment variables and flags.
// User preferences edited from the settings form live in the store instead.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/sadopc/ratiobreaks/internal/store"
)

const (
	appName   = "ratiobreaks"
	envPrefix = "RATIOBREAKS"
)

// Config keys.
const (
	KeyDBPath     = "db_path"
	KeyLogFile    = "log.file"
	KeyLogLevel   = "log.level"
	KeyNotifyBell = "notify.bell"
)

// Config is the resolved process configuration.
type Config struct {
	DBPath     string
	LogFile    string
	LogLevel   string
	NotifyBell bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) error {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		return fmt.Errorf("default db path: %w", err)
	}
	v.SetDefault(KeyDBPath, dbPath)
	v.SetDefault(KeyLogFile, filepath.Join(filepath.Dir(dbPath), appName+".log"))
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyNotifyBell, true)
	return nil
}

// Init points v at cfgFile, or at the standard locations when cfgFile is
// empty, and reads it. A missing file in the standard locations is not an
// error.
func Init(v *viper.Viper, cfgFile string) error {
	if err := SetDefaults(v); err != nil {
		return err
	}

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(cfgFile)
	} else {
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, appName))
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get user home directory: %w", err)
			}
			v.AddConfigPath(filepath.Join(home, ".config", appName))
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Load resolves a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		DBPath:     strings.TrimSpace(v.GetString(KeyDBPath)),
		LogFile:    strings.TrimSpace(v.GetString(KeyLogFile)),
		LogLevel:   strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		NotifyBell: v.GetBool(KeyNotifyBell),
	}
	if cfg.DBPath == "" {
		return Config{}, fmt.Errorf("%s must not be empty", KeyDBPath)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("invalid %s %q: want debug, info, warn or error", KeyLogLevel, cfg.LogLevel)
	}
	return cfg, nil
}
