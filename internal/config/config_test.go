package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level: got %q, want info", cfg.LogLevel)
	}
	if !cfg.NotifyBell {
		t.Error("notify.bell should default to true")
	}
	if !strings.HasSuffix(cfg.DBPath, filepath.Join("ratiobreaks", "ratiobreaks.db")) {
		t.Errorf("db path: got %q", cfg.DBPath)
	}
	if filepath.Dir(cfg.LogFile) != filepath.Dir(cfg.DBPath) {
		t.Errorf("log file %q should sit next to the database", cfg.LogFile)
	}
}

func TestConfigFileDiscovery(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir := filepath.Join(xdg, "ratiobreaks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `
db_path: /tmp/rb-test.db
log:
  level: debug
notify:
  bell: false
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/rb-test.db" {
		t.Errorf("db path: got %q", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level: got %q", cfg.LogLevel)
	}
	if cfg.NotifyBell {
		t.Error("notify.bell should be false from file")
	}
}

func TestExplicitConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: WARN\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := Init(v, path); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level should be normalized: got %q", cfg.LogLevel)
	}
}

func TestExplicitConfigFileMissing(t *testing.T) {
	v := viper.New()
	if err := Init(v, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RATIOBREAKS_LOG_LEVEL", "error")
	t.Setenv("RATIOBREAKS_DB_PATH", "/tmp/from-env.db")

	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("log level: got %q, want error", cfg.LogLevel)
	}
	if cfg.DBPath != "/tmp/from-env.db" {
		t.Errorf("db path: got %q", cfg.DBPath)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		wantErr bool
	}{
		{
			name:    "valid",
			set:     map[string]any{KeyDBPath: "/tmp/x.db", KeyLogLevel: "debug"},
			wantErr: false,
		},
		{
			name:    "bad level",
			set:     map[string]any{KeyDBPath: "/tmp/x.db", KeyLogLevel: "loud"},
			wantErr: true,
		},
		{
			name:    "empty db path",
			set:     map[string]any{KeyDBPath: "  ", KeyLogLevel: "info"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
