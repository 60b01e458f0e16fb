package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apierrors "github.com/transcendencex/txchat/internal/errors"
)

// isolate points HOME at a temp dir so the user's real config is never read
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ReplyDelay != 1500*time.Millisecond {
		t.Errorf("ReplyDelay = %v, want 1.5s", cfg.ReplyDelay)
	}
	if cfg.WelcomeMessage != "Hello! How can I help you today?" {
		t.Errorf("WelcomeMessage = %q", cfg.WelcomeMessage)
	}
	if cfg.DefaultTitle != "New Chat" {
		t.Errorf("DefaultTitle = %q", cfg.DefaultTitle)
	}
	if cfg.PreviewLimit != 60 {
		t.Errorf("PreviewLimit = %d, want 60", cfg.PreviewLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetConfigDir(t *testing.T) {
	home := isolate(t)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if dir != filepath.Join(home, ".txchat") {
		t.Errorf("GetConfigDir() = %s", dir)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("GetConfigPath() = %s", path)
	}

	logPath, err := DefaultLogPath()
	if err != nil {
		t.Fatalf("DefaultLogPath() returned error: %v", err)
	}
	if filepath.Dir(logPath) != dir {
		t.Errorf("DefaultLogPath() = %s, want it under %s", logPath, dir)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfig_ExplicitFileMissing(t *testing.T) {
	isolate(t)

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "txchat.yaml")
	content := `reply_delay: 250ms
default_title: Untitled
preview_limit: 20
markdown:
  style: light
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.ReplyDelay != 250*time.Millisecond {
		t.Errorf("ReplyDelay = %v", cfg.ReplyDelay)
	}
	if cfg.DefaultTitle != "Untitled" {
		t.Errorf("DefaultTitle = %q", cfg.DefaultTitle)
	}
	if cfg.PreviewLimit != 20 {
		t.Errorf("PreviewLimit = %d", cfg.PreviewLimit)
	}
	if cfg.Markdown.Style != "light" {
		t.Errorf("Markdown.Style = %q", cfg.Markdown.Style)
	}
	if !cfg.Markdown.EnableEmoji {
		t.Error("unset nested keys should keep their defaults")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.WelcomeMessage != DefaultConfig().WelcomeMessage {
		t.Errorf("WelcomeMessage = %q", cfg.WelcomeMessage)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	isolate(t)
	t.Setenv("TXCHAT_PREVIEW_LIMIT", "12")
	t.Setenv("TXCHAT_LOG_LEVEL", "warn")
	t.Setenv("TXCHAT_REPLY_DELAY", "2s")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.PreviewLimit != 12 {
		t.Errorf("PreviewLimit = %d, want 12", cfg.PreviewLimit)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
	if cfg.ReplyDelay != 2*time.Second {
		t.Errorf("ReplyDelay = %v, want 2s", cfg.ReplyDelay)
	}
}

func TestBindFlags(t *testing.T) {
	isolate(t)
	t.Setenv("TXCHAT_LOG_LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Duration("reply-delay", 0, "")
	flags.String("log-level", "", "")
	flags.Bool("with-caller", false, "")
	if err := flags.Parse([]string{"--reply-delay=10ms", "--log-level=trace", "--with-caller"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	v := viper.New()
	if _, err := Init(v, ""); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}
	if err := BindFlags(v, flags); err != nil {
		t.Fatalf("BindFlags() returned error: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ReplyDelay != 10*time.Millisecond {
		t.Errorf("ReplyDelay = %v", cfg.ReplyDelay)
	}
	if cfg.Log.Level != "trace" {
		t.Errorf("Log.Level = %q, flag should beat env", cfg.Log.Level)
	}
	if !cfg.Log.WithCaller {
		t.Error("WithCaller should be true")
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, unbound flag should keep default", cfg.Log.Format)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative delay", func(c *Config) { c.ReplyDelay = -time.Second }, "reply_delay"},
		{"zero preview", func(c *Config) { c.PreviewLimit = 0 }, "preview_limit"},
		{"node too large", func(c *Config) { c.NodeID = 1024 }, "node_id"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !apierrors.IsValidationError(err) {
				t.Fatalf("Validate() = %v, want ValidationError", err)
			}
			var ve *apierrors.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("Field = %v, want %s", ve, tt.field)
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	home := isolate(t)

	cfg := DefaultConfig()
	cfg.ReplyDelay = 3 * time.Second
	cfg.TUITheme = "light"
	cfg.CopyToClipboard = true

	if err := SaveConfig(cfg, ""); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	path := filepath.Join(home, ".txchat", "config.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("permissions = %o, want 600", info.Mode().Perm())
	}

	loaded, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if loaded != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestSaveConfig_ExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "cfg.yaml")

	if err := SaveConfig(DefaultConfig(), path); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file at %s: %v", path, err)
	}
}
