// Package config handles configuration loading for txchat. Values come from
// defaults, an optional config.yaml, TXCHAT_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/logging"
)

// EnvPrefix is the prefix of environment overrides, e.g. TXCHAT_REPLY_DELAY
const EnvPrefix = "txchat"

const (
	configDirName  = ".txchat"
	configFileName = "config.yaml"
	logFileName    = "txchat.log"
)

// MarkdownConfig configures markdown rendering of assistant replies
type MarkdownConfig struct {
	Style            string `mapstructure:"style" yaml:"style"` // "dark", "light", "notty" or a glamour style path
	EnableEmoji      bool   `mapstructure:"enable_emoji" yaml:"enable_emoji"`
	PreserveNewLines bool   `mapstructure:"preserve_newlines" yaml:"preserve_newlines"`
}

// LogConfig configures the zerolog output
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"` // "text" or "json"
	File       string `mapstructure:"file" yaml:"file,omitempty"`
	WithCaller bool   `mapstructure:"with_caller" yaml:"with_caller"`
}

// Config represents the user configuration
type Config struct {
	// ReplyDelay is how long the simulator waits before answering.
	ReplyDelay      time.Duration `mapstructure:"reply_delay" yaml:"reply_delay"`
	ReplyTemplate   string        `mapstructure:"reply_template" yaml:"reply_template"`
	AttachmentReply string        `mapstructure:"attachment_reply" yaml:"attachment_reply"`
	WelcomeMessage  string        `mapstructure:"welcome_message" yaml:"welcome_message"`
	DefaultTitle    string        `mapstructure:"default_title" yaml:"default_title"`
	PreviewLimit    int           `mapstructure:"preview_limit" yaml:"preview_limit"`
	// NodeID is the snowflake node of this process (0-1023).
	NodeID          int64          `mapstructure:"node_id" yaml:"node_id"`
	CopyToClipboard bool           `mapstructure:"copy_to_clipboard" yaml:"copy_to_clipboard"`
	TUITheme        string         `mapstructure:"tui_theme" yaml:"tui_theme"`
	Markdown        MarkdownConfig `mapstructure:"markdown" yaml:"markdown"`
	Log             LogConfig      `mapstructure:"log" yaml:"log"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		ReplyDelay:      1500 * time.Millisecond,
		ReplyTemplate:   `This is a simulated response to: "{{ .Text }}"`,
		AttachmentReply: "I received your files. How can I help you with them?",
		WelcomeMessage:  "Hello! How can I help you today?",
		DefaultTitle:    "New Chat",
		PreviewLimit:    60,
		NodeID:          0,
		CopyToClipboard: false,
		TUITheme:        "dark",
		Markdown:        DefaultMarkdownConfig(),
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the values that downstream constructors cannot recover from
func (c Config) Validate() error {
	if c.ReplyDelay < 0 {
		return apierrors.NewValidationError("reply_delay", "must not be negative")
	}
	if c.PreviewLimit <= 0 {
		return apierrors.NewValidationError("preview_limit", "must be positive")
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		return apierrors.NewValidationError("node_id", "must be between 0 and 1023")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return apierrors.NewValidationError("log.level", err.Error())
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return apierrors.NewValidationError("log.format", fmt.Sprintf("unknown format %q", c.Log.Format))
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the default config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// DefaultLogPath is where the chat command logs when no log file is given
func DefaultLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, logFileName), nil
}

// SetDefaults registers every key of DefaultConfig on v. AutomaticEnv only
// reaches keys viper already knows, so this must run before Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("reply_delay", d.ReplyDelay)
	v.SetDefault("reply_template", d.ReplyTemplate)
	v.SetDefault("attachment_reply", d.AttachmentReply)
	v.SetDefault("welcome_message", d.WelcomeMessage)
	v.SetDefault("default_title", d.DefaultTitle)
	v.SetDefault("preview_limit", d.PreviewLimit)
	v.SetDefault("node_id", d.NodeID)
	v.SetDefault("copy_to_clipboard", d.CopyToClipboard)
	v.SetDefault("tui_theme", d.TUITheme)
	v.SetDefault("markdown.style", d.Markdown.Style)
	v.SetDefault("markdown.enable_emoji", d.Markdown.EnableEmoji)
	v.SetDefault("markdown.preserve_newlines", d.Markdown.PreserveNewLines)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.with_caller", d.Log.WithCaller)
}

// Init prepares v with defaults, environment overrides and the config file.
// An explicit configFile must exist; the default location may be absent.
// It returns the config file actually read, or "" when none was.
func Init(v *viper.Viper, configFile string) (string, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		v.SetConfigName(strings.TrimSuffix(configFileName, filepath.Ext(configFileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config file: %w", err)
	}

	return v.ConfigFileUsed(), nil
}

// flagKeys maps persistent flag names to config keys
var flagKeys = map[string]string{
	"reply-delay": "reply_delay",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"log-file":    "log.file",
	"with-caller": "log.with_caller",
}

// BindFlags binds the flags of flags that carry configuration to v. Flags
// that are not defined are skipped.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// LoadConfig loads the configuration from configFile (or the default
// location when empty) and the environment.
func LoadConfig(configFile string) (Config, error) {
	v := viper.New()
	if _, err := Init(v, configFile); err != nil {
		return DefaultConfig(), err
	}
	return Load(v)
}

// Marshal renders cfg as YAML
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// SaveConfig writes cfg to path, or to the default location when path is
// empty.
func SaveConfig(cfg Config, path string) error {
	if path == "" {
		configDir, err := EnsureConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(configDir, configFileName)
	} else if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
