package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/bryanchriswhite/swayshot/internal/logger"
	"github.com/bryanchriswhite/swayshot/internal/output"
	"github.com/bryanchriswhite/swayshot/internal/pipeline"
	"github.com/bryanchriswhite/swayshot/internal/selection"
	"github.com/bryanchriswhite/swayshot/internal/window"
)

// EnvPrefix prefixes environment overrides, e.g. SWAYSHOT_SAVE_DIR.
const EnvPrefix = "SWAYSHOT"

// ToolConfig describes an external command
type ToolConfig struct {
	Command string   `json:"command" yaml:"command" mapstructure:"command"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
}

// ClipboardConfig selects how screenshots reach the clipboard
type ClipboardConfig struct {
	Mode    string        `json:"mode" yaml:"mode" mapstructure:"mode"`
	Command string        `json:"command" yaml:"command" mapstructure:"command"`
	Args    []string      `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
	Hold    time.Duration `json:"hold" yaml:"hold" mapstructure:"hold"`
}

// NotifierConfig selects how the user is told about a saved screenshot
type NotifierConfig struct {
	Mode    string   `json:"mode" yaml:"mode" mapstructure:"mode"`
	Command string   `json:"command" yaml:"command" mapstructure:"command"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
	Title   string   `json:"title" yaml:"title" mapstructure:"title"`
}

// Config represents the application configuration
type Config struct {
	SaveDir   string `json:"save_dir" yaml:"save_dir" mapstructure:"save_dir"`
	LogLevel  string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	LogPretty bool   `json:"log_pretty" yaml:"log_pretty" mapstructure:"log_pretty"`

	Backend    string `json:"backend" yaml:"backend" mapstructure:"backend"`
	SwaySocket string `json:"sway_socket,omitempty" yaml:"sway_socket,omitempty" mapstructure:"sway_socket"`
	MatchMode  string `json:"match_mode" yaml:"match_mode" mapstructure:"match_mode"`

	Snapshot  ToolConfig      `json:"snapshot" yaml:"snapshot" mapstructure:"snapshot"`
	Picker    ToolConfig      `json:"picker" yaml:"picker" mapstructure:"picker"`
	Capture   ToolConfig      `json:"capture" yaml:"capture" mapstructure:"capture"`
	Clipboard ClipboardConfig `json:"clipboard" yaml:"clipboard" mapstructure:"clipboard"`
	Notifier  NotifierConfig  `json:"notifier" yaml:"notifier" mapstructure:"notifier"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		SaveDir:   filepath.Join("~", "Pictures", "Screenshots"),
		LogLevel:  "info",
		LogPretty: true,
		Backend:   window.BackendAuto,
		MatchMode: string(selection.MatchPrefix),
		Snapshot:  ToolConfig{Command: "swaymsg"},
		Picker:    ToolConfig{Command: "slurp"},
		Capture:   ToolConfig{Command: "grim"},
		Clipboard: ClipboardConfig{
			Mode:    output.ClipboardCommand,
			Command: "wl-copy",
			Args:    []string{"--type", "image/png"},
			Hold:    30 * time.Second,
		},
		Notifier: NotifierConfig{
			Mode:    output.NotifierAuto,
			Command: "notify-send",
			Title:   pipeline.DefaultNotificationTitle,
		},
	}
}

// SetDefaults registers Default() with v so every key is known to viper,
// which makes environment overrides work for nested keys too.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("save_dir", d.SaveDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_pretty", d.LogPretty)
	v.SetDefault("backend", d.Backend)
	v.SetDefault("sway_socket", d.SwaySocket)
	v.SetDefault("match_mode", d.MatchMode)
	v.SetDefault("snapshot.command", d.Snapshot.Command)
	v.SetDefault("snapshot.args", d.Snapshot.Args)
	v.SetDefault("picker.command", d.Picker.Command)
	v.SetDefault("picker.args", d.Picker.Args)
	v.SetDefault("capture.command", d.Capture.Command)
	v.SetDefault("capture.args", d.Capture.Args)
	v.SetDefault("clipboard.mode", d.Clipboard.Mode)
	v.SetDefault("clipboard.command", d.Clipboard.Command)
	v.SetDefault("clipboard.args", d.Clipboard.Args)
	v.SetDefault("clipboard.hold", d.Clipboard.Hold)
	v.SetDefault("notifier.mode", d.Notifier.Mode)
	v.SetDefault("notifier.command", d.Notifier.Command)
	v.SetDefault("notifier.args", d.Notifier.Args)
	v.SetDefault("notifier.title", d.Notifier.Title)
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(c.SaveDir) == "" {
		result = multierror.Append(result, errors.New("save_dir must not be empty"))
	}
	if err := window.ValidateBackend(c.Backend); err != nil {
		result = multierror.Append(result, err)
	}
	if _, err := selection.ParseMatchMode(c.MatchMode); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Picker.Command == "" {
		result = multierror.Append(result, errors.New("picker.command must not be empty"))
	}
	if c.Capture.Command == "" {
		result = multierror.Append(result, errors.New("capture.command must not be empty"))
	}
	if err := output.ValidateClipboardMode(c.Clipboard.Mode); err != nil {
		result = multierror.Append(result, err)
	}
	if err := output.ValidateNotifierMode(c.Notifier.Mode); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Clipboard.Hold < 0 {
		result = multierror.Append(result, errors.New("clipboard.hold must not be negative"))
	}
	return result.ErrorOrNil()
}

// ExpandPath resolves a leading "~" to the user's home directory
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/swayshot/config.yaml
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "swayshot", "config.yaml"), nil
}

// Manager handles configuration
type Manager struct {
	v          *viper.Viper
	configPath string
	loadedFrom string
	config     *Config
}

// NewManager loads configuration through v: defaults, then the config file,
// then SWAYSHOT_* environment variables, then flags already bound to v.
// A missing file at the default location is not an error; a missing file
// that was asked for explicitly is.
func NewManager(v *viper.Viper, configFile string) (*Manager, error) {
	log := logger.WithComponent("config")

	path := configFile
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m := &Manager{v: v, configPath: path}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
		if configFile != "" || !missing {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		log.Debug().Str("path", path).Msg("No config file, using defaults")
	} else {
		m.loadedFrom = path
		log.Debug().Str("path", path).Msg("Config loaded")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	m.config = &cfg
	return m, nil
}

// Get returns the loaded configuration
func (m *Manager) Get() *Config {
	return m.config
}

// GetConfigPath returns the path the config file is read from
func (m *Manager) GetConfigPath() string {
	return m.configPath
}

// LoadedFrom returns the config file actually read, empty when defaults were used
func (m *Manager) LoadedFrom() string {
	return m.loadedFrom
}

// Value returns the effective value of a config key such as "clipboard.mode"
func (m *Manager) Value(key string) (interface{}, error) {
	key = strings.ToLower(key)
	if !m.knownKey(key) {
		return nil, fmt.Errorf("configuration key not found: %s", key)
	}
	return m.v.Get(key), nil
}

// Set changes one key. The value is decoded like a config file value
// (durations such as "5s", comma separated lists for args) and the whole
// configuration is validated again; on error nothing changes.
func (m *Manager) Set(key, value string) error {
	key = strings.ToLower(key)
	if !m.knownKey(key) {
		return fmt.Errorf("configuration key not found: %s", key)
	}

	prev := m.v.Get(key)
	m.v.Set(key, value)

	var cfg Config
	err := m.v.Unmarshal(&cfg)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		m.v.Set(key, prev)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	m.config = &cfg
	return nil
}

// Save writes the current configuration to the config file
func (m *Manager) Save() error {
	return Write(m.config, m.configPath, true)
}

func (m *Manager) knownKey(key string) bool {
	for _, k := range m.v.AllKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// SaveDir returns the expanded screenshot directory
func (m *Manager) SaveDir() (string, error) {
	return ExpandPath(m.config.SaveDir)
}

// Write marshals cfg as YAML to path, creating parent directories.
// An existing file is only replaced when overwrite is set.
func Write(cfg *Config, path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	logger.WithComponent("config").Info().
		Str("path", path).
		Msg("Config saved successfully")
	return nil
}
