package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// BackendConfig holds the connection settings for the remote dashboard
// backend that owns tasks and companies.
type BackendConfig struct {
	// BaseURL is the root URL of the backend API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// PollIntervalSec is how often (in seconds) to refresh the task list.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// ReminderConfig holds tuning knobs for the reminder pipeline.
type ReminderConfig struct {
	// SnoozeMinutes is the notify-later re-presentation delay.
	SnoozeMinutes int `mapstructure:"snooze_minutes" yaml:"snooze_minutes"`

	// Sound globally enables the audible cue for reminders that request it.
	Sound bool `mapstructure:"sound" yaml:"sound"`
}

// MailerConfig holds settings for company reminder email drafts.
type MailerConfig struct {
	// FromAddress is used as the From header on drafted reminder emails.
	FromAddress string `mapstructure:"from_address" yaml:"from_address"`

	// DraftsDir is where .eml drafts are written. Defaults to
	// ~/.local/share/taskflow/drafts.
	DraftsDir string `mapstructure:"drafts_dir" yaml:"drafts_dir"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	DBPath   string         `mapstructure:"db_path" yaml:"db_path"`
	Backend  BackendConfig  `mapstructure:"backend" yaml:"backend"`
	Reminder ReminderConfig `mapstructure:"reminder" yaml:"reminder"`
	Mailer   MailerConfig   `mapstructure:"mailer" yaml:"mailer"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskflow/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskflow", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	home, _ := os.UserHomeDir()
	return &AppConfig{
		DBPath: filepath.Join(home, ".local", "share", "taskflow", "taskflow.db"),
		Backend: BackendConfig{
			PollIntervalSec: 120,
		},
		Reminder: ReminderConfig{
			SnoozeMinutes: 5,
			Sound:         true,
		},
		Mailer: MailerConfig{
			DraftsDir: filepath.Join(home, ".local", "share", "taskflow", "drafts"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := defaultAppConfig()
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("backend.poll_interval_sec", defaults.Backend.PollIntervalSec)
	v.SetDefault("reminder.snooze_minutes", defaults.Reminder.SnoozeMinutes)
	v.SetDefault("reminder.sound", defaults.Reminder.Sound)
	v.SetDefault("mailer.drafts_dir", defaults.Mailer.DraftsDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Reminder.SnoozeMinutes <= 0 {
		cfg.Reminder.SnoozeMinutes = 5
	}
	if cfg.Backend.PollIntervalSec <= 0 {
		cfg.Backend.PollIntervalSec = 120
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("db_path", cfg.DBPath)
	v.Set("backend", cfg.Backend)
	v.Set("reminder", cfg.Reminder)
	v.Set("mailer", cfg.Mailer)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
