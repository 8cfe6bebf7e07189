package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DBPath)
	assert.Equal(t, 120, cfg.Backend.PollIntervalSec)
	assert.Equal(t, 5, cfg.Reminder.SnoozeMinutes)
	assert.True(t, cfg.Reminder.Sound)
}

func TestLoadConfigReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
db_path: /tmp/test.db
backend:
  base_url: https://api.example.com
  poll_interval_sec: 30
reminder:
  snooze_minutes: 10
  sound: false
mailer:
  from_address: me@example.com
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 30, cfg.Backend.PollIntervalSec)
	assert.Equal(t, 10, cfg.Reminder.SnoozeMinutes)
	assert.False(t, cfg.Reminder.Sound)
	assert.Equal(t, "me@example.com", cfg.Mailer.FromAddress)
}

func TestLoadConfigClampsInvalidIntervals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
reminder:
  snooze_minutes: -1
backend:
  poll_interval_sec: 0
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Reminder.SnoozeMinutes)
	assert.Equal(t, 120, cfg.Backend.PollIntervalSec)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &AppConfig{
		DBPath: "/tmp/roundtrip.db",
		Backend: BackendConfig{
			BaseURL:         "https://api.example.com",
			PollIntervalSec: 60,
		},
		Reminder: ReminderConfig{SnoozeMinutes: 7, Sound: true},
		Mailer:   MailerConfig{FromAddress: "me@example.com", DraftsDir: "/tmp/drafts"},
	}
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.DBPath, loaded.DBPath)
	assert.Equal(t, cfg.Backend.BaseURL, loaded.Backend.BaseURL)
	assert.Equal(t, 7, loaded.Reminder.SnoozeMinutes)
	assert.Equal(t, "/tmp/drafts", loaded.Mailer.DraftsDir)
}
