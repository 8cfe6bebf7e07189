// Package notify wraps the OS notification service. Delivery is best-effort:
// an unavailable or denied notification daemon only loses the system-level
// banner, never the in-app reminder popup.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier raises user-visible notifications outside the terminal.
type Notifier interface {
	// Notify shows a system notification. Failures are swallowed.
	Notify(title, body string)

	// Chime plays a short two-tone audible cue. Failures are swallowed.
	Chime()
}

// Desktop delivers notifications through the desktop environment's
// notification service.
type Desktop struct {
	available bool
}

// NewDesktop probes the notification service once, so per-fire delivery can
// skip the attempt entirely on hosts with no service running.
func NewDesktop() *Desktop {
	d := &Desktop{}
	if err := beeep.Notify("taskflow", "Reminders enabled", ""); err != nil {
		slog.Warn("desktop notifications unavailable", "error", err)
		return d
	}
	d.available = true
	return d
}

// Notify shows a system notification with the given title and body.
func (d *Desktop) Notify(title, body string) {
	if !d.available {
		return
	}
	if err := beeep.Notify(title, body, ""); err != nil {
		slog.Debug("notification failed", "title", title, "error", err)
	}
}

// Chime plays the reminder cue: two short tones, high then low, synthesized
// by the system beeper rather than loaded from an audio asset.
func (d *Desktop) Chime() {
	if err := beeep.Beep(800, 300); err != nil {
		slog.Debug("chime failed", "error", err)
		return
	}
	if err := beeep.Beep(600, 300); err != nil {
		slog.Debug("chime failed", "error", err)
	}
}
