// Package notify delivers best-effort user-facing notifications. Delivery
// failures are swallowed: a missed toast must never block a sync.
package notify

import (
	"log/slog"
	"strings"

	"github.com/gen2brain/beeep"
)

// Notifier sends a short message to the user.
type Notifier interface {
	Notify(title, message string)
}

// Desktop sends notifications through the OS notification system.
type Desktop struct {
	logger *slog.Logger
}

// NewDesktop creates a desktop notifier.
func NewDesktop(logger *slog.Logger) *Desktop {
	return &Desktop{logger: logger}
}

// Notify shows a desktop notification. Best-effort.
func (d *Desktop) Notify(title, message string) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Grimorio"
	}
	message = strings.TrimSpace(message)

	if err := beeep.Notify(title, message, ""); err != nil {
		d.logger.Debug("desktop notification failed", "error", err)
	}
}

// Nop discards every notification. Used in tests and headless runs.
type Nop struct{}

func (Nop) Notify(title, message string) {}
