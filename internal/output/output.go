package output

import (
	"context"
	"fmt"
	"strings"
)

// Clipboard publishes a saved screenshot to the system clipboard.
// This allows us to swap between different mechanisms:
// - wl-copy (or any command reading the image on stdin)
// - the in-process X11 clipboard
type Clipboard interface {
	// Publish places the PNG stored at path on the clipboard
	Publish(ctx context.Context, path string) error

	// Name returns a human-readable name for this clipboard backend
	Name() string
}

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error

	// Name returns a human-readable name for this notifier
	Name() string
}

// Clipboard modes
const (
	ClipboardCommand = "command"
	ClipboardNative  = "native"
	ClipboardNone    = "none"
)

// Notifier modes
const (
	NotifierAuto    = "auto"
	NotifierDBus    = "dbus"
	NotifierCommand = "command"
	NotifierNone    = "none"
)

// ValidateClipboardMode checks a configured clipboard mode.
func ValidateClipboardMode(mode string) error {
	switch strings.ToLower(mode) {
	case ClipboardCommand, ClipboardNative, ClipboardNone:
		return nil
	}
	return fmt.Errorf("unknown clipboard mode %q (use %s, %s or %s)", mode, ClipboardCommand, ClipboardNative, ClipboardNone)
}

// ValidateNotifierMode checks a configured notifier mode.
func ValidateNotifierMode(mode string) error {
	switch strings.ToLower(mode) {
	case NotifierAuto, NotifierDBus, NotifierCommand, NotifierNone:
		return nil
	}
	return fmt.Errorf("unknown notifier mode %q (use %s, %s, %s or %s)", mode, NotifierAuto, NotifierDBus, NotifierCommand, NotifierNone)
}

// Discard is a Clipboard and Notifier that does nothing.
type Discard struct{}

func (Discard) Publish(context.Context, string) error { return nil }

func (Discard) Notify(context.Context, string, string) error { return nil }

func (Discard) Name() string { return "none" }
