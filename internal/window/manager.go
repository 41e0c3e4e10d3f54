package window

import (
	"fmt"
	"strings"

	"github.com/bryanchriswhite/swayshot/internal/command"
	"github.com/bryanchriswhite/swayshot/internal/logger"
)

// Options configures backend construction
type Options struct {
	Backend     string
	SwayCommand string
	SwayArgs    []string
	SwaySocket  string
}

// Detect picks a backend from the session environment: a sway IPC socket
// wins, then any Wayland session (swaymsg finds the socket itself), then X11.
func Detect(getenv func(string) string) (string, error) {
	switch {
	case getenv("SWAYSOCK") != "":
		return BackendSway, nil
	case getenv("WAYLAND_DISPLAY") != "":
		return BackendSway, nil
	case getenv("DISPLAY") != "":
		return BackendX11, nil
	}
	return "", fmt.Errorf("no display session found (SWAYSOCK, WAYLAND_DISPLAY and DISPLAY are unset)")
}

// ValidateBackend checks a configured backend name
func ValidateBackend(name string) error {
	switch strings.ToLower(name) {
	case BackendAuto, BackendSway, BackendX11, "":
		return nil
	}
	return fmt.Errorf("unknown backend %q (use %s, %s or %s)", name, BackendAuto, BackendSway, BackendX11)
}

// NewBackend creates the snapshot backend named in opts, detecting one when
// it is "auto" or empty.
func NewBackend(opts Options, runner command.Runner, getenv func(string) string) (Backend, error) {
	log := logger.WithComponent("window")

	name := strings.ToLower(opts.Backend)
	if name == "" || name == BackendAuto {
		detected, err := Detect(getenv)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("backend", detected).Msg("Detected snapshot backend")
		name = detected
	}

	switch name {
	case BackendSway:
		return NewSwayBackend(runner, opts.SwayCommand, opts.SwaySocket, opts.SwayArgs), nil
	case BackendX11:
		b, err := NewX11Backend()
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, ValidateBackend(name)
	}
}
