package window

import (
	"context"

	"github.com/bryanchriswhite/swayshot/internal/layout"
)

// Backend names
const (
	BackendAuto = "auto"
	BackendSway = "sway"
	BackendX11  = "x11"
)

// Backend defines the interface for layout snapshot sources (sway IPC, X11, etc.)
type Backend interface {
	// Snapshot returns the current window layout tree
	Snapshot(ctx context.Context) (*layout.Node, error)

	// Close releases any connection held by the backend
	Close() error

	// Name returns the backend name (e.g., "sway", "x11")
	Name() string
}
