package capture

import (
	"context"
	"fmt"
	"os"

	"github.com/bryanchriswhite/swayshot/internal/command"
	"github.com/bryanchriswhite/swayshot/internal/layout"
	"github.com/bryanchriswhite/swayshot/internal/logger"
)

// Capturer defines the interface for screen capture backends
type Capturer interface {
	// CaptureRegion writes a PNG of the given screen region to path
	CaptureRegion(ctx context.Context, region layout.Rect, path string) error

	// Name returns a human-readable name for this capturer
	Name() string

	// IsAvailable checks if this capturer can be used in the current environment
	IsAvailable() bool
}

// GrimCapturer captures through grim(1): `grim -g "x,y wxh" path`.
type GrimCapturer struct {
	runner  command.Runner
	command string
	args    []string
}

// NewGrimCapturer creates a capturer running cmd (grim by default). args are
// inserted before the geometry flag, e.g. ["-s", "2"] for a scale factor.
func NewGrimCapturer(runner command.Runner, cmd string, args []string) *GrimCapturer {
	if cmd == "" {
		cmd = "grim"
	}
	return &GrimCapturer{runner: runner, command: cmd, args: args}
}

// Name returns the capture command
func (c *GrimCapturer) Name() string {
	return c.command
}

// IsAvailable reports whether the capture command is in PATH
func (c *GrimCapturer) IsAvailable() bool {
	return command.Exists(c.command)
}

// CaptureRegion runs the capture tool and checks that it produced a file
func (c *GrimCapturer) CaptureRegion(ctx context.Context, region layout.Rect, path string) error {
	log := logger.WithComponent("capture")

	args := make([]string, 0, len(c.args)+3)
	args = append(args, c.args...)
	args = append(args, "-g", region.Geometry(), path)

	log.Debug().
		Str("command", c.command).
		Str("geometry", region.Geometry()).
		Str("path", path).
		Msg("Capturing region")

	if _, err := c.runner.Run(ctx, nil, c.command, args...); err != nil {
		return fmt.Errorf("%s failed: %w", c.command, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s did not write %s: %w", c.command, path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s wrote an empty file to %s", c.command, path)
	}
	return nil
}
