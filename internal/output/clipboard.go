package output

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.design/x/clipboard"

	"github.com/bryanchriswhite/swayshot/internal/command"
	"github.com/bryanchriswhite/swayshot/internal/logger"
)

// CommandClipboard pipes the file into a clipboard command (wl-copy by default).
type CommandClipboard struct {
	runner  command.Runner
	command string
	args    []string
}

// NewCommandClipboard creates a command-backed clipboard. Without args,
// wl-copy is told the MIME type explicitly.
func NewCommandClipboard(runner command.Runner, cmd string, args []string) *CommandClipboard {
	if cmd == "" {
		cmd = "wl-copy"
		if args == nil {
			args = []string{"--type", "image/png"}
		}
	}
	return &CommandClipboard{runner: runner, command: cmd, args: args}
}

// Name returns the clipboard command
func (c *CommandClipboard) Name() string {
	return c.command
}

// Publish reads path and feeds it to the clipboard command's stdin
func (c *CommandClipboard) Publish(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	logger.WithComponent("clipboard").Debug().
		Str("command", c.command).
		Int("bytes", len(data)).
		Msg("Copying screenshot to clipboard")

	if _, err := c.runner.Run(ctx, bytes.NewReader(data), c.command, c.args...); err != nil {
		return fmt.Errorf("%s failed: %w", c.command, err)
	}
	return nil
}

var (
	clipboardInitOnce sync.Once
	clipboardInitErr  error
)

// NativeClipboard owns the X11 clipboard selection from this process.
// The selection only lives as long as its owner, so Publish keeps serving it
// until another client takes ownership, Hold elapses or ctx is done.
type NativeClipboard struct {
	Hold time.Duration
}

// NewNativeClipboard creates an in-process clipboard
func NewNativeClipboard(hold time.Duration) *NativeClipboard {
	return &NativeClipboard{Hold: hold}
}

// Name returns the backend name
func (c *NativeClipboard) Name() string {
	return "native"
}

// Publish writes the PNG at path as an image/png selection
func (c *NativeClipboard) Publish(ctx context.Context, path string) error {
	log := logger.WithComponent("clipboard")

	clipboardInitOnce.Do(func() {
		clipboardInitErr = clipboard.Init()
	})
	if clipboardInitErr != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", clipboardInitErr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	changed := clipboard.Write(clipboard.FmtImage, data)
	if c.Hold <= 0 {
		return nil
	}

	log.Debug().Dur("hold", c.Hold).Msg("Serving clipboard selection")
	timer := time.NewTimer(c.Hold)
	defer timer.Stop()
	select {
	case <-changed:
		log.Debug().Msg("Clipboard ownership taken by another client")
	case <-timer.C:
		log.Debug().Msg("Clipboard hold time elapsed")
	case <-ctx.Done():
	}
	return nil
}
