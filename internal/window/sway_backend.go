package window

import (
	"context"
	"fmt"

	"github.com/bryanchriswhite/swayshot/internal/command"
	"github.com/bryanchriswhite/swayshot/internal/layout"
	"github.com/bryanchriswhite/swayshot/internal/logger"
)

// SwayBackend asks swaymsg(1) for the layout tree
type SwayBackend struct {
	runner  command.Runner
	command string
	socket  string
	args    []string
}

// NewSwayBackend creates a backend running cmd (swaymsg by default). socket
// overrides $SWAYSOCK when set; args go before the get_tree request.
func NewSwayBackend(runner command.Runner, cmd, socket string, args []string) *SwayBackend {
	if cmd == "" {
		cmd = "swaymsg"
	}
	return &SwayBackend{runner: runner, command: cmd, socket: socket, args: args}
}

// Name returns the backend name
func (b *SwayBackend) Name() string {
	return BackendSway
}

// Close is a no-op; every snapshot is a separate swaymsg run
func (b *SwayBackend) Close() error {
	return nil
}

// Snapshot runs `swaymsg -t get_tree` and parses its JSON output
func (b *SwayBackend) Snapshot(ctx context.Context) (*layout.Node, error) {
	args := make([]string, 0, len(b.args)+5)
	if b.socket != "" {
		args = append(args, "-s", b.socket)
	}
	args = append(args, b.args...)
	args = append(args, "-t", "get_tree", "--raw")

	out, err := b.runner.Run(ctx, nil, b.command, args...)
	if err != nil {
		return nil, fmt.Errorf("%s get_tree failed: %w", b.command, err)
	}

	root, err := layout.Parse(out)
	if err != nil {
		return nil, err
	}

	logger.WithComponent("sway-backend").Debug().
		Int("bytes", len(out)).
		Msg("Fetched layout tree")
	return root, nil
}
