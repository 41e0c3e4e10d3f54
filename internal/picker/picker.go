// Package picker runs the interactive region selector.
package picker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bryanchriswhite/swayshot/internal/command"
	"github.com/bryanchriswhite/swayshot/internal/logger"
)

// Picker lets the user choose a region. candidates holds one
// "{x},{y} {w}x{h} {label}" line per window to offer as a preset.
// An empty result with a nil error means the user cancelled.
type Picker interface {
	Pick(ctx context.Context, candidates string) (string, error)
	Name() string
}

// SlurpPicker drives slurp(1) or any tool with the same stdin/stdout contract.
type SlurpPicker struct {
	Runner  command.Runner
	Command string
	Args    []string
}

// NewSlurpPicker returns a picker running cmd with args.
func NewSlurpPicker(runner command.Runner, cmd string, args []string) *SlurpPicker {
	if cmd == "" {
		cmd = "slurp"
	}
	return &SlurpPicker{Runner: runner, Command: cmd, Args: args}
}

// Name returns the picker command.
func (p *SlurpPicker) Name() string {
	return p.Command
}

// Pick blocks until the user has drawn or clicked a region, or cancelled.
func (p *SlurpPicker) Pick(ctx context.Context, candidates string) (string, error) {
	log := logger.WithComponent("picker")
	log.Debug().
		Str("command", p.Command).
		Int("candidates", strings.Count(candidates, "\n")+boolToInt(candidates != "")).
		Msg("Waiting for selection")

	out, err := p.Runner.Run(ctx, strings.NewReader(candidates), p.Command, p.Args...)
	region := firstLine(string(out))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s interrupted: %w", p.Command, ctxErr)
		}
		// slurp exits non-zero without output when the user presses Escape.
		var exitErr *command.ExitError
		if errors.As(err, &exitErr) && region == "" {
			log.Debug().Err(err).Msg("Picker exited without a selection")
			return "", nil
		}
		return "", fmt.Errorf("failed to run %s: %w", p.Command, err)
	}

	log.Debug().Str("region", region).Msg("Selection received")
	return region, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
