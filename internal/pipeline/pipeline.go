// Package pipeline runs one screenshot: snapshot, pick, resolve, capture,
// then publish to the clipboard and the notification daemon.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bryanchriswhite/swayshot/internal/capture"
	"github.com/bryanchriswhite/swayshot/internal/filename"
	"github.com/bryanchriswhite/swayshot/internal/layout"
	"github.com/bryanchriswhite/swayshot/internal/logger"
	"github.com/bryanchriswhite/swayshot/internal/output"
	"github.com/bryanchriswhite/swayshot/internal/picker"
	"github.com/bryanchriswhite/swayshot/internal/selection"
	"github.com/bryanchriswhite/swayshot/internal/window"
)

var (
	// ErrSnapshotUnavailable wraps failures to fetch or parse the layout tree.
	ErrSnapshotUnavailable = errors.New("layout snapshot unavailable")
	// ErrSelectionCancelled is returned when the picker produced no region.
	// It is not a failure: nothing was written.
	ErrSelectionCancelled = selection.ErrEmptySelection
	// ErrMalformedRegion is returned when the picker output is not a geometry.
	ErrMalformedRegion = selection.ErrMalformedRegion
	// ErrPickerFailed wraps failures to run the picker itself.
	ErrPickerFailed = errors.New("region picker failed")
	// ErrCaptureToolFailure wraps failures of the capture or clipboard tools.
	ErrCaptureToolFailure = errors.New("capture tool failure")
)

// DefaultNotificationTitle is the notification summary for a saved screenshot.
const DefaultNotificationTitle = "Screenshot saved and copied to clipboard"

// Options configures a Pipeline
type Options struct {
	SaveDir           string
	MatchMode         selection.MatchMode
	NotificationTitle string
	// DryRun stops after resolving the selection.
	DryRun bool
}

// Deps are the external collaborators of a Pipeline
type Deps struct {
	Backend   window.Backend
	Picker    picker.Picker
	Capturer  capture.Capturer
	Clipboard output.Clipboard
	Notifier  output.Notifier
	// Now defaults to time.Now.
	Now func() time.Time
}

// Outcome describes a completed run
type Outcome struct {
	Selection selection.Result
	Path      string
	// Published is false when the clipboard step failed.
	Published bool
	// NotifyErr is the non-fatal notification failure, if any.
	NotifyErr error
}

// Pipeline runs screenshots. It holds no state between runs.
type Pipeline struct {
	opts Options
	deps Deps
}

// New creates a pipeline. Nil clipboard or notifier disable those steps.
func New(opts Options, deps Deps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Clipboard == nil {
		deps.Clipboard = output.Discard{}
	}
	if deps.Notifier == nil {
		deps.Notifier = output.Discard{}
	}
	if opts.NotificationTitle == "" {
		opts.NotificationTitle = DefaultNotificationTitle
	}
	if opts.MatchMode == "" {
		opts.MatchMode = selection.MatchPrefix
	}
	return &Pipeline{opts: opts, deps: deps}
}

// EnsureSaveDir creates the output directory and its parents.
func EnsureSaveDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create save directory %s: %w", dir, err)
	}
	return nil
}

// Run performs one screenshot. ErrSelectionCancelled means the user backed
// out and nothing was written. A clipboard failure leaves the saved file in
// place and skips the notification; a notification failure is only reported
// through Outcome.NotifyErr.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	log := logger.WithComponent("pipeline")

	root, err := p.deps.Backend.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSnapshotUnavailable, p.deps.Backend.Name(), err)
	}

	idx := layout.BuildIndex(root)
	log.Debug().Int("windows", len(idx)).Str("backend", p.deps.Backend.Name()).Msg("Built window index")

	region, err := p.deps.Picker.Pick(ctx, idx.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPickerFailed, err)
	}
	if region != "" {
		log.Debug().Str("region", region).Msg("Picker returned region")
	}

	res, err := selection.Resolver{Mode: p.opts.MatchMode}.Resolve(root, idx, region)
	if err != nil {
		return nil, err
	}

	name := filename.Build(res.Label, p.deps.Now())
	path := filepath.Join(p.opts.SaveDir, name)
	out := &Outcome{Selection: res, Path: path}

	log.Info().
		Str("kind", res.Kind.String()).
		Str("label", res.Label).
		Str("geometry", res.Rect.Geometry()).
		Str("path", path).
		Msg("Resolved selection")

	if p.opts.DryRun {
		log.Info().Msg("Dry run, skipping capture")
		return out, nil
	}

	if err := p.deps.Capturer.CaptureRegion(ctx, res.Rect, path); err != nil {
		return out, fmt.Errorf("%w: %w", ErrCaptureToolFailure, err)
	}
	log.Info().Str("path", path).Msg("Screenshot saved")

	if err := p.deps.Clipboard.Publish(ctx, path); err != nil {
		return out, fmt.Errorf("%w: clipboard %s: %w", ErrCaptureToolFailure, p.deps.Clipboard.Name(), err)
	}
	out.Published = true

	if err := p.deps.Notifier.Notify(ctx, p.opts.NotificationTitle, path); err != nil {
		out.NotifyErr = err
		log.Warn().Err(err).Str("notifier", p.deps.Notifier.Name()).Msg("Failed to send notification")
	}
	return out, nil
}
