package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanchriswhite/swayshot/internal/layout"
	"github.com/bryanchriswhite/swayshot/internal/selection"
)

type fakeBackend struct {
	root *layout.Node
	err  error
}

func (f *fakeBackend) Snapshot(context.Context) (*layout.Node, error) { return f.root, f.err }
func (f *fakeBackend) Close() error { return nil }
func (f *fakeBackend) Name() string { return "fake" }

type fakePicker struct {
	region     string
	err        error
	candidates string
}

func (f *fakePicker) Pick(_ context.Context, candidates string) (string, error) {
	f.candidates = candidates
	return f.region, f.err
}
func (f *fakePicker) Name() string { return "fake" }

type fakeCapturer struct {
	err    error
	region layout.Rect
	path   string
}

func (f *fakeCapturer) CaptureRegion(_ context.Context, region layout.Rect, path string) error {
	f.region = region
	f.path = path
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("png"), 0o644)
}
func (f *fakeCapturer) Name() string { return "fake" }
func (f *fakeCapturer) IsAvailable() bool { return true }

type fakeClipboard struct {
	err   error
	paths []string
}

func (f *fakeClipboard) Publish(_ context.Context, path string) error {
	f.paths = append(f.paths, path)
	return f.err
}
func (f *fakeClipboard) Name() string { return "fake" }

type fakeNotifier struct {
	err    error
	titles []string
	bodies []string
}

func (f *fakeNotifier) Notify(_ context.Context, title, body string) error {
	f.titles = append(f.titles, title)
	f.bodies = append(f.bodies, body)
	return f.err
}
func (f *fakeNotifier) Name() string { return "fake" }

type harness struct {
	backend   *fakeBackend
	picker    *fakePicker
	capturer  *fakeCapturer
	clipboard *fakeClipboard
	notifier  *fakeNotifier
	dir       string
}

var fixedNow = time.Date(2025, time.January, 2, 15, 4, 5, 0, time.Local)

func pid(v int) *int { return &v }

func testTree() *layout.Node {
	return &layout.Node{
		Kind: layout.KindWorkspace,
		Nodes: []*layout.Node{
			{
				Kind:       layout.KindContainer,
				PID:        pid(1),
				Visible:    true,
				AppID:      "firefox",
				Rect:       layout.Rect{X: 100, Y: 100, Width: 200, Height: 150},
				WindowRect: layout.Rect{Width: 200, Height: 150},
			},
			{
				Kind:       layout.KindContainer,
				PID:        pid(2),
				Visible:    true,
				Name:       "Terminal",
				Rect:       layout.Rect{X: 10, Y: 400, Width: 500, Height: 500},
				WindowRect: layout.Rect{X: 1, Y: 1, Width: 498, Height: 498},
			},
		},
	}
}

func newHarness(t *testing.T, region string) *harness {
	return &harness{
		backend:   &fakeBackend{root: testTree()},
		picker:    &fakePicker{region: region},
		capturer:  &fakeCapturer{},
		clipboard: &fakeClipboard{},
		notifier:  &fakeNotifier{},
		dir:       t.TempDir(),
	}
}

func (h *harness) pipeline(opts Options) *Pipeline {
	opts.SaveDir = h.dir
	return New(opts, Deps{
		Backend:   h.backend,
		Picker:    h.picker,
		Capturer:  h.capturer,
		Clipboard: h.clipboard,
		Notifier:  h.notifier,
		Now:       func() time.Time { return fixedNow },
	})
}

func TestRunWindowMatch(t *testing.T) {
	h := newHarness(t, "100,100 200x150")
	out, err := h.pipeline(Options{}).Run(context.Background())
	require.NoError(t, err)

	want := filepath.Join(h.dir, "firefox-20250102-150405.png")
	assert.Equal(t, "100,100 200x150 firefox\n11,401 498x498 Terminal", h.picker.candidates)
	assert.Equal(t, selection.WindowMatch, out.Selection.Kind)
	assert.Equal(t, want, out.Path)
	assert.Equal(t, layout.Rect{X: 100, Y: 100, Width: 200, Height: 150}, h.capturer.region)
	assert.Equal(t, want, h.capturer.path)
	assert.Equal(t, []string{want}, h.clipboard.paths)
	assert.Equal(t, []string{DefaultNotificationTitle}, h.notifier.titles)
	assert.Equal(t, []string{want}, h.notifier.bodies)
	assert.True(t, out.Published)
	assert.FileExists(t, want)
}

func TestRunFreeformNamedAfterWindowUnderCorner(t *testing.T) {
	h := newHarness(t, "50,450 300x200")
	out, err := h.pipeline(Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, selection.FreeformRegion, out.Selection.Kind)
	assert.Equal(t, "Terminal", out.Selection.Label)
	assert.Equal(t, layout.Rect{X: 50, Y: 450, Width: 300, Height: 200}, h.capturer.region)
	assert.Equal(t, filepath.Join(h.dir, "Terminal-20250102-150405.png"), out.Path)
}

func TestRunCancelledHasNoSideEffects(t *testing.T) {
	h := newHarness(t, "")
	out, err := h.pipeline(Options{}).Run(context.Background())
	require.ErrorIs(t, err, ErrSelectionCancelled)
	assert.Nil(t, out)
	assert.Empty(t, h.capturer.path)
	assert.Empty(t, h.clipboard.paths)
	assert.Empty(t, h.notifier.titles)

	entries, err := os.ReadDir(h.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunSnapshotUnavailable(t *testing.T) {
	h := newHarness(t, "1,1 1x1")
	h.backend.err = errors.New("swaymsg: not running")
	_, err := h.pipeline(Options{}).Run(context.Background())
	require.ErrorIs(t, err, ErrSnapshotUnavailable)
	assert.Empty(t, h.picker.candidates)
	assert.Empty(t, h.capturer.path)
}

func TestRunPickerFailure(t *testing.T) {
	h := newHarness(t, "")
	h.picker.err = errors.New("slurp missing")
	_, err := h.pipeline(Options{}).Run(context.Background())
	require.ErrorIs(t, err, ErrPickerFailed)
	assert.Empty(t, h.capturer.path)
}

func TestRunPickerInterrupted(t *testing.T) {
	h := newHarness(t, "")
	h.picker.err = context.Canceled
	_, err := h.pipeline(Options{}).Run(context.Background())
	require.ErrorIs(t, err, ErrPickerFailed)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.capturer.path)
}

func TestRunKeepsUnderlyingErrors(t *testing.T) {
	cause := errors.New("grim: no output")
	h := newHarness(t, "100,100 200x150")
	h.capturer.err = cause
	_, err := h.pipeline(Options{}).Run(context.Background())
	require.ErrorIs(t, err, ErrCaptureToolFailure)
	require.ErrorIs(t, err, cause)

	h = newHarness(t, "1,1 1x1")
	h.backend.err = cause
	_, err = h.pipeline(Options{}).Run(context.Background())
	require.ErrorIs(t, err, ErrSnapshotUnavailable)
	require.ErrorIs(t, err, cause)
}

func TestRunMalformedRegion(t *testing.T) {
	h := newHarness(t, "not a region")
	_, err := h.pipeline(Options{}).Run(context.Background())
	require.ErrorIs(t, err, ErrMalformedRegion)
	assert.Empty(t, h.capturer.path)
}

func TestRunCaptureFailureStops(t *testing.T) {
	h := newHarness(t, "100,100 200x150")
	h.capturer.err = errors.New("grim: no output")
	_, err := h.pipeline(Options{}).Run(context.Background())
	require.ErrorIs(t, err, ErrCaptureToolFailure)
	assert.Empty(t, h.clipboard.paths)
	assert.Empty(t, h.notifier.titles)
}

func TestRunClipboardFailureKeepsFile(t *testing.T) {
	h := newHarness(t, "100,100 200x150")
	h.clipboard.err = errors.New("wl-copy: no seat")
	out, err := h.pipeline(Options{}).Run(context.Background())
	require.ErrorIs(t, err, ErrCaptureToolFailure)
	require.NotNil(t, out)
	assert.False(t, out.Published)
	assert.FileExists(t, out.Path)
	assert.Empty(t, h.notifier.titles)
}

func TestRunNotificationFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, "100,100 200x150")
	h.notifier.err = errors.New("no daemon")
	out, err := h.pipeline(Options{}).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Published)
	assert.EqualError(t, out.NotifyErr, "no daemon")
}

func TestRunDryRun(t *testing.T) {
	h := newHarness(t, "100,100 200x150")
	out, err := h.pipeline(Options{DryRun: true}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "firefox", out.Selection.Label)
	assert.Empty(t, h.capturer.path)
	assert.Empty(t, h.clipboard.paths)
}

func TestRunNumericMatchMode(t *testing.T) {
	h := newHarness(t, "0100,100 200x150")
	out, err := h.pipeline(Options{MatchMode: selection.MatchNumeric}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, selection.WindowMatch, out.Selection.Kind)
}

func TestRunNilPublishers(t *testing.T) {
	h := newHarness(t, "100,100 200x150")
	p := New(Options{SaveDir: h.dir}, Deps{
		Backend:  h.backend,
		Picker:   h.picker,
		Capturer: h.capturer,
		Now:      func() time.Time { return fixedNow },
	})
	out, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Published)
}

func TestEnsureSaveDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, EnsureSaveDir(dir))
	require.DirExists(t, dir)
	require.NoError(t, EnsureSaveDir(dir))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	require.Error(t, EnsureSaveDir(filepath.Join(file, "sub")))
}
