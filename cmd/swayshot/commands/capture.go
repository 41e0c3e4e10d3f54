package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bryanchriswhite/swayshot/internal/capture"
	"github.com/bryanchriswhite/swayshot/internal/command"
	"github.com/bryanchriswhite/swayshot/internal/config"
	"github.com/bryanchriswhite/swayshot/internal/logger"
	"github.com/bryanchriswhite/swayshot/internal/output"
	"github.com/bryanchriswhite/swayshot/internal/picker"
	"github.com/bryanchriswhite/swayshot/internal/pipeline"
	"github.com/bryanchriswhite/swayshot/internal/selection"
	"github.com/bryanchriswhite/swayshot/internal/window"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Pick a window or region and take a screenshot",
	Long: `Snapshot the window layout, let the user pick a window or draw a region,
capture it, copy the image to the clipboard and send a notification.

The saved file's path is printed on stdout. Cancelling the picker (Escape or
right click) exits successfully without writing anything.`,
	Example: `  # Take a screenshot (same as running swayshot with no subcommand)
  swayshot capture

  # Save somewhere else
  swayshot capture --save-dir ~/Desktop

  # Show what would be captured without running grim
  swayshot capture --dry-run --log-level debug`,
	RunE: runCapture,
}

var (
	captureSaveDir string
	captureMatch   string
	captureDryRun  bool
)

func init() {
	rootCmd.AddCommand(captureCmd)
	addCaptureFlags(captureCmd)
}

func addCaptureFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&captureSaveDir, "save-dir", "d", "", "directory screenshots are written to (default ~/Pictures/Screenshots)")
	cmd.Flags().StringVar(&captureMatch, "match", "", "how a picked region is matched to a window (prefix or numeric)")
	cmd.Flags().BoolVarP(&captureDryRun, "dry-run", "n", false, "resolve the selection but do not capture")
}

// applyCaptureFlags overrides config values with flags given on the command line.
func applyCaptureFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("save-dir") {
		viper.Set("save_dir", captureSaveDir)
	}
	if cmd.Flags().Changed("match") {
		viper.Set("match_mode", captureMatch)
	}
}

func runCapture(cmd *cobra.Command, args []string) error {
	applyCaptureFlags(cmd)

	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	saveDir, err := configMgr.SaveDir()
	if err != nil {
		return err
	}
	if err := pipeline.EnsureSaveDir(saveDir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := command.ExecRunner{}

	backend, err := window.NewBackend(window.Options{
		Backend:     cfg.Backend,
		SwayCommand: cfg.Snapshot.Command,
		SwayArgs:    cfg.Snapshot.Args,
		SwaySocket:  cfg.SwaySocket,
	}, runner, os.Getenv)
	if err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrSnapshotUnavailable, err)
	}
	defer backend.Close()

	capturer := capture.NewGrimCapturer(runner, cfg.Capture.Command, cfg.Capture.Args)
	if !captureDryRun && !capturer.IsAvailable() {
		return fmt.Errorf("%w: %s not found in PATH", pipeline.ErrCaptureToolFailure, capturer.Name())
	}

	notifier, closeNotifier := newNotifier(cfg.Notifier, runner)
	defer closeNotifier()

	matchMode, err := selection.ParseMatchMode(cfg.MatchMode)
	if err != nil {
		return err
	}

	p := pipeline.New(pipeline.Options{
		SaveDir:           saveDir,
		MatchMode:         matchMode,
		NotificationTitle: cfg.Notifier.Title,
		DryRun:            captureDryRun,
	}, pipeline.Deps{
		Backend:   backend,
		Picker:    picker.NewSlurpPicker(runner, cfg.Picker.Command, cfg.Picker.Args),
		Capturer:  capturer,
		Clipboard: newClipboard(cfg.Clipboard, runner),
		Notifier:  notifier,
	})

	out, err := p.Run(ctx)
	return reportCapture(cmd.OutOrStdout(), out, err, captureDryRun)
}

// reportCapture prints the result of a run on w. Cancellation by the user or
// by a signal is not an error; other failures are logged before being returned.
func reportCapture(w io.Writer, out *pipeline.Outcome, err error, dryRun bool) error {
	log := logger.WithComponent("capture")

	switch {
	case errors.Is(err, pipeline.ErrSelectionCancelled):
		log.Info().Msg("Selection cancelled")
		return nil
	case errors.Is(err, context.Canceled):
		log.Info().Msg("Interrupted")
		return nil
	case err != nil:
		log.Error().Err(err).Msg("Capture failed")
		if out != nil && !out.Published && fileExists(out.Path) {
			log.Warn().Str("path", out.Path).Msg("Screenshot saved but not copied to clipboard")
			fmt.Fprintln(w, out.Path)
		}
		return err
	}

	if dryRun {
		fmt.Fprintf(w, "%s %s %s %s\n",
			out.Selection.Kind, out.Selection.Rect.Geometry(), out.Selection.Label, out.Path)
		return nil
	}

	fmt.Fprintln(w, out.Path)
	return nil
}

// newClipboard builds the clipboard publisher selected by cfg.Mode.
func newClipboard(cfg config.ClipboardConfig, runner command.Runner) output.Clipboard {
	switch strings.ToLower(cfg.Mode) {
	case output.ClipboardNone:
		return output.Discard{}
	case output.ClipboardNative:
		return output.NewNativeClipboard(cfg.Hold)
	default:
		return output.NewCommandClipboard(runner, cfg.Command, cfg.Args)
	}
}

// newNotifier builds the notifier selected by cfg.Mode and a func releasing
// any bus connection it opened. "auto" tries D-Bus first, then the command.
func newNotifier(cfg config.NotifierConfig, runner command.Runner) (output.Notifier, func()) {
	noop := func() {}
	switch strings.ToLower(cfg.Mode) {
	case output.NotifierNone:
		return output.Discard{}, noop
	case output.NotifierCommand:
		return output.NewCommandNotifier(runner, cfg.Command, cfg.Args), noop
	case output.NotifierDBus:
		dbus := output.NewDBusNotifier()
		return dbus, func() { dbus.Close() }
	default:
		dbus := output.NewDBusNotifier()
		return &output.FallbackNotifier{Notifiers: []output.Notifier{
			dbus,
			output.NewCommandNotifier(runner, cfg.Command, cfg.Args),
		}}, func() { dbus.Close() }
	}
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
