package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bryanchriswhite/swayshot/internal/command"
	"github.com/bryanchriswhite/swayshot/internal/layout"
	"github.com/bryanchriswhite/swayshot/internal/window"
)

var windowsCmd = &cobra.Command{
	Use:     "windows",
	Aliases: []string{"list"},
	Short:   "List the windows offered to the picker",
	Long: `Snapshot the window layout and print the visible windows exactly as they
are offered to the region picker, in traversal order.`,
	Example: `  # Print picker candidates (default)
  swayshot windows

  # Table with application ids, classes and pids
  swayshot windows --format table

  # JSON for scripting
  swayshot windows --format json`,
	RunE: runWindows,
}

var windowsFormat string

func init() {
	rootCmd.AddCommand(windowsCmd)

	windowsCmd.Flags().StringVarP(&windowsFormat, "format", "f", "picker", "output format (picker, table or json)")
}

// windowInfo is the JSON form of one indexed window
type windowInfo struct {
	Geometry string `json:"geometry"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Label    string `json:"label"`
	AppID    string `json:"app_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Class    string `json:"class,omitempty"`
	PID      int    `json:"pid"`
	Floating bool   `json:"floating"`
	Focused  bool   `json:"focused"`
}

func runWindows(cmd *cobra.Command, args []string) error {
	configMgr, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := configMgr.Get()

	backend, err := window.NewBackend(window.Options{
		Backend:     cfg.Backend,
		SwayCommand: cfg.Snapshot.Command,
		SwayArgs:    cfg.Snapshot.Args,
		SwaySocket:  cfg.SwaySocket,
	}, command.ExecRunner{}, os.Getenv)
	if err != nil {
		return err
	}
	defer backend.Close()

	root, err := backend.Snapshot(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to snapshot layout: %w", err)
	}

	return printIndex(cmd.OutOrStdout(), layout.BuildIndex(root), windowsFormat)
}

func printIndex(w io.Writer, idx layout.Index, format string) error {
	switch format {
	case "picker":
		for _, line := range idx.Lines() {
			fmt.Fprintln(w, line)
		}
		return nil
	case "json":
		infos := make([]windowInfo, 0, len(idx))
		for _, d := range idx {
			infos = append(infos, newWindowInfo(d))
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	case "table":
		return printIndexTable(w, idx)
	default:
		return fmt.Errorf("unsupported format: %s (use 'picker', 'table' or 'json')", format)
	}
}

func newWindowInfo(d layout.Descriptor) windowInfo {
	info := windowInfo{
		Geometry: d.Prefix(),
		X:        d.Rect.X,
		Y:        d.Rect.Y,
		Width:    d.Rect.Width,
		Height:   d.Rect.Height,
		Label:    d.Label,
	}
	if n := d.Node; n != nil {
		info.AppID = n.AppID
		info.Name = n.Name
		info.Class = n.Class
		info.Floating = n.Kind == layout.KindFloatingContainer
		info.Focused = n.Focused
		if n.PID != nil {
			info.PID = *n.PID
		}
	}
	return info
}

func printIndexTable(w io.Writer, idx layout.Index) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "GEOMETRY\tLABEL\tCLASS\tPID\tFLOATING")
	fmt.Fprintln(tw, "--------\t-----\t-----\t---\t--------")

	for _, d := range idx {
		info := newWindowInfo(d)
		floating := "No"
		if info.Floating {
			floating = "Yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", info.Geometry, info.Label, info.Class, info.PID, floating)
	}

	return nil
}
