package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bryanchriswhite/swayshot/internal/config"
	"github.com/bryanchriswhite/swayshot/internal/logger"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "swayshot",
		Short: "swayshot - window-aware screenshots for sway",
		Long: `swayshot takes a screenshot of a window or a region you draw.

Every visible window is offered to the region picker as a candidate. Clicking
a window captures exactly its content area and names the file after the
application; dragging a freeform rectangle captures that area and names it
after the window under its top-left corner.

The image is saved as <label>-<YYYYMMDD>-<HHMMSS>.png in the save directory,
copied to the clipboard and announced with a desktop notification.

Running swayshot without a subcommand is the same as "swayshot capture".`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initLogging,
		RunE:              runCapture,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/swayshot/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("pretty", true, "human readable logs on stderr (false for JSON)")
	rootCmd.PersistentFlags().String("backend", "", "layout backend (auto, sway or x11)")

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_pretty", rootCmd.PersistentFlags().Lookup("pretty"))
	viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))

	addCaptureFlags(rootCmd)
}

// initLogging configures the logger from flags alone so config loading can
// already log; loadConfig re-initialises it once the file has been read.
func initLogging(cmd *cobra.Command, args []string) error {
	level := viper.GetString("log_level")
	if level == "" {
		level = "info"
	}
	logger.Init(level, viper.GetBool("log_pretty"))
	return nil
}

// loadConfig reads the config file and environment on top of the bound flags.
func loadConfig() (*config.Manager, error) {
	configMgr, err := config.NewManager(viper.GetViper(), cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	return configMgr, nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
