// remotemouse - Remote mouse relay
// Accepts pointer commands from a phone or another machine over TCP and
// replays them on the local desktop.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"remotemouse/internal/config"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := serveCmd(&configPath)

	rootCmd := &cobra.Command{
		Use:   "remotemouse",
		Short: "Remote mouse relay",
		Long: `remotemouse listens on TCP port 1978 for framed pointer commands
("mos009m 12 -7") and injects them as accelerated mouse motion, clicks and
wheel steps on this machine.

Running without a subcommand is the same as "remotemouse serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default is the per-user config path)")
	rootCmd.Flags().AddFlagSet(serve.Flags())

	rootCmd.AddCommand(
		serve,
		sendCmd(),
		watchCmd(),
		discoverCmd(),
		configCmd(&configPath),
		autostartCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads the config file and environment overrides
func loadConfig(path string) (*config.Manager, error) {
	mgr, err := config.NewManager(path)
	if err != nil {
		return nil, fmt.Errorf("initialize config: %w", err)
	}
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return mgr, nil
}
