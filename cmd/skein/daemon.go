package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"skein/internal/daemon"
)

var (
	flagSyncInterval time.Duration
	flagDebounce     time.Duration
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the sync daemon (foreground)",
	Long: `Run the background sync daemon in foreground mode.

The daemon performs a full sync on startup, watches the data directory for
local edits (re-syncing after a debounce window), and runs a periodic full
sync regardless of local activity.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := daemon.DefaultConfig()
		config.SyncInterval = flagSyncInterval
		config.DebounceInterval = flagDebounce

		d, state, err := buildDaemon(nil, config)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer state.Close()

		fmt.Printf("Starting sync daemon (data: %s)\n", dataDir())
		fmt.Printf("Press Ctrl+C to stop\n\n")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := d.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Daemon stopped with error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	daemonCmd.Flags().DurationVar(&flagSyncInterval, "interval", 5*time.Minute, "periodic full sync interval")
	daemonCmd.Flags().DurationVar(&flagDebounce, "debounce", 2*time.Second, "delay after a local edit before syncing")
	rootCmd.AddCommand(daemonCmd)
}
