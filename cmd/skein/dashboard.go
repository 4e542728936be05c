package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"skein/internal/dashboard"
)

var flagDashboardPort int

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run the sync daemon with a live WebSocket dashboard",
	Long: `Run the sync daemon together with a WebSocket dashboard server.

The dashboard broadcasts sync completions, local collection edits, and
stash statistics to connected clients. Connect a WebSocket client to
ws://localhost:<port>/ws to receive live updates.`,
	Run: func(cmd *cobra.Command, args []string) {
		serverConfig := dashboard.DefaultConfig()
		serverConfig.Port = flagDashboardPort

		server := dashboard.NewServer(serverConfig)
		handler := dashboard.NewHandler(server, nil)

		d, state, err := buildDaemon(handler, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer state.Close()

		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting dashboard: %v\n", err)
			os.Exit(1)
		}
		defer server.Stop()

		fmt.Printf("Dashboard: http://localhost:%d (ws://localhost:%d/ws)\n",
			flagDashboardPort, flagDashboardPort)
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
	dashboardCmd.Flags().IntVar(&flagDashboardPort, "port", 8080, "dashboard listen port")
	rootCmd.AddCommand(dashboardCmd)
}
