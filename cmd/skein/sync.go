package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full sync against the backend",
	Long: `Push both local collections to the backend, then pull rows changed
since the last successful sync and merge them last-write-wins:

  1. Push projects (batched upsert)
  2. Push inventory items (batched upsert)
  3. Pull remote project changes since the watermark
  4. Pull remote inventory changes since the watermark
  5. Merge pulled rows into local state and advance the watermark

Phases run in order; a failing phase does not stop the others.`,
	Run: func(cmd *cobra.Command, args []string) {
		d, state, err := buildDaemon(nil, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer state.Close()

		fmt.Printf("Syncing %s...\n", dataDir())
		start := time.Now()

		result, err := d.SyncOnce(context.Background())
		elapsed := time.Since(start).Round(time.Millisecond)

		if result != nil {
			fmt.Printf("Pushed: %d\n", result.Pushed)
			fmt.Printf("Pulled: %d\n", result.Pulled)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sync failed after %v:\n", elapsed)
			for _, msg := range result.Errors {
				fmt.Fprintf(os.Stderr, "  - %s\n", msg)
			}
			os.Exit(1)
		}

		fmt.Printf("Sync complete in %v\n", elapsed)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
