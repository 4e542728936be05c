package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"skein/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local stash and sync state",
	Long: `Display the current state of the local stash:

  - Number of projects and inventory items
  - Pull watermark per collection
  - Recent sync runs`,
	Run: func(cmd *cobra.Command, args []string) {
		dir := dataDir()

		st, err := store.New(dir, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		projects := st.LoadProjects()
		items := st.LoadInventory()

		state, err := openState(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening sync state: %v\n", err)
			os.Exit(1)
		}
		defer state.Close()

		ctx := context.Background()

		fmt.Printf("\nSkein Status\n\n")
		fmt.Printf("Data: %s\n", dir)
		fmt.Printf("Projects: %d\n", len(projects))
		fmt.Printf("Inventory: %d\n", len(items))

		for _, key := range []string{store.KeyProjects, store.KeyInventory} {
			mark, err := state.Watermark(ctx, key)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading watermark: %v\n", err)
				os.Exit(1)
			}
			if mark == nil {
				fmt.Printf("Watermark (%s): never pulled\n", key)
			} else {
				fmt.Printf("Watermark (%s): %s\n", key, mark.Format("2006-01-02 15:04:05"))
			}
		}

		runs, err := state.RecentRuns(ctx, 5)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading sync runs: %v\n", err)
			os.Exit(1)
		}
		if len(runs) > 0 {
			fmt.Printf("\nRecent syncs:\n")
			for _, run := range runs {
				outcome := "ok"
				if len(run.Errors) > 0 {
					outcome = fmt.Sprintf("%d error(s)", len(run.Errors))
				}
				fmt.Printf("  %s  pushed=%d pulled=%d  %s\n",
					run.StartedAt.Format("2006-01-02 15:04:05"), run.Pushed, run.Pulled, outcome)
			}
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
