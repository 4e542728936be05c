package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"skein/internal/daemon"
	"skein/internal/remote"
	"skein/internal/store"
	"skein/internal/syncer"
	"skein/internal/syncstate"
)

// EnvUserID holds the backend user identifier when --user is not given.
const EnvUserID = "SKEIN_USER_ID"

var (
	flagDataDir string
	flagUserID  string
)

var rootCmd = &cobra.Command{
	Use:   "skein",
	Short: "Crochet project and stash tracker sync engine",
	Long: `skein keeps a local crochet project/inventory stash in sync with a
Supabase backend.

Local state lives as two JSON collections (projects.json, inventory.json)
in the data directory, alongside a small SQLite database tracking pull
watermarks and sync history.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data", "", "data directory (default $HOME/.skein)")
	rootCmd.PersistentFlags().StringVar(&flagUserID, "user", "", "backend user ID (default $"+EnvUserID+")")
}

// dataDir resolves the data directory from the flag or the default.
func dataDir() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".skein"
	}
	return filepath.Join(home, ".skein")
}

// userID resolves the backend user ID from the flag or environment.
func userID() (string, error) {
	if flagUserID != "" {
		return flagUserID, nil
	}
	if uid := os.Getenv(EnvUserID); uid != "" {
		return uid, nil
	}
	return "", fmt.Errorf("no user ID: pass --user or set %s", EnvUserID)
}

// openState opens the sync-state database in the data directory.
func openState(dir string) (*syncstate.DB, error) {
	state, err := syncstate.Open(filepath.Join(dir, "syncstate.db"))
	if err != nil {
		return nil, err
	}
	if err := state.InitSchema(); err != nil {
		_ = state.Close()
		return nil, err
	}
	return state, nil
}

// buildDaemon wires up the full sync stack: store, remote client, syncer,
// state database, daemon. The caller owns closing the returned state DB.
func buildDaemon(events daemon.Events, config *daemon.Config) (*daemon.Daemon, *syncstate.DB, error) {
	uid, err := userID()
	if err != nil {
		return nil, nil, err
	}

	st, err := store.New(dataDir(), nil)
	if err != nil {
		return nil, nil, err
	}

	client, err := remote.FromEnv()
	if err != nil {
		return nil, nil, err
	}

	state, err := openState(dataDir())
	if err != nil {
		return nil, nil, err
	}

	d, err := daemon.New(st, syncer.New(client, nil), state, uid, config, events)
	if err != nil {
		_ = state.Close()
		return nil, nil, err
	}
	return d, state, nil
}
