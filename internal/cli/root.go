// Package cli implements the schedmesh CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hupe1980/schedmesh"
	"github.com/hupe1980/schedmesh/datastore"
	"github.com/hupe1980/schedmesh/session"
)

var (
	dbPath     string
	dataDir    string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "schedmesh",
	Short: "Meeting validation and scheduling memory",
	Long:  "Validates proposed meetings across availability, room, timezone and policy dimensions, with a persistent session and memory store. SQLite-backed, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $SCHEDMESH_DB or ~/.schedmesh/sched.db)")
	RootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "Directory holding users.json, facilities.json and policies.json (default: $SCHEDMESH_DATA or .)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("SCHEDMESH_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".schedmesh", "sched.db")
}

func getDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if env := os.Getenv("SCHEDMESH_DATA"); env != "" {
		return env
	}
	return "."
}

func openStore() (*session.SQLiteStore, error) {
	return session.NewSQLiteStore(getDBPath())
}

// openMesh wires a SchedMesh over the JSON data directory and the SQLite
// store. The caller must CloseDB the returned store.
func openMesh(optFns ...func(o *schedmesh.Options)) (*schedmesh.SchedMesh, *session.SQLiteStore, error) {
	store, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	mesh := schedmesh.New(append([]func(o *schedmesh.Options){func(o *schedmesh.Options) {
		o.DataStore = datastore.NewJSONStore(getDataDir())
		o.SessionStore = store
		o.MemoryStore = store
	}}, optFns...)...)
	return mesh, store, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
