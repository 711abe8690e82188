package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "Manage scheduling sessions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List active sessions, most recently active first",
		Args:  cobra.NoArgs,
		Run:   runSessionsList,
	}

	closeCmd := &cobra.Command{
		Use:   "close [id]",
		Short: "Close a session (it stays queryable)",
		Args:  cobra.ExactArgs(1),
		Run:   runSessionsClose,
	}

	sessions.AddCommand(list, closeCmd)
	RootCmd.AddCommand(sessions)
}

func runSessionsList(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.CloseDB()

	active, err := store.Active()
	if err != nil {
		exitErr("list sessions", err)
	}
	printJSON(active)
}

func runSessionsClose(cmd *cobra.Command, args []string) {
	store, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.CloseDB()

	if err := store.Close(args[0]); err != nil {
		exitErr("close session", err)
	}
	printJSON(map[string]string{"id": args[0], "status": "closed"})
}
