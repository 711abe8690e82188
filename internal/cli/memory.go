package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	remember := &cobra.Command{
		Use:   "remember [content...]",
		Short: "Store a long-term memory record",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRemember,
	}
	remember.Flags().StringP("session", "s", "", "Originating session id")

	search := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search memory records by keyword",
		Long:  "Searches memory content across all sessions, ranked by relevance.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}
	search.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(remember, search)
}

func runRemember(cmd *cobra.Command, args []string) {
	sessionID, _ := cmd.Flags().GetString("session")
	content := strings.Join(args, " ")

	store, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.CloseDB()

	rec, err := store.Remember(sessionID, content)
	if err != nil {
		exitErr("remember", err)
	}
	printJSON(rec)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	store, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.CloseDB()

	results, err := store.Search(query, limit)
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}
	if formatFlag == "text" {
		for _, rec := range results {
			fmt.Printf("%s  %s\n", rec.Created.Format("2006-01-02"), rec.Content)
		}
		return
	}
	printJSON(results)
}
