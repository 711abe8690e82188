package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/schedmesh"
	"github.com/hupe1980/schedmesh/core"
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate [event.json]",
		Short: "Validate a proposed event",
		Long:  "Validates an event across availability, room, timezone and policy dimensions. Reads the event JSON from the given file, or stdin when omitted.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runValidate,
	}

	cmd.Flags().Bool("reasoning", false, "Include the recorded reasoning chain")
	cmd.Flags().Bool("clarify", false, "Resolve warning-only outcomes to needs_clarification")

	RootCmd.AddCommand(cmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	withReasoning, _ := cmd.Flags().GetBool("reasoning")
	clarify, _ := cmd.Flags().GetBool("clarify")

	var raw []byte
	var err error
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		exitErr("read event", err)
	}

	var event core.ProposedEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		exitErr("parse event", err)
	}

	mesh, store, err := openMesh(func(o *schedmesh.Options) {
		o.ClarifyOnWarnings = clarify
	})
	if err != nil {
		exitErr("open store", err)
	}
	defer store.CloseDB()

	result, err := mesh.Validate(cmd.Context(), event)
	if err != nil {
		exitErr("validate", err)
	}

	if formatFlag == "text" {
		printResultText(result)
	} else {
		printJSON(result)
	}

	if withReasoning {
		chain := mesh.ChainFor(result.CorrelationID)
		if formatFlag == "text" {
			for _, t := range chain {
				fmt.Printf("[%s] %s\n", t.Type, t.Content)
			}
		} else {
			printJSON(chain)
		}
	}
}

func printResultText(result core.ValidationResult) {
	fmt.Printf("verdict: %s (%s)\n", result.Verdict, result.Elapsed.Round(time.Millisecond))
	for _, issue := range result.Issues {
		fmt.Printf("  %-8s %-12s %s\n", issue.Severity, issue.Dimension, issue.Message)
	}
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}
