package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/schedmesh/core"
)

func init() {
	cmd := &cobra.Command{
		Use:   "check [attendee...]",
		Short: "Check attendee availability for a time window",
		Long:  "Probes each attendee's calendar in parallel and reports available, busy or unknown per attendee.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runCheck,
	}

	cmd.Flags().String("start", "", "Window start (RFC 3339)")
	cmd.Flags().String("end", "", "Window end (RFC 3339)")
	cmd.Flags().String("tz", "UTC", "IANA timezone of the window")

	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")

	RootCmd.AddCommand(cmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	startFlag, _ := cmd.Flags().GetString("start")
	endFlag, _ := cmd.Flags().GetString("end")
	tz, _ := cmd.Flags().GetString("tz")

	start, err := time.Parse(time.RFC3339, startFlag)
	if err != nil {
		exitErr("parse start", err)
	}
	end, err := time.Parse(time.RFC3339, endFlag)
	if err != nil {
		exitErr("parse end", err)
	}

	window := core.TimeWindow{Start: start, End: end, Timezone: tz}
	reqs := make([]core.CheckRequest, len(args))
	for i, attendee := range args {
		reqs[i] = core.CheckRequest{AttendeeID: attendee, Window: window}
	}

	mesh, store, err := openMesh()
	if err != nil {
		exitErr("open store", err)
	}
	defer store.CloseDB()

	results := mesh.CheckAll(cmd.Context(), reqs)
	printJSON(results)
}
