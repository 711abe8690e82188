package schedmesh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/schedmesh/calendar"
	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/datastore"
)

func TestNew_Defaults(t *testing.T) {
	mesh := New()

	start := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC) // Monday, inside business hours
	result, err := mesh.Validate(context.Background(), core.ProposedEvent{
		Title:     "sync",
		Window:    core.TimeWindow{Start: start, End: start.Add(time.Hour), Timezone: "UTC"},
		Attendees: []string{"a@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, core.VerdictValid, result.Verdict)

	// The default ledger records the run.
	chain := mesh.ChainFor(result.CorrelationID)
	assert.NotEmpty(t, chain)
}

func TestValidate_BusyAttendee(t *testing.T) {
	start := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)
	window := core.TimeWindow{Start: start, End: start.Add(time.Hour), Timezone: "UTC"}

	provider := calendar.NewStaticProvider()
	provider.SetBusy("bob@example.com", core.Interval{Start: start, End: start.Add(2 * time.Hour), Summary: "offsite"})

	mesh := New(func(o *Options) {
		o.Provider = provider
	})

	result, err := mesh.Validate(context.Background(), core.ProposedEvent{
		Title:     "sync",
		Window:    window,
		Attendees: []string{"alice@example.com", "bob@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, core.VerdictInvalid, result.Verdict)
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, core.DimensionAvailability, result.Issues[0].Dimension)
}

func TestCheckAll(t *testing.T) {
	start := time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC)
	window := core.TimeWindow{Start: start, End: start.Add(time.Hour), Timezone: "UTC"}

	provider := calendar.NewStaticProvider()
	provider.SetBusy("bob@example.com", core.Interval{Start: start, End: start.Add(time.Hour)})

	mesh := New(func(o *Options) { o.Provider = provider })

	results := mesh.CheckAll(context.Background(), []core.CheckRequest{
		{AttendeeID: "alice@example.com", Window: window},
		{AttendeeID: "bob@example.com", Window: window},
	})
	require.Len(t, results, 2)
	assert.Equal(t, core.StatusAvailable, results[0].Status)
	assert.Equal(t, core.StatusBusy, results[1].Status)
}

func TestSessionLifecycle(t *testing.T) {
	mesh := New()

	sess, err := mesh.GetOrCreateSession("s1")
	require.NoError(t, err)
	sess.State = []byte("draft")
	require.NoError(t, mesh.SaveSession(sess))

	resumed, err := mesh.GetOrCreateSession("s1")
	require.NoError(t, err)
	assert.Equal(t, []byte("draft"), resumed.State)

	require.NoError(t, mesh.CloseSession("s1"))
	active, err := mesh.ActiveSessions()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSaveSession_AutoMemory(t *testing.T) {
	mesh := New(func(o *Options) { o.AutoMemory = true })

	sess, err := mesh.GetOrCreateSession("s1")
	require.NoError(t, err)
	sess.State = []byte("needs projector in room aurora")
	require.NoError(t, mesh.SaveSession(sess))

	recs, err := mesh.Search("projector", 5)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "s1", recs[0].SessionID)
}

func TestValidate_PolicyDefaults(t *testing.T) {
	// 25 attendees trips the built-in executive approval rule served by the
	// default static data store.
	attendees := make([]string, 25)
	for i := range attendees {
		attendees[i] = core.NewID() + "@example.com"
	}

	start := time.Date(2026, 9, 7, 14, 0, 0, 0, time.UTC)
	mesh := New(func(o *Options) {
		o.DataStore = &datastore.StaticStore{}
	})

	result, err := mesh.Validate(context.Background(), core.ProposedEvent{
		Title:     "all hands",
		Window:    core.TimeWindow{Start: start, End: start.Add(time.Hour), Timezone: "UTC"},
		Attendees: attendees,
	})
	require.NoError(t, err)
	assert.Equal(t, core.VerdictInvalid, result.Verdict)
}
