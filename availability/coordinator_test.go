package availability

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/schedmesh/calendar"
	"github.com/hupe1980/schedmesh/core"
	"github.com/hupe1980/schedmesh/ledger"
)

func makeRequests(n int, correlationID string) []core.CheckRequest {
	reqs := make([]core.CheckRequest, n)
	for i := range reqs {
		reqs[i] = core.CheckRequest{
			AttendeeID:    fmt.Sprintf("user%d@example.com", i),
			Window:        testWindow(),
			CorrelationID: correlationID,
		}
	}
	return reqs
}

func TestCoordinator_ResultsInInputOrder(t *testing.T) {
	p := calendar.NewStaticProvider()
	// Stagger latencies so completion order differs from input order.
	for i := 0; i < 8; i++ {
		p.Delay(fmt.Sprintf("user%d@example.com", i), time.Duration(8-i)*5*time.Millisecond)
	}

	c := NewCoordinator(p)
	results := c.CheckAll(context.Background(), makeRequests(8, "corr-1"))

	require.Len(t, results, 8)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("user%d@example.com", i), r.AttendeeID)
		assert.Equal(t, core.StatusAvailable, r.Status)
	}
}

func TestCoordinator_ZeroRequests(t *testing.T) {
	l := ledger.NewInMemoryLedger()
	c := NewCoordinator(calendar.NewStaticProvider(), func(o *CoordinatorOptions) { o.Ledger = l })

	results := c.CheckAll(context.Background(), nil)

	assert.NotNil(t, results)
	assert.Empty(t, results)
	// Nothing dispatched, nothing recorded.
	assert.Empty(t, l.ChainFor(""))
}

func TestCoordinator_TimeoutIsolation(t *testing.T) {
	p := calendar.NewStaticProvider()
	// Attendee #3 exceeds the per-worker timeout.
	p.Delay("user3@example.com", 2*time.Second)

	c := NewCoordinator(p, func(o *CoordinatorOptions) {
		o.WorkerTimeout = 100 * time.Millisecond
	})

	start := time.Now()
	results := c.CheckAll(context.Background(), makeRequests(6, "corr-1"))
	elapsed := time.Since(start)

	require.Len(t, results, 6)
	for i, r := range results {
		if i == 3 {
			assert.Equal(t, core.StatusUnknown, r.Status)
			require.Error(t, r.Err)
			assert.Contains(t, r.Err.Error(), "timed out")
			continue
		}
		assert.Equal(t, core.StatusAvailable, r.Status, "attendee %d", i)
		assert.NoError(t, r.Err)
	}

	// Overall duration is bounded by the per-worker timeout, not the sum of
	// individual latencies.
	assert.Less(t, elapsed, time.Second)
}

func TestCoordinator_MixedStatuses(t *testing.T) {
	p := calendar.NewStaticProvider()
	w := testWindow()
	p.SetBusy("user7@example.com", core.Interval{Start: w.Start, End: w.End, Summary: "offsite"})
	p.FailWith("user2@example.com", errors.New("transport error"))

	c := NewCoordinator(p)
	results := c.CheckAll(context.Background(), makeRequests(10, "corr-1"))

	require.Len(t, results, 10)
	assert.Equal(t, core.StatusUnknown, results[2].Status)
	assert.Equal(t, core.StatusBusy, results[7].Status)
	require.Len(t, results[7].Conflicts, 1)
	for i, r := range results {
		if i == 2 || i == 7 {
			continue
		}
		assert.Equal(t, core.StatusAvailable, r.Status, "attendee %d", i)
	}
}

func TestCoordinator_RecordsDispatchAndCompletionThoughts(t *testing.T) {
	l := ledger.NewInMemoryLedger()
	c := NewCoordinator(calendar.NewStaticProvider(), func(o *CoordinatorOptions) { o.Ledger = l })

	c.CheckAll(context.Background(), makeRequests(3, "corr-9"))

	chain := l.ChainFor("corr-9")
	require.NotEmpty(t, chain)
	assert.Equal(t, core.ThoughtDecision, chain[0].Type)
	assert.Contains(t, chain[0].Content, "spawning 3 availability workers")

	last := chain[len(chain)-1]
	assert.Equal(t, core.ThoughtAnalysis, last.Type)
	assert.Contains(t, last.Content, "3 available")

	// One validation thought per worker in between.
	assert.Len(t, chain.Filter(core.ThoughtValidation), 3)
}
