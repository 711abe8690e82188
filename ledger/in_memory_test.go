package ledger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/schedmesh/core"
)

func TestInMemoryLedger_RecordAndChainFor(t *testing.T) {
	l := NewInMemoryLedger()

	l.Record(core.NewThought("corr-1", core.ThoughtAnalysis, "first"))
	l.Record(core.NewThought("corr-1", core.ThoughtDecision, "second"))
	l.Record(core.NewThought("corr-2", core.ThoughtPlanning, "other request"))

	chain := l.ChainFor("corr-1")
	require.Len(t, chain, 2)
	assert.Equal(t, "first", chain[0].Content)
	assert.Equal(t, "second", chain[1].Content)
	assert.Equal(t, core.ThoughtDecision, chain[1].Type)

	assert.Len(t, l.ChainFor("corr-2"), 1)
	assert.Empty(t, l.ChainFor("unknown"))
}

func TestInMemoryLedger_FillsMissingIDAndTimestamp(t *testing.T) {
	l := NewInMemoryLedger()

	l.Record(core.Thought{CorrelationID: "corr-1", Type: core.ThoughtConcern, Content: "bare"})

	chain := l.ChainFor("corr-1")
	require.Len(t, chain, 1)
	assert.NotEmpty(t, chain[0].ID)
	assert.False(t, chain[0].Timestamp.IsZero())
}

func TestInMemoryLedger_ChainCopyIsDefensive(t *testing.T) {
	l := NewInMemoryLedger()
	l.Record(core.NewThought("corr-1", core.ThoughtAnalysis, "original"))

	chain := l.ChainFor("corr-1")
	chain[0].Content = "mutated"

	assert.Equal(t, "original", l.ChainFor("corr-1")[0].Content)
}

func TestInMemoryLedger_Subscribe(t *testing.T) {
	l := NewInMemoryLedger()

	var mu sync.Mutex
	var seen []string
	l.Subscribe(func(th core.Thought) {
		mu.Lock()
		seen = append(seen, th.Content)
		mu.Unlock()
	})

	l.Record(core.NewThought("corr-1", core.ThoughtAnalysis, "a"))
	l.Record(core.NewThought("corr-1", core.ThoughtAnalysis, "b"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestInMemoryLedger_ListenerPanicIsContained(t *testing.T) {
	l := NewInMemoryLedger()
	l.Subscribe(func(core.Thought) { panic("bad listener") })

	assert.NotPanics(t, func() {
		l.Record(core.NewThought("corr-1", core.ThoughtAnalysis, "still recorded"))
	})
	assert.Len(t, l.ChainFor("corr-1"), 1)
}

func TestInMemoryLedger_ConcurrentReadersAndWriter(t *testing.T) {
	l := NewInMemoryLedger()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			l.Record(core.NewThought("corr-1", core.ThoughtValidation, "tick"))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var last int
			for i := 0; i < 100; i++ {
				n := len(l.ChainFor("corr-1"))
				// Readers see a consistent, monotonically growing prefix.
				assert.GreaterOrEqual(t, n, last)
				last = n
			}
		}()
	}

	wg.Wait()
	assert.Len(t, l.ChainFor("corr-1"), 100)
}

func TestInMemoryLedger_ExportJSON(t *testing.T) {
	l := NewInMemoryLedger()
	th := core.NewThought("corr-1", core.ThoughtRecommendation, "propose an alternate time")
	l.Record(th.WithMetadata(map[string]any{"available_count": 3}))

	data, err := l.ExportJSON("corr-1", true)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"recommendation"`)
	assert.Contains(t, string(data), "propose an alternate time")
	assert.Contains(t, string(data), "available_count")
}

func TestChainSummary(t *testing.T) {
	l := NewInMemoryLedger()
	l.Record(core.NewThought("corr-1", core.ThoughtAnalysis, "a"))
	l.Record(core.NewThought("corr-1", core.ThoughtAnalysis, "b"))
	l.Record(core.NewThought("corr-1", core.ThoughtDecision, "c"))

	s := l.ChainFor("corr-1").Summary()
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.ByType[core.ThoughtAnalysis])
	assert.Equal(t, 1, s.ByType[core.ThoughtDecision])
	assert.False(t, s.First.After(s.Last))
}

func TestChainFilter(t *testing.T) {
	chain := core.ReasoningChain{
		{Type: core.ThoughtConcern, Content: "c1"},
		{Type: core.ThoughtDecision, Content: "d1"},
		{Type: core.ThoughtConcern, Content: "c2"},
	}

	concerns := chain.Filter(core.ThoughtConcern)
	require.Len(t, concerns, 2)
	assert.Equal(t, "c1", concerns[0].Content)
	assert.Equal(t, "c2", concerns[1].Content)
}
