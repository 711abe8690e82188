package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/schedmesh/core"
)

func window(start time.Time, d time.Duration) core.TimeWindow {
	return core.TimeWindow{Start: start, End: start.Add(d), Timezone: "UTC"}
}

func TestStaticProvider_FiltersToWindow(t *testing.T) {
	p := NewStaticProvider()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	p.SetBusy("alice@example.com",
		core.Interval{Start: base, End: base.Add(time.Hour), Summary: "standup"},
		core.Interval{Start: base.Add(6 * time.Hour), End: base.Add(7 * time.Hour), Summary: "1:1"},
	)

	got, err := p.BusyIntervals(context.Background(), "alice@example.com", window(base.Add(30*time.Minute), time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "standup", got[0].Summary)
}

func TestStaticProvider_UnknownCalendarIsFree(t *testing.T) {
	p := NewStaticProvider()

	got, err := p.BusyIntervals(context.Background(), "nobody@example.com", window(time.Now(), time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStaticProvider_InjectedError(t *testing.T) {
	p := NewStaticProvider()
	p.FailWith("flaky@example.com", errors.New("transport error"))

	_, err := p.BusyIntervals(context.Background(), "flaky@example.com", window(time.Now(), time.Hour))
	assert.Error(t, err)
}

func TestStaticProvider_DelayHonorsContext(t *testing.T) {
	p := NewStaticProvider()
	p.Delay("slow@example.com", time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.BusyIntervals(ctx, "slow@example.com", window(time.Now(), time.Hour))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
