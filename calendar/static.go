package calendar

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/schedmesh/core"
)

// StaticProvider is an in-process core.CalendarProvider backed by a map of
// busy intervals per calendar id. It is safe for concurrent use. Latency and
// errors can be injected per calendar to exercise timeout and degradation
// paths.
type StaticProvider struct {
	mu      sync.RWMutex
	busy    map[string][]core.Interval
	errs    map[string]error
	latency map[string]time.Duration
}

// NewStaticProvider constructs an empty provider; every calendar is free.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		busy:    make(map[string][]core.Interval),
		errs:    make(map[string]error),
		latency: make(map[string]time.Duration),
	}
}

// SetBusy replaces the busy intervals of a calendar.
func (p *StaticProvider) SetBusy(calendarID string, intervals ...core.Interval) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy[calendarID] = intervals
}

// FailWith makes lookups for a calendar return the given error.
func (p *StaticProvider) FailWith(calendarID string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[calendarID] = err
}

// Delay makes lookups for a calendar take at least d.
func (p *StaticProvider) Delay(calendarID string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latency[calendarID] = d
}

// BusyIntervals implements core.CalendarProvider. Only intervals overlapping
// the window are returned, mirroring a freebusy query.
func (p *StaticProvider) BusyIntervals(ctx context.Context, calendarID string, window core.TimeWindow) ([]core.Interval, error) {
	p.mu.RLock()
	delay := p.latency[calendarID]
	err := p.errs[calendarID]
	intervals := p.busy[calendarID]
	p.mu.RUnlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	var out []core.Interval
	for _, iv := range intervals {
		if iv.Overlaps(window) {
			out = append(out, iv)
		}
	}
	return out, nil
}
