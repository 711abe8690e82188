package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PositionalOrder(t *testing.T) {
	inputs := make([]int, 20)
	for i := range inputs {
		inputs[i] = i
	}

	// Later inputs finish first to force out-of-order completion.
	results := Run(context.Background(), inputs, func(_ context.Context, in int) string {
		time.Sleep(time.Duration(len(inputs)-in) * time.Millisecond)
		return fmt.Sprintf("result-%d", in)
	}, func(in int, _ error) string {
		return "fallback"
	})

	require.Len(t, results, len(inputs))
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("result-%d", i), r)
	}
}

func TestRun_EmptyInputs(t *testing.T) {
	called := false
	results := Run(context.Background(), nil, func(_ context.Context, in int) int {
		called = true
		return in
	}, func(in int, _ error) int { return -1 })

	assert.Empty(t, results)
	assert.False(t, called)
}

func TestRun_TimeoutSubstitutesFallback(t *testing.T) {
	inputs := []int{0, 1, 2}

	start := time.Now()
	results := Run(context.Background(), inputs, func(ctx context.Context, in int) string {
		if in == 1 {
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
			}
			return "late"
		}
		return "ok"
	}, func(in int, cause error) string {
		return "timeout:" + cause.Error()
	}, func(o *Options) {
		o.TaskTimeout = 50 * time.Millisecond
	})

	require.Len(t, results, 3)
	assert.Equal(t, "ok", results[0])
	assert.Contains(t, results[1], "timeout:")
	assert.Equal(t, "ok", results[2])
	// One slow task must not serialize the run.
	assert.Less(t, time.Since(start), time.Second)
}

func TestRun_TimeoutDoesNotAffectSiblings(t *testing.T) {
	inputs := make([]int, 10)
	for i := range inputs {
		inputs[i] = i
	}

	results := Run(context.Background(), inputs, func(ctx context.Context, in int) int {
		if in == 3 {
			time.Sleep(time.Second)
			return -100
		}
		return in * 10
	}, func(in int, _ error) int {
		return -1
	}, func(o *Options) {
		o.TaskTimeout = 30 * time.Millisecond
	})

	for i, r := range results {
		if i == 3 {
			assert.Equal(t, -1, r)
			continue
		}
		assert.Equal(t, i*10, r)
	}
}

func TestRun_BoundedPool(t *testing.T) {
	var current, peak int64
	var mu sync.Mutex

	inputs := make([]int, 12)
	Run(context.Background(), inputs, func(_ context.Context, in int) int {
		n := atomic.AddInt64(&current, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return in
	}, func(in int, _ error) int { return -1 }, func(o *Options) {
		o.MaxWorkers = 3
	})

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, int64(3))
}

func TestRun_PanicSubstitutesFallback(t *testing.T) {
	inputs := []int{0, 1, 2}

	results := Run(context.Background(), inputs, func(_ context.Context, in int) string {
		if in == 1 {
			panic("boom")
		}
		return "ok"
	}, func(in int, cause error) string {
		return "failed:" + cause.Error()
	})

	assert.Equal(t, "ok", results[0])
	assert.Contains(t, results[1], "task panicked")
	assert.Equal(t, "ok", results[2])
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, []int{0, 1}, func(ctx context.Context, in int) string {
		time.Sleep(time.Second)
		return "never"
	}, func(in int, cause error) string {
		if errors.Is(cause, context.Canceled) {
			return "cancelled"
		}
		return "other"
	})

	assert.Equal(t, []string{"cancelled", "cancelled"}, results)
}
