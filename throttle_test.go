package thinker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottler_CoalescesBurstWithinInterval(t *testing.T) {
	var emits atomic.Int32
	th := NewThrottler(ModeMutex, 50*time.Millisecond, 5*time.Millisecond, func() {
		emits.Add(1)
	})

	for i := 0; i < 100; i++ {
		th.Request()
	}

	require.Eventually(t, func() bool { return emits.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), emits.Load(), "a burst of requests within one interval should coalesce to a single emission")
}

func TestThrottler_ZeroIntervalEmitsEveryRequest(t *testing.T) {
	var emits atomic.Int32
	th := NewThrottler(ModeMutex, 0, 5*time.Millisecond, func() {
		emits.Add(1)
	})

	for i := 0; i < 5; i++ {
		th.Request()
		time.Sleep(2 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return emits.Load() == 5 }, time.Second, time.Millisecond)
}

func TestThrottler_PostponeClearsPending(t *testing.T) {
	var emits atomic.Int32
	th := NewThrottler(ModeMutex, 50*time.Millisecond, 5*time.Millisecond, func() {
		emits.Add(1)
	})

	th.Request()
	had := th.Postpone()
	require.True(t, had)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), emits.Load())
}

func TestThrottler_GuaranteesEventualDelivery(t *testing.T) {
	start := time.Now()
	done := make(chan struct{})
	th := NewThrottler(ModeMutex, 30*time.Millisecond, 5*time.Millisecond, func() {
		close(done)
	})
	th.Request()

	select {
	case <-done:
		elapsed := time.Since(start)
		assert.LessOrEqual(t, elapsed, 60*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("throttler did not emit within the requested interval")
	}
}

func TestThrottler_HomeModePumpDispatchesArmedRequests(t *testing.T) {
	var emits atomic.Int32
	th := NewThrottler(ModeHome, 20*time.Millisecond, 5*time.Millisecond, func() {
		emits.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go th.Pump(ctx)

	th.Request()
	require.Eventually(t, func() bool { return emits.Load() == 1 }, time.Second, time.Millisecond)
}

func TestThrottler_PumpOnMutexModeIsFatal(t *testing.T) {
	th := NewThrottler(ModeMutex, time.Millisecond, time.Millisecond, func() {})
	require.Panics(t, func() {
		th.Pump(context.Background())
	})
}
