package thinker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPresent_EmptyPresentReportsCanceled(t *testing.T) {
	var p Present[int]

	require.True(t, p.IsCanceled())
	require.False(t, p.IsFinished())
	require.False(t, p.IsPaused())
	require.NotPanics(t, p.Cancel)
	require.NotPanics(t, p.Pause)
	require.NotPanics(t, p.Resume)
	require.NotPanics(t, p.WaitForFinished)

	require.Panics(t, func() {
		p.Snapshot()
	})
}

func TestPresent_DroppingDoesNotCancel(t *testing.T) {
	m := NewManager(DefaultConfig())
	defer m.Close()

	p := Run[uint64](m, 0, pollingCounter{target: 1000})
	p = nil // dropping our only reference should have no effect on the task
	_ = p

	// Re-observe via the manager's registry rather than the dropped handle.
	m.mu.Lock()
	var r runner
	for _, rr := range m.runnerByTask {
		r = rr
	}
	m.mu.Unlock()

	require.NotNil(t, r)
	r.waitForFinished()
	require.True(t, r.isFinished())
	require.False(t, r.isCanceled())
}

func TestWatcher_AttachDetachReattachPreservesThrottle(t *testing.T) {
	m := NewManager(DefaultConfig())
	defer m.Close()

	p := Run[uint64](m, 0, pollingCounter{target: 1_000_000})
	w := NewWatcher(p)
	w.SetThrottle(10 * time.Millisecond)
	w.Detach()

	var reattached Present[uint64]
	reattached.r = p.r
	w.Attach(&reattached)
	require.Equal(t, 10*time.Millisecond, w.sink.throttler.deflt)

	select {
	case <-w.Written():
	case <-time.After(time.Second):
		t.Fatal("expected at least one written notification after reattaching")
	}

	p.Cancel()
	p.WaitForFinished()
}
