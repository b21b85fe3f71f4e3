package thinker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManager_BulkPauseAndResume(t *testing.T) {
	m := NewManager(DefaultConfig())
	defer m.Close()

	const n = 50
	presents := make([]*Present[uint64], n)
	for i := range presents {
		presents[i] = Run[uint64](m, 0, pollingCounter{target: 10_000_000})
	}

	time.Sleep(5 * time.Millisecond)
	m.PauseAll()

	for _, p := range presents {
		require.True(t, p.IsPaused() || p.IsFinished() || p.IsCanceled())
	}

	m.ResumeAll()

	for _, p := range presents {
		p.Cancel()
	}
	for _, p := range presents {
		p.WaitForFinished()
	}
}

func TestManager_CloseAssertsTerminal(t *testing.T) {
	m := NewManager(DefaultConfig())
	p := Run[uint64](m, 0, pollingCounter{target: 1_000_000_000})

	require.Panics(t, func() {
		_ = m.Close()
	})

	p.Cancel()
	p.WaitForFinished()
	require.NoError(t, m.Close())
}

func TestManager_CancelAndWaitIsIdempotent(t *testing.T) {
	m := NewManager(DefaultConfig())
	defer m.Close()

	p := Run[uint64](m, 0, pollingCounter{target: 1_000_000_000})
	id := p.ID()

	m.CancelAndWait(id)
	require.True(t, p.IsCanceled())
	require.NotPanics(t, func() { m.CancelAndWait(id) })
}

func TestManager_CancelAndWaitOnUnknownIDIsNoop(t *testing.T) {
	m := NewManager(DefaultConfig())
	defer m.Close()

	require.NotPanics(t, func() {
		m.CancelAndWait(newTaskID())
	})
}

func TestGlobal_LazilyInitializedSingleton(t *testing.T) {
	a := Global()
	b := Global()
	require.Same(t, a, b)
}
