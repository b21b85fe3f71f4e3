package thinker

// snapshotRunners copies the registry into a slice under the manager's
// lock, then releases the lock before any per-runner operation proceeds --
// the same fork-join shape as launching a batch of children and joining
// them, applied to already-registered runners instead of freshly launched
// goroutines.
func (m *Manager) snapshotRunners() []runner {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]runner, 0, len(m.runnerByTask))
	for _, r := range m.runnerByTask {
		out = append(out, r)
	}
	return out
}

// PauseAll requests a pause on every currently registered task (pass 1),
// tolerating ones that are already canceled or paused, then waits for
// every one of them to actually reach Paused (QueuedButPaused, for one no
// worker has picked up yet) or a terminal state (pass 2).
func (m *Manager) PauseAll() {
	runners := m.snapshotRunners()
	for _, r := range runners {
		r.requestPause(true, true)
	}
	for _, r := range runners {
		r.waitForPause(true)
	}
}

// ResumeAll requests a resume on every currently Paused or QueuedButPaused
// task.
func (m *Manager) ResumeAll() {
	for _, r := range m.snapshotRunners() {
		if r.isPaused() {
			r.requestResume(true)
		}
	}
}

// CancelAndWait cancels a single task and joins it. It is a no-op if the
// task is not known to this manager, and idempotent if already canceled.
func (m *Manager) CancelAndWait(id TaskID) {
	m.mu.Lock()
	r, ok := m.runnerByTask[id]
	m.mu.Unlock()
	if !ok {
		return
	}
	r.requestCancel(true)
	r.waitForFinished()
}
