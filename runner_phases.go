package thinker

// phaseFn is a state function: it does one phase of a Runner's worker-side
// lifecycle and returns whichever phase should run next, or nil when the
// task has reached a terminal state. This replaces the source's per-runner
// event loop ("quit"/"exec" to suspend/resume) with an explicit chain of
// functions, removing any dependency on an event pump per worker.
type phaseFn[D any] func() phaseFn[D]

// workerStep is the pool worker's entry point for one task: it runs the
// phase chain to completion and returns nil always, since a task's own
// failure is expressed as a state transition (Canceled), not a Go error --
// the Manager's pool has nothing to collect here but the task's exit.
func (r *Runner[D]) workerStep() error {
	r.mu.Lock()
	r.ownerGoroutine = currentGoroutineID()
	r.mu.Unlock()
	for phase := r.phaseQueued; phase != nil; {
		phase = phase()
	}
	return nil
}

func (r *Runner[D]) phaseQueued() phaseFn[D] {
	r.mu.Lock()
	for r.st == StateQueuedButPaused {
		ch := r.changedCh
		r.mu.Unlock()
		<-ch
		r.mu.Lock()
	}
	if r.st.Terminal() {
		r.mu.Unlock()
		return r.phaseTerminal
	}
	r.setState(StateThreadPush)
	r.mu.Unlock()
	return r.phaseThreadPush
}

// phaseThreadPush publishes this runner's worker affinity to the manager
// (see pushqueue.go) and waits for the migration to be acknowledged before
// proceeding, mirroring the source's "push to thread" handshake. A runner
// whose push has already completed skips the request, guarded by the pushed
// flag.
func (r *Runner[D]) phaseThreadPush() phaseFn[D] {
	r.mu.Lock()
	already := r.pushed
	r.mu.Unlock()
	if !already {
		r.mgr.pushQ.request(r, currentGoroutineID())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.st {
	case StateThreadPush:
		r.setState(StateThinking)
		return r.phaseThinking
	case StateCanceling:
		// a cancel landed before affinity finished migrating: move straight
		// to Canceled without ever calling the body's Start.
		r.setState(StateCanceled)
		return r.phaseTerminal
	case StatePausing:
		// a pause landed before affinity finished migrating; Start still
		// runs once so the body gets a chance to observe and yield on it.
		return r.phaseThinking
	default:
		if r.st.Terminal() {
			return r.phaseTerminal
		}
		fatalf("runner: unexpected state %s after thread push", r.st)
		return nil
	}
}

func (r *Runner[D]) phaseThinking() phaseFn[D] {
	h := &Handle[D]{cell: r.cell, runner: r}
	outcome := r.task.Start(h)
	return r.afterBody(outcome)
}

func (r *Runner[D]) phaseResuming() phaseFn[D] {
	resumer, ok := r.task.(Resumer[D])
	if !ok {
		fatalf("runner: resume() called on a task that did not implement Resumer")
	}
	r.mu.Lock()
	// A pause or cancel that landed after the resume stays pending for the
	// body to observe and yield on.
	if r.st == StateResuming {
		r.setState(StateThinking)
	}
	r.mu.Unlock()
	h := &Handle[D]{cell: r.cell, runner: r}
	outcome := resumer.Resume(h)
	return r.afterBody(outcome)
}

// afterBody inspects the outcome of a Start/Resume call together with
// whatever pause/cancel request arrived while it ran, and resolves the
// next lifecycle state.
func (r *Runner[D]) afterBody(outcome Outcome) phaseFn[D] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if outcome == Done {
		r.setState(StateFinished)
		return r.phaseTerminal
	}
	switch r.st {
	case StatePausing:
		r.setState(StatePaused)
		return r.phaseAwaitResume
	case StateCanceling:
		r.setState(StateCanceled)
		return r.phaseTerminal
	default:
		fatalf("runner: body yielded from state %s without a pending pause or cancel", r.st)
		return nil
	}
}

func (r *Runner[D]) phaseAwaitResume() phaseFn[D] {
	r.mu.Lock()
	for r.st == StatePaused {
		ch := r.changedCh
		r.mu.Unlock()
		<-ch
		r.mu.Lock()
	}
	st := r.st
	if st == StateCanceling {
		// a cancel landed after the resume but before the body re-entered:
		// finish canceling without calling Resume.
		r.setState(StateCanceled)
		st = StateCanceled
	}
	r.mu.Unlock()
	switch st {
	case StateResuming, StatePausing:
		return r.phaseResuming
	case StateCanceled:
		return r.phaseTerminal
	default:
		fatalf("runner: unexpected state %s while awaiting resume", st)
		return nil
	}
}

func (r *Runner[D]) phaseTerminal() phaseFn[D] {
	r.mu.Lock()
	r.ownerGoroutine = 0
	final := r.st
	r.mu.Unlock()
	r.finishedOnce.Do(func() {
		if r.logger != nil {
			r.logger.Info("task reached terminal state", "state", final)
		}
		r.mgr.labels.release(r.lbl)
		close(r.finishedCh)
	})
	return nil
}
