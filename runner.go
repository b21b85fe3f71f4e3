package thinker

import (
	"log/slog"
	"sync"
	"time"
)

// runner is the type-erased surface the Manager keeps in its registries.
// Runner[D] implements it so tasks of differing data types can share one
// map -- the same "base class" role the source's ThinkerBase played for its
// templated Thinker<DataType>, here played by an interface instead of an
// inheritance split (see the re-architecting note this module's design is
// grounded on).
type runner interface {
	id() TaskID
	label() string
	state() State
	requestPause(allowCanceled, allowPaused bool)
	waitForPause(allowCanceled bool)
	requestCancel(allowAlreadyCanceled bool)
	requestResume(allowCanceled bool)
	waitForResume()
	waitForFinished()
	isCanceled() bool
	isFinished() bool
	isPaused() bool
	workerStep() error
	pushWorker(workerGoroutine uint64)
}

// Runner is the per-task state machine. It mediates between the
// user-written task body, the Manager, and any number of Present/Watcher
// observers, and arbitrates every state transition under its own mutex --
// there is too much going on here to keep straight any other way.
type Runner[D any] struct {
	taskID TaskID
	lbl    string
	mgr    *Manager
	task   Task[D]
	cell   *SnapshotCell[D]
	logger *slog.Logger

	watcherThrottle time.Duration

	mu             sync.Mutex
	st             State
	lastTransition Codeplace
	changedCh      chan struct{}
	pushed         bool
	ownerGoroutine uint64

	finishedOnce sync.Once
	finishedCh   chan struct{}

	watchersMu sync.Mutex
	watchers   map[*watcherSink]struct{}
}

func (r *Runner[D]) id() TaskID    { return r.taskID }
func (r *Runner[D]) label() string { return r.lbl }

func (r *Runner[D]) state() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st
}

func (r *Runner[D]) isCanceled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st == StateCanceled
}

func (r *Runner[D]) isFinished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st == StateFinished
}

func (r *Runner[D]) isPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st == StatePaused || r.st == StateQueuedButPaused
}

// setState must be called with r.mu held. It records the transition site,
// updates the state, and wakes anything waiting on a state change by
// closing and replacing changedCh.
func (r *Runner[D]) setState(s State) {
	from := r.st
	r.st = s
	r.lastTransition = here(2)
	close(r.changedCh)
	r.changedCh = make(chan struct{})
	if r.logger != nil {
		r.logger.Debug("state transition", "from", from, "to", s, "at", r.lastTransition)
	}
}

// checkNotOwnWorker enforces that control and snapshot operations are never
// invoked from inside the worker goroutine currently driving this task's
// body -- a task cannot pause, cancel, or snapshot itself.
func (r *Runner[D]) checkNotOwnWorker() {
	r.mu.Lock()
	owner := r.ownerGoroutine
	r.mu.Unlock()
	if owner != 0 && owner == currentGoroutineID() {
		fatalf("runner: control or snapshot operation invoked from the task's own worker")
	}
}

func (r *Runner[D]) waitStateChangeBounded(d time.Duration) bool {
	r.mu.Lock()
	ch := r.changedCh
	r.mu.Unlock()
	if d < 0 {
		<-ch
		return true
	}
	select {
	case <-ch:
		return true
	case <-time.After(d):
		return false
	}
}

func (r *Runner[D]) peekPauseOrCancel() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st == StatePausing || r.st == StateCanceling
}

// checkThinking reports, under one lock acquisition, whether a pause or
// cancel is already pending. If neither is pending it also asserts the
// runner is still in the Thinking state -- a body must only poll while it is
// the one actually running -- since checking that under a second, later
// lock acquisition would race against a pause/cancel landing in between and
// wrongly fatalf on exactly the transition this function exists to report.
func (r *Runner[D]) checkThinking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.st {
	case StatePausing, StateCanceling:
		return true
	case StateThinking:
		return false
	default:
		fatalf("was_pause_requested: called outside the Thinking state (got %s)", r.st)
		return false
	}
}

// wasPauseRequested implements the cooperative pause/cancel poll described
// by Handle.WasPauseRequested.
func (r *Runner[D]) wasPauseRequested(timeout time.Duration) bool {
	if r.checkThinking() {
		return true
	}
	if timeout == 0 {
		return false
	}
	if timeout < 0 {
		for {
			r.waitStateChangeBounded(-1)
			if r.peekPauseOrCancel() {
				return true
			}
			if r.state() != StateThinking {
				return true
			}
		}
	}
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return r.peekPauseOrCancel()
		}
		if !r.waitStateChangeBounded(remaining) {
			return r.peekPauseOrCancel()
		}
		if r.peekPauseOrCancel() {
			return true
		}
		if r.state() != StateThinking {
			return true
		}
	}
}

// requestPause implements the manager/Present control surface's
// request_pause(allow_canceled, allow_paused).
func (r *Runner[D]) requestPause(allowCanceled, allowPaused bool) {
	r.checkNotOwnWorker()
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.st {
	case StateQueued:
		r.setState(StateQueuedButPaused)
	case StateThreadPush, StateThinking, StateResuming:
		r.setState(StatePausing)
	case StateQueuedButPaused, StatePausing, StatePaused:
		if !allowPaused {
			fatalf("request_pause: task is already paused or pausing")
		}
	case StateCanceling, StateCanceled:
		if !allowCanceled {
			fatalf("request_pause: task is canceled")
		}
	case StateFinished:
		// tolerated no-op: a finished task cannot be paused.
	}
}

func (r *Runner[D]) waitForPause(allowCanceled bool) {
	r.checkNotOwnWorker()
	for {
		r.mu.Lock()
		st := r.st
		ch := r.changedCh
		r.mu.Unlock()
		switch st {
		case StatePaused, StateQueuedButPaused, StateFinished:
			return
		case StateCanceled:
			if allowCanceled {
				return
			}
			fatalf("wait_for_pause: task was canceled")
		default:
			<-ch
		}
	}
}

func (r *Runner[D]) requestCancel(allowAlreadyCanceled bool) {
	r.checkNotOwnWorker()
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.st {
	case StateQueued, StateQueuedButPaused, StatePaused:
		r.setState(StateCanceled)
	case StateThreadPush, StateThinking, StateResuming, StatePausing:
		r.setState(StateCanceling)
	case StateFinished:
		// late cancel after finish is idempotent: transition to Canceled.
		r.setState(StateCanceled)
	case StateCanceling, StateCanceled:
		if !allowAlreadyCanceled {
			fatalf("request_cancel: task is already canceled")
		}
	}
}

func (r *Runner[D]) requestResume(allowCanceled bool) {
	r.checkNotOwnWorker()
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.st {
	case StatePaused:
		r.setState(StateResuming)
	case StateQueuedButPaused:
		r.setState(StateQueued)
	case StateCanceled:
		if !allowCanceled {
			fatalf("request_resume: task is canceled")
		}
	case StateResuming, StateQueued, StateThinking, StateThreadPush, StateFinished:
		// already resumed, already running, or nothing to resume: no-op.
	case StatePausing, StateCanceling:
		fatalf("request_resume: task has not finished pausing yet")
	}
}

func (r *Runner[D]) waitForResume() {
	r.checkNotOwnWorker()
	for {
		r.mu.Lock()
		st := r.st
		ch := r.changedCh
		r.mu.Unlock()
		switch st {
		case StateThinking, StateFinished, StateCanceled:
			return
		default:
			<-ch
		}
	}
}

func (r *Runner[D]) waitForFinished() {
	r.checkNotOwnWorker()
	<-r.finishedCh
}

func (r *Runner[D]) pushWorker(workerGoroutine uint64) {
	r.mu.Lock()
	r.ownerGoroutine = workerGoroutine
	r.pushed = true
	r.mu.Unlock()
}

func (r *Runner[D]) attachWatcher(s *watcherSink) {
	r.watchersMu.Lock()
	r.watchers[s] = struct{}{}
	r.watchersMu.Unlock()
}

func (r *Runner[D]) detachWatcher(s *watcherSink) {
	r.watchersMu.Lock()
	delete(r.watchers, s)
	r.watchersMu.Unlock()
}

// onCellWritten is the SnapshotCell's written-notification sink: it fires
// the manager's bus throttler and every attached watcher's throttler.
func (r *Runner[D]) onCellWritten() {
	r.mgr.bus.Request()
	r.watchersMu.Lock()
	defer r.watchersMu.Unlock()
	for s := range r.watchers {
		s.throttler.Request()
	}
}
