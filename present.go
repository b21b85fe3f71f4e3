package thinker

import "time"

// Present is a cloneable, cheap handle to a task. A default-constructed
// Present (the zero value) is "empty" and reports itself as canceled --
// dropping a Present never cancels the task it refers to.
type Present[D any] struct {
	r *Runner[D]
}

// ID returns the task's identity. Calling this on an empty Present returns
// the zero TaskID.
func (p *Present[D]) ID() TaskID {
	if p.r == nil {
		return TaskID{}
	}
	return p.r.id()
}

// Snapshot delegates to the task's snapshot cell. Must not be called from
// the worker executing the task, and is an error to call on an empty
// Present.
func (p *Present[D]) Snapshot() D {
	if p.r == nil {
		fatalf("present: snapshot() called on an empty Present")
	}
	p.r.checkNotOwnWorker()
	return p.r.cell.Snapshot().Value()
}

func (p *Present[D]) IsCanceled() bool {
	if p.r == nil {
		return true
	}
	return p.r.isCanceled()
}

func (p *Present[D]) IsFinished() bool {
	if p.r == nil {
		return false
	}
	return p.r.isFinished()
}

func (p *Present[D]) IsPaused() bool {
	if p.r == nil {
		return false
	}
	return p.r.isPaused()
}

// Cancel is a no-op on an empty Present.
func (p *Present[D]) Cancel() {
	if p.r == nil {
		return
	}
	p.r.requestCancel(true)
}

// Pause is a no-op on an empty Present.
func (p *Present[D]) Pause() {
	if p.r == nil {
		return
	}
	p.r.requestPause(true, true)
}

// Resume is a no-op on an empty Present.
func (p *Present[D]) Resume() {
	if p.r == nil {
		return
	}
	p.r.requestResume(true)
}

// WaitForFinished blocks until the task reaches a terminal state. It
// returns immediately on an empty Present.
func (p *Present[D]) WaitForFinished() {
	if p.r == nil {
		return
	}
	p.r.waitForFinished()
}

// watcherSink is the per-watcher throttled delivery channel plus the
// throttler driving it.
type watcherSink struct {
	written   chan struct{}
	throttler *Throttler
}

// Watcher augments a Present with a throttled "written" sink and a
// single-fire "finished" sink. Attaching inserts into the task's watcher
// set and Detach removes it, keeping the throttler and its interval for a
// later Attach. Dropping a Watcher without calling Detach does not remove
// it from the watcher set.
type Watcher[D any] struct {
	Present[D]
	sink     *watcherSink
	finished <-chan struct{}
}

// NewWatcher attaches a new Watcher to p, using the manager's configured
// default watcher throttle. Attaching to an empty Present is a fatal
// programming error.
func NewWatcher[D any](p *Present[D]) *Watcher[D] {
	if p.r == nil {
		fatalf("watcher: cannot attach a Watcher to an empty Present")
	}
	sink := &watcherSink{written: make(chan struct{}, 1)}
	sink.throttler = NewThrottler(ModeMutex, p.r.watcherThrottle, p.r.mgr.cfg.PollOverhead, func() {
		select {
		case sink.written <- struct{}{}:
		default:
		}
	})
	w := &Watcher[D]{Present: Present[D]{r: p.r}, sink: sink, finished: p.r.finishedCh}
	p.r.attachWatcher(sink)
	return w
}

// Written fires (at most once per throttle interval, with eventual
// delivery guaranteed) whenever the task's state has been written to.
func (w *Watcher[D]) Written() <-chan struct{} {
	return w.sink.written
}

// Finished fires exactly once, when the task reaches a terminal state.
func (w *Watcher[D]) Finished() <-chan struct{} {
	return w.finished
}

// SetThrottle updates this watcher's own throttle interval.
func (w *Watcher[D]) SetThrottle(d time.Duration) {
	w.sink.throttler.SetDefault(d)
}

// Detach removes this watcher from its task's watcher set without tearing
// down its throttler's configured interval, so a later Attach to the same
// or a different task resumes with the same throttle setting.
func (w *Watcher[D]) Detach() {
	if w.r == nil {
		return
	}
	w.r.detachWatcher(w.sink)
}

// Attach (re)attaches this watcher to p, reusing its existing throttler and
// configured interval rather than constructing a new one.
func (w *Watcher[D]) Attach(p *Present[D]) {
	if p.r == nil {
		fatalf("watcher: cannot attach a Watcher to an empty Present")
	}
	w.Present = Present[D]{r: p.r}
	w.finished = p.r.finishedCh
	p.r.attachWatcher(w.sink)
}
