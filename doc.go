// Package thinker is a concurrency substrate for running long-lived
// background computations -- thinkers -- whose intermediate state must be
// safely observable from other goroutines while they run.
//
// # Defining a task
//
// A task bundles a plain, clonable data type D with a Start method (and
// optionally a Resume method, for tasks that can be usefully paused):
//
//	type counter struct{ N uint64 }
//
//	func (counter) Start(h *thinker.Handle[counter]) thinker.Outcome {
//		for {
//			g := h.WriteGuard()
//			g.Value().N++
//			done := g.Value().N >= 1_000_000
//			g.Release()
//			if done {
//				return thinker.Done
//			}
//			if h.WasPauseRequested(0) {
//				return thinker.Yielded
//			}
//		}
//	}
//
// # Running it
//
// thinker.Run submits the task to a Manager (or the lazily-initialized
// global one) and returns a Present, a cheap, cloneable handle used to
// query, control, and snapshot the task from any other goroutine:
//
//	present := thinker.Run(nil, counter{}, counter{})
//	snap := present.Snapshot()
//	present.Pause()
//	present.WaitForFinished()
//
// # Watching it
//
// A Watcher augments a Present with throttled notifications, so an
// observer doesn't have to poll:
//
//	w := thinker.NewWatcher(present)
//	for {
//		select {
//		case <-w.Written():
//			// a coalesced batch of writes happened; re-snapshot if interested.
//		case <-w.Finished():
//			return
//		}
//	}
package thinker
