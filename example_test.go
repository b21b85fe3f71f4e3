package thinker_test

import (
	"fmt"
	"time"

	"github.com/warpfork/thinker"
)

// counterTask is a minimal task: it increments a counter under a write
// guard, polling for a pause or cancel request each tick, until it reaches
// its target.
type counterTask struct {
	target uint64
}

func (c counterTask) Start(h *thinker.Handle[uint64]) thinker.Outcome {
	for {
		g := h.WriteGuard()
		*g.Value()++
		n := *g.Value()
		g.Release()
		if n >= c.target {
			return thinker.Done
		}
		if h.WasPauseRequested(0) {
			return thinker.Yielded
		}
	}
}

func (c counterTask) Resume(h *thinker.Handle[uint64]) thinker.Outcome {
	return c.Start(h)
}

func ExampleRun() {
	m := thinker.NewManager(thinker.DefaultConfig())
	defer m.Close()

	present := thinker.Run(m, uint64(0), counterTask{target: 100})
	present.WaitForFinished()

	fmt.Println(present.Snapshot())
	// Output: 100
}

func ExampleNewWatcher() {
	m := thinker.NewManager(thinker.DefaultConfig())
	defer m.Close()

	present := thinker.Run(m, uint64(0), counterTask{target: 1_000_000})
	watcher := thinker.NewWatcher(present)
	watcher.SetThrottle(10 * time.Millisecond)

	<-watcher.Finished()
	fmt.Println(present.Snapshot())
	// Output: 1000000
}
