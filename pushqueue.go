package thinker

// pushRequest is the queued signal a runner sends to the manager the first
// time a worker picks it up, asking the manager to record which worker
// goroutine now drives it. The manager drains these under its own lock and
// acknowledges so the worker can proceed -- the direct analogue of the
// source's runThinker migration, minus any actual object hand-off, since a
// Go goroutine has no "home" to migrate away from.
type pushRequest struct {
	r               runner
	workerGoroutine uint64
	ack             chan struct{}
}

type pushQueue struct {
	ch chan pushRequest
}

func newPushQueue() *pushQueue {
	return &pushQueue{ch: make(chan pushRequest)}
}

// request blocks until the manager's drain loop has recorded the migration
// and acknowledged it, mirroring the worker blocking on a condvar in the
// source rather than busy-polling.
func (q *pushQueue) request(r runner, workerGoroutine uint64) {
	ack := make(chan struct{})
	q.ch <- pushRequest{r: r, workerGoroutine: workerGoroutine, ack: ack}
	<-ack
}

// drainPushQueue is the manager-side half of the push protocol: one
// goroutine per Manager, for the Manager's whole lifetime.
func (m *Manager) drainPushQueue() {
	for req := range m.pushQ.ch {
		m.mu.Lock()
		m.runnerByWorker[req.workerGoroutine] = req.r
		m.mu.Unlock()
		req.r.pushWorker(req.workerGoroutine)
		close(req.ack)
	}
}
