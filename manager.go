package thinker

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Manager is the process-wide (or per-instance) registry of runners: it
// submits jobs onto a worker pool, coordinates cross-context affinity
// migration, and offers bulk pause/resume over everything it currently
// knows about.
type Manager struct {
	cfg *Config

	mu             sync.Mutex
	runnerByTask   map[TaskID]runner
	runnerByWorker map[uint64]runner

	labels *labelRegistry
	pushQ  *pushQueue
	bus    *Throttler

	sem *semaphore.Weighted
	grp *errgroup.Group
	ctx context.Context

	cancel context.CancelFunc
	logger *slog.Logger
}

// NewManager constructs a Manager. A nil cfg uses DefaultConfig().
func NewManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	grp, gctx := errgroup.WithContext(ctx)
	m := &Manager{
		cfg:            cfg,
		runnerByTask:   make(map[TaskID]runner),
		runnerByWorker: make(map[uint64]runner),
		labels:         newLabelRegistry(),
		pushQ:          newPushQueue(),
		grp:            grp,
		ctx:            gctx,
		cancel:         cancel,
		logger:         cfg.Logger,
	}
	if cfg.PoolSize > 0 {
		m.sem = semaphore.NewWeighted(int64(cfg.PoolSize))
	}
	m.bus = NewThrottler(ModeMutex, cfg.BusThrottle, cfg.PollOverhead, m.busEmit)
	go m.drainPushQueue()
	return m
}

func (m *Manager) busEmit() {
	if m.logger != nil {
		m.logger.Debug("thinker: bus written")
	}
}

// RunOption customizes a single Run call.
type RunOption func(*runOptions)

type runOptions struct {
	label string
}

// WithLabel overrides the log label a task would otherwise be given
// (either its Labeled.Label() or a generic default).
func WithLabel(label string) RunOption {
	return func(o *runOptions) { o.label = label }
}

// Run submits a task to the manager, wraps it in a Runner, registers it,
// and enqueues a job onto the worker pool. Run is a free function, not a
// method, because Go does not permit a method to carry its own type
// parameter independent of its receiver's.
func Run[D any](m *Manager, initial D, task Task[D], opts ...RunOption) *Present[D] {
	if m == nil {
		m = Global()
	}
	var ro runOptions
	for _, o := range opts {
		o(&ro)
	}
	label := ro.label
	if label == "" {
		if l, ok := task.(Labeled); ok {
			label = l.Label()
		} else {
			label = "task"
		}
	}
	label = m.labels.disambiguate(label)

	taskID := newTaskID()
	r := &Runner[D]{
		taskID:          taskID,
		lbl:             label,
		mgr:             m,
		task:            task,
		watcherThrottle: m.cfg.DefaultWatcherThrottle,
		st:              StateQueued,
		changedCh:       make(chan struct{}),
		finishedCh:      make(chan struct{}),
		watchers:        make(map[*watcherSink]struct{}),
		logger:          m.logger.With("task_id", taskID.String(), "label", label),
	}
	r.cell = newSnapshotCell(initial, r.onCellWritten)
	r.logger.Debug("task queued")

	m.mu.Lock()
	m.runnerByTask[r.taskID] = r
	m.mu.Unlock()

	if m.sem != nil {
		if err := m.sem.Acquire(m.ctx, 1); err != nil {
			fatalf("manager: failed to acquire a worker pool slot: %v", err)
		}
	}
	m.grp.Go(func() error {
		if m.sem != nil {
			defer m.sem.Release(1)
		}
		return r.workerStep()
	})

	return &Present[D]{r: r}
}

// Close asserts every registered runner is in a terminal state, then waits
// for the worker pool to drain. Calling Close with a non-terminal task
// still live is a fatal programming error.
func (m *Manager) Close() error {
	m.mu.Lock()
	for id, r := range m.runnerByTask {
		if !r.state().Terminal() {
			m.mu.Unlock()
			fatalf("manager: Close called while task %s is still in state %s", id, r.state())
		}
	}
	m.mu.Unlock()
	m.cancel()
	err := m.grp.Wait()
	close(m.pushQ.ch)
	return err
}
