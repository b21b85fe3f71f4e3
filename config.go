package thinker

import (
	"log/slog"
	"time"
)

// Config collects the runtime options a Manager is constructed with.
type Config struct {
	// DefaultWatcherThrottle bounds how often a freshly attached Watcher's
	// written sink is allowed to fire, absent an explicit SetThrottle call.
	DefaultWatcherThrottle time.Duration

	// BusThrottle bounds how often the manager-level "any task written"
	// notification fires.
	BusThrottle time.Duration

	// PollOverhead is the small slack below which a throttler emits
	// synchronously instead of arming a timer.
	PollOverhead time.Duration

	// ExplicitManager, if set, documents that this process does not want
	// tasks silently falling back to the lazily-initialized global Manager.
	// It is not enforced by this package; it exists for callers that want
	// to assert their own discipline about it.
	ExplicitManager bool

	// PoolSize bounds the number of workers a Manager will run
	// concurrently. Zero means unbounded: one goroutine per task.
	PoolSize int

	// Logger is the Manager's logger. Each task logs through a child of it
	// carrying the task's ID and label: every state transition at Debug and
	// the final state at Info; bus emissions are logged at Debug. Nothing is
	// logged for a runner that ignores pause/cancel, nor before Close panics
	// on a non-terminal task. Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the documented defaults: a 200ms per-watcher
// throttle, a 400ms bus throttle, and a 5ms poll overhead threshold.
func DefaultConfig() *Config {
	return &Config{
		DefaultWatcherThrottle: 200 * time.Millisecond,
		BusThrottle:            400 * time.Millisecond,
		PollOverhead:           5 * time.Millisecond,
		ExplicitManager:        false,
		PoolSize:               0,
		Logger:                 slog.Default(),
	}
}
