package thinker

import (
	"sync"

	"github.com/google/uuid"
)

// TaskID is an opaque, process-unique handle to a task. It is never reused.
type TaskID uuid.UUID

func newTaskID() TaskID {
	return TaskID(uuid.New())
}

func (id TaskID) String() string {
	return uuid.UUID(id).String()
}

// labelSelectionStrategy resolves a collision between a requested label and
// one already in use for another live task's logs. The default behavior
// just keeps appending "+1" until the collision clears.
var labelSelectionStrategy = struct {
	Default func(requested, attempted string, attempts int) (proposed string)
}{
	Default: func(requested, attempted string, attempts int) (proposed string) {
		if attempts > 0 {
			return attempted + "+1"
		}
		return requested
	},
}

// labelRegistry disambiguates the human-readable labels attached to tasks
// for logging purposes. Task identity itself never needs this -- TaskID is
// already collision-free -- but two tasks named "worker" in the same
// manager's logs would otherwise be indistinguishable.
type labelRegistry struct {
	mu   sync.Mutex
	used map[string]struct{}
}

func newLabelRegistry() *labelRegistry {
	return &labelRegistry{used: make(map[string]struct{})}
}

func (r *labelRegistry) disambiguate(requested string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidate := requested
	attempts := 0
	for {
		if _, taken := r.used[candidate]; !taken {
			r.used[candidate] = struct{}{}
			return candidate
		}
		candidate = labelSelectionStrategy.Default(requested, candidate, attempts)
		attempts++
	}
}

func (r *labelRegistry) release(label string) {
	r.mu.Lock()
	delete(r.used, label)
	r.mu.Unlock()
}
