package thinker

import "sync"

// SnapshotCell holds one data value of type D behind a copy-on-write
// discipline: readers and snapshot-takers never block against each other,
// and a snapshot taken at time t keeps observing the value as of t no
// matter what the cell is written to afterward.
type SnapshotCell[D any] struct {
	mu        sync.RWMutex
	writeLock sync.Mutex // held for the duration of a WriteGuard; TryLock turns re-entry into a diagnostic instead of a self-deadlock.
	value     *D
	onWritten func()
}

func newSnapshotCell[D any](initial D, onWritten func()) *SnapshotCell[D] {
	v := initial
	return &SnapshotCell[D]{value: &v, onWritten: onWritten}
}

// Read borrows the current value read-only. Requires no external locking by
// convention, because writes are mediated by WriteGuard.
func (c *SnapshotCell[D]) Read() D {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return *c.value
}

// Snapshot clones the shared handle to the value under a reader lock. The
// clone points at the same underlying value; a future WriteGuard release
// swaps in a new value without mutating anything a live Snapshot already
// points to.
func (c *SnapshotCell[D]) Snapshot() Snapshot[D] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot[D]{value: c.value}
}

// WriteGuard acquires scoped exclusive access to the cell's value. Taking a
// second WriteGuard on the same cell before the first is released is a
// fatal programming error rather than a deadlock.
func (c *SnapshotCell[D]) WriteGuard() *WriteGuard[D] {
	if !c.writeLock.TryLock() {
		fatalf("write_guard: re-entrant write_guard() on the same cell")
	}
	c.mu.Lock()
	return &WriteGuard[D]{cell: c, value: *c.value}
}

// Snapshot is an immutable, cheaply cloned view of a SnapshotCell's value at
// a quiescent instant.
type Snapshot[D any] struct {
	value *D
}

func (s Snapshot[D]) Value() D {
	return *s.value
}

// WriteGuard is scoped exclusive access to a SnapshotCell's value. Mutate
// through Value and call Release exactly once to publish the change and
// fire the cell's written notification.
type WriteGuard[D any] struct {
	cell     *SnapshotCell[D]
	value    D
	released bool
}

// Value returns a pointer to the guard's private copy of the cell's value.
// Mutations through this pointer are not visible to readers until Release.
func (g *WriteGuard[D]) Value() *D {
	return &g.value
}

// Release publishes the guard's value as the cell's new value, releases the
// writer lock, and fires the cell's written notification.
func (g *WriteGuard[D]) Release() {
	if g.released {
		fatalf("write_guard: Release called twice on the same guard")
	}
	g.released = true
	v := g.value
	g.cell.value = &v
	onWritten := g.cell.onWritten
	g.cell.mu.Unlock()
	g.cell.writeLock.Unlock()
	if onWritten != nil {
		onWritten()
	}
}
