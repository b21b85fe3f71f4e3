package thinker

import "sync"

var (
	globalMgrOnce sync.Once
	globalMgr     *Manager
)

// Global returns the lazily-initialized process-wide Manager, constructing
// it with DefaultConfig on first use. Every API in this package also
// accepts an explicit Manager instance; there is no hidden mutable global
// beyond this single, opt-in convenience.
func Global() *Manager {
	globalMgrOnce.Do(func() {
		globalMgr = NewManager(DefaultConfig())
	})
	return globalMgr
}
