package secretstore

import "sync"

// lockTable serializes operations per absolute path within the process.
// Each operation installs its own done channel as the path's pending handle
// and waits on the handle it displaced, which yields FIFO ordering: waiters
// form a chain in arrival order. The handle is removed on completion,
// success or failure, so later operations are never blocked forever.
//
// This does not provide cross-process exclusion.
type lockTable struct {
	mu      sync.Mutex
	pending map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{pending: make(map[string]chan struct{})}
}

// acquire blocks until all earlier operations on path have completed and
// returns the release function. Callers must invoke release exactly once,
// typically via defer.
func (lt *lockTable) acquire(path string) (release func()) {
	done := make(chan struct{})

	lt.mu.Lock()
	prev := lt.pending[path]
	lt.pending[path] = done
	lt.mu.Unlock()

	if prev != nil {
		<-prev
	}

	return func() {
		close(done)
		lt.mu.Lock()
		if lt.pending[path] == done {
			delete(lt.pending, path)
		}
		lt.mu.Unlock()
	}
}
