package jobs

import "sync"

// LockRegistry provides per-server mutual exclusion. At most one backup or
// restore may be in flight for a given server id; jobs for distinct servers
// are independent.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLockRegistry() *LockRegistry {
	return &LockRegistry{locks: map[string]*sync.Mutex{}}
}

// TryAcquire takes the exclusive lock for serverID without blocking. It
// returns a release func and true, or nil and false when a job for that
// server is already running. Overlapping triggers are skipped, never queued.
func (r *LockRegistry) TryAcquire(serverID string) (func(), bool) {
	r.mu.Lock()
	l, ok := r.locks[serverID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[serverID] = l
	}
	r.mu.Unlock()

	if !l.TryLock() {
		return nil, false
	}
	return l.Unlock, true
}
