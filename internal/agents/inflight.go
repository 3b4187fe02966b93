package agents

import "sync"

// inflightGuard is the double-invocation guard for draft saves and submits.
// The check-and-set happens under a mutex before the caller performs any
// I/O, so two rapid invocations for the same key can never both proceed.
type inflightGuard struct {
	mu     sync.Mutex
	active map[string]bool
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{active: map[string]bool{}}
}

// tryAcquire returns false if the key is already in flight.
func (g *inflightGuard) tryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[key] {
		return false
	}
	g.active[key] = true
	return true
}

func (g *inflightGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, key)
}
