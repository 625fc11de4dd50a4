package resilience

import "sync"

// SingleFlight collapses concurrent calls for one key into a single
// execution. Followers block until the leader finishes and share its result.
type SingleFlight struct {
	mu       sync.Mutex
	inFlight map[string]*flight
}

type flight struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn once per key at a time. The third return reports whether the
// result came from another caller's execution.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.inFlight == nil {
		g.inFlight = make(map[string]*flight)
	}

	if f, ok := g.inFlight[key]; ok {
		g.mu.Unlock()
		<-f.done
		return f.val, f.err, true
	}

	f := &flight{done: make(chan struct{})}
	g.inFlight[key] = f
	g.mu.Unlock()

	f.val, f.err = fn()
	close(f.done)

	g.mu.Lock()
	delete(g.inFlight, key)
	g.mu.Unlock()

	return f.val, f.err, false
}
