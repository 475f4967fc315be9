package resilience

import "sync"

// SingleFlight collapses concurrent fetches of the same key into one
// upstream call. Results are raw response bodies; every caller decodes its
// own copy.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flightCall
}

type flightCall struct {
	done chan struct{}
	body []byte
	err  error
}

// Do runs fn once per key at a time. Callers that arrive while a call for
// the same key is in flight block until it finishes and share its result;
// the bool reports whether the result was shared.
func (g *SingleFlight) Do(key string, fn func() ([]byte, error)) ([]byte, error, bool) {
	g.mu.Lock()
	if g.inflight == nil {
		g.inflight = make(map[string]*flightCall)
	}
	if c, ok := g.inflight[key]; ok {
		g.mu.Unlock()
		<-c.done
		return c.body, c.err, true
	}
	c := &flightCall{done: make(chan struct{})}
	g.inflight[key] = c
	g.mu.Unlock()

	c.body, c.err = fn()

	g.mu.Lock()
	delete(g.inflight, key)
	g.mu.Unlock()
	close(c.done)

	return c.body, c.err, false
}
