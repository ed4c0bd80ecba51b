package sync_

import "sync"

// Gate admits one holder at a time and turns away anyone else instead of blocking them.
type Gate struct {
	mu sync.Mutex
}

// TryEnter returns a release function if the gate was free, or false if it is already held.
func (g *Gate) TryEnter() (release func(), ok bool) {
	if !g.mu.TryLock() {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(g.mu.Unlock) }, true
}
