package reaction

import (
	"context"
	"sync"
)

// Guard serializes transitions per key. Acquire never blocks waiting for a
// holder: a busy key returns ok=false so the caller can drop the tap.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// GuardKey is the guard key for a (story, voter) pair.
func GuardKey(storyID, voter string) string {
	return "reaction:" + storyID + ":" + voter
}

// LocalGuard is an in-process Guard.
type LocalGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalGuard returns an empty LocalGuard.
func NewLocalGuard() *LocalGuard {
	return &LocalGuard{held: make(map[string]struct{})}
}

// Acquire implements Guard.
func (g *LocalGuard) Acquire(_ context.Context, key string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return nil, false, nil
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, true, nil
}

// Held reports how many keys are currently held.
func (g *LocalGuard) Held() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.held)
}
