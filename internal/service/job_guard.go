package service

import (
	"context"
	"sync"
)

// jobGuard keeps a named background job from overlapping with itself.
// The backup scheduler wraps every tick in Begin/End so a slow snapshot
// write is never doubled up by the next cron firing.
type jobGuard struct {
	mu     sync.Mutex
	active map[string]int
	wg     sync.WaitGroup
}

// Begin claims job. It returns false while another run holds it.
func (g *jobGuard) Begin(job string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active == nil {
		g.active = make(map[string]int)
	}
	if g.active[job] > 0 {
		return false
	}
	g.active[job]++
	g.wg.Add(1)
	return true
}

// End releases a claim taken by Begin.
func (g *jobGuard) End(job string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[job] == 0 {
		return
	}
	delete(g.active, job)
	g.wg.Done()
}

func (g *jobGuard) Busy(job string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active[job] > 0
}

// Wait blocks until every claimed job ends or ctx is done.
func (g *jobGuard) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
