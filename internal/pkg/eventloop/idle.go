package eventloop

import "sync"

// Idle coalesces requests for fn, at most one call is waiting in the loop at a time.
type Idle struct {
	loop    *Loop
	fn      func()
	mu      sync.Mutex
	pending bool
}

func NewIdle(loop *Loop, fn func()) *Idle {
	return &Idle{loop: loop, fn: fn}
}

func (i *Idle) Queue() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.pending {
		return
	}
	i.pending = true
	i.loop.Post(func() {
		i.mu.Lock()
		i.pending = false
		i.mu.Unlock()
		i.fn()
	})
}

func (i *Idle) Pending() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.pending
}
