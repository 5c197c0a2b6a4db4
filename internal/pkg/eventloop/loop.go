// Package eventloop runs callbacks one by one on a single goroutine.
package eventloop

import (
	"context"
	"sync"
)

type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
}

func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post schedules fn, it never blocks and is safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	fn := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return fn, true
}

// RunPending runs queued tasks, including the ones posted meanwhile, until the queue is empty.
// It returns number of executed tasks.
func (l *Loop) RunPending() int {
	var n int
	for {
		fn, ok := l.next()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

// Run processes tasks until ctx is done, tasks left in the queue are dropped.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
		for {
			if ctx.Err() != nil {
				return
			}
			fn, ok := l.next()
			if !ok {
				break
			}
			fn()
		}
	}
}
