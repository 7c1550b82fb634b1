package app

import (
	"context"
	"sync"
	"time"
)

// Timer invokes fn once per interval until fn returns false, Stop is called,
// or ctx is done. It cannot be paused and does not correct for drift.
type Timer struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func StartTimer(ctx context.Context, interval time.Duration, fn func(ctx context.Context) bool) *Timer {
	t := &Timer{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go t.run(ctx, interval, fn)
	return t
}

func (t *Timer) run(ctx context.Context, interval time.Duration, fn func(ctx context.Context) bool) {
	defer close(t.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case <-ticker.C:
			if !fn(ctx) {
				return
			}
		}
	}
}

// Stop is safe to call more than once and from inside fn; it does not wait.
func (t *Timer) Stop() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
}

// Done is closed once the timer goroutine has exited.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}
