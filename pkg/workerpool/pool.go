// Package workerpool runs fire-and-forget work on a fixed set of goroutines.
//
// SupplyDesk posts Slack announcements through a Pool so a slow webhook
// never holds up the HTTP response that created the request:
//
//	pool := workerpool.New("announce", 4, 30*time.Second)
//	defer pool.Shutdown(ctx)
//
//	err := pool.Submit(r.Context(), "slack", func(ctx context.Context) error {
//	    return postToSlack(ctx)
//	})
//	if errors.Is(err, workerpool.ErrPoolFull) {
//	    // drop or run inline
//	}
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/supplydesk/pkg/logger"
)

// ErrPoolFull is returned by Submit when every worker is busy and the
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Task is one unit of background work. Its error is logged, not returned.
type Task func(ctx context.Context) error

type job struct {
	ctx  context.Context
	name string
	fn   Task
}

type Pool struct {
	name    string
	timeout time.Duration
	tasks   chan job
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// New starts size workers. Each task gets at most timeout to run.
func New(name string, size int, timeout time.Duration) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		name:    name,
		timeout: timeout,
		// 2× the worker count absorbs bursts
		tasks: make(chan job, size*2),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit queues fn without blocking. The values in ctx (request logger,
// request id) travel with the task; its cancellation does not, so the task
// outlives the request that queued it.
func (p *Pool) Submit(ctx context.Context, name string, fn Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- job{ctx: context.WithoutCancel(ctx), name: name, fn: fn}:
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown stops accepting tasks and waits for queued ones to finish, or
// for ctx to end. Safe to call more than once.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.tasks {
		p.run(j)
	}
}

// run executes one task, recovering from panics so a bad task doesn't
// kill the worker.
func (p *Pool) run(j job) {
	ctx := j.ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	log := logger.WithCtx(ctx).With("pool", p.name, "task", j.name)
	defer func() {
		if r := recover(); r != nil {
			log.Error("background task panicked", "panic", fmt.Sprint(r))
		}
	}()

	if err := j.fn(ctx); err != nil {
		log.Warn("background task failed", "error", err)
	}
}
