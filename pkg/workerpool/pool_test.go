package workerpool_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/workerpool"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	m.Run()
}

func TestPool_RunsEveryTask(t *testing.T) {
	pool := workerpool.New("test", 4, time.Second)

	var count atomic.Int64
	for i := 0; i < 8; i++ {
		if err := pool.Submit(context.Background(), "count", func(context.Context) error {
			count.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("Submit returned unexpected error: %v", err)
		}
	}

	if err := pool.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if got := count.Load(); got != 8 {
		t.Errorf("expected 8 tasks to run, got %d", got)
	}
}

func TestPool_ErrPoolFull(t *testing.T) {
	pool := workerpool.New("test", 1, time.Second)
	blocker := make(chan struct{})
	started := make(chan struct{})
	defer func() {
		close(blocker)
		pool.Shutdown(context.Background()) //nolint:errcheck
	}()

	_ = pool.Submit(context.Background(), "block", func(context.Context) error {
		close(started)
		<-blocker
		return nil
	})
	<-started

	// queue holds 2× the worker count
	noop := func(context.Context) error { return nil }
	_ = pool.Submit(context.Background(), "fill", noop)
	_ = pool.Submit(context.Background(), "fill", noop)

	if err := pool.Submit(context.Background(), "overflow", noop); !errors.Is(err, workerpool.ErrPoolFull) {
		t.Errorf("expected ErrPoolFull, got %v", err)
	}
}

func TestPool_ErrPoolClosed(t *testing.T) {
	pool := workerpool.New("test", 2, time.Second)
	_ = pool.Shutdown(context.Background())
	_ = pool.Shutdown(context.Background())

	err := pool.Submit(context.Background(), "late", func(context.Context) error { return nil })
	if !errors.Is(err, workerpool.ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed after Shutdown, got %v", err)
	}
}

func TestPool_TaskOutlivesCancelledRequest(t *testing.T) {
	pool := workerpool.New("test", 1, time.Second)

	type key struct{}
	reqCtx, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "rid-1"))

	var (
		mu     sync.Mutex
		seen   any
		ctxErr error
	)
	_ = pool.Submit(reqCtx, "detached", func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		seen, ctxErr = ctx.Value(key{}), ctx.Err()
		return nil
	})
	cancel()
	_ = pool.Shutdown(context.Background())

	mu.Lock()
	defer mu.Unlock()
	if seen != "rid-1" {
		t.Errorf("expected request values to travel with the task, got %v", seen)
	}
	if ctxErr != nil {
		t.Errorf("expected task context to ignore request cancellation, got %v", ctxErr)
	}
}

func TestPool_TimeoutApplies(t *testing.T) {
	pool := workerpool.New("test", 1, 10*time.Millisecond)

	var deadline atomic.Bool
	_ = pool.Submit(context.Background(), "slow", func(ctx context.Context) error {
		<-ctx.Done()
		deadline.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	})
	_ = pool.Shutdown(context.Background())

	if !deadline.Load() {
		t.Error("expected the task to hit its timeout")
	}
}

func TestPool_PanicRecovery(t *testing.T) {
	pool := workerpool.New("test", 1, time.Second)

	_ = pool.Submit(context.Background(), "panic", func(context.Context) error {
		panic("intentional panic")
	})

	ran := make(chan struct{})
	_ = pool.Submit(context.Background(), "after", func(context.Context) error {
		close(ran)
		return nil
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not recover from panic")
	}
	_ = pool.Shutdown(context.Background())
}

func TestPool_ShutdownHonoursContext(t *testing.T) {
	pool := workerpool.New("test", 1, time.Minute)
	release := make(chan struct{})
	defer close(release)

	_ = pool.Submit(context.Background(), "stuck", func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pool.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}
