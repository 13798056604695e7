package redisclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(ctx, "provider:a", func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("expected at most one holder at a time, saw %d", maxInside)
	}
}

func TestLocalLocker_DifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = l.WithLock(ctx, "a", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	done := make(chan error, 1)
	go func() {
		done <- l.WithLock(ctx, "b", func(context.Context) error { return nil })
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Error("lock on key b blocked behind key a")
	}
	close(release)
}

func TestLocalLocker_ContextCancelledWhileWaiting(t *testing.T) {
	l := NewLocalLocker()

	release := make(chan struct{})
	held := make(chan struct{})
	go func() {
		_ = l.WithLock(context.Background(), "a", func(context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.WithLock(ctx, "a", func(context.Context) error {
		t.Error("fn must not run without the lock")
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestLocalLocker_PropagatesFnError(t *testing.T) {
	l := NewLocalLocker()
	want := errors.New("boom")

	if err := l.WithLock(context.Background(), "k", func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("expected fn error, got %v", err)
	}

	// the key must be reusable after an error
	if err := l.WithLock(context.Background(), "k", func(context.Context) error { return nil }); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
