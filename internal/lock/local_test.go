package lock

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLocalLockerSerializesSameKey(t *testing.T) {
	t.Parallel()

	locker := NewLocalLocker()

	const workers = 8
	const iterations = 50

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				release, err := locker.Acquire(context.Background(), "list-a")
				if err != nil {
					t.Errorf("Acquire() error = %v", err)
					return
				}
				counter++
				release()
			}
		}()
	}
	wg.Wait()

	if counter != workers*iterations {
		t.Fatalf("counter = %d, want %d (lost update)", counter, workers*iterations)
	}
}

func TestLocalLockerIndependentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	locker := NewLocalLocker()

	releaseA, err := locker.Acquire(context.Background(), "list-a")
	if err != nil {
		t.Fatalf("Acquire(list-a) error = %v", err)
	}
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	releaseB, err := locker.Acquire(ctx, "list-b")
	if err != nil {
		t.Fatalf("Acquire(list-b) blocked by list-a: %v", err)
	}
	releaseB()
}

func TestLocalLockerAcquireHonorsContext(t *testing.T) {
	t.Parallel()

	locker := NewLocalLocker()

	release, err := locker.Acquire(context.Background(), "list-a")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := locker.Acquire(ctx, "list-a"); err == nil {
		t.Fatal("Acquire() on held lock returned nil error, want context deadline")
	}

	release()

	releaseAgain, err := locker.Acquire(context.Background(), "list-a")
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	releaseAgain()
}

func TestLocalLockerReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	locker := NewLocalLocker()

	release, err := locker.Acquire(context.Background(), "list-a")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	release()
	release()

	again, err := locker.Acquire(context.Background(), "list-a")
	if err != nil {
		t.Fatalf("Acquire() after double release error = %v", err)
	}
	again()
}
