package blobstore

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Limits holds the throttling configuration of a LimitedStore.
type Limits struct {
	// MaxConcurrent is the maximum number of in-flight operations.
	// If 0, defaults to 1.
	MaxConcurrent int64

	// BytesPerSec is the maximum transfer throughput for Get and Put.
	// If 0, unlimited.
	BytesPerSec int64
}

// LimitedStore wraps a Store and bounds its concurrency and throughput.
type LimitedStore struct {
	Store
	sem     *semaphore.Weighted
	limiter *rate.Limiter // nil if unlimited
}

// NewLimitedStore wraps store with the given limits.
func NewLimitedStore(store Store, limits Limits) *LimitedStore {
	if limits.MaxConcurrent <= 0 {
		limits.MaxConcurrent = 1
	}

	s := &LimitedStore{
		Store: store,
		sem:   semaphore.NewWeighted(limits.MaxConcurrent),
	}

	if limits.BytesPerSec > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(limits.BytesPerSec), int(limits.BytesPerSec))
	}

	return s
}

// Limit wraps store with the given limits. When store implements
// ConditionalStore, so does the result.
func Limit(store Store, limits Limits) Store {
	ls := NewLimitedStore(store, limits)
	if cs, ok := store.(ConditionalStore); ok {
		return &LimitedConditionalStore{LimitedStore: ls, cond: cs}
	}
	return ls
}

// LimitedConditionalStore is a LimitedStore over a ConditionalStore.
type LimitedConditionalStore struct {
	*LimitedStore
	cond ConditionalStore
}

// PutIfNotExists waits for the throughput limit, then writes the blob
// unless it already exists.
func (s *LimitedConditionalStore) PutIfNotExists(ctx context.Context, name string, data []byte) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	if err := s.waitIO(ctx, len(data)); err != nil {
		return err
	}
	return s.cond.PutIfNotExists(ctx, name, data)
}

// waitIO blocks until the limiter admits n bytes. Requests larger than the
// burst are admitted in burst-sized chunks.
func (s *LimitedStore) waitIO(ctx context.Context, n int) error {
	if s.limiter == nil {
		return nil
	}
	burst := s.limiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := s.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Get reads a blob, then charges its size against the throughput limit.
func (s *LimitedStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	data, err := s.Store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.waitIO(ctx, len(data)); err != nil {
		return nil, err
	}
	return data, nil
}

// Put waits for the throughput limit, then writes the blob.
func (s *LimitedStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	if err := s.waitIO(ctx, len(data)); err != nil {
		return err
	}
	return s.Store.Put(ctx, name, data)
}

// Delete removes a blob.
func (s *LimitedStore) Delete(ctx context.Context, name string) error {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.sem.Release(1)

	return s.Store.Delete(ctx, name)
}

// List returns all blobs matching the prefix.
func (s *LimitedStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.sem.Release(1)

	return s.Store.List(ctx, prefix)
}

// TryAcquire reports whether an operation slot is free right now, and
// reserves it if so. The caller must call Release.
func (s *LimitedStore) TryAcquire() bool {
	return s.sem.TryAcquire(1)
}

// Release frees a slot reserved by TryAcquire.
func (s *LimitedStore) Release() {
	s.sem.Release(1)
}
