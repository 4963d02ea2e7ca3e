// Package syncer debounces snapshot writes so callers can report every mutation of their
// in-memory list without paying for a write each time.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/zfogg/pageshare/pkg/logger"
	"github.com/zfogg/pageshare/pkg/snapshot"
)

// DefaultDelay is the quiet period before a pending list is written.
const DefaultDelay = 500 * time.Millisecond

// Persister is the part of snapshot.Store the syncer needs.
type Persister[T any] interface {
	Persist(ctx context.Context, records []T) snapshot.Result
}

// Syncer writes the latest list after Delay without further updates.
type Syncer[T any] struct {
	store   Persister[T]
	delay   time.Duration
	timeout time.Duration

	mu      sync.Mutex
	current []T
	pending bool
	timer   *time.Timer
	closed  bool
	last    snapshot.Result
	writeMu sync.Mutex
}

// New creates a syncer. delay <= 0 uses DefaultDelay; timeout bounds each write (0 = none).
func New[T any](store Persister[T], delay, timeout time.Duration) *Syncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Syncer[T]{store: store, delay: delay, timeout: timeout}
}

// Update replaces the in-memory list and schedules a write. The slice is copied.
func (s *Syncer[T]) Update(records []T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.current = append([]T(nil), records...)
	// an empty list is never written; see snapshot.Store.Persist
	if len(records) == 0 {
		s.pending = false
		if s.timer != nil {
			s.timer.Stop()
		}
		return
	}

	s.pending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
}

// Current returns a copy of the in-memory list.
func (s *Syncer[T]) Current() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]T(nil), s.current...)
}

// Flush writes the pending list now, if any.
func (s *Syncer[T]) Flush() snapshot.Result {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.fire()
	return s.LastResult()
}

// Close stops accepting updates and writes the pending list, if any.
func (s *Syncer[T]) Close() snapshot.Result {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.fire()
	return s.LastResult()
}

// LastResult returns the result of the most recent write.
func (s *Syncer[T]) LastResult() snapshot.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Syncer[T]) fire() {
	// one write at a time; a timer firing during Flush waits and then finds nothing pending
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return
	}
	records := s.current
	s.pending = false
	s.mu.Unlock()

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res := s.store.Persist(ctx, records)
	logger.Debug("Debounced snapshot write", "outcome", res.Outcome, "records", res.Records)

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
}
