// Package snapshot persists the local post list under a byte budget.
//
// The in-memory list held by the caller is the source of truth. What the store writes is a
// best-effort mirror: when the full list does not fit, the store degrades it (fewer records,
// attachments dropped from older ones) instead of failing, and no error ever reaches the
// caller. Persist expects records newest first; everything it drops is taken from the tail.
package snapshot

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/zfogg/pageshare/pkg/kv"
	"github.com/zfogg/pageshare/pkg/logger"
	"github.com/zfogg/pageshare/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Defaults for the posts snapshot.
const (
	PostsKey            = "pageshare_posts"
	DefaultMaxRecords   = 500
	DefaultMaxBytes     = 3 * 1024 * 1024
	DefaultStripAfter   = 50
	DefaultMinimalCount = 10
	// DefaultTrimTo is how many posts PersistValue keeps when it frees space for another key.
	DefaultTrimTo = 100
)

// DefaultLadder is the descending list of record limits tried when the snapshot is too large.
var DefaultLadder = []int{200, 100, 50, 25, 10}

// Options configures a Store. Zero values take the defaults above.
type Options[T any] struct {
	Key          string
	MaxRecords   int
	MaxBytes     int
	Ladder       []int
	StripAfter   int
	MinimalCount int
	TrimTo       int

	// Newer reports whether a is newer than b. When set, Persist checks the newest-first
	// precondition and re-sorts a copy if the caller got it wrong.
	Newer func(a, b T) bool

	Metrics *metrics.Metrics
}

func (o Options[T]) withDefaults() Options[T] {
	if o.Key == "" {
		o.Key = PostsKey
	}
	if o.MaxRecords <= 0 {
		o.MaxRecords = DefaultMaxRecords
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = DefaultMaxBytes
	}
	if len(o.Ladder) == 0 {
		o.Ladder = DefaultLadder
	}
	if o.StripAfter <= 0 {
		o.StripAfter = DefaultStripAfter
	}
	if o.MinimalCount <= 0 {
		o.MinimalCount = DefaultMinimalCount
	}
	if o.TrimTo <= 0 {
		o.TrimTo = DefaultTrimTo
	}
	return o
}

// Outcome classifies a Persist call.
type Outcome string

const (
	OutcomeSkipped  Outcome = "skipped"
	OutcomeStored   Outcome = "stored"
	OutcomeDegraded Outcome = "degraded"
	OutcomeMinimal  Outcome = "minimal"
	OutcomeFailed   Outcome = "failed"
)

// Result reports what Persist wrote. It is advisory; Persist has no error return.
type Result struct {
	Outcome Outcome `json:"outcome"`
	// Records is the number of records in the stored snapshot.
	Records int `json:"records"`
	// Stripped counts stored records that lost their attachments.
	Stripped int `json:"stripped"`
	Bytes    int `json:"bytes"`
	// Limit is the ladder limit that fit, zero when the snapshot was stored undegraded.
	Limit int `json:"limit,omitempty"`
	// Cleared is set when the last resort removed the previous snapshot.
	Cleared bool   `json:"cleared,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Stored reports whether a snapshot was written.
func (r Result) Stored() bool {
	switch r.Outcome {
	case OutcomeStored, OutcomeDegraded, OutcomeMinimal:
		return true
	}
	return false
}

// Stats describes the snapshot currently in the backend.
type Stats struct {
	Key             string `json:"key"`
	Records         int    `json:"records"`
	Bytes           int    `json:"bytes"`
	WithAttachments int    `json:"with_attachments"`
}

// Store writes snapshots of T through a kv.Backend. Calls are serialized.
type Store[T Record[T]] struct {
	mu      sync.Mutex
	backend kv.Backend
	opts    Options[T]
	ladder  []Strategy[T]
	minimal Strategy[T]
}

// New creates a store over backend.
func New[T Record[T]](backend kv.Backend, opts Options[T]) *Store[T] {
	opts = opts.withDefaults()
	return &Store[T]{
		backend: backend,
		opts:    opts,
		ladder:  Ladder[T](opts.Ladder, opts.StripAfter),
		minimal: Minimal[T](opts.MinimalCount),
	}
}

// Key returns the backend key of the snapshot.
func (s *Store[T]) Key() string {
	return s.opts.Key
}

// Persist writes records (newest first) under the byte budget. An empty list is ignored so
// an accidental empty state never overwrites a good snapshot. The input is never modified.
func (s *Store[T]) Persist(ctx context.Context, records []T) (res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Panic while persisting snapshot", "key", s.opts.Key, "panic", r)
			res = Result{Outcome: OutcomeFailed, Reason: fmt.Sprint(r)}
		}
		s.opts.Metrics.ObservePersist(metrics.Snapshot{
			Outcome:  string(res.Outcome),
			Limit:    res.Limit,
			Bytes:    res.Bytes,
			Records:  res.Records,
			Stripped: res.Stripped,
			Stored:   res.Stored(),
		}, time.Since(start))
	}()

	return s.persist(ctx, records)
}

func (s *Store[T]) persist(ctx context.Context, records []T) Result {
	if len(records) == 0 {
		return Result{Outcome: OutcomeSkipped, Reason: "no records"}
	}

	records = s.ordered(records)
	capped := Truncate(records, s.opts.MaxRecords)

	data, err := json.Marshal(capped)
	if err != nil {
		logger.Error("Failed to encode snapshot", "key", s.opts.Key, "err", err)
		return Result{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	if len(data) <= s.opts.MaxBytes {
		err := s.set(ctx, s.opts.Key, data)
		if err == nil {
			logger.Debug("Snapshot stored", "key", s.opts.Key, "records", len(capped), "bytes", len(data))
			return Result{Outcome: OutcomeStored, Records: len(capped), Bytes: len(data)}
		}
		if !kv.IsCapacityExceeded(err) {
			logger.Error("Error saving snapshot", "key", s.opts.Key, "err", err)
			return Result{Outcome: OutcomeFailed, Reason: err.Error()}
		}
		logger.Warn("Backend quota exceeded, degrading snapshot", "key", s.opts.Key, "bytes", len(data))
	}

	for _, rung := range s.ladder {
		candidate := rung.Apply(capped)
		data, err := json.Marshal(candidate)
		if err != nil {
			logger.Error("Failed to encode snapshot", "key", s.opts.Key, "err", err)
			return Result{Outcome: OutcomeFailed, Reason: err.Error()}
		}
		if len(data) > s.opts.MaxBytes {
			logger.Debug("Snapshot rung over budget", "rung", rung.Name, "bytes", len(data), "max_bytes", s.opts.MaxBytes)
			continue
		}

		err = s.set(ctx, s.opts.Key, data)
		if err == nil {
			logger.Warn("Snapshot optimized and limited", "key", s.opts.Key, "rung", rung.Name, "bytes", len(data))
			return Result{
				Outcome:  OutcomeDegraded,
				Records:  len(candidate),
				Stripped: countStripped(capped, candidate),
				Bytes:    len(data),
				Limit:    rung.Limit,
			}
		}
		if !kv.IsCapacityExceeded(err) {
			logger.Error("Error saving snapshot", "key", s.opts.Key, "err", err)
			return Result{Outcome: OutcomeFailed, Reason: err.Error()}
		}
		logger.Debug("Snapshot rung rejected by backend", "rung", rung.Name, "bytes", len(data))
	}

	return s.lastResort(ctx, capped)
}

// lastResort clears the previous snapshot and stores the minimal one.
func (s *Store[T]) lastResort(ctx context.Context, records []T) Result {
	if err := s.backend.Remove(ctx, s.opts.Key); err != nil {
		s.opts.Metrics.ObserveBackendError("remove", "unexpected")
		logger.Error("Failed to clear snapshot", "key", s.opts.Key, "err", err)
		return Result{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	minimal := s.minimal.Apply(records)
	data, err := json.Marshal(minimal)
	if err != nil {
		logger.Error("Failed to encode snapshot", "key", s.opts.Key, "err", err)
		return Result{Outcome: OutcomeFailed, Cleared: true, Reason: err.Error()}
	}

	if err := s.set(ctx, s.opts.Key, data); err != nil {
		logger.Error("Failed to save snapshot even with minimal data", "key", s.opts.Key, "err", err)
		return Result{Outcome: OutcomeFailed, Cleared: true, Reason: err.Error()}
	}

	logger.Warn("Cleared snapshot and saved only the newest records", "key", s.opts.Key, "records", len(minimal))
	return Result{
		Outcome:  OutcomeMinimal,
		Records:  len(minimal),
		Stripped: countStripped(records, minimal),
		Bytes:    len(data),
		Limit:    s.minimal.Limit,
		Cleared:  true,
	}
}

// ordered enforces the newest-first precondition when a comparator is configured.
func (s *Store[T]) ordered(records []T) []T {
	if s.opts.Newer == nil {
		return records
	}
	newer := s.opts.Newer
	for i := 1; i < len(records); i++ {
		if newer(records[i], records[i-1]) {
			logger.Warn("Snapshot input is not newest first, sorting a copy", "key", s.opts.Key, "index", i)
			sorted := make([]T, len(records))
			copy(sorted, records)
			sort.SliceStable(sorted, func(a, b int) bool {
				return newer(sorted[a], sorted[b])
			})
			return sorted
		}
	}
	return records
}

func (s *Store[T]) set(ctx context.Context, key string, data []byte) error {
	err := s.backend.Set(ctx, key, data)
	if err != nil {
		kind := "unexpected"
		if kv.IsCapacityExceeded(err) {
			kind = "capacity"
		}
		s.opts.Metrics.ObserveBackendError("set", kind)
	}
	return err
}

// PersistValue stores any JSON-encodable value under key. If the backend is full it frees
// space once by trimming the posts snapshot and retries exactly once. Failures are logged,
// never returned; the result only says whether the value was stored.
func (s *Store[T]) PersistValue(ctx context.Context, key string, value interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		logger.Error("Failed to encode value", "key", key, "err", err)
		s.opts.Metrics.ObserveValueWrite("failed")
		return false
	}

	err = s.set(ctx, key, data)
	if err == nil {
		s.opts.Metrics.ObserveValueWrite("stored")
		return true
	}
	if !kv.IsCapacityExceeded(err) {
		logger.Error("Error saving value", "key", key, "err", err)
		s.opts.Metrics.ObserveValueWrite("failed")
		return false
	}

	logger.Error("Backend quota exceeded while saving value", "key", key, "err", err)
	if key == s.opts.Key || !s.trimSnapshot(ctx) {
		s.opts.Metrics.ObserveValueWrite("failed")
		return false
	}

	if err := s.set(ctx, key, data); err != nil {
		logger.Error("Failed to save value after cleanup", "key", key, "err", err)
		s.opts.Metrics.ObserveValueWrite("failed")
		return false
	}
	s.opts.Metrics.ObserveValueWrite("retried")
	return true
}

// trimSnapshot shortens a stored snapshot longer than TrimTo. It reports whether anything
// was freed.
func (s *Store[T]) trimSnapshot(ctx context.Context) bool {
	raw, err := s.backend.Get(ctx, s.opts.Key)
	if err != nil {
		if !kv.IsNotFound(err) {
			logger.Error("Failed to read snapshot for cleanup", "key", s.opts.Key, "err", err)
		}
		return false
	}

	var entries []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil || len(entries) <= s.opts.TrimTo {
		return false
	}

	trimmed, err := json.Marshal(entries[:s.opts.TrimTo])
	if err != nil {
		logger.Error("Failed to encode trimmed snapshot", "key", s.opts.Key, "err", err)
		return false
	}
	if err := s.set(ctx, s.opts.Key, trimmed); err != nil {
		logger.Error("Failed to trim snapshot", "key", s.opts.Key, "err", err)
		return false
	}
	logger.Warn("Trimmed snapshot to free space", "key", s.opts.Key, "records", s.opts.TrimTo)
	return true
}

// Load returns the stored snapshot, or nil when it is missing, empty or unreadable.
func (s *Store[T]) Load(ctx context.Context) []T {
	var records []T
	if !s.LoadValue(ctx, s.opts.Key, &records) || len(records) == 0 {
		return nil
	}
	return records
}

// LoadValue decodes the value under key into out. It reports false when the key is missing
// or the stored data cannot be decoded.
func (s *Store[T]) LoadValue(ctx context.Context, key string, out interface{}) bool {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if !kv.IsNotFound(err) {
			s.opts.Metrics.ObserveBackendError("get", "unexpected")
			logger.Error("Error loading value", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Warn("Ignoring unreadable value", "key", key, "err", err)
		return false
	}
	return true
}

// Remove deletes key from the backend.
func (s *Store[T]) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Remove(ctx, key); err != nil {
		s.opts.Metrics.ObserveBackendError("remove", "unexpected")
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Clear deletes the posts snapshot.
func (s *Store[T]) Clear(ctx context.Context) error {
	return s.Remove(ctx, s.opts.Key)
}

// Inspect describes the stored snapshot and refreshes the snapshot gauges.
func (s *Store[T]) Inspect(ctx context.Context) (Stats, error) {
	stats := Stats{Key: s.opts.Key}

	raw, err := s.backend.Get(ctx, s.opts.Key)
	if err != nil {
		if kv.IsNotFound(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return stats, fmt.Errorf("snapshot is not readable: %w", err)
	}

	stats.Records = len(records)
	stats.Bytes = len(raw)
	for _, r := range records {
		if r.HasAttachments() {
			stats.WithAttachments++
		}
	}
	s.opts.Metrics.ObserveSnapshot(stats.Records, stats.Bytes)
	return stats, nil
}

func countStripped[T Record[T]](before, after []T) int {
	n := 0
	for i := range after {
		if i < len(before) && before[i].HasAttachments() && !after[i].HasAttachments() {
			n++
		}
	}
	return n
}
