package snapshot

import "fmt"

// Record is a content record the store can degrade.
type Record[T any] interface {
	// StripAttachments returns a copy without heavy optional fields.
	StripAttachments() T
	HasAttachments() bool
}

// Strategy is one rung of the degradation ladder: a pure transform from the full newest-first
// list to a smaller candidate snapshot.
type Strategy[T any] struct {
	Name  string
	Limit int
	Apply func(records []T) []T
}

// Truncate keeps at most limit records from the front. The result shares no
// backing array with records.
func Truncate[T any](records []T, limit int) []T {
	if limit < 0 {
		limit = 0
	}
	if len(records) < limit {
		limit = len(records)
	}
	out := make([]T, limit)
	copy(out, records[:limit])
	return out
}

// StripFrom returns a copy where every record at index >= from has its attachments removed.
func StripFrom[T Record[T]](records []T, from int) []T {
	out := make([]T, len(records))
	for i, r := range records {
		if i >= from && r.HasAttachments() {
			r = r.StripAttachments()
		}
		out[i] = r
	}
	return out
}

// Ladder builds the degradation rungs for limits, largest first as given. Rungs whose limit
// exceeds stripAfter also strip attachments from records past stripAfter, so the newest
// records keep their media the longest.
func Ladder[T Record[T]](limits []int, stripAfter int) []Strategy[T] {
	rungs := make([]Strategy[T], 0, len(limits))
	for _, limit := range limits {
		limit := limit
		if limit > stripAfter {
			rungs = append(rungs, Strategy[T]{
				Name:  fmt.Sprintf("newest %d, attachments kept on first %d", limit, stripAfter),
				Limit: limit,
				Apply: func(records []T) []T {
					return StripFrom(Truncate(records, limit), stripAfter)
				},
			})
			continue
		}
		rungs = append(rungs, Strategy[T]{
			Name:  fmt.Sprintf("newest %d", limit),
			Limit: limit,
			Apply: func(records []T) []T {
				return Truncate(records, limit)
			},
		})
	}
	return rungs
}

// Minimal is the last-resort snapshot: the newest count records, all stripped.
func Minimal[T Record[T]](count int) Strategy[T] {
	return Strategy[T]{
		Name:  fmt.Sprintf("newest %d, no attachments", count),
		Limit: count,
		Apply: func(records []T) []T {
			return StripFrom(Truncate(records, count), 0)
		},
	}
}
