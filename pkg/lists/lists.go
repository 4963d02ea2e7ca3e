// Package lists keeps the small per-user collections (bookmarks, blocked and muted handles,
// recent searches, watchlist) that live next to the posts snapshot.
package lists

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/zfogg/pageshare/pkg/post"
)

var (
	// ErrSelf is returned when a user tries to block or mute themselves.
	ErrSelf = errors.New("cannot target your own handle")
	// ErrEmpty is returned for a blank item.
	ErrEmpty = errors.New("value cannot be empty")
	// ErrNotStored is returned when the store did not accept the updated collection.
	ErrNotStored = errors.New("change was not saved")
)

// ValueStore is the generic half of snapshot.Store.
type ValueStore interface {
	PersistValue(ctx context.Context, key string, value interface{}) bool
	LoadValue(ctx context.Context, key string, out interface{}) bool
	Remove(ctx context.Context, key string) error
}

// Kind names a per-user set and its key prefix.
type Kind struct {
	Name      string
	Prefix    string
	AllowSelf bool
}

var (
	Bookmarks    = Kind{Name: "bookmarks", Prefix: "pageshare_bookmarks_", AllowSelf: true}
	BlockedUsers = Kind{Name: "blocked users", Prefix: "pageshare_blocked_users_"}
	MutedUsers   = Kind{Name: "muted users", Prefix: "pageshare_muted_users_"}
)

// Set is an insertion-ordered set of strings owned by one user.
type Set struct {
	store ValueStore
	kind  Kind
	owner string
}

// NewSet returns owner's set of the given kind.
func NewSet(store ValueStore, kind Kind, owner string) *Set {
	return &Set{store: store, kind: kind, owner: owner}
}

// Key returns the backend key.
func (s *Set) Key() string {
	return s.kind.Prefix + s.owner
}

// Kind returns the set's kind.
func (s *Set) Kind() Kind {
	return s.kind
}

// All returns the items in insertion order. Missing or unreadable data is an empty set.
func (s *Set) All(ctx context.Context) []string {
	var items []string
	if !s.store.LoadValue(ctx, s.Key(), &items) {
		return []string{}
	}
	return items
}

// Contains reports whether item is in the set.
func (s *Set) Contains(ctx context.Context, item string) bool {
	for _, existing := range s.All(ctx) {
		if existing == item {
			return true
		}
	}
	return false
}

// Add appends item. It reports whether the set changed.
func (s *Set) Add(ctx context.Context, item string) (bool, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return false, ErrEmpty
	}
	if !s.kind.AllowSelf && item == s.owner {
		return false, ErrSelf
	}

	items := s.All(ctx)
	for _, existing := range items {
		if existing == item {
			return false, nil
		}
	}
	if !s.store.PersistValue(ctx, s.Key(), append(items, item)) {
		return false, ErrNotStored
	}
	return true, nil
}

// Remove deletes item. It reports whether the set changed.
func (s *Set) Remove(ctx context.Context, item string) (bool, error) {
	items := s.All(ctx)
	kept := make([]string, 0, len(items))
	for _, existing := range items {
		if existing != item {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	if !s.store.PersistValue(ctx, s.Key(), kept) {
		return false, ErrNotStored
	}
	return true, nil
}

// Toggle adds item if absent and removes it otherwise. It reports whether item is now present.
func (s *Set) Toggle(ctx context.Context, item string) (bool, error) {
	item = strings.TrimSpace(item)
	if s.Contains(ctx, item) {
		if _, err := s.Remove(ctx, item); err != nil {
			return true, err
		}
		return false, nil
	}
	if _, err := s.Add(ctx, item); err != nil {
		return false, err
	}
	return true, nil
}

// BookmarkedPosts returns the posts whose IDs are in bookmarks, in feed order.
func BookmarkedPosts(ctx context.Context, bookmarks *Set, posts []post.Post) []post.Post {
	return post.FilterByIDs(posts, bookmarks.All(ctx))
}

// HiddenAuthors returns the handles owner has blocked or muted.
func HiddenAuthors(ctx context.Context, store ValueStore, owner string) []string {
	if owner == "" {
		return nil
	}
	hidden := NewSet(store, BlockedUsers, owner).All(ctx)
	for _, h := range NewSet(store, MutedUsers, owner).All(ctx) {
		if !slices.Contains(hidden, h) {
			hidden = append(hidden, h)
		}
	}
	return hidden
}
