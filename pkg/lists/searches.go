package lists

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	RecentSearchesKey = "pageshare_recent_searches"
	MaxRecentSearches = 20
	SearchTypeAccount = "account"
	SearchTypeStock   = "stock"
	SearchTypeCrypto  = "crypto"
)

// Search is one remembered search.
type Search struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// ValidSearchType reports whether t is a known search type.
func ValidSearchType(t string) bool {
	switch t {
	case SearchTypeAccount, SearchTypeStock, SearchTypeCrypto:
		return true
	}
	return false
}

// GroupedSearches splits recent searches by type.
type GroupedSearches struct {
	Accounts []Search `json:"accounts"`
	Stocks   []Search `json:"stocks"`
	Cryptos  []Search `json:"cryptos"`
}

// RecentSearches is the newest-first list of recent searches.
type RecentSearches struct {
	store ValueStore
	now   func() time.Time
}

// NewRecentSearches returns the recent search list backed by store.
func NewRecentSearches(store ValueStore) *RecentSearches {
	return &RecentSearches{store: store, now: time.Now}
}

// All returns valid entries, newest first. Malformed entries are dropped.
func (r *RecentSearches) All(ctx context.Context) []Search {
	var raw []jsoniter.RawMessage
	if !r.store.LoadValue(ctx, RecentSearchesKey, &raw) {
		return []Search{}
	}

	searches := make([]Search, 0, len(raw))
	for _, entry := range raw {
		var s Search
		if err := json.Unmarshal(entry, &s); err != nil {
			continue
		}
		if s.ID == "" || s.Query == "" || s.Timestamp.IsZero() || !ValidSearchType(s.Type) {
			continue
		}
		searches = append(searches, s)
	}

	sort.SliceStable(searches, func(i, j int) bool {
		return searches[i].Timestamp.After(searches[j].Timestamp)
	})
	return searches
}

// Add records a search at the front, replacing an earlier entry with the same query and type.
func (r *RecentSearches) Add(ctx context.Context, query, searchType string) (Search, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Search{}, ErrEmpty
	}
	if !ValidSearchType(searchType) {
		return Search{}, &InvalidTypeError{Type: searchType}
	}

	entry := Search{
		ID:        uuid.NewString(),
		Query:     query,
		Type:      searchType,
		Timestamp: r.now().UTC(),
	}

	updated := []Search{entry}
	for _, s := range r.All(ctx) {
		if s.Query == query && s.Type == searchType {
			continue
		}
		updated = append(updated, s)
	}
	if len(updated) > MaxRecentSearches {
		updated = updated[:MaxRecentSearches]
	}

	if !r.store.PersistValue(ctx, RecentSearchesKey, updated) {
		return Search{}, ErrNotStored
	}
	return entry, nil
}

// Remove deletes the entry with id. It reports whether one was removed.
func (r *RecentSearches) Remove(ctx context.Context, id string) (bool, error) {
	all := r.All(ctx)
	kept := make([]Search, 0, len(all))
	for _, s := range all {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(all) {
		return false, nil
	}
	if !r.store.PersistValue(ctx, RecentSearchesKey, kept) {
		return false, ErrNotStored
	}
	return true, nil
}

// Clear deletes every recent search.
func (r *RecentSearches) Clear(ctx context.Context) error {
	return r.store.Remove(ctx, RecentSearchesKey)
}

// ByType groups the recent searches.
func (r *RecentSearches) ByType(ctx context.Context) GroupedSearches {
	grouped := GroupedSearches{Accounts: []Search{}, Stocks: []Search{}, Cryptos: []Search{}}
	for _, s := range r.All(ctx) {
		switch s.Type {
		case SearchTypeAccount:
			grouped.Accounts = append(grouped.Accounts, s)
		case SearchTypeStock:
			grouped.Stocks = append(grouped.Stocks, s)
		case SearchTypeCrypto:
			grouped.Cryptos = append(grouped.Cryptos, s)
		}
	}
	return grouped
}

// InvalidTypeError reports an unknown search type.
type InvalidTypeError struct {
	Type string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid search type %q (want account, stock or crypto)", e.Type)
}
