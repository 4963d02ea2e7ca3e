package lists

import (
	"context"
	"strings"
)

// WatchlistKey holds the user's followed tickers.
const WatchlistKey = "pageshare_watchlist"

// WatchlistItem is one followed ticker.
type WatchlistItem struct {
	Ticker string  `json:"ticker"`
	Name   string  `json:"name"`
	Change float64 `json:"change"`
	Price  float64 `json:"price"`
	Image  string  `json:"image,omitempty"`
}

// Watchlist is the ordered list of followed tickers.
type Watchlist struct {
	store ValueStore
}

// NewWatchlist returns the watchlist backed by store.
func NewWatchlist(store ValueStore) *Watchlist {
	return &Watchlist{store: store}
}

// All returns the items in the order they were added.
func (w *Watchlist) All(ctx context.Context) []WatchlistItem {
	var items []WatchlistItem
	if !w.store.LoadValue(ctx, WatchlistKey, &items) {
		return []WatchlistItem{}
	}
	return items
}

// Add inserts item, or replaces the quote of an item with the same ticker in place.
func (w *Watchlist) Add(ctx context.Context, item WatchlistItem) (WatchlistItem, error) {
	item.Ticker = strings.ToUpper(strings.TrimSpace(item.Ticker))
	if item.Ticker == "" {
		return WatchlistItem{}, ErrEmpty
	}
	if item.Name == "" {
		item.Name = item.Ticker
	}

	items := w.All(ctx)
	replaced := false
	for i := range items {
		if items[i].Ticker == item.Ticker {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}

	if !w.store.PersistValue(ctx, WatchlistKey, items) {
		return WatchlistItem{}, ErrNotStored
	}
	return item, nil
}

// Remove deletes ticker. It reports whether it was present.
func (w *Watchlist) Remove(ctx context.Context, ticker string) (bool, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	items := w.All(ctx)
	kept := make([]WatchlistItem, 0, len(items))
	for _, item := range items {
		if item.Ticker != ticker {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(items) {
		return false, nil
	}
	if !w.store.PersistValue(ctx, WatchlistKey, kept) {
		return false, ErrNotStored
	}
	return true, nil
}

// Contains reports whether ticker is followed.
func (w *Watchlist) Contains(ctx context.Context, ticker string) bool {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, item := range w.All(ctx) {
		if item.Ticker == ticker {
			return true
		}
	}
	return false
}
