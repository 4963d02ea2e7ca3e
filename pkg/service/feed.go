package service

import (
	"context"
	"fmt"

	"github.com/zfogg/pageshare/pkg/api"
	"github.com/zfogg/pageshare/pkg/lists"
	"github.com/zfogg/pageshare/pkg/logger"
	"github.com/zfogg/pageshare/pkg/post"
	"github.com/zfogg/pageshare/pkg/snapshot"
)

// DefaultPageSize is the page size Sync requests.
const DefaultPageSize = 50

// Fetcher loads one feed page.
type Fetcher func(ctx context.Context, kind string, page, pageSize int) (*api.FeedResponse, error)

// FeedService mirrors remote feeds into the local snapshot
type FeedService struct {
	store    *snapshot.Store[post.Post]
	fetch    Fetcher
	pageSize int
}

// NewFeedService creates a feed service over store using the API client.
func NewFeedService(store *snapshot.Store[post.Post]) *FeedService {
	return &FeedService{store: store, fetch: api.GetFeed, pageSize: DefaultPageSize}
}

// WithFetcher replaces the page loader.
func (fs *FeedService) WithFetcher(fetch Fetcher) *FeedService {
	fs.fetch = fetch
	return fs
}

// SyncReport summarizes a Sync.
type SyncReport struct {
	Kind    string          `json:"kind"`
	Pages   int             `json:"pages"`
	Fetched int             `json:"fetched"`
	Total   int             `json:"total"`
	Result  snapshot.Result `json:"result"`
}

// Sync fetches up to pages pages of kind, merges them into the local snapshot newest first,
// recomputes handle's repost flags and persists the result. Pages fetched before a failure
// are still persisted.
func (fs *FeedService) Sync(ctx context.Context, kind string, pages int, handle string) (SyncReport, error) {
	report := SyncReport{Kind: kind}
	if !api.ValidFeed(kind) {
		return report, fmt.Errorf("unknown feed %q", kind)
	}
	if pages < 1 {
		pages = 1
	}

	var incoming []post.Post
	var fetchErr error
	for page := 1; page <= pages; page++ {
		resp, err := fs.fetch(ctx, kind, page, fs.pageSize)
		if err != nil {
			fetchErr = fmt.Errorf("failed to fetch %s page %d: %w", kind, page, err)
			break
		}
		report.Pages++
		incoming = append(incoming, resp.Posts...)
		if !resp.HasMore {
			break
		}
	}
	report.Fetched = len(incoming)

	if len(incoming) == 0 {
		return report, fetchErr
	}

	merged := post.Merge(fs.store.Load(ctx), incoming)
	merged, changed := post.SyncRepostFlags(merged, handle)
	if changed {
		logger.Debug("Recomputed repost flags", "handle", handle)
	}
	report.Total = len(merged)
	report.Result = fs.store.Persist(ctx, merged)

	logger.Info("Synced feed", "kind", kind, "pages", report.Pages, "fetched", report.Fetched, "outcome", report.Result.Outcome)
	return report, fetchErr
}

// Timeline returns the local snapshot without posts by authors handle has blocked or muted.
func (fs *FeedService) Timeline(ctx context.Context, handle string) []post.Post {
	posts := fs.store.Load(ctx)
	return post.FilterByAuthors(posts, lists.HiddenAuthors(ctx, fs.store, handle))
}

// Bookmarked returns the locally stored posts handle has bookmarked.
func (fs *FeedService) Bookmarked(ctx context.Context, handle string) []post.Post {
	return lists.BookmarkedPosts(ctx, lists.NewSet(fs.store, lists.Bookmarks, handle), fs.store.Load(ctx))
}
