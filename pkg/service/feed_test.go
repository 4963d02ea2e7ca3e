package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/pageshare/pkg/api"
	"github.com/zfogg/pageshare/pkg/kv"
	"github.com/zfogg/pageshare/pkg/lists"
	"github.com/zfogg/pageshare/pkg/post"
	"github.com/zfogg/pageshare/pkg/snapshot"
)

var start = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func newStore() *snapshot.Store[post.Post] {
	return snapshot.New[post.Post](kv.NewMemoryBackend(0), snapshot.Options[post.Post]{})
}

// pagedFetcher serves posts in pages of size and records requested pages.
func pagedFetcher(posts []post.Post, size int, requested *[]int) Fetcher {
	return func(_ context.Context, _ string, page, _ int) (*api.FeedResponse, error) {
		*requested = append(*requested, page)
		lo := (page - 1) * size
		if lo > len(posts) {
			lo = len(posts)
		}
		hi := lo + size
		if hi > len(posts) {
			hi = len(posts)
		}
		return &api.FeedResponse{Posts: posts[lo:hi], Page: page, PageSize: size, HasMore: hi < len(posts)}, nil
	}
}

func TestSync_MergesPagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	remote := post.Fake(7, post.FakeOptions{Seed: 1, Start: start})

	// an older local post and a stale copy of a remote one
	local := post.Fake(1, post.FakeOptions{Seed: 2, Start: start.Add(-time.Hour)})
	stale := remote[0]
	stale.Content = "stale"
	require.True(t, store.Persist(ctx, []post.Post{stale, local[0]}).Stored())

	var requested []int
	svc := NewFeedService(store).WithFetcher(pagedFetcher(remote, 3, &requested))

	report, err := svc.Sync(ctx, api.FeedTimeline, 10, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, requested, "stops when HasMore is false")
	assert.Equal(t, 3, report.Pages)
	assert.Equal(t, 7, report.Fetched)
	assert.Equal(t, 8, report.Total)
	assert.Equal(t, snapshot.OutcomeStored, report.Result.Outcome)

	got := store.Load(ctx)
	require.Len(t, got, 8)
	assert.Equal(t, remote[0].Content, got[0].Content, "incoming copy wins")
	assert.Equal(t, local[0].ID, got[7].ID)
}

func TestSync_RespectsPageLimit(t *testing.T) {
	var requested []int
	svc := NewFeedService(newStore()).WithFetcher(pagedFetcher(post.Fake(10, post.FakeOptions{Seed: 3, Start: start}), 2, &requested))

	report, err := svc.Sync(context.Background(), api.FeedTrending, 2, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, requested)
	assert.Equal(t, 4, report.Fetched)
}

func TestSync_PartialFailurePersistsFetchedPages(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	remote := post.Fake(4, post.FakeOptions{Seed: 4, Start: start})
	boom := errors.New("boom")

	svc := NewFeedService(store).WithFetcher(func(_ context.Context, _ string, page, _ int) (*api.FeedResponse, error) {
		if page == 2 {
			return nil, boom
		}
		return &api.FeedResponse{Posts: remote[:2], HasMore: true}, nil
	})

	report, err := svc.Sync(ctx, api.FeedTimeline, 3, "")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, report.Pages)
	assert.Len(t, store.Load(ctx), 2)
}

func TestSync_FirstPageFailureLeavesStore(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc := NewFeedService(store).WithFetcher(func(context.Context, string, int, int) (*api.FeedResponse, error) {
		return nil, errors.New("offline")
	})

	_, err := svc.Sync(ctx, api.FeedTimeline, 1, "")
	assert.Error(t, err)
	assert.Nil(t, store.Load(ctx))
}

func TestSync_UnknownFeed(t *testing.T) {
	_, err := NewFeedService(newStore()).Sync(context.Background(), "popular", 1, "")
	assert.Error(t, err)
}

func TestSync_RecomputesRepostFlags(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	remote := post.Fake(2, post.FakeOptions{Seed: 5, Start: start})

	repost := remote[1]
	repost.ID = "repost-1"
	repost.CreatedAt = start.Add(time.Minute)
	repost.Author = post.User{ID: "u-alice", Handle: "alice"}
	repost.RepostedFrom = &remote[1].Author
	repost.RepostType = post.RepostNormal
	repost.OriginalPostID = remote[1].ID

	var requested []int
	svc := NewFeedService(store).WithFetcher(pagedFetcher(append([]post.Post{repost}, remote...), 10, &requested))

	_, err := svc.Sync(ctx, api.FeedTimeline, 1, "alice")
	require.NoError(t, err)

	for _, p := range store.Load(ctx) {
		assert.Equal(t, p.ID == remote[1].ID, p.UserInteractions.Reposted, p.ID)
	}
}

func TestTimelineAndBookmarked(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	posts := post.Fake(6, post.FakeOptions{Seed: 6, Start: start})
	require.True(t, store.Persist(ctx, posts).Stored())

	_, err := lists.NewSet(store, lists.BlockedUsers, "alice").Add(ctx, posts[0].Author.Handle)
	require.NoError(t, err)
	_, err = lists.NewSet(store, lists.Bookmarks, "alice").Add(ctx, posts[4].ID)
	require.NoError(t, err)

	svc := NewFeedService(store)
	for _, p := range svc.Timeline(ctx, "alice") {
		assert.NotEqual(t, posts[0].Author.Handle, p.Author.Handle)
	}
	assert.Len(t, svc.Timeline(ctx, "bob"), 6)

	marked := svc.Bookmarked(ctx, "alice")
	require.Len(t, marked, 1)
	assert.Equal(t, posts[4].ID, marked[0].ID)
}
