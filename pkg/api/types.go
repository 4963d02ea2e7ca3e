package api

import "github.com/zfogg/pageshare/pkg/post"

// Feed kinds served by /api/v1/feed/:kind.
const (
	FeedTimeline  = "timeline"
	FeedFollowing = "following"
	FeedTrending  = "trending"
)

// FeedResponse is one page of a feed.
type FeedResponse struct {
	Posts    []post.Post `json:"posts"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	HasMore  bool        `json:"has_more"`
}

// ValidFeed reports whether kind is a known feed.
func ValidFeed(kind string) bool {
	switch kind {
	case FeedTimeline, FeedFollowing, FeedTrending:
		return true
	}
	return false
}
