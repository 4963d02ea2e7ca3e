// Package post defines the content records the client mirrors locally.
package post

import (
	"sort"
	"time"
)

// User is the author summary embedded in posts.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle"`
	Avatar      string `json:"avatar"`
	Badge       string `json:"badge,omitempty"`
}

// Poll is an optional poll attached to a post.
type Poll struct {
	Options    []string    `json:"options"`
	Duration   int         `json:"duration"` // days
	CreatedAt  time.Time   `json:"createdAt"`
	Votes      map[int]int `json:"votes,omitempty"`
	UserVote   *int        `json:"userVote,omitempty"`
	IsFinished bool        `json:"isFinished"`
}

// Stats are the public counters of a post.
type Stats struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Reposts  int `json:"reposts"`
}

// Interactions are the current user's flags on a post.
type Interactions struct {
	Liked    bool `json:"liked"`
	Reposted bool `json:"reposted"`
}

// Repost types
const (
	RepostNormal = "normal"
	RepostQuote  = "quote"
)

// Post is a feed entry. Media and GifURL are the heavy attachments the snapshot store may drop.
type Post struct {
	ID               string       `json:"id"`
	Author           User         `json:"author"`
	CreatedAt        time.Time    `json:"createdAt"`
	Content          string       `json:"content"`
	Media            []string     `json:"media,omitempty"`
	GifURL           string       `json:"gifUrl,omitempty"`
	RepostedFrom     *User        `json:"repostedFrom,omitempty"`
	RepostType       string       `json:"repostType,omitempty"`
	OriginalPostID   string       `json:"originalPostId,omitempty"`
	Poll             *Poll        `json:"poll,omitempty"`
	Stats            Stats        `json:"stats"`
	UserInteractions Interactions `json:"userInteractions"`
}

// HasAttachments reports whether the post carries media or a GIF.
func (p Post) HasAttachments() bool {
	return len(p.Media) > 0 || p.GifURL != ""
}

// StripAttachments returns a copy without media and GIF.
func (p Post) StripAttachments() Post {
	p.Media = nil
	p.GifURL = ""
	return p
}

// IsRepost reports whether the post is a repost or quote of another post.
func (p Post) IsRepost() bool {
	return (p.RepostType == RepostNormal || p.RepostType == RepostQuote) && p.OriginalPostID != ""
}

// NewestFirst orders posts by creation time, newest first.
func NewestFirst(a, b Post) bool {
	return a.CreatedAt.After(b.CreatedAt)
}

// SortNewestFirst returns a stably sorted copy.
func SortNewestFirst(posts []Post) []Post {
	out := make([]Post, len(posts))
	copy(out, posts)
	sort.SliceStable(out, func(i, j int) bool {
		return NewestFirst(out[i], out[j])
	})
	return out
}

// FilterByAuthors drops posts whose author handle is in handles.
func FilterByAuthors(posts []Post, handles []string) []Post {
	if len(handles) == 0 {
		return posts
	}
	drop := make(map[string]struct{}, len(handles))
	for _, h := range handles {
		drop[h] = struct{}{}
	}

	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if _, ok := drop[p.Author.Handle]; ok {
			continue
		}
		out = append(out, p)
	}
	return out
}

// FilterByIDs keeps posts whose ID is in ids, preserving feed order.
func FilterByIDs(posts []Post, ids []string) []Post {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	out := make([]Post, 0, len(ids))
	for _, p := range posts {
		if _, ok := keep[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// SyncRepostFlags sets UserInteractions.Reposted on every post to whether handle has a
// repost of it in the list. It returns a new slice and whether anything changed.
func SyncRepostFlags(posts []Post, handle string) ([]Post, bool) {
	if handle == "" || len(posts) == 0 {
		return posts, false
	}

	reposted := make(map[string]struct{})
	for _, p := range posts {
		if p.IsRepost() && p.Author.Handle == handle {
			reposted[p.OriginalPostID] = struct{}{}
		}
	}

	out := make([]Post, len(posts))
	changed := false
	for i, p := range posts {
		_, has := reposted[p.ID]
		if p.UserInteractions.Reposted != has {
			p.UserInteractions.Reposted = has
			changed = true
		}
		out[i] = p
	}
	return out, changed
}

// Merge combines incoming posts with existing ones, newest first, keeping the incoming copy
// when an ID appears in both.
func Merge(existing, incoming []Post) []Post {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]Post, 0, len(existing)+len(incoming))
	for _, list := range [][]Post{incoming, existing} {
		for _, p := range list {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return SortNewestFirst(merged)
}
