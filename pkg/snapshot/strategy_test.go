package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/pageshare/pkg/post"
)

func withMedia(n int) []post.Post {
	posts := make([]post.Post, n)
	for i := range posts {
		posts[i] = post.Post{ID: string(rune('a' + i%26)), Media: []string{"m.png"}, GifURL: "g.gif"}
	}
	return posts
}

func TestTruncate(t *testing.T) {
	posts := withMedia(5)

	assert.Len(t, Truncate(posts, 3), 3)
	assert.Len(t, Truncate(posts, 10), 5)
	assert.Empty(t, Truncate(posts, 0))
	assert.Empty(t, Truncate(posts, -1))

	out := Truncate(posts, 2)
	out[0].ID = "changed"
	assert.NotEqual(t, "changed", posts[0].ID, "truncate must copy")
}

func TestStripFrom(t *testing.T) {
	posts := withMedia(4)
	out := StripFrom(posts, 2)

	assert.True(t, out[0].HasAttachments())
	assert.True(t, out[1].HasAttachments())
	assert.False(t, out[2].HasAttachments())
	assert.False(t, out[3].HasAttachments())
	for _, p := range posts {
		assert.True(t, p.HasAttachments(), "input must not be modified")
	}
}

func TestLadder(t *testing.T) {
	rungs := Ladder[post.Post](DefaultLadder, DefaultStripAfter)
	require.Len(t, rungs, len(DefaultLadder))

	posts := withMedia(300)
	testCases := []struct {
		limit     int
		wantLen   int
		wantMedia int
	}{
		{200, 200, 50},
		{100, 100, 50},
		{50, 50, 50},
		{25, 25, 25},
		{10, 10, 10},
	}

	for i, tc := range testCases {
		rung := rungs[i]
		assert.Equal(t, tc.limit, rung.Limit)

		out := rung.Apply(posts)
		assert.Len(t, out, tc.wantLen, rung.Name)

		media := 0
		for j, p := range out {
			if p.HasAttachments() {
				media++
				assert.Less(t, j, DefaultStripAfter, "attachments kept past the strip boundary")
			}
		}
		assert.Equal(t, tc.wantMedia, media, rung.Name)
	}
}

func TestMinimal(t *testing.T) {
	out := Minimal[post.Post](10).Apply(withMedia(30))
	require.Len(t, out, 10)
	for _, p := range out {
		assert.False(t, p.HasAttachments())
	}
}
