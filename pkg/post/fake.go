package post

import (
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

// FakeOptions controls synthetic post generation.
type FakeOptions struct {
	// MediaBytes is the size of the embedded media data URI on every post. Zero means no media.
	MediaBytes int
	// Seed makes the output reproducible. Zero picks a random seed.
	Seed uint64
	// Start is the timestamp of the newest post. Defaults to now.
	Start time.Time
}

// Fake builds n synthetic posts, newest first, one minute apart.
func Fake(n int, opts FakeOptions) []Post {
	faker := gofakeit.New(opts.Seed)
	start := opts.Start
	if start.IsZero() {
		start = time.Now().UTC()
	}

	var media string
	if opts.MediaBytes > 0 {
		const prefix = "data:image/png;base64,"
		pad := opts.MediaBytes - len(prefix)
		if pad < 0 {
			pad = 0
		}
		media = prefix + strings.Repeat("A", pad)
	}

	posts := make([]Post, n)
	for i := range posts {
		handle := strings.ToLower(faker.Username())
		p := Post{
			ID: faker.UUID(),
			Author: User{
				ID:          faker.UUID(),
				DisplayName: faker.Name(),
				Handle:      handle,
				Avatar:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", handle),
			},
			CreatedAt: start.Add(-time.Duration(i) * time.Minute),
			Content:   faker.HipsterSentence(),
			Stats: Stats{
				Likes:    faker.Number(0, 500),
				Comments: faker.Number(0, 50),
				Reposts:  faker.Number(0, 25),
			},
		}
		if media != "" {
			p.Media = []string{media}
		}
		posts[i] = p
	}
	return posts
}
