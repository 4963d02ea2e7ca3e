package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zfogg/pageshare/pkg/client"
	clierrors "github.com/zfogg/pageshare/pkg/errors"
	"github.com/zfogg/pageshare/pkg/post"
)

func serve(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	viper.Set("api.base_url", srv.URL)
	viper.Set("api.timeout", 5)
	t.Cleanup(viper.Reset)
	client.Reset()
	t.Cleanup(client.Reset)
}

func TestGetFeed(t *testing.T) {
	posts := post.Fake(2, post.FakeOptions{Seed: 9, Start: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)})

	serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/feed/timeline", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "25", r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		_ = jsoniter.NewEncoder(w).Encode(FeedResponse{Posts: posts, Page: 2, PageSize: 25, HasMore: true})
	})

	resp, err := GetFeed(context.Background(), FeedTimeline, 2, 25)
	require.NoError(t, err)
	assert.True(t, resp.HasMore)
	require.Len(t, resp.Posts, 2)
	assert.Equal(t, posts[0].ID, resp.Posts[0].ID)
	assert.True(t, posts[0].CreatedAt.Equal(resp.Posts[0].CreatedAt))
}

func TestGetFeed_HTTPError(t *testing.T) {
	serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := GetFeed(context.Background(), FeedTrending, 1, 10)
	var cliErr *clierrors.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, clierrors.ErrorTypeServer, cliErr.Type)
	assert.Equal(t, http.StatusServiceUnavailable, cliErr.StatusCode)
}

func TestValidFeed(t *testing.T) {
	assert.True(t, ValidFeed(FeedFollowing))
	assert.False(t, ValidFeed("popular"))
}
