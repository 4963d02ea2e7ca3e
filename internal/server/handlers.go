package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/zfogg/pageshare/pkg/post"
	"github.com/zfogg/pageshare/pkg/snapshot"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// getPosts returns the stored snapshot
// GET /api/v1/posts?handle=alice filters out alice's blocked and muted authors
func (s *Server) getPosts(c *gin.Context) {
	var posts []post.Post
	if handle := c.Query("handle"); handle != "" {
		posts = s.feed.Timeline(c.Request.Context(), handle)
	} else {
		posts = s.store.Load(c.Request.Context())
	}
	if posts == nil {
		posts = []post.Post{}
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// putPosts persists a newest-first post list
// PUT /api/v1/posts, or PUT /api/v1/posts?debounce=true to coalesce bursts
func (s *Server) putPosts(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBadRequest(c, "failed to read body")
		return
	}

	var posts []post.Post
	if err := json.Unmarshal(body, &posts); err != nil {
		respondBadRequest(c, "body must be a JSON array of posts")
		return
	}

	if c.Query("debounce") == "true" {
		s.syncer.Update(posts)
		c.JSON(http.StatusAccepted, gin.H{"pending": len(posts)})
		return
	}

	res := s.store.Persist(c.Request.Context(), posts)
	status := http.StatusOK
	if res.Outcome == snapshot.OutcomeFailed {
		status = http.StatusInsufficientStorage
	}
	c.JSON(status, res)
}

// flushPosts writes a debounced list immediately
// POST /api/v1/posts/flush
func (s *Server) flushPosts(c *gin.Context) {
	c.JSON(http.StatusOK, s.syncer.Flush())
}

// getStats describes the stored snapshot
// GET /api/v1/stats
func (s *Server) getStats(c *gin.Context) {
	stats, err := s.store.Inspect(c.Request.Context())
	if err != nil {
		respondInternalError(c, "failed to inspect snapshot")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshot":          stats,
		"debounced_records": len(s.syncer.Current()),
		"last_debounced":    s.syncer.LastResult(),
	})
}

// getValue returns the raw JSON stored under a key
// GET /api/v1/kv/:key
func (s *Server) getValue(c *gin.Context) {
	key := c.Param("key")

	var raw jsoniter.RawMessage
	if !s.store.LoadValue(c.Request.Context(), key, &raw) {
		respondNotFound(c, key)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}

// putValue stores a JSON value under a key
// PUT /api/v1/kv/:key
func (s *Server) putValue(c *gin.Context) {
	key := c.Param("key")
	if key == s.store.Key() {
		respondBadRequest(c, "use PUT /api/v1/posts for the posts snapshot")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || !json.Valid(body) {
		respondBadRequest(c, "body must be valid JSON")
		return
	}

	if !s.store.PersistValue(c.Request.Context(), key, jsoniter.RawMessage(body)) {
		respondError(c, http.StatusInsufficientStorage, "not_stored", "value was not stored")
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "stored": true})
}

// deleteValue removes a key
// DELETE /api/v1/kv/:key
func (s *Server) deleteValue(c *gin.Context) {
	if err := s.store.Remove(c.Request.Context(), c.Param("key")); err != nil {
		respondInternalError(c, "failed to remove value")
		return
	}
	c.Status(http.StatusNoContent)
}
