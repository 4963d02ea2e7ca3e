package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zfogg/pageshare/pkg/logger"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	if status >= http.StatusInternalServerError {
		logger.Error("API error", "code", code, "message", message, "status", status, "path", c.FullPath())
	} else {
		logger.Warn("API error", "code", code, "message", message, "status", status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "bad_request", message)
}

func respondNotFound(c *gin.Context, resource string) {
	respondError(c, http.StatusNotFound, "not_found", resource+" not found")
}

func respondInternalError(c *gin.Context, message string) {
	respondError(c, http.StatusInternalServerError, "internal_error", message)
}

// requestLogger logs each request through the package logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("HTTP",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"bytes", c.Writer.Size(),
		)
	}
}
