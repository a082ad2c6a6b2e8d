package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/zulandar/taskyard/internal/logging"
	"github.com/zulandar/taskyard/internal/models"
	"github.com/zulandar/taskyard/internal/project"
	"github.com/zulandar/taskyard/internal/store"
	"github.com/zulandar/taskyard/internal/timetrack"
)

const (
	// HeaderUser carries the authenticated user id set by the gateway.
	HeaderUser = "X-User-ID"
	// HeaderRequestID is echoed back, or generated when absent.
	HeaderRequestID = "X-Request-ID"
)

// requestLogger assigns a request id and logs one line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Set("requestID", id)

		start := time.Now()
		c.Next()

		entry := logging.Logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user":       c.GetHeader(HeaderUser),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Error(c.Errors.String())
			return
		}
		entry.Info("request")
	}
}

// requireUser rejects requests without a user id.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(HeaderUser) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + HeaderUser + " header"})
			return
		}
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetHeader(HeaderUser)
}

// statusFor maps domain error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, project.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, timetrack.ErrActiveSession):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes the request body into v. An empty body leaves v as is
// when optional is set.
func bindJSON(c *gin.Context, v interface{}, optional bool) error {
	if err := c.ShouldBindJSON(v); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("api: decode body: %v: %w", err, models.ErrInvalidInput)
	}
	return nil
}
