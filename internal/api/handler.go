package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"equipment-scheduling-backend/internal/scheduling"
	"equipment-scheduling-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	svc     *scheduling.Service
	store   store.Store
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(svc *scheduling.Service, s store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		svc:     svc,
		store:   s,
		webpush: webpushOptions,
	}
}

// abortError maps service errors onto HTTP responses. Responses carry a
// machine-readable kind plus a message; internal failures are not leaked.
func abortError(c *gin.Context, err error) {
	var conflictErr *scheduling.ConflictError
	var transitionErr *scheduling.InvalidTransitionError

	switch {
	case errors.Is(err, scheduling.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"kind": "not_found", "error": err.Error()})
	case errors.As(err, &conflictErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"kind":      "conflict",
			"error":     conflictErr.Error(),
			"conflicts": conflictErr.Conflicts,
		})
	case errors.Is(err, scheduling.ErrInvalidInterval),
		errors.Is(err, scheduling.ErrNotesTooLong),
		errors.Is(err, scheduling.ErrEquipmentNotSchedulable):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": err.Error()})
	case errors.As(err, &transitionErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"kind": "invalid_transition", "error": transitionErr.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"kind": "internal", "error": "internal server error"})
	}
}

// currentUserID reads the caller identity resolved by the gateway. The
// scheduler trusts it and never re-derives identity.
func currentUserID(c *gin.Context) int64 {
	if v := c.GetHeader("X-User-ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id
		}
	}
	return 1
}

// pathID parses a numeric path parameter, aborting with 400 when malformed.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"kind": "invalid_request", "error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// timeQuery parses a required RFC3339 query parameter.
func timeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"kind":  "invalid_request",
			"error": "invalid " + name + " timestamp, use RFC3339",
		})
		return time.Time{}, false
	}
	return t, true
}
