package launchdash

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tfkr-ae/launchdash/domain"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request ID (uuid.UUID), echoed in the X-Request-ID header
	RequestIDKey contextKey = "RequestID"
	// RequestTimeKey is the context key for the time the request was received (time.Time)
	RequestTimeKey contextKey = "RequestTime"
	// SelectionKey is the context key for the widget selection parsed from the request (domain.SelectionState)
	SelectionKey contextKey = "Selection"
)

// ContextWithRequestID returns a new request with a request ID in the context
func ContextWithRequestID(req *http.Request, requestId uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), RequestIDKey, requestId)
	return req.WithContext(ctx)
}

// RequestIDFromContext returns the request ID from the context if it exists
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(RequestIDKey).(uuid.UUID)
	return id, ok
}

// ContextWithRequestTime returns a new request with the request timestamp in the context
func ContextWithRequestTime(req *http.Request, requestTime time.Time) *http.Request {
	ctx := context.WithValue(req.Context(), RequestTimeKey, requestTime)
	return req.WithContext(ctx)
}

// RequestTimeFromContext returns the request timestamp from the context if it exists
func RequestTimeFromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(RequestTimeKey).(time.Time)
	return t, ok
}

// ContextWithSelection returns a new context carrying the selection the request asked for
func ContextWithSelection(ctx context.Context, selection domain.SelectionState) context.Context {
	return context.WithValue(ctx, SelectionKey, selection)
}

// SelectionFromContext returns the selection from the context if it exists
func SelectionFromContext(ctx context.Context) (domain.SelectionState, bool) {
	selection, ok := ctx.Value(SelectionKey).(domain.SelectionState)
	return selection, ok
}
