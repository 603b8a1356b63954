package util

import (
	"context"

	"github.com/google/uuid"
)

type key string

const (
	requestIDKey = key("x-request-id")
	sourceKey    = key("x-source")
)

// WithRequestID returns a context with a request id.
// It will generate a new request id if the provided id is empty.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return context.WithValue(ctx, requestIDKey, generate())
	}

	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id from ctx if available.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)

	return id
}

// WithSource returns a context annotated with the originating data source name.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// GetSource returns the data source name from ctx if available.
func GetSource(ctx context.Context) string {
	source, _ := ctx.Value(sourceKey).(string)

	return source
}

// NewConnectionID returns a uuid-v4 string to identify a subscriber connection.
func NewConnectionID() string {
	return generate()
}

// generate returns a uuid-v4 string to use as request id.
func generate() string {
	return uuid.NewString()
}
