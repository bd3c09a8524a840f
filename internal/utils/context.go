// Package utils provides small cross-cutting helpers: type-safe context
// keys, JWT generation and validation, and record id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys. A dedicated type
// prevents collisions with other packages using string keys.
type contextKey string

// String implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey stores the authenticated user identifier in a request
// context. Written by the auth middleware, read with
// GetUserIDFromContext.
var UserIDCtxKey = contextKey("userID")

// TraceIDCtxKey stores the per-request trace id assigned by the trace
// middleware.
var TraceIDCtxKey = contextKey("traceID")

// GetUserIDFromContext retrieves the user identifier from the context.
//
// The ok flag is false when the value is missing or has an unexpected
// type, which handlers must treat as an unauthenticated request.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	return userID, ok
}

// GetTraceIDFromContext retrieves the request trace id from the context.
func GetTraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(TraceIDCtxKey).(string)
	return traceID, ok
}
