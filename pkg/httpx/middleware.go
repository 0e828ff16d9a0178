// Package httpx carries the portal's HTTP plumbing: middleware chaining,
// bearer authentication, role gating, rate limiting, and the JSON error
// envelope shared by every handler.
package httpx

import "net/http"

// Middleware wraps a handler with extra behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to a handler so the first listed runs first.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
