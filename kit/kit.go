// Package kit provides the transport-agnostic endpoint plumbing shared
// by the module's HTTP and MCP surfaces: a typed request/response
// Endpoint, composable Middleware, and context metadata accessors.
package kit

import (
	"context"
	"log/slog"
	"time"
)

// Endpoint is the transport-agnostic unit of work: it receives a typed
// request and returns a typed response. Transports (HTTP, MCP) decode
// into the request type, call the endpoint, and encode the response.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint, adding cross-cutting behaviour
// (logging, timeout, recovery) without changing the signature.
type Middleware func(next Endpoint) Endpoint

// Chain composes middlewares left-to-right: the first middleware in the
// slice is the outermost wrapper (executed first on the request path).
//
//	chain := Chain(logging, timeout)
//	wrapped := chain(baseEndpoint)
func Chain(mws ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// Logging returns a middleware that logs every call with its duration,
// tagged with the request ID and transport taken from the context.
func Logging(logger *slog.Logger, name string) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Endpoint) Endpoint {
		return func(ctx context.Context, req any) (any, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			dur := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "endpoint failed",
					"endpoint", name,
					"transport", GetTransport(ctx),
					"request_id", GetRequestID(ctx),
					"duration_ms", dur.Milliseconds(),
					"error", err)
				return resp, err
			}
			logger.DebugContext(ctx, "endpoint ok",
				"endpoint", name,
				"transport", GetTransport(ctx),
				"request_id", GetRequestID(ctx),
				"duration_ms", dur.Milliseconds())
			return resp, nil
		}
	}
}
