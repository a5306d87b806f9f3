// Package middleware holds the Echo middleware chain: request ids, New Relic
// tracing, request-scoped loggers, the RPC envelope guards, rate limiting,
// Clerk authentication and the global error handler.
package middleware
