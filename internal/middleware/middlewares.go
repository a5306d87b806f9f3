package middleware

import (
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/labstack/echo/v4"
)

// Middlewares is everything the router mounts, built once per server.
type Middlewares struct {
	Global          *GlobalMiddlewares
	Auth            *AuthMiddleware
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware

	// RPC marks a route group as RPC, BraynsHost guards the circuit routes.
	RPC        echo.MiddlewareFunc
	BraynsHost echo.MiddlewareFunc
}

func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
		RPC:             RPC(),
		BraynsHost:      RequireBraynsHost(),
	}
}
