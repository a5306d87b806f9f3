package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/deppfellow/webbrayns-backend/internal/middleware"
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthCheck checks one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	Handler
	checks  map[string]HealthCheck
	timeout time.Duration
}

// NewHealthHandler checks the dependencies listed in the observability
// config: "database", "redis" and "filesystem" (the sandbox root).
func NewHealthHandler(s *server.Server) *HealthHandler {
	obs := s.Config.Observability
	checks := map[string]HealthCheck{}

	if obs.HasCheck("database") && s.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			return s.DB.Pool.Ping(ctx)
		}
	}
	if obs.HasCheck("redis") && s.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}
	}
	if obs.HasCheck("filesystem") {
		root := s.Config.FS.Root
		checks["filesystem"] = func(context.Context) error {
			info, err := os.Stat(root)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", root)
			}
			return nil
		}
	}

	return &HealthHandler{
		Handler: NewHandler(s),
		checks:  checks,
		timeout: obs.HealthChecks.Timeout,
	}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// CheckHealth answers 200 when every check passes, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	timeout := h.timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	results := make(map[string]checkResult, len(h.checks))
	isHealthy := true

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		checkStart := time.Now()
		err := check(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		if err != nil {
			isHealthy = false
			results[name] = checkResult{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}

			logger.Error().Err(err).Str("check", name).Dur("response_time", elapsed).Msg("health check failed")
			h.recordFailure(map[string]any{
				"check_type":       name,
				"operation":        "health_check",
				"error_type":       name + "_unhealthy",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
			continue
		}

		results[name] = checkResult{Status: "healthy", ResponseTime: elapsed.String()}
		logger.Debug().Str("check", name).Dur("response_time", elapsed).Msg("health check passed")
	}

	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      results,
	}

	if !isHealthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("service is unhealthy")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordFailure(attrs map[string]any) {
	ls := h.server.LoggerService
	if ls == nil || ls.GetApplication() == nil {
		return
	}
	ls.GetApplication().RecordCustomEvent("HealthCheckError", attrs)
}
