package middleware

import (
	"net/http"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups the server wide middleware and the error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// RequestLogger writes one "API" line per request. The level follows the
// status; on RPC routes, where failures are answered with a 200, it follows
// the RPC code instead.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status
			rpcCode := 0

			// The error handler has not written the response yet, derive the
			// status from the error.
			// See https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			if v.Error != nil {
				statusCode, rpcCode = responseStatus(c, v.Error)
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500 || rpcCode == errs.CodeUnexpected:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400 || rpcCode != 0:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			if userID := GetUserID(c); userID != "" {
				e = e.Str("user_id", userID)
			}

			if rpcCode != 0 {
				e = e.Int("rpc_code", rpcCode)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// responseStatus returns the status the error handler will write for err,
// and the RPC code when the body is an RPC error.
func responseStatus(c echo.Context, err error) (int, int) {
	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError
	var rpcErr *errs.RPCError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status, 0
	case errors.As(err, &echoErr):
		return echoErr.Code, 0
	case errors.As(err, &rpcErr):
		return http.StatusOK, rpcErr.Code
	case IsRPCRoute(c):
		return http.StatusOK, errs.CodeUnexpected
	default:
		return http.StatusInternalServerError, 0
	}
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler renders every error returned by a handler or a
// middleware.
//
// RPC errors, and any unclassified error raised on an RPC route (panics
// included), are written as a {code, text} body with a 200. Transport errors
// keep their HTTP status and the HTTPError shape.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err
	logger := *GetLogger(c)

	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError
	var rpcErr *errs.RPCError

	switch {
	case errors.As(err, &httpErr):
	case errors.As(err, &echoErr):
		if echoErr.Code == http.StatusNotFound {
			httpErr = errs.NewNotFoundError("Route not found", false, nil)
		} else {
			message, ok := echoErr.Message.(string)
			if !ok {
				message = http.StatusText(echoErr.Code)
			}
			httpErr = &errs.HTTPError{
				Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(echoErr.Code)),
				Message: message,
				Status:  echoErr.Code,
			}
		}
	case errors.As(err, &rpcErr) || IsRPCRoute(c):
		rpcErr = errs.AsRPCError(err)

		event := logger.Warn()
		if rpcErr.Code == errs.CodeUnexpected {
			event = logger.Error().Stack()
		}
		event.
			Err(originalErr).
			Int("rpc_code", rpcErr.Code).
			Msg(rpcErr.Text)

		if !c.Response().Committed {
			_ = c.JSON(http.StatusOK, rpcErr)
		}
		return
	default:
		httpErr = errs.NewInternalServerError()
	}

	logger.Error().Stack().
		Err(originalErr).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(httpErr.Status)
			return
		}
		_ = c.JSON(httpErr.Status, httpErr)
	}
}
