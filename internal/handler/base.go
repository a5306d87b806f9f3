package handler

import (
	"net/http"
	"time"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/deppfellow/webbrayns-backend/internal/middleware"
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/deppfellow/webbrayns-backend/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler provides base functionality for all handlers.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc runs an RPC operation on a validated request.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler writes a successful result.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result any)
}

// JSONResponseHandler writes the result as the JSON body of a 200.
type JSONResponseHandler struct{}

func (h JSONResponseHandler) Handle(c echo.Context, result any) error {
	return c.JSON(http.StatusOK, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "rpc"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result any) {
	if txn == nil {
		return
	}
	switch v := result.(type) {
	case []string:
		txn.AddAttribute("rpc.result_count", len(v))
	case string:
		txn.AddAttribute("rpc.result_bytes", len(v))
	}
}

// handleRequest binds and validates a fresh request, runs handler and writes
// the response. Failures are returned as *errs.RPCError for the global
// error handler to render.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	newReq func() Req,
	bind func(c echo.Context, req Req) error,
	handler func(c echo.Context, req Req) (any, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Str("route", route).
		Logger()

	logger.Debug().Msg("handling request")

	req := newReq()

	validationStart := time.Now()
	if err := bind(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return errs.AsRPCError(err)
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		rpcErr := errs.AsRPCError(err)
		totalDuration := time.Since(start)

		event := logger.Warn()
		if rpcErr.Code == errs.CodeUnexpected {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("rpc_code", rpcErr.Code).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("rpc.code", rpcErr.Code)
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}
		return rpcErr
	}

	totalDuration := time.Since(start)

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps an RPC operation whose input is decoded from the "i"
// parameter into a new Req for each request.
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	newReq func() Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, newReq,
			func(c echo.Context, req Req) error {
				return validation.BindInput(c, req)
			},
			func(c echo.Context, req Req) (any, error) {
				return handler(c, req)
			},
			JSONResponseHandler{},
		)
	}
}

// rawInput carries an undecoded-schema input.
type rawInput struct {
	value any
}

func (*rawInput) Validate() error { return nil }

// HandleRaw wraps an operation that takes any JSON value as input.
func HandleRaw[Res any](
	h Handler,
	handler func(c echo.Context, input any) (Res, error),
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c,
			func() *rawInput { return &rawInput{} },
			func(c echo.Context, req *rawInput) error {
				value, err := validation.BindAny(c)
				req.value = value
				return err
			},
			func(c echo.Context, req *rawInput) (any, error) {
				return handler(c, req.value)
			},
			JSONResponseHandler{},
		)
	}
}
