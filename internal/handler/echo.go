package handler

import (
	"github.com/deppfellow/webbrayns-backend/internal/server"
	"github.com/labstack/echo/v4"
)

// EchoHandler answers with its own input, to check the RPC plumbing.
type EchoHandler struct {
	Handler
}

func NewEchoHandler(s *server.Server) *EchoHandler {
	return &EchoHandler{Handler: NewHandler(s)}
}

func (h *EchoHandler) Echo() echo.HandlerFunc {
	return HandleRaw(h.Handler, func(_ echo.Context, input any) (any, error) {
		return input, nil
	})
}
